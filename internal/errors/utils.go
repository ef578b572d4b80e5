package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryUpstream   = "upstream"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)

// analyzes an error and returns its category and sanitized message
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	isProduction := os.Getenv("ENVIRONMENT") == "production"

	// database errors (pgx-specific)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ErrorInfo{
			category:  CategoryDatabase,
			sanitized: ternary(isProduction, "database operation failed", err.Error()),
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorInfo{
			category:  CategoryNotFound,
			sanitized: ternary(isProduction, "resource not found", err.Error()),
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request timed out", err.Error()),
		}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request canceled", err.Error()),
		}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline"):
		return ErrorInfo{CategoryTimeout, ternary(isProduction, "request timed out", err.Error())}
	case strings.Contains(errMsg, "not found") || strings.Contains(errMsg, "no rows"):
		return ErrorInfo{CategoryNotFound, ternary(isProduction, "resource not found", err.Error())}
	case strings.Contains(errMsg, "database") || strings.Contains(errMsg, "sql") ||
		strings.Contains(errMsg, "postgres") || strings.Contains(errMsg, "pgx"):
		return ErrorInfo{CategoryDatabase, ternary(isProduction, "database operation failed", err.Error())}
	case strings.Contains(errMsg, "embedding") || strings.Contains(errMsg, "api request failed") ||
		strings.Contains(errMsg, "vector index"):
		return ErrorInfo{CategoryUpstream, ternary(isProduction, "upstream service unavailable", err.Error())}
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial"):
		return ErrorInfo{CategoryNetwork, ternary(isProduction, "connection error occurred", err.Error())}
	case strings.Contains(errMsg, "validation") || strings.Contains(errMsg, "binding") ||
		strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "required"):
		return ErrorInfo{CategoryValidation, ternary(isProduction, "validation failed", err.Error())}
	}

	return ErrorInfo{
		category:  CategoryUnknown,
		sanitized: ternary(isProduction, "an error occurred", err.Error()),
	}
}

// ternary helper for cleaner conditional assignment
func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}
