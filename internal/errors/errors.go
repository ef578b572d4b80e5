package errors

import (
	"net/http"
	"strings"

	"codeberg.org/marketwire/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for request failures
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//
// For pipeline stages, stores and agents:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Recoverable failures (extraction, query expansion) are logged where they are
//     recovered and never returned
//   - Let the caller (handler) decide how to log and respond

// standard error codes
const (
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeServerError     = "server_error"
	CodeBadRequest      = "bad_request"
	CodeTooManyRequests = "too_many_requests"
	CodeSearchFailed    = "search_failed"
	CodeIngestFailed    = "ingest_failed"
)

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = classifyError(err).sanitized
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"
	details := ""

	if err != nil {
		details = classifyError(err).sanitized
		if strings.Contains(err.Error(), "binding") || strings.Contains(err.Error(), "validation") {
			message = "request validation failed"
		}
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	respondServerError(c, CodeServerError, message, err)
}

// returns a 500 error for a search that failed after its unfiltered retry
func SearchFailed(c *gin.Context, err error) {
	respondServerError(c, CodeSearchFailed, "search failed", err)
}

// returns a 500 error for an article that could not be ingested
func IngestFailed(c *gin.Context, err error) {
	respondServerError(c, CodeIngestFailed, "article ingestion failed", err)
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

func respondServerError(c *gin.Context, code, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	info := classifyError(err)

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"category", info.category,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   code,
		Message: message,
		Details: info.sanitized,
	})
}
