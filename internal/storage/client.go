package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/logger"
)

// pool sizing shared by the server and the ingester
const (
	maxConns          = 10
	minConns          = 1
	maxConnLifetime   = 30 * time.Minute
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = time.Minute
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres-backed record store; the pool is shared with the vector index
type Client struct {
	pool *pgxpool.Pool
}

func NewClient(ctx context.Context, connString string) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{pool: pool}, nil
}

func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) Close() {
	c.pool.Close()
}

// creates the articles table and its indexes inside one transaction
func (c *Client) EnsureSchema(ctx context.Context) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// defer rollback - will be no-op if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	for _, stmt := range []string{createArticlesTableQuery, createArticlesSectorIndexQuery} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create articles schema: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// inserts or replaces the row keyed by id
func (c *Client) Upsert(ctx context.Context, row *articles.Row) error {
	_, err := c.pool.Exec(ctx,
		upsertArticleQuery,
		row.ID,
		row.Title,
		row.Content,
		row.Source,
		row.PublishedAt,
		row.URL,
		row.IsDuplicate,
		row.DuplicateOfID,
		row.EntitiesJSON,
		row.ImpactedStocksJSON,
		row.Sector,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", row.ID, err)
	}

	return nil
}

// fetches all rows with the given ids in a single round trip
func (c *Client) GetMany(ctx context.Context, ids []string) ([]articles.Row, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := buildGetManyQuery(ids)
	if err != nil {
		return nil, err
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (c *Client) Stats(ctx context.Context) (*articles.Stats, error) {
	var stats articles.Stats

	if err := c.pool.QueryRow(ctx, articleStatsQuery).Scan(&stats.TotalArticles, &stats.DuplicatesDetected); err != nil {
		return nil, fmt.Errorf("failed to get article stats: %w", err)
	}

	stats.UniqueArticles = stats.TotalArticles - stats.DuplicatesDetected

	return &stats, nil
}

// pages through articles, newest first
func (c *Client) List(ctx context.Context, opts ListOptions) ([]articles.Row, int, error) {
	countQuery, countArgs, err := buildListQuery(opts, true)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := c.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	query, args, err := buildListQuery(opts, false)
	if err != nil {
		return nil, 0, err
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func buildGetManyQuery(ids []string) (string, []any, error) {
	query, args, err := psql.
		Select(articleColumns...).
		From(articlesTable).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build article query: %w", err)
	}

	return query, args, nil
}

func buildListQuery(opts ListOptions, count bool) (string, []any, error) {
	builder := psql.Select(articleColumns...)
	if count {
		builder = psql.Select("COUNT(*)")
	}

	builder = builder.From(articlesTable)

	if opts.Sector != "" {
		builder = builder.Where(sq.Eq{"sector": opts.Sector})
	}

	if opts.UniqueOnly {
		builder = builder.Where(sq.Eq{"is_duplicate": false})
	}

	if !count {
		builder = builder.OrderBy("published_at DESC", "id ASC")

		if opts.Limit > 0 {
			builder = builder.Limit(uint64(opts.Limit)) //nolint:gosec // G115: checked positive above
		}

		if opts.Offset > 0 {
			builder = builder.Offset(uint64(opts.Offset)) //nolint:gosec // G115: checked positive above
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build list query: %w", err)
	}

	return query, args, nil
}

func scanRows(rows pgx.Rows) ([]articles.Row, error) {
	var result []articles.Row

	for rows.Next() {
		var r articles.Row

		err := rows.Scan(
			&r.ID,
			&r.Title,
			&r.Content,
			&r.Source,
			&r.PublishedAt,
			&r.URL,
			&r.IsDuplicate,
			&r.DuplicateOfID,
			&r.EntitiesJSON,
			&r.ImpactedStocksJSON,
			&r.Sector,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return result, nil
}
