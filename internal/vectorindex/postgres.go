package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// pgvector-backed index sharing the application's connection pool
type PostgresIndex struct {
	pool *pgxpool.Pool
}

func NewPostgresIndex(pool *pgxpool.Pool) *PostgresIndex {
	return &PostgresIndex{pool: pool}
}

// creates the extension, table and HNSW index for the given embedding dimension
func (p *PostgresIndex) EnsureSchema(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension: %d", dimension)
	}

	statements := []string{
		createExtensionQuery,
		fmt.Sprintf(createEmbeddingsTableQuery, dimension),
		createEmbeddingsIndexQuery,
	}

	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare vector index schema: %w", err)
		}
	}

	return nil
}

func (p *PostgresIndex) Upsert(ctx context.Context, id string, vector []float32, meta Metadata) error {
	if len(vector) == 0 {
		return fmt.Errorf("vector index upsert: empty vector for %s", id)
	}

	_, err := p.pool.Exec(ctx, upsertEmbeddingQuery, id, pgvector.NewVector(vector), meta)
	if err != nil {
		return fmt.Errorf("vector index upsert failed: %w", err)
	}

	return nil
}

func (p *PostgresIndex) Query(ctx context.Context, vector []float32, k int, filter *Filter) ([]Match, error) {
	query, args, err := buildQuery(vector, k, filter)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector index query failed: %w", err)
	}
	defer rows.Close()

	var matches []Match

	for rows.Next() {
		var (
			m       Match
			rawMeta []byte
		)

		if err := rows.Scan(&m.ID, &m.Distance, &rawMeta); err != nil {
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}

		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode match metadata: %w", err)
			}
		}

		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vector matches: %w", err)
	}

	return matches, nil
}

func (p *PostgresIndex) Count(ctx context.Context) (int, error) {
	var count int

	if err := p.pool.QueryRow(ctx, countEmbeddingsQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}

	return count, nil
}

// builds the k-nearest query ordered by L2 distance
func buildQuery(vector []float32, k int, filter *Filter) (string, []any, error) {
	if k <= 0 {
		return "", nil, fmt.Errorf("vector index query: k must be positive, got %d", k)
	}

	if len(vector) == 0 {
		return "", nil, fmt.Errorf("vector index query: empty vector")
	}

	builder := psql.
		Select("id").
		Column(sq.Expr("embedding <-> ?::vector AS distance", pgvector.NewVector(vector))).
		Column("metadata").
		From(embeddingsTable)

	if filter != nil && filter.Sector != "" {
		builder = builder.Where(sq.Expr("metadata->>'sector' = ?", filter.Sector))
	}

	query, args, err := builder.OrderBy("distance ASC").Limit(uint64(k)).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build vector query: %w", err)
	}

	return query, args, nil
}
