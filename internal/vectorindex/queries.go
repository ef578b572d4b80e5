package vectorindex

const (
	embeddingsTable = "article_embeddings"

	createExtensionQuery = `CREATE EXTENSION IF NOT EXISTS vector`

	// %d is the embedding dimension
	createEmbeddingsTableQuery = `
		CREATE TABLE IF NOT EXISTS article_embeddings (
			id         TEXT PRIMARY KEY,
			embedding  vector(%d) NOT NULL,
			metadata   JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	createEmbeddingsIndexQuery = `
		CREATE INDEX IF NOT EXISTS article_embeddings_l2_idx
		ON article_embeddings USING hnsw (embedding vector_l2_ops)
	`

	upsertEmbeddingQuery = `
		INSERT INTO article_embeddings (id, embedding, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata
	`

	countEmbeddingsQuery = "SELECT COUNT(*) FROM article_embeddings"
)
