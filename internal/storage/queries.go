package storage

const (
	articlesTable = "articles"

	createArticlesTableQuery = `
		CREATE TABLE IF NOT EXISTS articles (
			id                   TEXT PRIMARY KEY,
			title                TEXT NOT NULL,
			content              TEXT NOT NULL DEFAULT '',
			source               TEXT NOT NULL DEFAULT '',
			published_at         TIMESTAMPTZ NOT NULL,
			url                  TEXT NOT NULL DEFAULT '',
			is_duplicate         BOOLEAN NOT NULL DEFAULT FALSE,
			duplicate_of_id      TEXT,
			entities_json        TEXT NOT NULL DEFAULT '[]',
			impacted_stocks_json TEXT NOT NULL DEFAULT '[]',
			sector               TEXT NOT NULL DEFAULT 'General',
			created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	createArticlesSectorIndexQuery = `
		CREATE INDEX IF NOT EXISTS articles_sector_idx ON articles (sector)
	`

	upsertArticleQuery = `
		INSERT INTO articles (
			id, title, content, source, published_at, url,
			is_duplicate, duplicate_of_id, entities_json, impacted_stocks_json, sector
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			source = EXCLUDED.source,
			published_at = EXCLUDED.published_at,
			url = EXCLUDED.url,
			is_duplicate = EXCLUDED.is_duplicate,
			duplicate_of_id = EXCLUDED.duplicate_of_id,
			entities_json = EXCLUDED.entities_json,
			impacted_stocks_json = EXCLUDED.impacted_stocks_json,
			sector = EXCLUDED.sector,
			updated_at = now()
	`

	articleStatsQuery = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_duplicate)
		FROM articles
	`
)

var articleColumns = []string{
	"id",
	"title",
	"content",
	"source",
	"published_at",
	"url",
	"is_duplicate",
	"duplicate_of_id",
	"entities_json",
	"impacted_stocks_json",
	"sector",
}
