package articles

import (
	"context"

	"codeberg.org/marketwire/server/api/rest/pagination"
	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// runs a single article through the pipeline
type Ingester interface {
	Ingest(ctx context.Context, in articles.Input) (*articles.Article, error)
}

// read side of the record store
type Reader interface {
	GetMany(ctx context.Context, ids []string) ([]articles.Row, error)
	List(ctx context.Context, opts storage.ListOptions) ([]articles.Row, int, error)
}

// ArticlesListResponse wraps a page of processed articles
type ArticlesListResponse struct {
	Articles   []articles.Article `json:"articles"`
	Pagination pagination.Meta    `json:"pagination"`
}
