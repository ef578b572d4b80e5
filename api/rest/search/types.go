package search

import (
	"context"

	"codeberg.org/marketwire/server/internal/query"
)

type Searcher interface {
	Search(ctx context.Context, q string) (*query.Result, error)
}
