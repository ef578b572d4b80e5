package stats

import (
	"context"

	"codeberg.org/marketwire/server/internal/articles"
)

type Source interface {
	Stats(ctx context.Context) (*articles.Stats, error)
}
