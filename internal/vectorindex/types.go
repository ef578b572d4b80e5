// Package vectorindex stores article embeddings and answers nearest-neighbour queries
// by L2 distance. Embeddings are expected to be unit length.
package vectorindex

import "context"

// stored alongside each vector
type Metadata struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Sector string `json:"sector"`
}

// a single nearest-neighbour hit, ordered by ascending distance
type Match struct {
	ID       string
	Distance float64
	Metadata Metadata
}

// restricts a query to vectors whose metadata matches; nil means unfiltered
type Filter struct {
	Sector string
}

type Index interface {
	Upsert(ctx context.Context, id string, vector []float32, meta Metadata) error
	Query(ctx context.Context, vector []float32, k int, filter *Filter) ([]Match, error)
	Count(ctx context.Context) (int, error)
}
