package dedup

import (
	"context"
	"errors"
)

// default L2 distance below which two unit-length embeddings describe the same story
const DefaultThreshold = 0.3

var ErrDuplicateCommit = errors.New("refusing to index a duplicate article")

// outcome of a novelty check against the vector index
type Decision struct {
	IsDuplicate   bool
	DuplicateOfID string
	// distance to the nearest other article; zero when HasNeighbor is false
	Distance    float64
	HasNeighbor bool
}

type Config struct {
	Threshold float64
	// number of recent embeddings kept between Classify and Commit
	CacheSize int
}

// narrow view of llm.Embedder
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
