package query

import (
	"context"
	"errors"

	"codeberg.org/marketwire/server/internal/articles"
)

const (
	DefaultTopK = 5
	// expanded terms appended to the embedded search text
	maxSearchTerms = 2
	maxExpandTerms = 5
)

var ErrEmptyQuery = errors.New("query must not be empty")

// narrow view of llm.Completer
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// narrow view of llm.Embedder
type Embedder interface {
	GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error)
}

// where an expansion came from
type ExpansionSource string

const (
	SourceLLM       ExpansionSource = "llm"
	SourceCache     ExpansionSource = "cache"
	SourceHeuristic ExpansionSource = "heuristic"
	SourceIdentity  ExpansionSource = "identity"
)

type Expansion struct {
	Sector string          `json:"sector"`
	Terms  []string        `json:"terms"`
	Source ExpansionSource `json:"-"`
}

// stores successful LLM expansions keyed by normalized query
type ExpansionCache interface {
	Get(ctx context.Context, key string) (*Expansion, bool, error)
	Set(ctx context.Context, key string, exp *Expansion) error
}

// a stored article with its distance from the search text
type Hit struct {
	articles.Article
	Distance float64 `json:"distance"`
}

type Result struct {
	Query           string   `json:"query"`
	ExpandedContext []string `json:"expanded_context"`
	TargetSector    string   `json:"target_sector,omitempty"`
	// true when the sector-filtered lookup failed or came back empty
	UsedFallback bool  `json:"used_fallback"`
	Results      []Hit `json:"results"`
}

type Config struct {
	TopK  int
	Cache ExpansionCache
	// substring rules used when the model cannot expand a query
	Heuristics *HeuristicTable
}
