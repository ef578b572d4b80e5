package extraction

import (
	"context"

	"codeberg.org/marketwire/server/internal/articles"
)

// selects how entities and impacts are produced
type Strategy string

const (
	StrategyLLM  Strategy = "llm"
	StrategyRule Strategy = "rule"
)

// what either strategy produces for one article
type Result struct {
	Sector         string
	Entities       []articles.Entity
	ImpactedStocks []articles.ImpactedStock
}

// narrow view of llm.Completer
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NER labels understood by the rule strategy
const (
	LabelOrg    = "ORG"
	LabelGPE    = "GPE"
	LabelPerson = "PERSON"
)

// a recognized mention in article text
type Span struct {
	Text  string
	Label string
	// byte offset of the first occurrence, used for ordering
	Start int
}

// finds named-entity spans in text
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
}

type extractor interface {
	extract(ctx context.Context, article *articles.Article) (*Result, error)
}

type Config struct {
	Strategy Strategy
	// rule strategy only; defaults to the gazetteer over Tickers plus prose NER
	Recognizer Recognizer
	// rule strategy only; defaults to the embedded table
	Tickers *TickerTable
}
