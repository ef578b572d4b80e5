// Package articles defines the article record that flows through the ingestion
// pipeline and the structured market intelligence attached to it.
package articles

import (
	"time"
)

// label used when no sector could be determined
const DefaultSector = "General"

type EntityType string

const (
	EntityCompany   EntityType = "COMPANY"
	EntitySector    EntityType = "SECTOR"
	EntityRegulator EntityType = "REGULATOR"
	EntityPerson    EntityType = "PERSON"
	EntityEvent     EntityType = "EVENT"
)

type ImpactType string

const (
	ImpactDirect     ImpactType = "DIRECT"
	ImpactSector     ImpactType = "SECTOR"
	ImpactRegulatory ImpactType = "REGULATORY"
	ImpactIndirect   ImpactType = "INDIRECT"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

type Entity struct {
	Name string     `json:"name"`
	Type EntityType `json:"type"`
}

// a claim that a stock symbol is affected by an article
type ImpactedStock struct {
	Symbol      string     `json:"symbol"`
	Confidence  float64    `json:"confidence"`
	Type        ImpactType `json:"type"`
	Sentiment   Sentiment  `json:"sentiment"`
	ImpactScore int        `json:"impact_score"`
	Reasoning   string     `json:"reasoning"`
}

// raw article as produced by acquisition, before any processing
type Input struct {
	Title       string    `json:"title" binding:"required"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
}

type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`

	Sector         string          `json:"sector"`
	Entities       []Entity        `json:"entities"`
	ImpactedStocks []ImpactedStock `json:"impacted_stocks"`

	IsDuplicate   bool   `json:"is_duplicate"`
	DuplicateOfID string `json:"duplicate_of_id,omitempty"`
}

// persisted layout of an article; entities and impacts are stored as JSON text
type Row struct {
	ID                 string
	Title              string
	Content            string
	Source             string
	PublishedAt        time.Time
	URL                string
	IsDuplicate        bool
	DuplicateOfID      *string
	EntitiesJSON       string
	ImpactedStocksJSON string
	Sector             string
}

// corpus counters reported by the record store
type Stats struct {
	TotalArticles      int `json:"total_articles"`
	DuplicatesDetected int `json:"duplicates_detected"`
	UniqueArticles     int `json:"unique_articles"`
}
