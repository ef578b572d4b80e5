package events

import (
	"context"
	"time"

	"codeberg.org/marketwire/server/internal/articles"
)

const (
	TypeArticleIngested = "article.ingested"

	DefaultRawTopic       = "marketwire.articles.raw"
	DefaultProcessedTopic = "marketwire.articles.processed"
	DefaultGroupID        = "marketwire-ingester"
)

// published once per persisted article
type ArticleEvent struct {
	Type           string                   `json:"type"`
	ID             string                   `json:"id"`
	Title          string                   `json:"title"`
	Source         string                   `json:"source"`
	URL            string                   `json:"url"`
	PublishedAt    time.Time                `json:"published_at"`
	Sector         string                   `json:"sector"`
	IsDuplicate    bool                     `json:"is_duplicate"`
	DuplicateOfID  string                   `json:"duplicate_of_id,omitempty"`
	ImpactedStocks []articles.ImpactedStock `json:"impacted_stocks"`
	ProcessedAt    time.Time                `json:"processed_at"`
}

func NewArticleEvent(a *articles.Article, now time.Time) ArticleEvent {
	impacts := a.ImpactedStocks
	if impacts == nil {
		impacts = []articles.ImpactedStock{}
	}

	return ArticleEvent{
		Type:           TypeArticleIngested,
		ID:             a.ID,
		Title:          a.Title,
		Source:         a.Source,
		URL:            a.URL,
		PublishedAt:    a.PublishedAt,
		Sector:         a.Sector,
		IsDuplicate:    a.IsDuplicate,
		DuplicateOfID:  a.DuplicateOfID,
		ImpactedStocks: impacts,
		ProcessedAt:    now.UTC(),
	}
}

// handles one consumed message; mark=false leaves it for redelivery
type HandlerFunc func(ctx context.Context, payload []byte) (mark bool, err error)

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler HandlerFunc
}
