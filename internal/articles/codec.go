package articles

import (
	"encoding/json"
	"fmt"
)

// serializes an article into its persisted row
func ToRow(a *Article) (*Row, error) {
	entities := a.Entities
	if entities == nil {
		entities = []Entity{}
	}

	impacts := a.ImpactedStocks
	if impacts == nil {
		impacts = []ImpactedStock{}
	}

	entitiesJSON, err := json.Marshal(entities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entities: %w", err)
	}

	impactsJSON, err := json.Marshal(impacts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode impacted stocks: %w", err)
	}

	row := &Row{
		ID:                 a.ID,
		Title:              a.Title,
		Content:            a.Content,
		Source:             a.Source,
		PublishedAt:        a.PublishedAt,
		URL:                a.URL,
		IsDuplicate:        a.IsDuplicate,
		EntitiesJSON:       string(entitiesJSON),
		ImpactedStocksJSON: string(impactsJSON),
		Sector:             a.Sector,
	}

	if a.IsDuplicate && a.DuplicateOfID != "" {
		ref := a.DuplicateOfID
		row.DuplicateOfID = &ref
	}

	return row, nil
}

// rebuilds an article from a persisted row
func FromRow(r *Row) (*Article, error) {
	a := &Article{
		ID:             r.ID,
		Title:          r.Title,
		Content:        r.Content,
		Source:         r.Source,
		PublishedAt:    r.PublishedAt,
		URL:            r.URL,
		Sector:         r.Sector,
		IsDuplicate:    r.IsDuplicate,
		Entities:       []Entity{},
		ImpactedStocks: []ImpactedStock{},
	}

	if a.Sector == "" {
		a.Sector = DefaultSector
	}

	if r.DuplicateOfID != nil {
		a.DuplicateOfID = *r.DuplicateOfID
	}

	if r.EntitiesJSON != "" {
		if err := json.Unmarshal([]byte(r.EntitiesJSON), &a.Entities); err != nil {
			return nil, fmt.Errorf("failed to decode entities for %s: %w", r.ID, err)
		}
	}

	if r.ImpactedStocksJSON != "" {
		if err := json.Unmarshal([]byte(r.ImpactedStocksJSON), &a.ImpactedStocks); err != nil {
			return nil, fmt.Errorf("failed to decode impacted stocks for %s: %w", r.ID, err)
		}
	}

	return a, nil
}
