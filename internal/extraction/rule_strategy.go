package extraction

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/logger"
)

const (
	tableOrgConfidence   = 1.0
	tableOtherConfidence = 0.8
	lookupConfidence     = 0.7

	sectorProxyFactor     = 0.8
	regulatorProxyFactor  = 0.6
	ruleImpactReasoning   = "mentioned in article"
	lookupImpactReasoning = "mentioned in article, ticker inferred"
)

type ruleExtractor struct {
	recognizer Recognizer
	tickers    *TickerTable
	completer  Completer
}

func (e *ruleExtractor) extract(ctx context.Context, article *articles.Article) (*Result, error) {
	text := strings.TrimSpace(article.Title + ". " + article.Content)

	spans, err := e.recognizer.Recognize(ctx, text)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Entities:       []articles.Entity{},
		ImpactedStocks: []articles.ImpactedStock{},
	}

	sectorCounts := make(map[string]int)

	var sectorOrder []string

	seen := make(map[string]bool)

	for _, span := range spans {
		key := normalizeName(span.Text)
		if key == "" || seen[key] {
			continue
		}

		seen[key] = true

		if entry, ok := e.tickers.Lookup(span.Text); ok {
			result.Entities = append(result.Entities, articles.Entity{Name: entry.Name, Type: entityTypeForKind(entry.Kind)})
			result.ImpactedStocks = append(result.ImpactedStocks, tableImpact(entry, span.Label))

			if entry.Sector != "" {
				if sectorCounts[entry.Sector] == 0 {
					sectorOrder = append(sectorOrder, entry.Sector)
				}

				sectorCounts[entry.Sector]++
			}

			continue
		}

		entityType := entityTypeForLabel(span.Label)
		result.Entities = append(result.Entities, articles.Entity{Name: span.Text, Type: entityType})

		if entityType != articles.EntityCompany {
			continue
		}

		symbol, err := e.lookupTicker(ctx, span.Text)
		if err != nil {
			logger.FromContext(ctx).Debug("ticker lookup failed", "name", span.Text, "error", err)
			continue
		}

		if symbol == "" {
			continue
		}

		result.ImpactedStocks = append(result.ImpactedStocks, articles.ImpactedStock{
			Symbol:     symbol,
			Confidence: lookupConfidence,
			Type:       articles.ImpactDirect,
			Sentiment:  articles.SentimentNeutral,
			Reasoning:  lookupImpactReasoning,
		})
	}

	result.Sector = dominantSector(sectorCounts, sectorOrder)

	return result, nil
}

// single-shot ticker lookup for names the table does not know
func (e *ruleExtractor) lookupTicker(ctx context.Context, name string) (string, error) {
	prompt := fmt.Sprintf(
		"What is the NSE stock ticker symbol of %q? Reply with the ticker only, or NONE if it is not a listed company.",
		name,
	)

	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("ticker lookup completion failed: %w", err)
	}

	fields := strings.Fields(raw)
	if len(fields) != 1 {
		return "", nil
	}

	symbol := normalizeTicker(fields[0])
	if !isTickerSymbol(symbol) {
		return "", nil
	}

	return symbol, nil
}

func tableImpact(entry TickerEntry, label string) articles.ImpactedStock {
	confidence := tableOtherConfidence
	if label == LabelOrg {
		confidence = tableOrgConfidence
	}

	impact := articles.ImpactedStock{
		Symbol:    entry.Symbol,
		Type:      articles.ImpactDirect,
		Sentiment: articles.SentimentNeutral,
		Reasoning: ruleImpactReasoning,
	}

	switch entry.Kind {
	case KindSector:
		impact.Type = articles.ImpactSector
		confidence *= sectorProxyFactor
	case KindRegulator:
		impact.Type = articles.ImpactRegulatory
		confidence *= regulatorProxyFactor
	}

	impact.Confidence = confidence

	return impact
}

func entityTypeForKind(kind TickerKind) articles.EntityType {
	switch kind {
	case KindSector:
		return articles.EntitySector
	case KindRegulator:
		return articles.EntityRegulator
	default:
		return articles.EntityCompany
	}
}

// GPE mentions stand in loosely for regulators
func entityTypeForLabel(label string) articles.EntityType {
	switch label {
	case LabelGPE:
		return articles.EntityRegulator
	case LabelPerson:
		return articles.EntityPerson
	default:
		return articles.EntityCompany
	}
}

// most frequent sector, earliest mention breaks ties
func dominantSector(counts map[string]int, order []string) string {
	best := articles.DefaultSector
	bestCount := 0

	for _, sector := range order {
		if counts[sector] > bestCount {
			best = sector
			bestCount = counts[sector]
		}
	}

	return best
}

func isTickerSymbol(s string) bool {
	if s == "" || len(s) > 20 {
		return false
	}

	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '&', r == '-', r == '_':
		default:
			return false
		}
	}

	return true
}
