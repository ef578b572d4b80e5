package query

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/llm"
	"codeberg.org/marketwire/server/internal/logger"
)

type expander struct {
	completer  Completer
	cache      ExpansionCache
	heuristics *HeuristicTable
}

// LLM (through the cache), then heuristics, then the bare query; never fails
func (e *expander) expand(ctx context.Context, query string) *Expansion {
	log := logger.FromContext(ctx)
	key := cacheKey(query)

	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			log.Warn("expansion cache read failed", "error", err)
		} else if ok {
			cached.Source = SourceCache
			return cached
		}
	}

	exp, err := e.expandWithLLM(ctx, query)
	if err == nil {
		if e.cache != nil {
			if err := e.cache.Set(ctx, key, exp); err != nil {
				log.Warn("expansion cache write failed", "error", err)
			}
		}

		return exp
	}

	log.Warn("query expansion failed, using heuristics", "query", query, "error", err)

	if e.heuristics != nil {
		if exp, ok := e.heuristics.Expand(query); ok {
			return exp
		}
	}

	return &Expansion{Sector: articles.DefaultSector, Source: SourceIdentity}
}

func (e *expander) expandWithLLM(ctx context.Context, query string) (*Expansion, error) {
	if e.completer == nil {
		return nil, fmt.Errorf("no completer configured")
	}

	raw, err := e.completer.Complete(ctx, buildExpansionPrompt(query))
	if err != nil {
		return nil, fmt.Errorf("expansion completion failed: %w", err)
	}

	var exp Expansion
	if err := llm.DecodeJSON(raw, &exp); err != nil {
		return nil, err
	}

	exp.Sector = strings.TrimSpace(exp.Sector)
	if exp.Sector == "" {
		exp.Sector = articles.DefaultSector
	}

	terms := make([]string, 0, len(exp.Terms))
	for _, t := range exp.Terms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}

	if len(terms) == 0 {
		return nil, fmt.Errorf("expansion returned no terms")
	}

	if len(terms) > maxExpandTerms {
		terms = terms[:maxExpandTerms]
	}

	exp.Terms = terms
	exp.Source = SourceLLM

	return &exp, nil
}

// original query first, then terms, without repeats (ignoring case)
func expandedContext(query string, terms []string) []string {
	out := []string{query}
	seen := map[string]bool{strings.ToLower(query): true}

	for _, t := range terms {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, strings.TrimSpace(t))
	}

	return out
}

// the query plus at most two expanded terms
func searchText(expanded []string) string {
	n := min(len(expanded), 1+maxSearchTerms)
	return strings.Join(expanded[:n], " ")
}

func cacheKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func buildExpansionPrompt(query string) string {
	return fmt.Sprintf(`You expand search queries over Indian financial news.

For the query below return:
- "sector": the single best-matching sector (Banking, IT, Energy, Pharma, Auto, FMCG, Metals, Telecom, Infrastructure, Financial Services, Economy), or "General" when unclear
- "terms": 3 to 5 closely related search terms such as company names, tickers, regulators or synonyms

Query: %q

Return ONLY a JSON object: {"sector": "...", "terms": ["...", "..."]}`, query)
}
