package extraction

import (
	"strings"

	"codeberg.org/marketwire/server/internal/articles"
)

// keeps one record per symbol: the highest confidence wins, the earlier record wins a
// tie, and symbols stay in first-seen order
func Consolidate(impacts []articles.ImpactedStock) []articles.ImpactedStock {
	out := make([]articles.ImpactedStock, 0, len(impacts))
	position := make(map[string]int, len(impacts))

	for _, impact := range impacts {
		key := strings.ToUpper(strings.TrimSpace(impact.Symbol))
		if key == "" {
			continue
		}

		if i, ok := position[key]; ok {
			if impact.Confidence > out[i].Confidence {
				out[i] = impact
			}

			continue
		}

		position[key] = len(out)
		out = append(out, impact)
	}

	return out
}

// drops entities without a name and repeats of a name, ignoring case
func uniqueEntities(entities []articles.Entity) []articles.Entity {
	out := make([]articles.Entity, 0, len(entities))
	seen := make(map[string]bool, len(entities))

	for _, e := range entities {
		name := strings.TrimSpace(e.Name)
		key := strings.ToLower(name)

		if key == "" || seen[key] {
			continue
		}

		seen[key] = true
		e.Name = name
		out = append(out, e)
	}

	return out
}
