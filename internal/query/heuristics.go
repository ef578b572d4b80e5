package query

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed heuristics.yaml
var defaultHeuristicsYAML []byte

type HeuristicRule struct {
	Match  string   `yaml:"match"`
	Sector string   `yaml:"sector"`
	Terms  []string `yaml:"terms"`
}

type HeuristicTable struct {
	rules []HeuristicRule
}

func DefaultHeuristics() (*HeuristicTable, error) {
	return LoadHeuristics(defaultHeuristicsYAML)
}

func LoadHeuristics(data []byte) (*HeuristicTable, error) {
	var file struct {
		Rules []HeuristicRule `yaml:"rules"`
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse query heuristics: %w", err)
	}

	for i, rule := range file.Rules {
		if strings.TrimSpace(rule.Match) == "" {
			return nil, fmt.Errorf("heuristic rule %d has no match", i)
		}

		file.Rules[i].Match = strings.ToLower(strings.TrimSpace(rule.Match))
	}

	return &HeuristicTable{rules: file.Rules}, nil
}

// collects terms of every rule whose match occurs in the query; the sector comes
// from the first matching rule
func (h *HeuristicTable) Expand(query string) (*Expansion, bool) {
	lower := strings.ToLower(query)
	exp := &Expansion{Source: SourceHeuristic}

	for _, rule := range h.rules {
		if !strings.Contains(lower, rule.Match) {
			continue
		}

		if exp.Sector == "" {
			exp.Sector = rule.Sector
		}

		exp.Terms = append(exp.Terms, rule.Terms...)
	}

	if len(exp.Terms) == 0 {
		return nil, false
	}

	return exp, true
}
