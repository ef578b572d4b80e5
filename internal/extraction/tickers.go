package extraction

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tickers.yaml
var defaultTickersYAML []byte

type TickerKind string

const (
	KindCompany   TickerKind = "company"
	KindSector    TickerKind = "sector"
	KindRegulator TickerKind = "regulator"
)

type TickerEntry struct {
	Name    string     `yaml:"name"`
	Aliases []string   `yaml:"aliases"`
	Symbol  string     `yaml:"symbol"`
	Sector  string     `yaml:"sector"`
	Kind    TickerKind `yaml:"kind"`
}

type tickerFile struct {
	Entries []TickerEntry `yaml:"entries"`
}

type aliasPattern struct {
	entry   int
	size    int
	pattern *regexp.Regexp
}

// static name -> ticker lookup; doubles as a gazetteer recognizer
type TickerTable struct {
	entries  []TickerEntry
	byAlias  map[string]int
	patterns []aliasPattern
}

func DefaultTickerTable() (*TickerTable, error) {
	return LoadTickerTable(defaultTickersYAML)
}

func LoadTickerTable(data []byte) (*TickerTable, error) {
	var file tickerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse ticker table: %w", err)
	}

	table := &TickerTable{byAlias: make(map[string]int)}

	for _, entry := range file.Entries {
		if entry.Name == "" || entry.Symbol == "" {
			return nil, fmt.Errorf("ticker entry requires name and symbol: %+v", entry)
		}

		switch entry.Kind {
		case "":
			entry.Kind = KindCompany
		case KindCompany, KindSector, KindRegulator:
		default:
			return nil, fmt.Errorf("unknown ticker kind %q for %s", entry.Kind, entry.Name)
		}

		idx := len(table.entries)
		table.entries = append(table.entries, entry)

		for _, alias := range append([]string{entry.Name}, entry.Aliases...) {
			key := normalizeName(alias)
			if key == "" {
				continue
			}

			if _, taken := table.byAlias[key]; taken {
				continue
			}

			table.byAlias[key] = idx
			table.patterns = append(table.patterns, aliasPattern{
				entry:   idx,
				size:    len(key),
				pattern: regexp.MustCompile(`(?:^|[^\pL\pN])(` + regexp.QuoteMeta(key) + `)(?:$|[^\pL\pN])`),
			})
		}
	}

	// longer aliases first so "hdfc bank" claims the text before "hdfc"
	sort.SliceStable(table.patterns, func(i, j int) bool {
		return table.patterns[i].size > table.patterns[j].size
	})

	return table, nil
}

func (t *TickerTable) Len() int {
	return len(t.entries)
}

// resolves a mention by exact alias, ignoring case and punctuation spacing
func (t *TickerTable) Lookup(name string) (TickerEntry, bool) {
	idx, ok := t.byAlias[normalizeName(name)]
	if !ok {
		return TickerEntry{}, false
	}

	return t.entries[idx], true
}

// reports every table entry mentioned in text as an ORG span named after the entry
func (t *TickerTable) Recognize(_ context.Context, text string) ([]Span, error) {
	lower := strings.ToLower(text)
	claimed := make([]bool, len(lower))
	found := make(map[int]bool)

	var spans []Span

	for _, p := range t.patterns {
		if found[p.entry] {
			continue
		}

		for _, loc := range p.pattern.FindAllStringSubmatchIndex(lower, -1) {
			start, end := loc[2], loc[3]
			if claimed[start] || claimed[end-1] {
				continue
			}

			for i := start; i < end; i++ {
				claimed[i] = true
			}

			if !found[p.entry] {
				found[p.entry] = true
				spans = append(spans, Span{Text: t.entries[p.entry].Name, Label: LabelOrg, Start: start})
			}
		}
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	return spans, nil
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
