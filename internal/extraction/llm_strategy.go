package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/llm"
)

const (
	// content prefix sent to the model
	maxPromptContent = 2000

	llmConfidence       = 0.9
	sectorImpactCeiling = 10
)

type llmExtractor struct {
	completer Completer
}

type llmExtraction struct {
	Sector   string      `json:"sector"`
	Entities []llmEntity `json:"entities"`
}

type llmEntity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Ticker      string `json:"ticker"`
	Sentiment   string `json:"sentiment"`
	ImpactScore score  `json:"impact_score"`
	Reasoning   string `json:"reasoning"`
}

// accepts numbers and numeric strings; anything else reads as zero
type score float64

func (s *score) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = score(f)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*s = score(f)
			return nil
		}
	}

	*s = 0

	return nil
}

func (e *llmExtractor) extract(ctx context.Context, article *articles.Article) (*Result, error) {
	raw, err := e.completer.Complete(ctx, buildExtractionPrompt(article))
	if err != nil {
		return nil, fmt.Errorf("extraction completion failed: %w", err)
	}

	var parsed llmExtraction
	if err := llm.DecodeJSON(raw, &parsed); err != nil {
		return nil, err
	}

	return parsed.toResult(), nil
}

func (p *llmExtraction) toResult() *Result {
	result := &Result{
		Sector:         strings.TrimSpace(p.Sector),
		Entities:       make([]articles.Entity, 0, len(p.Entities)),
		ImpactedStocks: []articles.ImpactedStock{},
	}

	if result.Sector == "" {
		result.Sector = articles.DefaultSector
	}

	for _, item := range p.Entities {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}

		entityType := mapEntityType(item.Type)
		result.Entities = append(result.Entities, articles.Entity{Name: name, Type: entityType})

		ticker := normalizeTicker(item.Ticker)
		if ticker == "" || entityType != articles.EntityCompany {
			continue
		}

		// typed on the magnitude the model gave, before rounding
		impactType := articles.ImpactDirect
		if math.Abs(float64(item.ImpactScore)) < sectorImpactCeiling {
			impactType = articles.ImpactSector
		}

		value := clampScore(float64(item.ImpactScore))

		result.ImpactedStocks = append(result.ImpactedStocks, articles.ImpactedStock{
			Symbol:      ticker,
			Confidence:  llmConfidence,
			Type:        impactType,
			Sentiment:   mapSentiment(item.Sentiment),
			ImpactScore: value,
			Reasoning:   strings.TrimSpace(item.Reasoning),
		})
	}

	return result
}

// unrecognized labels are treated as companies
func mapEntityType(label string) articles.EntityType {
	upper := strings.ToUpper(label)

	switch {
	case strings.Contains(upper, "COMPANY"):
		return articles.EntityCompany
	case strings.Contains(upper, "REGULATOR"):
		return articles.EntityRegulator
	case strings.Contains(upper, "PERSON"):
		return articles.EntityPerson
	case strings.Contains(upper, "SECTOR"):
		return articles.EntitySector
	case strings.Contains(upper, "EVENT"):
		return articles.EntityEvent
	default:
		return articles.EntityCompany
	}
}

func mapSentiment(label string) articles.Sentiment {
	upper := strings.ToUpper(strings.TrimSpace(label))

	switch {
	case strings.HasPrefix(upper, "POS"), upper == "BULLISH":
		return articles.SentimentPositive
	case strings.HasPrefix(upper, "NEG"), upper == "BEARISH":
		return articles.SentimentNegative
	default:
		return articles.SentimentNeutral
	}
}

// returns "" for NONE, N/A and empty values
func normalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	t = strings.Trim(t, `"'.`)
	t = strings.TrimPrefix(t, "NSE:")
	t = strings.TrimPrefix(t, "BSE:")

	switch t {
	case "", "NONE", "N/A", "NA", "NULL", "UNKNOWN":
		return ""
	}

	return t
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(-100, math.Min(100, v))))
}

func buildExtractionPrompt(article *articles.Article) string {
	content := article.Content
	if len(content) > maxPromptContent {
		content = truncateUTF8(content, maxPromptContent)
	}

	return fmt.Sprintf(`Analyze the following financial news article and extract structured market intelligence.

Article Title: %q
Article Content: %q

Tasks:
1. Identify the primary sector, e.g. Banking, IT, Energy, Pharma, Auto, Economy.
2. Extract key entities: companies, persons and regulators.
   - For companies give the NSE/BSE ticker (HDFC Bank -> HDFCBANK). Use NONE when the company is not listed.
   - Countries are not regulators. SEBI and RBI are regulators.
3. For each company give the sentiment and an impact score from -100 to 100.
   - "Buy", "Target raised", "Good results" are positive (score > 0).
   - "Sell", "Reduce", "Penalty" are negative (score < 0).
   - "Neutral", "No change" are neutral (score 0).

Return ONLY a JSON object with this structure:
{
  "sector": "Sector Name",
  "entities": [
    {
      "name": "Entity Name",
      "type": "COMPANY/PERSON/REGULATOR",
      "ticker": "TICKER_OR_NONE",
      "sentiment": "POSITIVE/NEGATIVE/NEUTRAL",
      "impact_score": 50,
      "reasoning": "Brief reason"
    }
  ]
}`, article.Title, content)
}

// cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !isRuneStart(s[n]) {
		n--
	}

	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
