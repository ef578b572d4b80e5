package articles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"simple", "https://example.com/path", "https://example.com/path"},
		{"utm and fragment", "https://example.com/path?utm_source=feed#section", "https://example.com/path"},
		{"uppercase host", "HTTP://Example.COM/", "http://example.com"},
		{"tracking params", "https://example.com/?fbclid=XYZ&gclid=ABC&utm_medium=1", "https://example.com"},
		{"keeps real query", "https://example.com/a?id=7&utm_campaign=x", "https://example.com/a?id=7"},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalURL(tt.raw))
		})
	}
}

func TestStableID(t *testing.T) {
	a := StableID(Input{Title: "HDFC Bank reports Q3 earnings", URL: "https://x/1"})
	b := StableID(Input{Title: "Different title", URL: "https://x/1?utm_source=rss"})
	c := StableID(Input{Title: "HDFC Bank reports Q3 earnings", URL: "https://x/2"})

	assert.Len(t, a, idLength)
	assert.Equal(t, a, b, "same natural key must give the same id")
	assert.NotEqual(t, a, c)
}

func TestStableID_WithoutURL(t *testing.T) {
	a := StableID(Input{Title: "RBI holds  rates", Source: "Mint"})
	b := StableID(Input{Title: "rbi holds rates", Source: "mint"})
	c := StableID(Input{Title: "rbi holds rates", Source: "ET"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNew(t *testing.T) {
	published := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	a := New(Input{
		Title:       "  HDFC Bank reports Q3 earnings ",
		Content:     "Net profit rose 33%.",
		Source:      "Moneycontrol",
		PublishedAt: published,
		URL:         "https://x/1",
	})

	assert.Equal(t, "HDFC Bank reports Q3 earnings", a.Title)
	assert.Equal(t, DefaultSector, a.Sector)
	assert.Equal(t, published, a.PublishedAt)
	assert.Empty(t, a.Entities)
	assert.Empty(t, a.ImpactedStocks)
	assert.False(t, a.IsDuplicate)
	assert.Equal(t, "HDFC Bank reports Q3 earnings Net profit rose 33%.", a.EmbeddingText())
}

func TestNew_DefaultsPublishedAt(t *testing.T) {
	a := New(Input{Title: "t", URL: "https://x/1"})
	assert.False(t, a.PublishedAt.IsZero())
}

func TestRowRoundTrip(t *testing.T) {
	original := &Article{
		ID:          "abc",
		Title:       "HDFC Bank reports Q3 earnings",
		Content:     "content",
		Source:      "ET",
		PublishedAt: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		URL:         "https://x/1",
		Sector:      "Banking",
		Entities: []Entity{
			{Name: "HDFC Bank", Type: EntityCompany},
			{Name: "RBI", Type: EntityRegulator},
		},
		ImpactedStocks: []ImpactedStock{
			{Symbol: "HDFCBANK", Confidence: 0.9, Type: ImpactDirect, Sentiment: SentimentPositive, ImpactScore: 60, Reasoning: "strong results"},
		},
	}

	row, err := ToRow(original)
	require.NoError(t, err)
	assert.Nil(t, row.DuplicateOfID)

	decoded, err := FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestRowRoundTrip_Duplicate(t *testing.T) {
	original := &Article{
		ID:             "dup",
		Title:          "t",
		Sector:         DefaultSector,
		Entities:       []Entity{},
		ImpactedStocks: []ImpactedStock{},
		IsDuplicate:    true,
		DuplicateOfID:  "orig",
	}

	row, err := ToRow(original)
	require.NoError(t, err)
	require.NotNil(t, row.DuplicateOfID)
	assert.Equal(t, "orig", *row.DuplicateOfID)
	assert.Equal(t, "[]", row.EntitiesJSON)
	assert.Equal(t, "[]", row.ImpactedStocksJSON)

	decoded, err := FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestFromRow_InvalidJSON(t *testing.T) {
	_, err := FromRow(&Row{ID: "bad", EntitiesJSON: "{not json"})
	require.Error(t, err)
}
