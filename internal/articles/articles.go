package articles

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// length of the hex id derived from the natural key
const idLength = 32

// builds a provisional article from acquisition input; the id is derived from the
// canonical URL so re-ingesting the same item upserts the same row
func New(in Input) *Article {
	publishedAt := in.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	return &Article{
		ID:             StableID(in),
		Title:          strings.TrimSpace(in.Title),
		Content:        strings.TrimSpace(in.Content),
		Source:         strings.TrimSpace(in.Source),
		PublishedAt:    publishedAt,
		URL:            strings.TrimSpace(in.URL),
		Sector:         DefaultSector,
		Entities:       []Entity{},
		ImpactedStocks: []ImpactedStock{},
	}
}

// derives the article id from its natural key
func StableID(in Input) string {
	key := CanonicalURL(in.URL)
	if key == "" {
		// no URL: fall back to the normalized title within its source
		key = "title:" + normalizeText(in.Source) + "|" + normalizeText(in.Title)
	}

	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])[:idLength]
}

// normalizes a URL so tracking noise does not change the natural key
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}

// text the dedup stage embeds for an article
func (a *Article) EmbeddingText() string {
	return a.Title + " " + a.Content
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
