package extraction

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

// statistical NER over the article text
type ProseRecognizer struct{}

func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (r *ProseRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("entity recognition failed: %w", err)
	}

	var (
		spans  []Span
		offset int
	)

	for _, ent := range doc.Entities() {
		label := strings.ToUpper(ent.Label)

		switch label {
		case LabelOrg, LabelGPE, LabelPerson:
		default:
			continue
		}

		start := strings.Index(text[offset:], ent.Text)
		if start >= 0 {
			start += offset
			offset = start + len(ent.Text)
		} else {
			start = offset
		}

		spans = append(spans, Span{Text: ent.Text, Label: label, Start: start})
	}

	return spans, nil
}

type chain []Recognizer

// runs recognizers in order; earlier recognizers win when two report the same text
func Chain(recognizers ...Recognizer) Recognizer {
	return chain(recognizers)
}

func (c chain) Recognize(ctx context.Context, text string) ([]Span, error) {
	seen := make(map[string]bool)

	var spans []Span

	for _, r := range c {
		found, err := r.Recognize(ctx, text)
		if err != nil {
			return nil, err
		}

		for _, s := range found {
			key := normalizeName(s.Text)
			if key == "" || seen[key] {
				continue
			}

			seen[key] = true
			spans = append(spans, s)
		}
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	return spans, nil
}
