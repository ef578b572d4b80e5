// Package feeds acquires articles from RSS and Atom feeds.
package feeds

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/logger"
)

type Poller struct {
	config Config
	parser *gofeed.Parser
	// replaced in tests
	fetchText func(pageURL string, timeout time.Duration) (string, error)
}

func NewPoller(cfg Config) *Poller {
	if cfg.ItemLimit <= 0 {
		cfg.ItemLimit = DefaultItemLimit
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Poller{
		config:    cfg,
		parser:    gofeed.NewParser(),
		fetchText: readableText,
	}
}

// fetches every feed once; a failing feed is reported and skipped
func (p *Poller) Poll(ctx context.Context) ([]articles.Input, *Report) {
	report := &Report{Feeds: len(p.config.URLs)}

	var inputs []articles.Input

	for _, feedURL := range p.config.URLs {
		items, err := p.fetchFeed(ctx, feedURL)
		if err != nil {
			logger.Warn("failed to fetch feed", "url", feedURL, "error", err)
			report.Errors = append(report.Errors, FeedError{URL: feedURL, Err: err})

			continue
		}

		logger.Debug("fetched feed", "url", feedURL, "items", len(items))
		inputs = append(inputs, items...)
	}

	if p.config.FullText {
		p.fillFullText(ctx, inputs)
	}

	report.Items = len(inputs)

	return inputs, report
}

func (p *Poller) fetchFeed(ctx context.Context, feedURL string) ([]articles.Input, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	return ItemsFromFeed(feed, feedURL, p.config.ItemLimit), nil
}

// converts the first limit items of a parsed feed into pipeline inputs
func ItemsFromFeed(feed *gofeed.Feed, feedURL string, limit int) []articles.Input {
	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = hostOf(feedURL)
	}

	count := min(len(feed.Items), limit)
	inputs := make([]articles.Input, 0, count)

	for _, item := range feed.Items[:count] {
		title := CleanHTML(item.Title)
		if title == "" {
			continue
		}

		raw := item.Description
		if raw == "" {
			raw = item.Content
		}

		content := CleanHTML(raw)
		if content == "" {
			content = title
		}

		publishedAt := time.Now().UTC()
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			publishedAt = item.UpdatedParsed.UTC()
		}

		inputs = append(inputs, articles.Input{
			Title:       title,
			Content:     content,
			Source:      source,
			PublishedAt: publishedAt,
			URL:         strings.TrimSpace(item.Link),
		})
	}

	return inputs
}

// replaces summaries with readable page text using a small worker pool
func (p *Poller) fillFullText(ctx context.Context, inputs []articles.Input) {
	var wg sync.WaitGroup

	jobs := make(chan int)

	for range workerCount {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				text, err := p.fetchText(inputs[i].URL, p.config.Timeout)
				if err != nil {
					logger.Debug("full text extraction failed", "url", inputs[i].URL, "error", err)
					continue
				}

				if len(text) > len(inputs[i].Content) {
					inputs[i].Content = text
				}
			}
		}()
	}

	for i := range inputs {
		if inputs[i].URL == "" {
			continue
		}

		select {
		case jobs <- i:
		case <-ctx.Done():
		}

		if ctx.Err() != nil {
			break
		}
	}

	close(jobs)
	wg.Wait()
}

func readableText(pageURL string, timeout time.Duration) (string, error) {
	page, err := readability.FromURL(pageURL, timeout)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}

	return collapseSpace(page.TextContent), nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "Unknown Source"
	}

	return strings.TrimPrefix(u.Host, "www.")
}
