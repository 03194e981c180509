package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/readeck/go-readability"

	"github.com/Owais5514/aust-rss/app/feed"
)

// Enricher replaces the short summary of permalink notices with the
// readable content of the linked page. Enrichment is strictly best effort;
// a failed fetch or extraction keeps the original summary.
type Enricher struct {
	client *Client
}

func NewEnricher(client *Client) *Enricher {
	return &Enricher{client: client}
}

func (en *Enricher) Run(ctx context.Context, items []feed.Item) []feed.Item {
	for i := range items {
		if !items[i].IsPermaLink() {
			continue
		}

		content, err := en.extract(ctx, items[i].Link)
		if err != nil {
			slog.Warn("Content enrichment failed, keeping summary",
				"link", items[i].Link, "error", err)
			continue
		}

		items[i].Description = content
	}

	return items
}

func (en *Enricher) extract(ctx context.Context, link string) (string, error) {
	data, err := en.client.Fetch(ctx, link)
	if err != nil {
		return "", fmt.Errorf("failed to fetch notice page: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from notice page")
	}

	slog.Debug("Content extracted successfully",
		"link", link, "content_length", len(article.Content))

	return article.Content, nil
}
