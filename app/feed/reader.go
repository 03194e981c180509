package feed

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
)

type Reader struct {
	gofeedParser *gofeed.Parser
}

func NewReader() *Reader {
	return &Reader{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run loads the items of a previously published feed file. A missing or
// malformed file is not an error for the pipeline; callers treat it as an
// empty prior feed.
func (r *Reader) Run(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed file: %w", err)
	}
	defer f.Close()

	parsed, err := r.gofeedParser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed file: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, Item{
			GUID:        cmp.Or(item.GUID, item.Link),
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			PublishedAt: r.publishedAt(item),
		})
	}

	return items, nil
}

// publishedAt recovers the item timestamp. Persisted dates without a zone
// are assumed UTC; an unparseable date falls back to the current time.
func (r *Reader) publishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}

	if item.Published != "" {
		if t, err := time.Parse("Mon, 2 Jan 2006 15:04:05", item.Published); err == nil {
			return t.UTC()
		}
		slog.Warn("Could not parse persisted item date, using current time",
			"guid", item.GUID, "date", item.Published)
	}

	return time.Now().UTC()
}
