package feed

import (
	"time"
)

// Item is a single notice, either freshly extracted from a source page or
// rehydrated from a previously published feed file.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	PublishedAt time.Time // always UTC
}

// IsPermaLink reports whether the GUID is the notice's own URL. A hash GUID
// never looks like a URL, so the flag does not need to be persisted.
func (i Item) IsPermaLink() bool {
	return isURL(i.GUID)
}

// Channel holds the fixed metadata of a generated feed.
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
	Copyright   string
	SelfLink    string
	Generator   string
}

func isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
