package health

import (
	"fmt"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
)

// Checker inspects generated feed files for an external scheduler. It is a
// diagnostic collaborator, not part of the scrape pipeline; callers turn
// its errors into exit status.
type Checker struct {
	gofeedParser *gofeed.Parser
}

func NewChecker() *Checker {
	return &Checker{
		gofeedParser: gofeed.NewParser(),
	}
}

// Validate confirms the file parses as a feed with the required channel
// fields and at least one item. It returns the item count.
func (c *Checker) Validate(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open feed file: %w", err)
	}
	defer f.Close()

	parsed, err := c.gofeedParser.Parse(f)
	if err != nil {
		return 0, fmt.Errorf("failed to parse feed: %w", err)
	}

	if parsed.Title == "" {
		return 0, fmt.Errorf("missing required channel element 'title'")
	}
	if parsed.Link == "" {
		return 0, fmt.Errorf("missing required channel element 'link'")
	}
	if parsed.Description == "" {
		return 0, fmt.Errorf("missing required channel element 'description'")
	}

	if len(parsed.Items) == 0 {
		return 0, fmt.Errorf("no items found in feed")
	}

	return len(parsed.Items), nil
}

// CheckFreshness confirms the feed file was modified within maxAge. It
// returns the file's age.
func (c *Checker) CheckFreshness(path string, maxAge time.Duration) (time.Duration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat feed file: %w", err)
	}

	age := time.Since(info.ModTime())
	if age > maxAge {
		return age, fmt.Errorf("feed is %.1f hours old (max: %.1f)", age.Hours(), maxAge.Hours())
	}

	return age, nil
}
