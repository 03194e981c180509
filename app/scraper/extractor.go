package scraper

import (
	"bytes"
	"cmp"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/Owais5514/aust-rss/app/feed"
	"github.com/Owais5514/aust-rss/app/sources"
)

// Extractor maps the repeated notice blocks of a fetched page into feed
// items, deriving a GUID and a best-effort publication date for each.
type Extractor struct {
	source *sources.Source
	now    func() time.Time
}

func NewExtractor(source *sources.Source) *Extractor {
	return &Extractor{
		source: source,
		now:    time.Now,
	}
}

func (e *Extractor) Run(data []byte) ([]feed.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	switch e.source.Layout {
	case sources.LayoutTable:
		return e.extractTable(doc), nil
	default:
		return e.extractCards(doc), nil
	}
}

// extractCards handles notice-board pages where each notice is a repeated
// container block with title, summary and split date fields.
func (e *Extractor) extractCards(doc *goquery.Document) []feed.Item {
	sel := e.source.Selectors

	blocks := doc.Find(sel.Container)
	if blocks.Length() == 0 {
		slog.Warn("No notice elements found", "source", e.source.Name, "selector", sel.Container)
		return nil
	}

	slog.Debug("Found potential notice elements", "source", e.source.Name, "count", blocks.Length())

	var items []feed.Item
	blocks.Each(func(_ int, block *goquery.Selection) {
		title := cleanText(block.Find(sel.Title).First().Text())
		if title == "" {
			slog.Warn("Skipping element without a title", "source", e.source.Name, "selector", sel.Title)
			return
		}

		summary := ""
		if sel.Summary != "" {
			summary = cleanText(block.Find(sel.Summary).First().Text())
		}
		description := cmp.Or(summary, title)

		link := e.firstLink(block)
		guid := link
		if guid == e.source.URL {
			guid = hashGUID(title + "-" + summary)
		}

		items = append(items, feed.Item{
			GUID:        guid,
			Title:       title,
			Link:        link,
			Description: description,
			PublishedAt: e.cardDate(block, title),
		})
	})

	slog.Info("Finished parsing notice page", "source", e.source.Name, "extracted", len(items))
	return items
}

// extractTable handles listing pages built as a single table with rows of
// [serial, title, date, link] columns.
func (e *Extractor) extractTable(doc *goquery.Document) []feed.Item {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		slog.Warn("No table found on the page", "source", e.source.Name)
		return nil
	}

	var items []feed.Item
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}

		cols := row.Find("td")
		if cols.Length() < 4 {
			return
		}

		title := cleanText(cols.Eq(1).Text())
		if title == "" {
			slog.Warn("Skipping table row without a title", "source", e.source.Name, "row", i)
			return
		}

		dateStr := cleanText(cols.Eq(2).Text())

		link := e.source.URL
		if href, ok := cols.Eq(3).Find("a[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			link = e.resolveLink(strings.TrimSpace(href))
		}

		items = append(items, feed.Item{
			GUID:        hashGUID(title + link),
			Title:       title,
			Link:        link,
			Description: title,
			PublishedAt: e.tableDate(dateStr, title),
		})
	})

	slog.Info("Finished parsing listing table", "source", e.source.Name, "extracted", len(items))
	return items
}

// firstLink returns the absolute URL of the first link in the block,
// falling back to the source page URL.
func (e *Extractor) firstLink(block *goquery.Selection) string {
	href, ok := block.Find("a[href]").First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return e.source.URL
	}
	return e.resolveLink(href)
}

func (e *Extractor) resolveLink(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	base, err := url.Parse(e.source.URL)
	if err != nil {
		return e.source.URL
	}
	ref, err := url.Parse(href)
	if err != nil {
		return e.source.URL
	}

	return base.ResolveReference(ref).String()
}

// cardDate composes the split day/month/year fields into a single date and
// interprets it in the source's local zone. Missing fields or a parse
// failure fall back to the current time, in UTC either way.
func (e *Extractor) cardDate(block *goquery.Selection, title string) time.Time {
	sel := e.source.Selectors
	if sel.Day == "" || sel.Month == "" || sel.Year == "" {
		return e.now().UTC()
	}

	day := cleanText(block.Find(sel.Day).First().Text())
	month := cleanText(block.Find(sel.Month).First().Text())
	year := cleanText(block.Find(sel.Year).First().Text())

	if day == "" || month == "" || year == "" {
		slog.Warn("Could not find date components", "source", e.source.Name, "title", title)
		return e.now().UTC()
	}

	dateStr := fmt.Sprintf("%s %s %s", month, day, year)

	local, err := time.ParseInLocation(e.source.DateFormat, dateStr, e.source.Location())
	if err != nil {
		slog.Warn("Could not parse assembled date string",
			"source", e.source.Name, "date", dateStr, "format", e.source.DateFormat, "error", err)
		return e.now().UTC()
	}

	return local.UTC()
}

// tableDate parses a listing date in either YYYY-MM-DD or DD-MM-YYYY form.
// The time of day is taken from the scrape wall clock so same-day notices
// keep their discovery order when sorted.
func (e *Extractor) tableDate(dateStr, title string) time.Time {
	layout := ""
	if strings.Contains(dateStr, "-") {
		if len(dateStr) > 2 && dateStr[2] == '-' {
			layout = "02-01-2006"
		} else {
			layout = "2006-01-02"
		}
	}

	nowLocal := e.now().In(e.source.Location())
	if layout == "" {
		return nowLocal.UTC()
	}

	day, err := time.ParseInLocation(layout, dateStr, e.source.Location())
	if err != nil {
		slog.Warn("Could not parse listing date", "source", e.source.Name, "date", dateStr, "title", title)
		return nowLocal.UTC()
	}

	local := time.Date(day.Year(), day.Month(), day.Day(),
		nowLocal.Hour(), nowLocal.Minute(), nowLocal.Second(), 0, e.source.Location())
	return local.UTC()
}

// cleanText collapses whitespace and normalizes the text to NFC so that
// byte-identical pages hash identically across runs.
func cleanText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func hashGUID(content string) string {
	hash := sha1.Sum([]byte(content))
	return hex.EncodeToString(hash[:])
}
