package sources

import (
	"time"
)

// Layout identifies how notices are arranged on a source page.
const (
	LayoutCards = "cards"
	LayoutTable = "table"
)

type Source struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	FeedFile    string `yaml:"feed_file"`
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Copyright   string `yaml:"copyright"`

	Layout    string    `yaml:"layout"`
	Selectors Selectors `yaml:"selectors"`

	DateFormat string `yaml:"date_format"`
	UTCOffset  string `yaml:"utc_offset"`

	Settings Settings `yaml:"settings"`

	// Resolved from UTCOffset during validation.
	location *time.Location
}

type Selectors struct {
	Container string `yaml:"container"`
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Day       string `yaml:"day"`
	Month     string `yaml:"month"`
	Year      string `yaml:"year"`
}

type Settings struct {
	MaxItems        int    `yaml:"max_items"`
	Timeout         int    `yaml:"timeout"` // seconds
	MaxRetries      int    `yaml:"max_retries"`
	RetryDelay      int    `yaml:"retry_delay"` // seconds, grows linearly per attempt
	ChangeDetection bool   `yaml:"change_detection"`
	CacheFile       string `yaml:"cache_file"`
	ExtractContent  bool   `yaml:"extract_content"`
	MaxAgeHours     int    `yaml:"max_age_hours"` // freshness window for health checks
}

// Location returns the fixed zone page-provided dates are interpreted in.
func (s *Source) Location() *time.Location {
	if s.location == nil {
		return time.UTC
	}
	return s.location
}

// ResolveLocation parses UTCOffset (e.g. "+06:00") into the fixed zone
// returned by Location.
func (s *Source) ResolveLocation() error {
	t, err := time.Parse("-07:00", s.UTCOffset)
	if err != nil {
		return err
	}
	_, secs := t.Zone()
	s.location = time.FixedZone("UTC"+s.UTCOffset, secs)
	return nil
}
