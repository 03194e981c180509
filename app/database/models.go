package database

import (
	"time"
)

// Run statuses.
const (
	RunStatusOK      = "ok"
	RunStatusSkipped = "skipped"
	RunStatusFailed  = "failed"
)

// Run records one scrape cycle for a source.
type Run struct {
	ID          int64
	Source      string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	Fingerprint string
	Fetched     int // notices extracted from the page
	Fresh       int // notices not present in the prior feed
	Total       int // items written to the feed file
	Error       string
}
