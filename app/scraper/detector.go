package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"time"
)

// forcedRefreshAge is how old the last check may get before a run is forced
// regardless of content changes.
const forcedRefreshAge = 7 * 24 * time.Hour

type detectorCache struct {
	ContentHash  string    `json:"content_hash"`
	LastCheck    time.Time `json:"last_check"`
	LastModified string    `json:"last_modified,omitempty"`
}

// Detector decides whether a source page needs to be processed by comparing
// a fingerprint of the current page content against the previous run's.
// Every failure mode resolves to "process": a redundant scrape is preferred
// over silently missing new notices.
type Detector struct {
	client    *Client
	url       string
	cachePath string
	now       func() time.Time
}

func NewDetector(client *Client, url, cachePath string) *Detector {
	return &Detector{
		client:    client,
		url:       url,
		cachePath: cachePath,
		now:       time.Now,
	}
}

// Run reports whether the source page should be processed.
func (d *Detector) Run(ctx context.Context) bool {
	cache := d.loadCache()

	if cache != nil && !cache.LastCheck.IsZero() {
		if d.now().UTC().Sub(cache.LastCheck) >= forcedRefreshAge {
			slog.Info("Performing weekly forced refresh regardless of content change", "url", d.url)
			return true
		}
	}

	var ifModifiedSince string
	if cache != nil {
		ifModifiedSince = cache.LastModified
	}

	data, lastModified, notModified, err := d.client.FetchConditional(ctx, d.url, ifModifiedSince)
	if err != nil {
		slog.Warn("Change detection fetch failed, proceeding with scrape", "url", d.url, "error", err)
		return true
	}

	if notModified {
		slog.Info("Content not modified since last check", "url", d.url)
		return false
	}

	fingerprint := Fingerprint(data)

	if cache != nil && cache.ContentHash == fingerprint {
		slog.Info("Content fingerprint matches previous check, no new notices", "url", d.url)
		return false
	}

	d.saveCache(detectorCache{
		ContentHash:  fingerprint,
		LastCheck:    d.now().UTC(),
		LastModified: lastModified,
	})

	slog.Info("New content detected, will process notices", "url", d.url)
	return true
}

// Fingerprint computes the content hash used to detect page changes.
func Fingerprint(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (d *Detector) loadCache() *detectorCache {
	data, err := os.ReadFile(d.cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Could not read change cache file", "path", d.cachePath, "error", err)
		}
		return nil
	}

	var cache detectorCache
	if err := json.Unmarshal(data, &cache); err != nil {
		slog.Warn("Could not parse change cache file", "path", d.cachePath, "error", err)
		return nil
	}

	return &cache
}

func (d *Detector) saveCache(cache detectorCache) {
	data, err := json.Marshal(cache)
	if err != nil {
		slog.Warn("Could not encode change cache", "path", d.cachePath, "error", err)
		return
	}

	if err := os.WriteFile(d.cachePath, data, 0644); err != nil {
		slog.Warn("Could not save change cache file", "path", d.cachePath, "error", err)
	}
}
