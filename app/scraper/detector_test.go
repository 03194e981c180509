package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testClient() *Client {
	return NewClient("test-agent", 5*time.Second, 1, time.Millisecond)
}

func TestDetectorFirstRunProcesses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page content"))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	detector := NewDetector(testClient(), server.URL, cachePath)

	if !detector.Run(context.Background()) {
		t.Error("Expected first run to process")
	}

	if _, err := os.Stat(cachePath); err != nil {
		t.Errorf("Expected cache file to be written: %v", err)
	}
}

func TestDetectorUnchangedContentSkips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page content"))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	detector := NewDetector(testClient(), server.URL, cachePath)

	detector.Run(context.Background())

	if detector.Run(context.Background()) {
		t.Error("Expected second run over unchanged content to skip")
	}
}

func TestDetectorChangedContentProcesses(t *testing.T) {
	content := "first version"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	detector := NewDetector(testClient(), server.URL, cachePath)

	detector.Run(context.Background())
	content = "second version"

	if !detector.Run(context.Background()) {
		t.Error("Expected changed content to process")
	}
}

func TestDetectorNotModifiedSkips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-Modified-Since") != "" {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
		w.Write([]byte("page content"))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	detector := NewDetector(testClient(), server.URL, cachePath)

	// First run stores the Last-Modified validator, second run sends it.
	detector.Run(context.Background())

	if detector.Run(context.Background()) {
		t.Error("Expected 304 response to skip processing")
	}
}

func TestDetectorWeeklyForcedRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page content"))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	detector := NewDetector(testClient(), server.URL, cachePath)

	detector.Run(context.Background())

	// Move the clock 8 days forward: content is unchanged but the run is forced.
	detector.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	if !detector.Run(context.Background()) {
		t.Error("Expected forced refresh after 7 days")
	}
}

func TestDetectorFailsOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	detector := NewDetector(testClient(), server.URL, cachePath)

	if !detector.Run(context.Background()) {
		t.Error("Expected fetch failure to resolve to processing")
	}
}

func TestDetectorCorruptCacheFailsOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page content"))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(cachePath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	detector := NewDetector(testClient(), server.URL, cachePath)

	if !detector.Run(context.Background()) {
		t.Error("Expected corrupt cache to resolve to processing")
	}
}
