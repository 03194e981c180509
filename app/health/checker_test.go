package health

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>AUST Notice Board Updates</title>
<link>https://aust.edu/notice</link>
<description>Latest notices</description>
<item>
<title>Exam schedule published</title>
<link>https://aust.edu/notice/exam-schedule</link>
<guid isPermaLink="true">https://aust.edu/notice/exam-schedule</guid>
<pubDate>Fri, 05 Apr 2024 10:00:00 +0000</pubDate>
<description>Spring semester exam schedule is available</description>
</item>
<item>
<title>Holiday notice</title>
<link>https://aust.edu/notice</link>
<guid isPermaLink="false">abc123</guid>
<description>Holiday notice</description>
</item>
</channel>
</rss>`

func writeFeed(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate(t *testing.T) {
	checker := NewChecker()

	count, err := checker.Validate(writeFeed(t, validFeed))
	if err != nil {
		t.Fatalf("Expected valid feed, got: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 items, got: %d", count)
	}
}

func TestValidateMissingFile(t *testing.T) {
	checker := NewChecker()

	if _, err := checker.Validate(filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Error("Expected error for missing feed file")
	}
}

func TestValidateMalformedXML(t *testing.T) {
	checker := NewChecker()

	if _, err := checker.Validate(writeFeed(t, "<rss><channel>")); err == nil {
		t.Error("Expected error for malformed XML")
	}
}

func TestValidateEmptyChannel(t *testing.T) {
	checker := NewChecker()

	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>AUST Notice Board Updates</title>
<link>https://aust.edu/notice</link>
<description>Latest notices</description>
</channel>
</rss>`

	if _, err := checker.Validate(writeFeed(t, feed)); err == nil {
		t.Error("Expected error for feed with no items")
	}
}

func TestValidateMissingChannelElements(t *testing.T) {
	checker := NewChecker()

	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>AUST Notice Board Updates</title>
<item><title>Notice</title></item>
</channel>
</rss>`

	if _, err := checker.Validate(writeFeed(t, feed)); err == nil {
		t.Error("Expected error for missing link and description")
	}
}

func TestCheckFreshness(t *testing.T) {
	checker := NewChecker()
	path := writeFeed(t, validFeed)

	age, err := checker.CheckFreshness(path, time.Hour)
	if err != nil {
		t.Fatalf("Expected fresh feed, got: %v", err)
	}
	if age > time.Minute {
		t.Errorf("Expected near-zero age, got: %s", age)
	}
}

func TestCheckFreshnessStale(t *testing.T) {
	checker := NewChecker()
	path := writeFeed(t, validFeed)

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	if _, err := checker.CheckFreshness(path, 24*time.Hour); err == nil {
		t.Error("Expected error for stale feed")
	}
}

func TestCheckFreshnessMissingFile(t *testing.T) {
	checker := NewChecker()

	if _, err := checker.CheckFreshness(filepath.Join(t.TempDir(), "nope.xml"), time.Hour); err == nil {
		t.Error("Expected error for missing feed file")
	}
}
