package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")

	if err := WriteFile(path, []byte("old content")); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := WriteFile(path, []byte("new content")); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new content" {
		t.Errorf("Expected replaced content, got: %s", data)
	}
}

func TestWriteFileLeavesNoTemporaries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.xml")

	if err := WriteFile(path, []byte("content")); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the feed file in the directory, found %d entries", len(entries))
	}
}
