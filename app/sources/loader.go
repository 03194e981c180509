package sources

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yml
var defaultsFS embed.FS

// Loader reads source definitions from a directory of YAML files, falling
// back to the embedded defaults when no directory is configured.
type Loader struct {
	sourcesDir string
}

func NewLoader(sourcesDir string) *Loader {
	return &Loader{sourcesDir: sourcesDir}
}

func (l *Loader) LoadAll() ([]*Source, error) {
	if l.sourcesDir == "" {
		return l.loadEmbedded()
	}

	if _, err := os.Stat(l.sourcesDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("sources directory does not exist: %s", l.sourcesDir)
	}

	files, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}

	yamlFiles, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)
	sort.Strings(files)

	var srcs []*Source
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		src, err := l.parse(data)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		srcs = append(srcs, src)
		slog.Debug("Loaded source definition", "file", file, "source", src.Name)
	}

	return srcs, nil
}

func (l *Loader) loadEmbedded() ([]*Source, error) {
	entries, err := fs.ReadDir(defaultsFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded defaults: %w", err)
	}

	var srcs []*Source
	for _, entry := range entries {
		data, err := defaultsFS.ReadFile("defaults/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded default %s: %w", entry.Name(), err)
		}

		src, err := l.parse(data)
		if err != nil {
			return nil, fmt.Errorf("error loading embedded default %s: %w", entry.Name(), err)
		}

		srcs = append(srcs, src)
		slog.Debug("Loaded embedded source definition", "source", src.Name)
	}

	return srcs, nil
}

func (l *Loader) parse(data []byte) (*Source, error) {
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&src)

	if err := l.validate(&src); err != nil {
		return nil, err
	}

	return &src, nil
}

func (l *Loader) setDefaults(src *Source) {
	if src.Link == "" {
		src.Link = src.URL
	}
	if src.Layout == "" {
		src.Layout = LayoutCards
	}
	if src.DateFormat == "" {
		src.DateFormat = "Jan 2 2006"
	}
	if src.UTCOffset == "" {
		src.UTCOffset = "+00:00"
	}
	if src.Settings.MaxItems == 0 {
		src.Settings.MaxItems = 50
	}
	if src.Settings.Timeout == 0 {
		src.Settings.Timeout = 30 // seconds
	}
	if src.Settings.MaxRetries == 0 {
		src.Settings.MaxRetries = 3
	}
	if src.Settings.RetryDelay == 0 {
		src.Settings.RetryDelay = 5 // seconds
	}
	if src.Settings.MaxAgeHours == 0 {
		src.Settings.MaxAgeHours = 24
	}
	if src.Settings.ChangeDetection && src.Settings.CacheFile == "" {
		src.Settings.CacheFile = src.Name + "_cache.json"
	}
}

func (l *Loader) validate(src *Source) error {
	if src.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if src.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	if src.FeedFile == "" {
		return fmt.Errorf("feed file is required")
	}
	if src.Title == "" {
		return fmt.Errorf("feed title is required")
	}

	switch src.Layout {
	case LayoutCards:
		if src.Selectors.Container == "" {
			return fmt.Errorf("container selector is required for cards layout")
		}
		if src.Selectors.Title == "" {
			return fmt.Errorf("title selector is required for cards layout")
		}
	case LayoutTable:
		// Table layout locates the first table structurally, no selectors needed.
	default:
		return fmt.Errorf("unknown layout: %s", src.Layout)
	}

	if src.Settings.MaxItems < 0 {
		return fmt.Errorf("max items must be non-negative")
	}
	if src.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	if err := src.ResolveLocation(); err != nil {
		return fmt.Errorf("invalid utc_offset %q: %w", src.UTCOffset, err)
	}

	return nil
}
