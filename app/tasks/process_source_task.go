package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Owais5514/aust-rss/app/cfg"
	"github.com/Owais5514/aust-rss/app/database"
	"github.com/Owais5514/aust-rss/app/feed"
	"github.com/Owais5514/aust-rss/app/scraper"
	"github.com/Owais5514/aust-rss/app/sources"
)

// ProcessSourceTask runs one full scrape cycle for a source: change
// detection gate, page fetch, notice extraction, merge against the prior
// feed, and an atomic rewrite of the feed file.
type ProcessSourceTask struct {
	Task
	Source    *sources.Source
	appCfg    *cfg.Cfg
	client    *scraper.Client
	detector  *scraper.Detector
	extractor *scraper.Extractor
	enricher  *scraper.Enricher
	reader    *feed.Reader
	merger    *feed.Merger
	generator *feed.Generator
	runRepo   database.RunRepository
	feedPath  string
}

func NewProcessSourceTask(appCfg *cfg.Cfg, source *sources.Source, runRepo database.RunRepository) *ProcessSourceTask {
	client := scraper.NewClient(appCfg.UserAgent,
		time.Duration(source.Settings.Timeout)*time.Second,
		source.Settings.MaxRetries,
		time.Duration(source.Settings.RetryDelay)*time.Second)

	t := &ProcessSourceTask{
		Task:      NewTask(TaskTypeProcessSource, source.Name),
		Source:    source,
		appCfg:    appCfg,
		client:    client,
		extractor: scraper.NewExtractor(source),
		reader:    feed.NewReader(),
		merger:    feed.NewMerger(),
		generator: feed.NewGenerator(),
		runRepo:   runRepo,
		feedPath:  filepath.Join(appCfg.DataDir, source.FeedFile),
	}

	if source.Settings.ChangeDetection {
		cachePath := filepath.Join(appCfg.DataDir, source.Settings.CacheFile)
		t.detector = scraper.NewDetector(client, source.URL, cachePath)
	}

	if source.Settings.ExtractContent {
		t.enricher = scraper.NewEnricher(client)
	}

	return t
}

func (t *ProcessSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	startedAt := time.Now().UTC()

	if t.detector != nil && !t.detector.Run(ctx) {
		slog.Info("No page changes detected, skipping scrape", "source", t.SourceName)
		t.recordRun(database.Run{
			StartedAt: startedAt,
			Status:    database.RunStatusSkipped,
		})
		return nil
	}

	data, err := t.client.Fetch(ctx, t.Source.URL)
	if err != nil {
		// Exhausted retries degrade to an empty scrape rather than
		// aborting the whole run.
		slog.Error("Failed to fetch source page", "source", t.SourceName, "error", err)
		t.recordRun(database.Run{
			StartedAt: startedAt,
			Status:    database.RunStatusFailed,
			Error:     err.Error(),
		})
		return nil
	}

	notices, err := t.extractor.Run(data)
	if err != nil {
		slog.Error("Failed to extract notices", "source", t.SourceName, "error", err)
		t.recordRun(database.Run{
			StartedAt:   startedAt,
			Status:      database.RunStatusFailed,
			Fingerprint: scraper.Fingerprint(data),
			Error:       err.Error(),
		})
		return nil
	}

	existing, err := t.reader.Run(t.feedPath)
	if err != nil {
		// Missing or malformed prior feed: rebuild from scratch.
		slog.Warn("Could not load existing feed, starting fresh",
			"source", t.SourceName, "path", t.feedPath, "error", err)
		existing = nil
	}

	freshCount := t.countFresh(notices, existing)

	if freshCount == 0 {
		if len(notices) == 0 {
			slog.Info("No notices were fetched from the source page", "source", t.SourceName)
		} else {
			slog.Info("No new notices found, feed generation skipped",
				"source", t.SourceName, "fetched", len(notices))
		}
		t.recordRun(database.Run{
			StartedAt:   startedAt,
			Status:      database.RunStatusSkipped,
			Fingerprint: scraper.Fingerprint(data),
			Fetched:     len(notices),
		})
		return nil
	}

	if t.enricher != nil {
		notices = t.enricher.Run(ctx, notices)
	}

	merged := t.merger.Run(notices, existing, t.Source.Settings.MaxItems)

	rss := t.generator.Run(t.channel(), merged)
	if err := feed.WriteFile(t.feedPath, []byte(rss)); err != nil {
		t.recordRun(database.Run{
			StartedAt:   startedAt,
			Status:      database.RunStatusFailed,
			Fingerprint: scraper.Fingerprint(data),
			Fetched:     len(notices),
			Fresh:       freshCount,
			Error:       err.Error(),
		})
		return fmt.Errorf("failed to write feed file: %w", err)
	}

	t.recordRun(database.Run{
		StartedAt:   startedAt,
		Status:      database.RunStatusOK,
		Fingerprint: scraper.Fingerprint(data),
		Fetched:     len(notices),
		Fresh:       freshCount,
		Total:       len(merged),
	})

	slog.Info("Task completed",
		"type", "ProcessSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"fetched", len(notices),
		"fresh", freshCount,
		"total", len(merged))

	return nil
}

func (t *ProcessSourceTask) countFresh(notices, existing []feed.Item) int {
	existingGUIDs := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		existingGUIDs[item.GUID] = struct{}{}
	}

	fresh := 0
	for _, notice := range notices {
		if _, ok := existingGUIDs[notice.GUID]; !ok {
			fresh++
		}
	}
	return fresh
}

func (t *ProcessSourceTask) channel() feed.Channel {
	appCfg := t.appCfg

	channel := feed.Channel{
		Title:       t.Source.Title,
		Link:        t.Source.Link,
		Description: t.Source.Description,
		Language:    t.Source.Language,
		Copyright:   t.Source.Copyright,
		Generator:   fmt.Sprintf("AUST-rss/%s", appCfg.Version),
	}

	if appCfg.BaseUrl != "" {
		channel.SelfLink = fmt.Sprintf("%s/%s", appCfg.BaseUrl, t.Source.FeedFile)
	}

	return channel
}

func (t *ProcessSourceTask) recordRun(run database.Run) {
	if t.runRepo == nil {
		return
	}

	run.Source = t.SourceName
	run.FinishedAt = time.Now().UTC()

	if err := t.runRepo.RecordRun(run); err != nil {
		slog.Warn("Could not record run", "source", t.SourceName, "error", err)
	}
}
