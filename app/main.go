package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Owais5514/aust-rss/app/api"
	"github.com/Owais5514/aust-rss/app/cfg"
	"github.com/Owais5514/aust-rss/app/database"
	"github.com/Owais5514/aust-rss/app/health"
	"github.com/Owais5514/aust-rss/app/sources"
	"github.com/Owais5514/aust-rss/app/tasks"
)

func main() {
	godotenv.Load()

	appCfg, command, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	loader := sources.NewLoader(appCfg.SourcesDir)
	srcs, err := loader.LoadAll()
	if err != nil {
		slog.Error("Failed to load source definitions", "error", err)
		os.Exit(1)
	}
	slog.Debug("Loaded source definitions", "count", len(srcs))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "run":
		runOnce(ctx, srcs)
	case "validate":
		validateFeeds(srcs)
	case "healthcheck":
		healthCheck(srcs)
	case "serve":
		serve(ctx, srcs)
	default:
		slog.Error("Unknown command", "command", command)
		os.Exit(2)
	}
}

// runOnce processes every source a single time and exits non-zero when a
// source fails, so an external scheduler can flag the run.
func runOnce(ctx context.Context, srcs []*sources.Source) {
	start := time.Now()
	slog.Info("Starting scrape run", "sources", len(srcs), "version", cfg.Get().Version)

	runner := tasks.NewRunner(cfg.Get(), srcs, openRunRepository())

	if err := runner.Run(ctx); err != nil {
		slog.Error("Scrape run failed", "duration", time.Since(start), "error", err)
		os.Exit(1)
	}

	slog.Info("Scrape run finished", "duration", time.Since(start))
}

func validateFeeds(srcs []*sources.Source) {
	checker := health.NewChecker()
	valid := true

	for _, src := range srcs {
		path := filepath.Join(cfg.Get().DataDir, src.FeedFile)

		itemCount, err := checker.Validate(path)
		if err != nil {
			slog.Error("Feed is invalid", "source", src.Name, "path", path, "error", err)
			valid = false
			continue
		}

		slog.Info("Feed is valid", "source", src.Name, "path", path, "items", itemCount)
	}

	if !valid {
		os.Exit(1)
	}
}

func healthCheck(srcs []*sources.Source) {
	checker := health.NewChecker()
	runRepo := openRunRepository()
	healthy := true

	for _, src := range srcs {
		path := filepath.Join(cfg.Get().DataDir, src.FeedFile)

		itemCount, err := checker.Validate(path)
		if err != nil {
			slog.Error("Feed failed validation", "source", src.Name, "path", path, "error", err)
			healthy = false
			continue
		}

		maxAge := time.Duration(src.Settings.MaxAgeHours) * time.Hour
		age, err := checker.CheckFreshness(path, maxAge)
		if err != nil {
			slog.Error("Feed is stale", "source", src.Name, "path", path, "error", err)
			healthy = false
			continue
		}

		slog.Info("Feed is healthy", "source", src.Name, "items", itemCount,
			"age_hours", age.Hours())

		if runRepo != nil {
			if last, err := runRepo.GetLastRun(src.Name); err == nil && last != nil {
				slog.Info("Last run", "source", src.Name, "status", last.Status,
					"finished_at", last.FinishedAt, "fresh", last.Fresh)
			}
		}
	}

	if !healthy {
		os.Exit(1)
	}
}

func serve(ctx context.Context, srcs []*sources.Source) {
	appCfg := cfg.Get()

	handler := api.NewHandler(appCfg, srcs, openRunRepository())
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

// openRunRepository opens the run history store. The store is an
// operational nicety; when it cannot be opened the pipeline still runs,
// just without recorded history.
func openRunRepository() database.RunRepository {
	appCfg := cfg.Get()
	if appCfg.DBPath == "" {
		return nil
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Warn("Could not open run history database, continuing without it",
			"path", appCfg.DBPath, "error", err)
		return nil
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Warn("Could not migrate run history database, continuing without it",
			"path", appCfg.DBPath, "error", err)
		db.Close()
		return nil
	}
	slog.Debug("Run history database ready", "migration_version", version, "dirty", dirty)

	return database.NewRunRepository(db)
}
