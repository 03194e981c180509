package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Owais5514/aust-rss/app/cfg"
	"github.com/Owais5514/aust-rss/app/database"
	"github.com/Owais5514/aust-rss/app/health"
	"github.com/Owais5514/aust-rss/app/sources"
)

type Handler struct {
	appCfg  *cfg.Cfg
	sources []*sources.Source
	runRepo database.RunRepository
	checker *health.Checker
}

func NewHandler(appCfg *cfg.Cfg, srcs []*sources.Source, runRepo database.RunRepository) *Handler {
	return &Handler{
		appCfg:  appCfg,
		sources: srcs,
		runRepo: runRepo,
		checker: health.NewChecker(),
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	src := h.findSource(name)
	if src == nil {
		c.Status(http.StatusNotFound)
		return
	}

	path := filepath.Join(h.appCfg.DataDir, src.FeedFile)
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Could not read feed file", "source", src.Name, "path", path, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", data)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	appCfg := h.appCfg
	healthy := true
	feeds := make([]gin.H, 0, len(h.sources))

	for _, src := range h.sources {
		path := filepath.Join(appCfg.DataDir, src.FeedFile)
		status := gin.H{"source": src.Name, "feed_file": src.FeedFile}

		itemCount, err := h.checker.Validate(path)
		if err != nil {
			healthy = false
			status["healthy"] = false
			status["error"] = err.Error()
			feeds = append(feeds, status)
			continue
		}

		maxAge := time.Duration(src.Settings.MaxAgeHours) * time.Hour
		age, err := h.checker.CheckFreshness(path, maxAge)
		if err != nil {
			healthy = false
			status["healthy"] = false
			status["error"] = err.Error()
			feeds = append(feeds, status)
			continue
		}

		status["healthy"] = true
		status["items"] = itemCount
		status["age_hours"] = age.Hours()
		feeds = append(feeds, status)
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"healthy": healthy,
		"feeds":   feeds,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	if h.runRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history not available"})
		return
	}

	stats := make([]gin.H, 0, len(h.sources))
	for _, src := range h.sources {
		entry := gin.H{"source": src.Name}

		count, err := h.runRepo.GetRunCount(src.Name)
		if err != nil {
			slog.Error("Database error", "operation", "run_count", "source", src.Name, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		entry["runs"] = count

		last, err := h.runRepo.GetLastRun(src.Name)
		if err != nil {
			slog.Error("Database error", "operation", "last_run", "source", src.Name, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		if last != nil {
			entry["last_run"] = gin.H{
				"started_at":  last.StartedAt,
				"finished_at": last.FinishedAt,
				"status":      last.Status,
				"fetched":     last.Fetched,
				"fresh":       last.Fresh,
				"total":       last.Total,
			}
		}

		stats = append(stats, entry)
	}

	c.JSON(http.StatusOK, gin.H{"sources": stats})
}

func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "AUST-rss",
		"version":     h.appCfg.Version,
		"description": "University notice board and scholarship listing RSS feeds",
		"endpoints": map[string]string{
			"feed":   "/feeds/<name>",
			"health": "/health",
			"stats":  "/stats",
		},
	})
}

func (h *Handler) findSource(name string) *sources.Source {
	for _, src := range h.sources {
		if src.Name == name || src.FeedFile == name {
			return src
		}
	}
	return nil
}
