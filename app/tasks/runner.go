package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Owais5514/aust-rss/app/cfg"
	"github.com/Owais5514/aust-rss/app/database"
	"github.com/Owais5514/aust-rss/app/sources"
)

// Runner processes every configured source sequentially, run to
// completion. One failing source does not stop the others; the aggregate
// error reflects partial failure for the caller's exit status.
type Runner struct {
	appCfg  *cfg.Cfg
	sources []*sources.Source
	runRepo database.RunRepository
}

func NewRunner(appCfg *cfg.Cfg, srcs []*sources.Source, runRepo database.RunRepository) *Runner {
	return &Runner{
		appCfg:  appCfg,
		sources: srcs,
		runRepo: runRepo,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	failed := 0

	for _, src := range r.sources {
		task := NewProcessSourceTask(r.appCfg, src, r.runRepo)
		task.Start()

		slog.Info("Processing source", "source", src.Name, "url", src.URL)

		if err := task.Execute(ctx); err != nil {
			slog.Error("Task execution failed",
				"type", string(task.GetType()), "id", task.GetID(),
				"source", src.Name, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(r.sources))
	}

	return nil
}
