package main

// Standalone janitor: prunes expired analyses on a cron schedule without
// serving HTTP. Useful when the API runs with the in-process janitor disabled
// (CACHE_JANITOR_SPEC="") and pruning is owned by one process:
//   go run ./cmd/worker

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"sentiment-scoop/internal/bootstrap"
	"sentiment-scoop/internal/shared/config"
	"sentiment-scoop/internal/shared/telemetry"
)

const pruneTimeout = time.Minute

func main() {
	cfg := config.Load()
	if cfg.JanitorSpec == "" {
		log.Fatal("CACHE_JANITOR_SPEC is required for the worker")
	}
	// The API owns the schedule when both run; the worker builds its own.
	spec := cfg.JanitorSpec
	cfg.JanitorSpec = ""

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { prune(app) }); err != nil {
		log.Fatalf("schedule janitor: %v", err)
	}
	c.Start()
	log.Printf("worker started spec=%q max_age=%dh", spec, cfg.CacheMaxAgeHours)

	// One pass at startup so a long cron interval does not delay the first
	// cleanup after downtime.
	prune(app)

	<-ctx.Done()
	log.Printf("shutdown requested, waiting for in-flight prune")
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(pruneTimeout):
		log.Printf("shutdown timeout reached; exiting with prune in flight")
	}
}

func prune(app *bootstrap.App) {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()
	deleted, err := app.SentimentService.PruneExpired(ctx)
	if err != nil {
		telemetry.Error("worker.prune_failed", map[string]any{"error": err.Error()})
		return
	}
	telemetry.Info("worker.pruned", map[string]any{"deleted": deleted})
}
