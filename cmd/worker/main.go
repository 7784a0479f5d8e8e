package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/app"
	"github.com/dvloznov/kitab-khata/internal/config"
	"github.com/dvloznov/kitab-khata/internal/jobs"
	"github.com/dvloznov/kitab-khata/internal/jobs/inmemory"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

func main() {
	var (
		envFile  = flag.String("env", "", "Path to .env file (default: ./.env if present)")
		interval = flag.Duration("interval", 24*time.Hour, "Time between scheduled exports")
		targets  = flag.String("targets", "gcs_backup", "Comma-separated export targets: bigquery, notion, gcs_backup")
		once     = flag.Bool("once", false, "Run every target once and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.NewWithOptions(logger.Options{Debug: cfg.Debug})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	application, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}

	scheduled, err := parseTargets(*targets)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid --targets")
	}
	for _, target := range scheduled {
		if !application.Runner.Supports(target) {
			log.Fatal().Str("target", string(target)).Msg("Export target is not configured")
		}
	}

	// Initialize job store and queue
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(len(scheduled)*2, 1, jobStore)

	log.Info().
		Dur("interval", *interval).
		Str("targets", *targets).
		Msg("Starting export worker")

	if err := jobQueue.Start(ctx, application.Runner.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	enqueueAll(ctx, log, jobQueue, scheduled)

	if !*once {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	loop:
		for {
			select {
			case <-ticker.C:
				enqueueAll(ctx, log, jobQueue, scheduled)
			case <-quit:
				break loop
			}
		}
		log.Info().Msg("Shutting down export worker...")
	} else {
		waitForJobs(ctx, jobStore, len(scheduled))
	}

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	cancel()

	if err := application.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close ledger cleanly")
	}

	log.Info().Msg("Export worker exited")
}

func parseTargets(s string) ([]jobs.ExportTarget, error) {
	var out []jobs.ExportTarget
	for _, part := range strings.Split(s, ",") {
		target := jobs.ExportTarget(strings.TrimSpace(part))
		if target == "" {
			continue
		}
		if !target.Valid() {
			return nil, fmt.Errorf("unknown export target %q", target)
		}
		out = append(out, target)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no export targets given")
	}
	return out, nil
}

func enqueueAll(ctx context.Context, log zerolog.Logger, publisher jobs.Publisher, targets []jobs.ExportTarget) {
	for _, target := range targets {
		job := &jobs.ExportJob{Target: target}
		if err := publisher.PublishExport(ctx, job); err != nil {
			log.Error().Err(err).Str("target", string(target)).Msg("Failed to enqueue export job")
			continue
		}
		log.Info().Str("job_id", job.JobID).Str("target", string(target)).Msg("Enqueued scheduled export")
	}
}

// waitForJobs polls until n jobs have finished, successfully or not.
func waitForJobs(ctx context.Context, store jobs.JobStore, n int) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		done := 0
		for _, status := range []jobs.JobStatus{jobs.JobStatusCompleted, jobs.JobStatusFailed} {
			list, err := store.ListJobs(ctx, jobs.JobFilter{Status: status})
			if err == nil {
				done += len(list)
			}
		}
		if done >= n {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
