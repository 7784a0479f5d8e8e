package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/kitab-khata/internal/api"
	"github.com/dvloznov/kitab-khata/internal/api/handlers"
	"github.com/dvloznov/kitab-khata/internal/app"
	"github.com/dvloznov/kitab-khata/internal/config"
	"github.com/dvloznov/kitab-khata/internal/jobs/inmemory"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

func main() {
	// Parse command-line flags
	var (
		envFile = flag.String("env", "", "Path to .env file (default: ./.env if present)")
		port    = flag.String("port", "", "HTTP server port (overrides KHATA_PORT)")
		jsonLog = flag.Bool("json-log", false, "Write logs as JSON lines")
		workers = flag.Int("workers", inmemory.DefaultWorkers, "Number of export job workers")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize logger
	log := logger.NewWithOptions(logger.Options{Debug: cfg.Debug, JSON: *jsonLog})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	application, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Msg("Starting export workers")
	if err := jobQueue.Start(workerCtx, application.Runner.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start export workers")
	}

	// Initialize handlers
	var insightsHandler *handlers.InsightsHandler
	if application.Tracker != nil {
		insightsHandler = handlers.NewInsightsHandler(application.Ledger, application.Tracker, log)
	} else {
		log.Warn().Msg("No Gemini credentials configured - AI insights will be disabled")
		insightsHandler = handlers.NewInsightsHandler(application.Ledger, nil, log)
	}

	handler := api.NewRouter(api.Handlers{
		Transactions: handlers.NewTransactionsHandler(application.Ledger, application.Flusher, log),
		Customers:    handlers.NewCustomersHandler(application.Ledger, cfg.Shop, log),
		Insights:     insightsHandler,
		Session:      handlers.NewSessionHandler(application.Sessions, log),
		Jobs:         handlers.NewJobsHandler(jobStore, jobQueue, application.Runner, log),
		CurrentUser:  application.Sessions.Current,
	}, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage.Backend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight exports
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	// Final flush of the ledger
	if err := application.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close ledger cleanly")
	}

	log.Info().Msg("Server exited")
}
