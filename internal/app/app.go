// Package app assembles the ledger and its optional integrations from
// configuration. Both the API server and the CLI start here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/config"
	"github.com/dvloznov/kitab-khata/internal/exporter"
	"github.com/dvloznov/kitab-khata/internal/gcsuploader"
	"github.com/dvloznov/kitab-khata/internal/identity"
	infraBQ "github.com/dvloznov/kitab-khata/internal/infra/bigquery"
	"github.com/dvloznov/kitab-khata/internal/insight"
	"github.com/dvloznov/kitab-khata/internal/ledger"
	"github.com/dvloznov/kitab-khata/internal/notionsync"
	"github.com/dvloznov/kitab-khata/internal/persist"
)

// App holds the wired components. Optional integrations are nil when not
// configured.
type App struct {
	Config   *config.Config
	Ledger   *ledger.Service
	Flusher  *persist.Flusher
	Sessions *identity.Sessions
	Runner   *exporter.Runner

	// Tracker is nil when no Gemini client could be created.
	Tracker *insight.Tracker

	closers []func() error
	log     zerolog.Logger
}

// Open builds the App and loads the ledger from the configured store.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory, config.BackendBolt, config.BackendGCS:
	default:
		return nil, fmt.Errorf("Open: unknown storage backend %q", cfg.Storage.Backend)
	}
	a := &App{Config: cfg, log: log}

	var storage *gcsuploader.GCSStorageService
	if cfg.Storage.GCSBucket != "" {
		s, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			if cfg.Storage.Backend == config.BackendGCS {
				return nil, fmt.Errorf("Open: %w", err)
			}
			log.Warn().Err(err).Msg("Cloud Storage unavailable - backups disabled")
		} else {
			storage = s
			a.closers = append(a.closers, s.Close)
		}
	}

	var (
		store    persist.Store
		profiles persist.ProfileStore
	)
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		mem := persist.NewMemoryStore()
		store, profiles = mem, mem
	case config.BackendBolt, config.BackendGCS:
		db, err := persist.OpenBolt(cfg.Storage.DBPath)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("Open: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		store, profiles = db, db
		if cfg.Storage.Backend == config.BackendGCS {
			if storage == nil {
				_ = a.Close(ctx)
				return nil, fmt.Errorf("Open: gcs backend needs GCS_BUCKET")
			}
			gcsStore := persist.NewGCSStore(storage, cfg.Storage.GCSBucket, cfg.Storage.GCSObject)
			log.Info().Str("uri", gcsStore.URI()).Msg("Using Cloud Storage ledger")
			store = gcsStore
		}
	default:
		_ = a.Close(ctx)
		return nil, fmt.Errorf("Open: unknown storage backend %q", cfg.Storage.Backend)
	}

	a.Flusher = persist.NewFlusher(store,
		persist.WithDelay(cfg.Storage.FlushDelay),
		persist.WithLogger(log),
	)
	a.Ledger = ledger.NewService(a.Flusher)
	if err := a.Ledger.Load(ctx, store); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.Sessions = identity.NewSessions(profiles)

	a.Runner = exporter.NewRunner(a.Ledger)
	if storage != nil {
		a.Runner.Storage = storage
		a.Runner.BackupBucket = cfg.Storage.GCSBucket
	}
	if cfg.BigQuery.Project != "" {
		wh, err := infraBQ.NewBigQueryLedgerWarehouse(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
		if err != nil {
			log.Warn().Err(err).Msg("BigQuery unavailable - warehouse export disabled")
		} else {
			a.Runner.Warehouse = wh
			a.closers = append(a.closers, wh.Close)
		}
	}
	if cfg.Notion.Token != "" && cfg.Notion.DatabaseID != "" {
		a.Runner.Notion = notionsync.NewNotionClient(cfg.Notion.Token)
		a.Runner.NotionDBID = cfg.Notion.DatabaseID
	}

	if cfg.Gemini.Enabled() {
		gen, err := insight.NewGeminiGenerator(ctx, insight.GeminiOptions{
			Model:    cfg.Gemini.Model,
			APIKey:   cfg.Gemini.APIKey,
			VertexAI: cfg.Gemini.VertexAI,
			Project:  cfg.Gemini.Project,
			Location: cfg.Gemini.Location,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Gemini unavailable - AI insights disabled")
		} else {
			a.Tracker = insight.NewTracker(gen, cfg.Gemini.Timeout)
		}
	}

	return a, nil
}

// Close flushes pending ledger changes and releases every client. The
// flush error, if any, is returned first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Flusher != nil {
		if err := a.Flusher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush ledger: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close client")
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
