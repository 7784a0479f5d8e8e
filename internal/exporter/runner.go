// Package exporter runs export jobs against the current ledger.
package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/export"
	"github.com/dvloznov/kitab-khata/internal/gcs"
	infraBQ "github.com/dvloznov/kitab-khata/internal/infra/bigquery"
	"github.com/dvloznov/kitab-khata/internal/jobs"
	"github.com/dvloznov/kitab-khata/internal/logger"
	"github.com/dvloznov/kitab-khata/internal/notionsync"
)

// ErrTargetUnavailable is returned for targets that are not configured.
var ErrTargetUnavailable = errors.New("export target not configured")

// Ledger is the read side of the ledger used by exports.
type Ledger interface {
	Records() []domain.Transaction
	Stats() domain.LedgerStats
}

// Runner dispatches export jobs by target. Nil collaborators disable
// their target.
type Runner struct {
	ledger Ledger

	Warehouse infraBQ.LedgerWarehouse

	Notion     notionsync.NotionService
	NotionDBID string

	Storage      gcs.StorageService
	BackupBucket string
	BackupPrefix string

	now func() time.Time
}

// NewRunner creates a runner with no targets enabled.
func NewRunner(ledger Ledger) *Runner {
	return &Runner{ledger: ledger, BackupPrefix: "backups/", now: time.Now}
}

// Supports reports whether target is configured.
func (r *Runner) Supports(target jobs.ExportTarget) bool {
	switch target {
	case jobs.TargetBigQuery:
		return r.Warehouse != nil
	case jobs.TargetNotion:
		return r.Notion != nil && r.NotionDBID != ""
	case jobs.TargetGCSBackup:
		return r.Storage != nil && r.BackupBucket != ""
	}
	return false
}

// Handle implements jobs.JobHandler.
func (r *Runner) Handle(ctx context.Context, job jobs.Job) error {
	exportJob, ok := job.(*jobs.ExportJob)
	if !ok {
		return fmt.Errorf("unexpected job type: %T", job)
	}

	result, err := r.Run(ctx, exportJob.Target, exportJob.DryRun)
	if err != nil {
		return err
	}
	exportJob.Result = result
	return nil
}

// Run exports the current ledger to target and returns a short description
// of the outcome.
func (r *Runner) Run(ctx context.Context, target jobs.ExportTarget, dryRun bool) (string, error) {
	if !r.Supports(target) {
		return "", fmt.Errorf("Run %s: %w", target, ErrTargetUnavailable)
	}

	records := r.ledger.Records()
	log := logger.FromContext(ctx)
	log.Info().
		Str("target", string(target)).
		Int("transaction_count", len(records)).
		Msg("Exporting ledger")

	switch target {
	case jobs.TargetBigQuery:
		snapshotID, err := r.Warehouse.ExportSnapshot(ctx, records, r.ledger.Stats())
		if err != nil {
			return "", fmt.Errorf("Run bigquery: %w", err)
		}
		return "snapshot " + snapshotID, nil

	case jobs.TargetNotion:
		res, err := notionsync.SyncLedger(ctx, r.Notion, r.NotionDBID, records, dryRun)
		if err != nil {
			return "", fmt.Errorf("Run notion: %w", err)
		}
		if res.Failed > 0 {
			return "", fmt.Errorf("Run notion: %d page operations failed", res.Failed)
		}
		return fmt.Sprintf("created %d, updated %d, archived %d", res.Created, res.Updated, res.Archived), nil

	case jobs.TargetGCSBackup:
		uri, err := r.backup(ctx, records)
		if err != nil {
			return "", fmt.Errorf("Run gcs_backup: %w", err)
		}
		return uri, nil
	}
	return "", fmt.Errorf("Run %s: %w", target, ErrTargetUnavailable)
}

// backup uploads a CSV backup named after today's date.
func (r *Runner) backup(ctx context.Context, records []domain.Transaction) (string, error) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		return "", err
	}
	object := r.BackupPrefix + export.BackupFilename(r.now())
	if err := r.Storage.UploadBytes(ctx, r.BackupBucket, object, buf.Bytes(), "text/csv"); err != nil {
		return "", err
	}
	return gcs.URI(r.BackupBucket, object), nil
}
