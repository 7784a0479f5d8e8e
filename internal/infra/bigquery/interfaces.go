// Package bigquery exports ledger snapshots to a BigQuery dataset and
// reads aggregates back.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

// LedgerWarehouse provides an interface for warehouse operations.
type LedgerWarehouse interface {
	// ExportSnapshot writes every record as one snapshot and returns its id.
	ExportSnapshot(ctx context.Context, records []domain.Transaction, stats domain.LedgerStats) (string, error)

	// CustomerDues returns customers with money due in the latest snapshot.
	CustomerDues(ctx context.Context) ([]*CustomerDueRow, error)
}

// BigQueryLedgerWarehouse is the concrete implementation of LedgerWarehouse.
// It holds a shared BigQuery client.
type BigQueryLedgerWarehouse struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	now       func() time.Time
}

// NewBigQueryLedgerWarehouse creates a client for projectID and makes sure
// the dataset and tables exist.
func NewBigQueryLedgerWarehouse(ctx context.Context, projectID, datasetID string) (*BigQueryLedgerWarehouse, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryLedgerWarehouse: creating client: %w", err)
	}
	if err := EnsureTablesWithClient(ctx, client, projectID, datasetID); err != nil {
		client.Close()
		return nil, fmt.Errorf("NewBigQueryLedgerWarehouse: %w", err)
	}
	return &BigQueryLedgerWarehouse{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		now:       time.Now,
	}, nil
}

// Close closes the BigQuery client connection.
func (w *BigQueryLedgerWarehouse) Close() error {
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}

// ExportSnapshot implements LedgerWarehouse.
func (w *BigQueryLedgerWarehouse) ExportSnapshot(ctx context.Context, records []domain.Transaction, stats domain.LedgerStats) (string, error) {
	snapshotID := uuid.NewString()
	exportedAt := w.now().UTC()

	rows, err := ToLedgerRows(snapshotID, records, exportedAt)
	if err != nil {
		return "", fmt.Errorf("ExportSnapshot: %w", err)
	}
	if err := InsertLedgerRowsWithClient(ctx, w.client, w.projectID, w.datasetID, rows); err != nil {
		return "", fmt.Errorf("ExportSnapshot: %w", err)
	}
	// The snapshot row goes last so readers never see a partial snapshot as latest.
	if err := InsertSnapshotWithClient(ctx, w.client, w.projectID, w.datasetID, ToSnapshotRow(snapshotID, stats, exportedAt, "kitab-khata")); err != nil {
		return "", fmt.Errorf("ExportSnapshot: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("snapshot_id", snapshotID).
		Int("row_count", len(rows)).
		Msg("Ledger exported to BigQuery")
	return snapshotID, nil
}

// CustomerDues implements LedgerWarehouse.
func (w *BigQueryLedgerWarehouse) CustomerDues(ctx context.Context) ([]*CustomerDueRow, error) {
	return QueryCustomerDuesWithClient(ctx, w.client, w.projectID, w.datasetID)
}

var _ LedgerWarehouse = (*BigQueryLedgerWarehouse)(nil)
