package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/kitab-khata/internal/logger"
)

const (
	ledgerRowsTable = "ledger_rows"
	snapshotsTable  = "export_snapshots"

	// insertBatchSize keeps streaming insert requests under the API size limit.
	insertBatchSize = 500
)

// EnsureTablesWithClient creates the dataset and tables if they do not exist.
func EnsureTablesWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string) error {
	ds := client.DatasetInProject(projectID, datasetID)
	if err := ds.Create(ctx, &bigquery.DatasetMetadata{Location: "US"}); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("EnsureTables: creating dataset %s: %w", datasetID, err)
	}

	tables := []struct {
		name string
		row  any
	}{
		{ledgerRowsTable, LedgerRow{}},
		{snapshotsTable, SnapshotRow{}},
	}
	for _, tbl := range tables {
		schema, err := bigquery.InferSchema(tbl.row)
		if err != nil {
			return fmt.Errorf("EnsureTables: inferring schema for %s: %w", tbl.name, err)
		}
		meta := &bigquery.TableMetadata{Schema: schema}
		if err := ds.Table(tbl.name).Create(ctx, meta); err != nil && !isAlreadyExists(err) {
			return fmt.Errorf("EnsureTables: creating table %s: %w", tbl.name, err)
		}
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

// InsertLedgerRowsWithClient streams rows into ledger_rows in batches.
func InsertLedgerRowsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, rows []*LedgerRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.DatasetInProject(projectID, datasetID).Table(ledgerRowsTable).Inserter()
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		if err := inserter.Put(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("InsertLedgerRows: inserting rows %d-%d: %w", start, end, err)
		}
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Int("row_count", len(rows)).
		Str("dataset", datasetID).
		Msg("Inserted ledger rows")
	return nil
}

// InsertSnapshotWithClient records a finished export.
func InsertSnapshotWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, row *SnapshotRow) error {
	inserter := client.DatasetInProject(projectID, datasetID).Table(snapshotsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertSnapshot: inserting snapshot %s: %w", row.SnapshotID, err)
	}
	return nil
}

// QueryCustomerDuesWithClient aggregates the latest snapshot by customer,
// largest due first.
func QueryCustomerDuesWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string) ([]*CustomerDueRow, error) {
	q := client.Query(fmt.Sprintf(`
		WITH latest AS (
			SELECT snapshot_id
			FROM `+"`%[1]s.%[2]s.%[4]s`"+`
			ORDER BY exported_ts DESC
			LIMIT 1
		)
		SELECT
			r.customer_name,
			COUNT(*) AS bill_count,
			SUM(r.total_price) AS total,
			SUM(r.amount_paid) AS paid,
			SUM(r.balance) AS due
		FROM `+"`%[1]s.%[2]s.%[3]s`"+` r
		JOIN latest USING (snapshot_id)
		GROUP BY r.customer_name
		HAVING due > @min_due
		ORDER BY due DESC, r.customer_name
	`, projectID, datasetID, ledgerRowsTable, snapshotsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "min_due", Value: 0},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryCustomerDues: query read: %w", err)
	}

	var rows []*CustomerDueRow
	for {
		var r CustomerDueRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryCustomerDues: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
