package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// LedgerRow is one bill in an exported ledger snapshot.
type LedgerRow struct {
	SnapshotID    string `bigquery:"snapshot_id"`    // REQUIRED
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	CustomerName    string     `bigquery:"customer_name"`    // REQUIRED
	BookTitle       string     `bigquery:"book_title"`       // REQUIRED

	TotalPrice *big.Rat `bigquery:"total_price"` // REQUIRED NUMERIC
	AmountPaid *big.Rat `bigquery:"amount_paid"` // REQUIRED NUMERIC
	Balance    *big.Rat `bigquery:"balance"`     // REQUIRED NUMERIC

	PaymentMethod string              `bigquery:"payment_method"` // REQUIRED
	ChequeNumber  bigquery.NullString `bigquery:"cheque_number"`  // NULLABLE
	Notes         bigquery.NullString `bigquery:"notes"`          // NULLABLE
	Status        string              `bigquery:"status"`         // REQUIRED

	StoreIndex int64     `bigquery:"store_index"` // position in the record store, 0 = newest
	ExportedTS time.Time `bigquery:"exported_ts"` // REQUIRED
}

// SnapshotRow records one export of the whole ledger.
type SnapshotRow struct {
	SnapshotID string    `bigquery:"snapshot_id"`
	ExportedTS time.Time `bigquery:"exported_ts"`
	RowCount   int64     `bigquery:"row_count"`

	TotalSales    *big.Rat `bigquery:"total_sales"`
	TotalReceived *big.Rat `bigquery:"total_received"`
	TotalPending  *big.Rat `bigquery:"total_pending"`

	Source string `bigquery:"source"`
}

// CustomerDueRow is a per-customer aggregate read back from the warehouse.
type CustomerDueRow struct {
	CustomerName string   `bigquery:"customer_name"`
	BillCount    int64    `bigquery:"bill_count"`
	Total        *big.Rat `bigquery:"total"`
	Paid         *big.Rat `bigquery:"paid"`
	Due          *big.Rat `bigquery:"due"`
}

// ToLedgerRows converts records into warehouse rows for one snapshot.
func ToLedgerRows(snapshotID string, records []domain.Transaction, exportedAt time.Time) ([]*LedgerRow, error) {
	rows := make([]*LedgerRow, 0, len(records))
	for i, t := range records {
		date, err := domain.ParseDate(t.Date)
		if err != nil {
			return nil, fmt.Errorf("ToLedgerRows: transaction %s: %w", t.ID, err)
		}

		row := &LedgerRow{
			SnapshotID:      snapshotID,
			TransactionID:   t.ID,
			TransactionDate: civil.DateOf(date),
			CustomerName:    t.CustomerName,
			BookTitle:       t.BookTitle,
			TotalPrice:      t.TotalPrice.Rat(),
			AmountPaid:      t.AmountPaid.Rat(),
			Balance:         t.Balance.Rat(),
			PaymentMethod:   string(t.PaymentMethod),
			Status:          string(t.Status),
			StoreIndex:      int64(i),
			ExportedTS:      exportedAt,
		}
		if t.ChequeNumber != nil {
			row.ChequeNumber = bigquery.NullString{StringVal: *t.ChequeNumber, Valid: true}
		}
		if t.Notes != "" {
			row.Notes = bigquery.NullString{StringVal: t.Notes, Valid: true}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ToSnapshotRow summarizes an export.
func ToSnapshotRow(snapshotID string, stats domain.LedgerStats, exportedAt time.Time, source string) *SnapshotRow {
	return &SnapshotRow{
		SnapshotID:    snapshotID,
		ExportedTS:    exportedAt,
		RowCount:      int64(stats.TransactionCount),
		TotalSales:    stats.TotalSales.Rat(),
		TotalReceived: stats.TotalReceived.Rat(),
		TotalPending:  stats.TotalPending.Rat(),
		Source:        source,
	}
}
