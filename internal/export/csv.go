// Package export renders the ledger for people outside the app: CSV
// backups and printable customer statements.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// CSVHeader is the first row of every backup file.
var CSVHeader = []string{"Date", "Customer", "Item", "Total Price", "Amount Paid", "Balance Due", "Method"}

// WriteCSV writes one row per record, in the order given.
func WriteCSV(w io.Writer, records []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	for _, t := range records {
		row := []string{
			t.Date,
			t.CustomerName,
			t.BookTitle,
			t.TotalPrice.String(),
			t.AmountPaid.String(),
			t.Balance.String(),
			string(t.PaymentMethod),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("WriteCSV: record %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}

// BackupFilename names a backup taken at now, using now's calendar date in UTC.
func BackupFilename(now time.Time) string {
	return fmt.Sprintf("Ledger_Backup_%s.csv", now.UTC().Format(time.DateOnly))
}
