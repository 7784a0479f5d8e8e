package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

func records() []domain.Transaction {
	return []domain.Transaction{
		{
			ID: "2", Date: "2024-03-02", CustomerName: "Sharma, R.", BookTitle: "RD Sharma Maths",
			TotalPrice: decimal.NewFromInt(650), AmountPaid: decimal.NewFromInt(650), Balance: decimal.Zero,
			PaymentMethod: domain.PaymentUPI,
		},
		{
			ID: "1", Date: "2024-03-01", CustomerName: "Ramesh", BookTitle: "NCERT Physics XI",
			TotalPrice: decimal.NewFromInt(450), AmountPaid: decimal.NewFromInt(200), Balance: decimal.NewFromInt(250),
			PaymentMethod: domain.PaymentCash,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Customer", "Item", "Total Price", "Amount Paid", "Balance Due", "Method"}, rows[0])
	assert.Equal(t, []string{"2024-03-02", "Sharma, R.", "RD Sharma Maths", "650", "650", "0", "UPI"}, rows[1])
	assert.Equal(t, []string{"2024-03-01", "Ramesh", "NCERT Physics XI", "450", "200", "250", "Cash"}, rows[2])
}

func TestWriteCSV_EmptyLedgerHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Date,Customer,Item,Total Price,Amount Paid,Balance Due,Method\n", buf.String())
}

func TestBackupFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "Ledger_Backup_2024-03-09.csv", BackupFilename(now))
}

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0"},
		{"999", "₹999"},
		{"1000", "₹1,000"},
		{"100000", "₹1,00,000"},
		{"1234567.5", "₹12,34,567.50"},
		{"12345678", "₹1,23,45,678"},
		{"-2500", "-₹2,500"},
		{"99.99", "₹99.99"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRupees(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestRenderStatement(t *testing.T) {
	shop := domain.Shop{Name: "Vikas Pustak Bhandar", Phone: "+91 98765-43210", GSTIN: "07AAAAA0000A1Z5"}
	recs := records()[1:]
	stats := domain.CustomerStats{
		Total: decimal.NewFromInt(450),
		Paid:  decimal.NewFromInt(200),
		Due:   decimal.NewFromInt(250),
	}

	var buf bytes.Buffer
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	require.NoError(t, RenderStatement(&buf, shop, "Ramesh", recs, stats, now))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "VIKAS PUSTAK BHANDAR\n"))
	assert.Contains(t, out, "GSTIN: 07AAAAA0000A1Z5")
	assert.Contains(t, out, "DATE: 09/03/2024")
	assert.Contains(t, out, "Party: RAMESH")
	assert.Contains(t, out, "NCERT PHYSICS XI")
	assert.Contains(t, out, "Total Grand Outstanding Payable: ₹250")
}

func TestRenderStatement_NoBills(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStatement(&buf, domain.Shop{}, "Nobody", nil, domain.CustomerStats{}, time.Now()))
	assert.Contains(t, buf.String(), "No bills recorded.")
	assert.Contains(t, buf.String(), "Payable: ₹0")
}
