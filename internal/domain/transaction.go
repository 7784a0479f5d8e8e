package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are stored and served as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentMethod is how a customer settled (part of) a bill.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentUPI    PaymentMethod = "UPI"
	PaymentCheque PaymentMethod = "Cheque"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentCheque:
		return true
	}
	return false
}

// Status is the payment state of a single bill. It is always derived from
// the bill amounts and never set directly.
type Status string

const (
	StatusPaid    Status = "Paid"
	StatusPartial Status = "Partial"
	StatusUnpaid  Status = "Unpaid"
)

// Transaction is one sale recorded in the ledger.
// Balance and Status are derived from TotalPrice and AmountPaid on every
// create and update.
type Transaction struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"` // ISO 8601 calendar date, e.g. "2024-03-01"
	CustomerName  string          `json:"customerName"`
	BookTitle     string          `json:"bookTitle"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	Balance       decimal.Decimal `json:"balance"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	ChequeNumber  *string         `json:"chequeNumber,omitempty"` // only for PaymentCheque
	Notes         string          `json:"notes,omitempty"`
	Status        Status          `json:"status"`
}

// Input is the user-supplied part of a Transaction: everything except the
// identifier and the derived fields. Updates replace all of these fields.
type Input struct {
	Date          string          `json:"date"`
	CustomerName  string          `json:"customerName"`
	BookTitle     string          `json:"bookTitle"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	ChequeNumber  *string         `json:"chequeNumber,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// InputOf returns the user-supplied fields of t.
func InputOf(t Transaction) Input {
	return Input{
		Date:          t.Date,
		CustomerName:  t.CustomerName,
		BookTitle:     t.BookTitle,
		TotalPrice:    t.TotalPrice,
		AmountPaid:    t.AmountPaid,
		PaymentMethod: t.PaymentMethod,
		ChequeNumber:  t.ChequeNumber,
		Notes:         t.Notes,
	}
}

// LedgerStats are totals over the whole ledger. They are never stored.
type LedgerStats struct {
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalReceived    decimal.Decimal `json:"totalReceived"`
	TotalPending     decimal.Decimal `json:"totalPending"`
	TransactionCount int             `json:"transactionCount"`
}

// CustomerStats are totals over the bills of a single customer.
type CustomerStats struct {
	Total decimal.Decimal `json:"total"`
	Paid  decimal.Decimal `json:"paid"`
	Due   decimal.Decimal `json:"due"`
}

// User is the signed-in shop operator. It is only used for display.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	ID      string `json:"id"`
}

// SortDirection orders search results by date.
type SortDirection string

const (
	SortDesc SortDirection = "desc"
	SortAsc  SortDirection = "asc"
)

// ParseSortDirection maps user input to a direction, defaulting to newest first.
func ParseSortDirection(s string) SortDirection {
	if SortDirection(s) == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// Shop is the business printed on statements.
type Shop struct {
	Name    string `json:"name" yaml:"name"`
	Tagline string `json:"tagline" yaml:"tagline"`
	Address string `json:"address" yaml:"address"`
	Phone   string `json:"phone" yaml:"phone"`
	Email   string `json:"email" yaml:"email"`
	GSTIN   string `json:"gstin" yaml:"gstin"`
}
