// Package ledger holds the record store and the pure derivation rules of the
// shop ledger: balance and status, search, customer rollups and totals.
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// newID allocates transaction identifiers.
var newID = uuid.NewString

// ComputeDerived returns the balance and status for a bill.
// The balance is not clamped, so an overpaid bill has a negative balance.
// Status is decided in order: nothing owed is Paid, nothing paid is Unpaid,
// anything else is Partial.
func ComputeDerived(totalPrice, amountPaid decimal.Decimal) (decimal.Decimal, domain.Status) {
	balance := totalPrice.Sub(amountPaid)
	switch {
	case !balance.IsPositive():
		return balance, domain.StatusPaid
	case amountPaid.IsZero():
		return balance, domain.StatusUnpaid
	default:
		return balance, domain.StatusPartial
	}
}

// NewTransaction creates a transaction with a fresh identifier.
// It does not validate; callers validate at the boundary.
func NewTransaction(in domain.Input) domain.Transaction {
	return build(newID(), in)
}

// UpdateTransaction replaces every user field of existing with in and keeps
// its identifier. There is no partial merge.
func UpdateTransaction(existing domain.Transaction, in domain.Input) domain.Transaction {
	return build(existing.ID, in)
}

func build(id string, in domain.Input) domain.Transaction {
	balance, status := ComputeDerived(in.TotalPrice, in.AmountPaid)
	return domain.Transaction{
		ID:            id,
		Date:          in.Date,
		CustomerName:  in.CustomerName,
		BookTitle:     in.BookTitle,
		TotalPrice:    in.TotalPrice,
		AmountPaid:    in.AmountPaid,
		Balance:       balance,
		PaymentMethod: in.PaymentMethod,
		ChequeNumber:  in.ChequeNumber,
		Notes:         in.Notes,
		Status:        status,
	}
}
