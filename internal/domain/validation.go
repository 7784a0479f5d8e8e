package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrValidation is wrapped by every input rejection.
var ErrValidation = errors.New("invalid transaction")

// dateLayouts are the ISO 8601 forms accepted for Transaction.Date.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate parses an ISO 8601 calendar date or timestamp. Date-only values
// are interpreted as midnight UTC so that "2024-03-01" and
// "2024-03-01T00:00:00Z" compare as the same instant.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("ParseDate: unrecognised date %q", s)
}

// ParseAmount parses a money amount typed by a user. Non-numeric, non-finite
// and negative values are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %q is not finite", ErrValidation, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %q is not a number", ErrValidation, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %q is negative", ErrValidation, s)
	}
	return d, nil
}

// Normalize trims free-text fields and drops the cheque number unless the
// payment method is a cheque.
func (in Input) Normalize() Input {
	in.Date = strings.TrimSpace(in.Date)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.BookTitle = strings.TrimSpace(in.BookTitle)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.PaymentMethod != PaymentCheque {
		in.ChequeNumber = nil
	} else if in.ChequeNumber != nil {
		n := strings.TrimSpace(*in.ChequeNumber)
		in.ChequeNumber = &n
	}
	return in
}

// Validate checks the input at the ledger boundary.
func (in Input) Validate() error {
	var problems []string

	if in.Date == "" {
		problems = append(problems, "date is required")
	} else if _, err := ParseDate(in.Date); err != nil {
		problems = append(problems, fmt.Sprintf("date %q is not an ISO 8601 date", in.Date))
	}
	if in.CustomerName == "" {
		problems = append(problems, "customerName is required")
	}
	if in.BookTitle == "" {
		problems = append(problems, "bookTitle is required")
	}
	if in.TotalPrice.IsNegative() {
		problems = append(problems, "totalPrice must not be negative")
	}
	if in.AmountPaid.IsNegative() {
		problems = append(problems, "amountPaid must not be negative")
	}
	if !in.PaymentMethod.Valid() {
		problems = append(problems, fmt.Sprintf("paymentMethod %q must be one of Cash, UPI, Cheque", in.PaymentMethod))
	}
	if in.PaymentMethod == PaymentCheque && (in.ChequeNumber == nil || *in.ChequeNumber == "") {
		problems = append(problems, "chequeNumber is required for cheque payments")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
