package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// Search returns the records whose customer name or item contains term,
// ignoring case, ordered by date. An empty term matches every record.
// Dates are compared as instants; records with equal dates keep their
// store order. records itself is not modified.
func Search(records []domain.Transaction, term string, dir domain.SortDirection) []domain.Transaction {
	needle := strings.ToLower(term)

	type keyed struct {
		tx domain.Transaction
		at time.Time
	}
	matched := make([]keyed, 0, len(records))
	for _, tx := range records {
		if needle != "" &&
			!strings.Contains(strings.ToLower(tx.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(tx.BookTitle), needle) {
			continue
		}
		matched = append(matched, keyed{tx: tx, at: dateKey(tx.Date)})
	}

	slices.SortStableFunc(matched, func(a, b keyed) int {
		if dir == domain.SortAsc {
			return a.at.Compare(b.at)
		}
		return b.at.Compare(a.at)
	})

	out := make([]domain.Transaction, len(matched))
	for i, k := range matched {
		out[i] = k.tx
	}
	return out
}

// dateKey parses a record date for ordering. Unparseable dates sort as the
// zero instant, i.e. oldest.
func dateKey(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}
