package ledger

import (
	"slices"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// Rollup returns the records of one customer and their totals. Matching is
// exact and case-sensitive, unlike Search: "Amit" and "amit" are different
// customers here. An empty name is the defined empty state.
func Rollup(records []domain.Transaction, customerName string) ([]domain.Transaction, domain.CustomerStats) {
	if customerName == "" {
		return []domain.Transaction{}, domain.CustomerStats{}
	}

	matched := []domain.Transaction{}
	for _, tx := range records {
		if tx.CustomerName == customerName {
			matched = append(matched, tx)
		}
	}
	return matched, customerStats(matched)
}

// CustomerSummary is the rollup of one distinct customer name.
type CustomerSummary struct {
	Name      string               `json:"name"`
	BillCount int                  `json:"billCount"`
	Stats     domain.CustomerStats `json:"stats"`
}

// Customers summarises every distinct customer name in first-seen order.
func Customers(records []domain.Transaction) []CustomerSummary {
	index := make(map[string]int)
	out := []CustomerSummary{}
	for _, tx := range records {
		i, ok := index[tx.CustomerName]
		if !ok {
			i = len(out)
			index[tx.CustomerName] = i
			out = append(out, CustomerSummary{Name: tx.CustomerName})
		}
		s := &out[i]
		s.BillCount++
		s.Stats.Total = s.Stats.Total.Add(tx.TotalPrice)
		s.Stats.Paid = s.Stats.Paid.Add(tx.AmountPaid)
		s.Stats.Due = s.Stats.Due.Add(tx.Balance)
	}
	return out
}

// Debtors returns the customers who still owe money, largest due first.
func Debtors(records []domain.Transaction) []CustomerSummary {
	out := []CustomerSummary{}
	for _, c := range Customers(records) {
		if c.Stats.Due.IsPositive() {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b CustomerSummary) int {
		return b.Stats.Due.Cmp(a.Stats.Due)
	})
	return out
}

func customerStats(records []domain.Transaction) domain.CustomerStats {
	var s domain.CustomerStats
	for _, tx := range records {
		s.Total = s.Total.Add(tx.TotalPrice)
		s.Paid = s.Paid.Add(tx.AmountPaid)
		s.Due = s.Due.Add(tx.Balance)
	}
	return s
}
