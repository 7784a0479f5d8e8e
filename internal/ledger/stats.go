package ledger

import "github.com/dvloznov/kitab-khata/internal/domain"

// Stats totals the whole ledger in one pass. Sums are exact decimals, so the
// result does not depend on record order.
func Stats(records []domain.Transaction) domain.LedgerStats {
	var s domain.LedgerStats
	for _, tx := range records {
		s.TotalSales = s.TotalSales.Add(tx.TotalPrice)
		s.TotalReceived = s.TotalReceived.Add(tx.AmountPaid)
		s.TotalPending = s.TotalPending.Add(tx.Balance)
		s.TransactionCount++
	}
	return s
}
