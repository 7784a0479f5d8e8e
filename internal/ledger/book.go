package ledger

import (
	"errors"
	"fmt"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// ErrNotFound is returned when no record has the requested identifier.
var ErrNotFound = errors.New("transaction not found")

// The functions below treat a record slice as an immutable value: they never
// write through the slice they are given and always return a new one.

// Insert puts tx at the front of the store, newest first.
func Insert(records []domain.Transaction, tx domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(records)+1)
	out = append(out, tx)
	return append(out, records...)
}

// Find returns the record with the given id.
func Find(records []domain.Transaction, id string) (domain.Transaction, error) {
	for _, tx := range records {
		if tx.ID == id {
			return tx, nil
		}
	}
	return domain.Transaction{}, fmt.Errorf("Find %s: %w", id, ErrNotFound)
}

// Replace updates the record with the given id in place of the old one,
// keeping its position in the store.
func Replace(records []domain.Transaction, id string, in domain.Input) ([]domain.Transaction, domain.Transaction, error) {
	for i, tx := range records {
		if tx.ID != id {
			continue
		}
		updated := UpdateTransaction(tx, in)
		out := clone(records)
		out[i] = updated
		return out, updated, nil
	}
	return nil, domain.Transaction{}, fmt.Errorf("Replace %s: %w", id, ErrNotFound)
}

// Remove deletes the record with the given id. Deletion is irreversible.
func Remove(records []domain.Transaction, id string) ([]domain.Transaction, error) {
	for i, tx := range records {
		if tx.ID != id {
			continue
		}
		out := make([]domain.Transaction, 0, len(records)-1)
		out = append(out, records[:i]...)
		return append(out, records[i+1:]...), nil
	}
	return nil, fmt.Errorf("Remove %s: %w", id, ErrNotFound)
}

func clone(records []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(records))
	copy(out, records)
	return out
}
