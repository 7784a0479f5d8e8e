// Package persist saves and restores the ledger record store.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// ErrNoData is returned by profile lookups when nothing has been saved.
var ErrNoData = errors.New("no data saved")

// Store loads and saves the whole record store at once.
type Store interface {
	// Load returns the saved records in store order, or an empty slice.
	Load(ctx context.Context) ([]domain.Transaction, error)
	// Save replaces the saved records.
	Save(ctx context.Context, records []domain.Transaction) error
}

// ProfileStore keeps the signed-in user between runs.
type ProfileStore interface {
	LoadUser(ctx context.Context) (domain.User, error)
	SaveUser(ctx context.Context, user domain.User) error
	ClearUser(ctx context.Context) error
}

// Encode serializes records as a JSON array.
func Encode(records []domain.Transaction) ([]byte, error) {
	if records == nil {
		records = []domain.Transaction{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("Encode: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of records. Empty input is an empty store.
// Amounts may be JSON numbers or decimal strings.
func Decode(data []byte) ([]domain.Transaction, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Transaction{}, nil
	}
	var records []domain.Transaction
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("Decode: %w", err)
	}
	if records == nil {
		records = []domain.Transaction{}
	}
	return records, nil
}

// MemoryStore keeps the serialized store in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	user *domain.User

	// SaveErr, when set, is returned by Save.
	SaveErr error
	saves   int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Decode(m.data)
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, records []domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := Encode(records)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

// Saves reports how many successful saves happened.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// LoadUser implements ProfileStore.
func (m *MemoryStore) LoadUser(ctx context.Context) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return domain.User{}, ErrNoData
	}
	return *m.user, nil
}

// SaveUser implements ProfileStore.
func (m *MemoryStore) SaveUser(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &user
	return nil
}

// ClearUser implements ProfileStore.
func (m *MemoryStore) ClearUser(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}

var (
	_ Store        = (*MemoryStore)(nil)
	_ ProfileStore = (*MemoryStore)(nil)
)
