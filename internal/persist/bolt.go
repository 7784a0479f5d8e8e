package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// Bucket and key names inside the bbolt file.
const (
	BucketLedger    = "ledger"
	KeyTransactions = "transactions"
	KeyUser         = "user"
)

// BoltStore keeps the ledger in a local bbolt key-value file. The whole
// record store is one JSON value under KeyTransactions.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("OpenBolt: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketLedger)); err != nil {
			return fmt.Errorf("create bucket %s: %w", BucketLedger, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("OpenBolt: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Load implements Store.
func (s *BoltStore) Load(ctx context.Context) ([]domain.Transaction, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// Get's slice is only valid inside the transaction.
		data = append([]byte(nil), tx.Bucket([]byte(BucketLedger)).Get([]byte(KeyTransactions))...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("BoltStore.Load: %w", err)
	}
	return Decode(data)
}

// Save implements Store.
func (s *BoltStore) Save(ctx context.Context, records []domain.Transaction) error {
	data, err := Encode(records)
	if err != nil {
		return fmt.Errorf("BoltStore.Save: %w", err)
	}
	return s.put(KeyTransactions, data)
}

// LoadUser implements ProfileStore.
func (s *BoltStore) LoadUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BucketLedger)).Get([]byte(KeyUser))
		if data == nil {
			return ErrNoData
		}
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("BoltStore.LoadUser: %w", err)
	}
	return user, nil
}

// SaveUser implements ProfileStore.
func (s *BoltStore) SaveUser(ctx context.Context, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("BoltStore.SaveUser: %w", err)
	}
	return s.put(KeyUser, data)
}

// ClearUser implements ProfileStore.
func (s *BoltStore) ClearUser(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketLedger)).Delete([]byte(KeyUser))
	})
}

func (s *BoltStore) put(key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketLedger)).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("BoltStore: put %s: %w", key, err)
	}
	return nil
}

var (
	_ Store        = (*BoltStore)(nil)
	_ ProfileStore = (*BoltStore)(nil)
)
