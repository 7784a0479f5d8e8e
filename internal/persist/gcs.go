package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/gcs"
)

// DefaultGCSObject is the object name used when none is configured.
const DefaultGCSObject = "kitab-khata/transactions.json"

// GCSStore keeps the serialized ledger in one Cloud Storage object. It is
// used for cloud backups and can serve as the primary store.
type GCSStore struct {
	storage gcs.StorageService
	bucket  string
	object  string
}

// NewGCSStore creates a store writing to bucket/object.
func NewGCSStore(storage gcs.StorageService, bucket, object string) *GCSStore {
	if object == "" {
		object = DefaultGCSObject
	}
	return &GCSStore{storage: storage, bucket: bucket, object: object}
}

// URI is where the ledger is kept.
func (s *GCSStore) URI() string {
	return gcs.URI(s.bucket, s.object)
}

// Load implements Store. A missing object is an empty ledger.
func (s *GCSStore) Load(ctx context.Context) ([]domain.Transaction, error) {
	data, err := s.storage.DownloadBytes(ctx, s.bucket, s.object)
	if errors.Is(err, gcs.ErrObjectNotFound) {
		return []domain.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GCSStore.Load: %w", err)
	}
	return Decode(data)
}

// Save implements Store.
func (s *GCSStore) Save(ctx context.Context, records []domain.Transaction) error {
	data, err := Encode(records)
	if err != nil {
		return fmt.Errorf("GCSStore.Save: %w", err)
	}
	if err := s.storage.UploadBytes(ctx, s.bucket, s.object, data, "application/json"); err != nil {
		return fmt.Errorf("GCSStore.Save: %w", err)
	}
	return nil
}

var _ Store = (*GCSStore)(nil)
