package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/kitab-khata/internal/gcs"
)

// MockStorageService is a mock implementation of gcs.StorageService.
type MockStorageService struct {
	UploadBytesFunc   func(ctx context.Context, bucket, object string, data []byte, contentType string) error
	DownloadBytesFunc func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockStorageService) UploadBytes(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	if m.UploadBytesFunc != nil {
		return m.UploadBytesFunc(ctx, bucket, object, data, contentType)
	}
	return nil
}

func (m *MockStorageService) DownloadBytes(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.DownloadBytesFunc != nil {
		return m.DownloadBytesFunc(ctx, bucket, object)
	}
	return nil, gcs.ErrObjectNotFound
}

func TestGCSStore_MissingObjectIsEmpty(t *testing.T) {
	s := NewGCSStore(&MockStorageService{}, "bucket", "")
	assert.Equal(t, "gs://bucket/"+DefaultGCSObject, s.URI())

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGCSStore_RoundTrip(t *testing.T) {
	objects := map[string][]byte{}
	mock := &MockStorageService{
		UploadBytesFunc: func(ctx context.Context, bucket, object string, data []byte, contentType string) error {
			assert.Equal(t, "application/json", contentType)
			objects[bucket+"/"+object] = data
			return nil
		},
		DownloadBytesFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
			data, ok := objects[bucket+"/"+object]
			if !ok {
				return nil, gcs.ErrObjectNotFound
			}
			return data, nil
		},
	}

	s := NewGCSStore(mock, "shop-backups", "ledger.json")
	require.NoError(t, s.Save(context.Background(), sampleRecords()))
	assert.Contains(t, objects, "shop-backups/ledger.json")

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	requireSameRecords(t, sampleRecords(), got)
}

func TestGCSStore_Errors(t *testing.T) {
	boom := errors.New("boom")
	s := NewGCSStore(&MockStorageService{
		UploadBytesFunc: func(ctx context.Context, bucket, object string, data []byte, contentType string) error {
			return boom
		},
		DownloadBytesFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
			return nil, boom
		},
	}, "b", "o")

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Save(context.Background(), nil), boom)
}
