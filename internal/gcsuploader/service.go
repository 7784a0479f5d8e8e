package gcsuploader

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/dvloznov/kitab-khata/internal/gcs"
)

// GCSStorageService implements gcs.StorageService on one shared Cloud
// Storage client.
type GCSStorageService struct {
	client *storage.Client
}

// NewGCSStorageService creates a storage client using Application Default
// Credentials (gcloud auth application-default login).
func NewGCSStorageService(ctx context.Context) (*GCSStorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStorageService: create storage client: %w", err)
	}
	return &GCSStorageService{client: client}, nil
}

// Close releases the storage client.
func (s *GCSStorageService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// UploadBytes writes one object; see the package-level UploadBytes.
func (s *GCSStorageService) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	return UploadBytes(ctx, s.client, bucketName, objectName, data, contentType)
}

func (s *GCSStorageService) DownloadBytes(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	return DownloadBytes(ctx, s.client, bucketName, objectName)
}

var _ gcs.StorageService = (*GCSStorageService)(nil)
