package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrObjectNotFound is returned by DownloadBytes when the object does not exist.
var ErrObjectNotFound = errors.New("storage object not found")

// StorageService provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// UploadBytes writes data to bucketName/objectName, replacing any previous object.
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error

	// DownloadBytes reads the whole object. A missing object yields ErrObjectNotFound.
	DownloadBytes(ctx context.Context, bucketName, objectName string) ([]byte, error)
}

// URI formats a gs:// URI.
func URI(bucketName, objectName string) string {
	return fmt.Sprintf("gs://%s/%s", bucketName, objectName)
}

// ParseURI splits "gs://bucket/path/to/object" into bucket and object name.
func ParseURI(uri string) (string, string, error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
