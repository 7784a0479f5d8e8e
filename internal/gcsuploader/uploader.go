package gcsuploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/dvloznov/kitab-khata/internal/gcs"
)

// uploadTimeout bounds a single object write.
const uploadTimeout = 2 * time.Minute

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// UploadBytes writes data to a GCS object, replacing any previous version.
// The CRC32C checksum is sent along so a corrupted upload is rejected.
func UploadBytes(ctx context.Context, client *storage.Client, bucketName, objectName string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CRC32C = crc32.Checksum(data, castagnoli)
	w.SendCRC32C = true

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("UploadBytes: copy to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("UploadBytes: finalize upload of %s: %w", gcs.URI(bucketName, objectName), err)
	}
	return nil
}

// DownloadBytes reads a whole GCS object.
func DownloadBytes(ctx context.Context, client *storage.Client, bucketName, objectName string) ([]byte, error) {
	r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("DownloadBytes: %s: %w", gcs.URI(bucketName, objectName), gcs.ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("DownloadBytes: open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("DownloadBytes: read GCS object: %w", err)
	}
	return data, nil
}
