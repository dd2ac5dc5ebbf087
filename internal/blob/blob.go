// Package blob uploads complaint images to object storage and returns their public URLs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"civictracker/backend/internal/config"
	"civictracker/backend/internal/models"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ErrTooLarge is returned when an image exceeds config.MaxImageSizeBytes.
var ErrTooLarge = errors.New("image too large")

// Uploader stores raw image bytes and returns a publicly resolvable URL.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, contentType string) (string, error)
}

// writerFunc opens a writer for one object. Replaced in tests.
type writerFunc func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

// GCSUploader writes images into a Google Cloud Storage bucket.
type GCSUploader struct {
	bucket    string
	newWriter writerFunc
	now       func() time.Time
	logger    *slog.Logger
}

// NewGCSUploader creates an uploader for bucket using client.
func NewGCSUploader(client *storage.Client, bucket string, logger *slog.Logger) *GCSUploader {
	return &GCSUploader{
		bucket: bucket,
		newWriter: func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
			w := client.Bucket(bucket).Object(object).NewWriter(ctx)
			w.ContentType = contentType
			return w
		},
		now:    time.Now,
		logger: logger.With("component", "blob"),
	}
}

// CheckBucket verifies that the bucket exists and is reachable.
func CheckBucket(ctx context.Context, client *storage.Client, bucket string) error {
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("bucket %s: %w: %w", bucket, models.ErrUpload, err)
	}
	return nil
}

// NormalizeContentType lowercases contentType, strips parameters and
// applies the default for an empty value.
func NormalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" {
		return config.DefaultImageType
	}
	return ct
}

// ObjectName builds "issues/<uuid>_<unixnano>.<ext>" for an accepted content type.
func ObjectName(contentType string, now time.Time) (string, error) {
	ct := NormalizeContentType(contentType)
	ext, ok := config.ImageExtensions[ct]
	if !ok {
		return "", &models.ValidationError{Field: "image", Value: contentType, Kind: models.ErrInvalidContentType, Allowed: "image/jpeg, image/png, image/gif, image/webp"}
	}
	return fmt.Sprintf("%s/%s_%d.%s", config.ImageFolder, uuid.NewString(), now.UnixNano(), ext), nil
}

// PublicURL returns the public address of object in bucket.
func PublicURL(bucket, object string) string {
	return fmt.Sprintf("%s/%s/%s", config.PublicURLBase, bucket, object)
}

// Upload validates the content type, streams r into the bucket and returns the public URL.
// An unsupported type fails with a validation error before anything is written;
// an oversized stream fails with a validation error and the object is abandoned.
func (u *GCSUploader) Upload(ctx context.Context, r io.Reader, contentType string) (string, error) {
	object, err := ObjectName(contentType, u.now())
	if err != nil {
		return "", err
	}

	// Cancelling the context aborts the upload so a failed copy leaves no object behind.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := u.newWriter(ctx, u.bucket, object, NormalizeContentType(contentType))
	n, err := io.Copy(w, io.LimitReader(r, config.MaxImageSizeBytes+1))
	if err == nil && n > config.MaxImageSizeBytes {
		cancel()
		_ = w.Close()
		u.logger.Warn("image rejected", "object", object, "reason", "too large")
		return "", &models.ValidationError{
			Field: "image",
			Value: fmt.Sprintf("more than %d bytes", config.MaxImageSizeBytes),
			Kind:  ErrTooLarge,
		}
	}
	if err != nil {
		cancel()
		_ = w.Close()
		u.logger.Error("failed to copy image", "object", object, "error", err)
		return "", fmt.Errorf("upload %s: %w: %w", object, models.ErrUpload, err)
	}
	if err := w.Close(); err != nil {
		u.logger.Error("failed to finalize image", "object", object, "error", err)
		return "", fmt.Errorf("upload %s: %w: %w", object, models.ErrUpload, err)
	}

	url := PublicURL(u.bucket, object)
	u.logger.Info("image uploaded", "object", object, "bytes", n)
	return url, nil
}
