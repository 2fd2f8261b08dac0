package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSStorage stores objects in a Google Cloud Storage bucket. The bucket is
// expected to grant public read access; URLs are not signed.
type GCSStorage struct {
	client     *storage.Client
	bucket     string
	publicBase string
}

// NewGCSStorage creates a GCSStorage for the given bucket. publicBase may be
// empty, in which case URLs point at storage.googleapis.com. opts are passed
// through to the underlying GCS client, allowing credential injection.
func NewGCSStorage(ctx context.Context, bucket, publicBase string, opts ...option.ClientOption) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create GCS client: %w", err)
	}
	if publicBase == "" {
		publicBase = gcsPublicHost + "/" + bucket
	}
	return &GCSStorage{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Upload writes content to GCS at key.
func (s *GCSStorage) Upload(ctx context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: upload write failed for %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: upload close failed for %q: %w", key, err)
	}
	return nil
}

// List returns the top-level objects of the bucket.
func (s *GCSStorage) List(ctx context.Context) ([]Object, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Delimiter: "/"})

	var objects []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: list bucket %q: %w", s.bucket, err)
		}
		if attrs.Name == "" {
			// Prefix entry produced by the delimiter.
			continue
		}
		objects = append(objects, Object{Name: attrs.Name})
	}
	return objects, nil
}

// PublicURL returns the browser-accessible URL for key.
func (s *GCSStorage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
