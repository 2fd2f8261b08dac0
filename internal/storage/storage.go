// Package storage defines the object storage contract the gallery relies on:
// create an object, list the bucket, and resolve a name to its public URL.
// The driver is chosen at startup by STORAGE_DRIVER; the MinIO implementation
// works with any S3-compatible provider.
package storage

import (
	"context"
	"io"
)

// Object is a single entry of a bucket listing.
type Object struct {
	Name string
}

// Storage is the interface for uploading and listing public objects.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// List returns every object in the bucket.
	List(ctx context.Context) ([]Object, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
