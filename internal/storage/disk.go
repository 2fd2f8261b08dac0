package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DiskStorage writes objects to a directory on the local filesystem. It is
// meant for development; the directory is served by the HTTP server under the
// public base.
type DiskStorage struct {
	baseDir    string
	publicBase string
}

// NewDiskStorage creates a DiskStorage that writes objects under baseDir. The
// directory is created if it does not already exist.
func NewDiskStorage(baseDir, publicBase string) (*DiskStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create local base directory %q: %w", baseDir, err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to resolve absolute path for %q: %w", baseDir, err)
	}
	return &DiskStorage{baseDir: abs, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Dir returns the absolute directory objects are written to.
func (s *DiskStorage) Dir() string {
	return s.baseDir
}

// Upload writes content to baseDir/key. Keys are flat; path separators are
// rejected.
func (s *DiskStorage) Upload(ctx context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("storage: invalid object key %q", key)
	}

	dest := filepath.Join(s.baseDir, key)
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("storage: failed to create file %q: %w", dest, err)
	}

	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("storage: failed to write file %q: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("storage: failed to close file %q: %w", dest, err)
	}
	return nil
}

// List returns the regular files in the base directory.
func (s *DiskStorage) List(ctx context.Context) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read %q: %w", s.baseDir, err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		objects = append(objects, Object{Name: e.Name()})
	}
	return objects, nil
}

// PublicURL returns the URL the HTTP server exposes key under.
func (s *DiskStorage) PublicURL(key string) string {
	return s.publicBase + "/" + url.PathEscape(key)
}
