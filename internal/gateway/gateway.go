// Package gateway is the gallery's only path to object storage. It uploads
// files under random names and lists the bucket as public media items, turning
// every backend fault into a value instead of an error.
package gateway

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/memewall/service/internal/journal"
	"github.com/memewall/service/internal/media"
	"github.com/memewall/service/internal/storage"
)

// Recorder persists upload attempts. Failures are logged and ignored.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Gateway wraps a storage backend with the gallery's upload and listing rules.
type Gateway struct {
	store    storage.Storage
	recorder Recorder
	logger   *slog.Logger
	newKey   func(ext string) string
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithRecorder journals every upload outcome.
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

// WithKeyFunc overrides how object keys are generated from an extension.
func WithKeyFunc(fn func(ext string) string) Option {
	return func(g *Gateway) { g.newKey = fn }
}

// New creates a Gateway over store.
func New(store storage.Storage, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		store:  store,
		logger: logger,
		newKey: randomKey,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Upload sends f to the backend under a random name that keeps its extension.
// Collisions are not checked. Upload never fails: backend errors come back as
// an unsuccessful outcome.
func (g *Gateway) Upload(ctx context.Context, f media.File) media.UploadOutcome {
	key := g.newKey(f.Extension())

	var outcome media.UploadOutcome
	if err := g.store.Upload(ctx, key, bytes.NewReader(f.Data), f.Size(), f.ContentType); err != nil {
		g.logger.Error("upload failed", "file", f.Name, "key", key, "error", err)
		outcome = media.UploadOutcome{Success: false, Error: err.Error()}
	} else {
		outcome = media.UploadOutcome{Success: true, URL: g.store.PublicURL(key)}
		g.logger.Info("uploaded", "file", f.Name, "key", key, "bytes", f.Size())
	}

	g.record(ctx, f, key, outcome)
	return outcome
}

// List returns every stored object as a media item. A backend failure is
// logged and reported as an empty listing, indistinguishable from an empty
// bucket. The only error returned is ctx's own, once the caller has gone away.
func (g *Gateway) List(ctx context.Context) ([]media.Item, error) {
	objects, err := g.store.List(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.logger.Error("list failed", "error", err)
		return []media.Item{}, nil
	}

	items := make([]media.Item, 0, len(objects))
	for _, o := range objects {
		items = append(items, media.Item{Name: o.Name, URL: g.store.PublicURL(o.Name)})
	}
	return items, nil
}

func (g *Gateway) record(ctx context.Context, f media.File, key string, o media.UploadOutcome) {
	if g.recorder == nil {
		return
	}
	err := g.recorder.Record(context.WithoutCancel(ctx), journal.Entry{
		OriginalName: f.Name,
		ObjectName:   key,
		ContentType:  f.ContentType,
		SizeBytes:    f.Size(),
		Success:      o.Success,
		URL:          o.URL,
		Error:        o.Error,
	})
	if err != nil {
		g.logger.Warn("journal record failed", "key", key, "error", err)
	}
}

func randomKey(ext string) string {
	return uuid.NewString() + "." + ext
}
