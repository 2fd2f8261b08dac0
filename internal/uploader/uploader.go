// Package uploader implements the upload widget: it previews locally selected
// files, uploads them concurrently, reports how many succeeded, and announces
// content-changed on the page bus.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/memewall/service/internal/bus"
	"github.com/memewall/service/internal/media"
)

// State is the widget's position in Idle → FilesSelected → Uploading → Idle.
type State string

const (
	StateIdle          State = "idle"
	StateFilesSelected State = "files-selected"
	StateUploading     State = "uploading"
)

// Status lines shown under the previews.
const (
	StatusNoFiles   = "No files selected"
	StatusUploading = "Uploading..."
)

// Gateway uploads a single file and never fails; failures are outcomes.
type Gateway interface {
	Upload(ctx context.Context, f media.File) media.UploadOutcome
}

// Preview is a locally rendered thumbnail for a selected file. URL is an
// ephemeral address that stops resolving once the selection is replaced.
type Preview struct {
	ID   string
	Name string
	Kind media.Kind
	URL  string
}

// Uploader is the upload widget. All fields are owned by the widget.
type Uploader struct {
	gw          Gateway
	logger      *slog.Logger
	previewBase string

	mu        sync.Mutex
	pub       bus.Publisher
	state     State
	status    string
	selection int
	files     []media.File
	previews  []Preview
	blobs     map[string]media.File
}

// New creates an idle Uploader. previewBase prefixes preview IDs to form
// their URLs, e.g. "/uploader/previews/".
func New(gw Gateway, logger *slog.Logger, previewBase string) *Uploader {
	return &Uploader{
		gw:          gw,
		logger:      logger,
		previewBase: previewBase,
		state:       StateIdle,
		blobs:       map[string]media.File{},
	}
}

// Mount attaches the widget to the page bus it announces uploads on.
func (u *Uploader) Mount(pub bus.Publisher) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pub = pub
}

// Select replaces the current selection and builds its previews without any
// network call. Previews are classified by MIME type. An empty selection is
// ignored.
func (u *Uploader) Select(files []media.File) {
	if len(files) == 0 {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.revokeLocked()
	u.selection++
	u.files = files
	u.previews = make([]Preview, 0, len(files))
	for _, f := range files {
		id := uuid.NewString()
		u.blobs[id] = f
		u.previews = append(u.previews, Preview{
			ID:   id,
			Name: f.Name,
			Kind: media.KindFromMIME(f.ContentType),
			URL:  u.previewBase + id,
		})
	}
	if u.state != StateUploading {
		u.state = StateFilesSelected
	}
}

// PreviewFile returns the selected file behind a preview ID.
func (u *Uploader) PreviewFile(id string) (media.File, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	f, ok := u.blobs[id]
	return f, ok
}

// Upload sends every selected file concurrently and waits for all of them.
// It does nothing while a batch is already in flight. One failure never stops
// the others. The status reports the success count and
// content-changed is published once, whatever that count is. If the wait
// itself fails, the error is shown and nothing is published.
func (u *Uploader) Upload(ctx context.Context) {
	u.mu.Lock()
	if len(u.files) == 0 {
		u.status = StatusNoFiles
		u.mu.Unlock()
		return
	}
	if u.state == StateUploading {
		u.mu.Unlock()
		return
	}
	files := u.files
	selection := u.selection
	u.state = StateUploading
	u.status = StatusUploading
	u.mu.Unlock()

	outcomes, err := u.uploadAll(ctx, files)

	u.mu.Lock()
	if err != nil {
		u.logger.Error("upload batch failed", "files", len(files), "error", err)
		u.status = fmt.Sprintf("Upload error: %s", err)
		u.state = StateFilesSelected
		u.mu.Unlock()
		return
	}

	succeeded := media.SuccessCount(outcomes)
	u.status = fmt.Sprintf("Uploaded %d of %d", succeeded, len(files))
	if u.selection == selection {
		u.revokeLocked()
		u.files = nil
		u.previews = nil
		u.state = StateIdle
	} else {
		u.state = StateFilesSelected
	}
	pub := u.pub
	u.mu.Unlock()

	u.logger.Info("upload batch finished", "succeeded", succeeded, "total", len(files))
	if pub != nil {
		pub.Publish(context.WithoutCancel(ctx), bus.ContentChanged{})
	}
}

func (u *Uploader) uploadAll(ctx context.Context, files []media.File) ([]media.UploadOutcome, error) {
	outcomes := make([]media.UploadOutcome, len(files))

	var g errgroup.Group
	for i, f := range files {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%v", r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = u.gw.Upload(ctx, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// revokeLocked drops every preview URL. Callers hold u.mu.
func (u *Uploader) revokeLocked() {
	clear(u.blobs)
}

// State returns the widget's current state.
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Status returns the status line.
func (u *Uploader) Status() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// Previews returns a copy of the current previews.
func (u *Uploader) Previews() []Preview {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Preview(nil), u.previews...)
}
