// Package page is the composition root: one Page per browser session mounts
// the uploader, gallery and viewer on a shared bus and lays them out in the
// page shell. The widgets never reference each other.
package page

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/memewall/service/internal/bus"
	"github.com/memewall/service/internal/gallery"
	"github.com/memewall/service/internal/media"
	"github.com/memewall/service/internal/uploader"
	"github.com/memewall/service/internal/viewer"
)

// PreviewBase is the route prefix uploader previews are served under.
const PreviewBase = "/uploader/previews/"

// Gateway is everything the widgets need from storage.
type Gateway interface {
	Upload(ctx context.Context, f media.File) media.UploadOutcome
	List(ctx context.Context) ([]media.Item, error)
}

// Notifier forwards content-changed to other sessions' browsers.
type Notifier interface {
	NotifyContentChanged(origin string)
}

// Deps are shared by every page.
type Deps struct {
	Gateway  Gateway
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// Page is one session's document.
type Page struct {
	ID       string
	Bus      *bus.Bus
	Uploader *uploader.Uploader
	Gallery  *gallery.Gallery
	Viewer   *viewer.Viewer

	now         func() time.Time
	unsubscribe func()

	mu           sync.Mutex
	scrollLocked bool
	lastSeen     time.Time
}

type relayedKey struct{}

// withRelayed marks ctx as carrying a notification that arrived from another
// session, so it is not forwarded back out.
func withRelayed(ctx context.Context) context.Context {
	return context.WithValue(ctx, relayedKey{}, true)
}

func isRelayed(ctx context.Context) bool {
	v, _ := ctx.Value(relayedKey{}).(bool)
	return v
}

// New builds and mounts a page. The gallery performs its first fetch before
// New returns.
func New(ctx context.Context, id string, deps Deps) *Page {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger.With("session", id)

	p := &Page{
		ID:       id,
		Bus:      bus.New(),
		now:      now,
		lastSeen: now(),
	}
	p.Uploader = uploader.New(deps.Gateway, logger, PreviewBase)
	p.Gallery = gallery.New(deps.Gateway, logger)
	p.Viewer = viewer.New(p)

	if deps.Notifier != nil {
		p.unsubscribe = p.Bus.Subscribe(bus.TopicContentChanged, func(ctx context.Context, _ bus.Event) {
			if !isRelayed(ctx) {
				deps.Notifier.NotifyContentChanged(id)
			}
		})
	}

	p.Viewer.Mount(p.Bus)
	p.Uploader.Mount(p.Bus)
	p.Gallery.Mount(ctx, p.Bus)

	return p
}

// LockScroll suppresses page-level scrolling.
func (p *Page) LockScroll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollLocked = true
}

// UnlockScroll restores page-level scrolling.
func (p *Page) UnlockScroll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollLocked = false
}

// ScrollLocked reports whether the body must not scroll.
func (p *Page) ScrollLocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollLocked
}

// ReceiveContentChanged publishes a content-changed that another session
// caused, without echoing it back.
func (p *Page) ReceiveContentChanged(ctx context.Context) {
	p.Bus.Publish(withRelayed(ctx), bus.ContentChanged{})
}

func (p *Page) touch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = p.now()
}

func (p *Page) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Close detaches every subscription.
func (p *Page) Close() {
	p.Gallery.Unmount()
	p.Viewer.Unmount()
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
}
