package page

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the live page of every browser session.
type Registry struct {
	deps     Deps
	maxIdle  time.Duration
	maxPages int
	newID    func() string

	mu    sync.Mutex
	pages map[string]*Page
}

// NewRegistry creates an empty registry. Pages untouched for maxIdle are
// closed by Prune. At most maxPages pages are live at once; creating one more
// closes the least recently seen. maxPages <= 0 means no bound.
func NewRegistry(deps Deps, maxIdle time.Duration, maxPages int) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Registry{
		deps:     deps,
		maxIdle:  maxIdle,
		maxPages: maxPages,
		newID:    uuid.NewString,
		pages:    make(map[string]*Page),
	}
}

// Get returns the session's page and marks it as active.
func (r *Registry) Get(id string) (*Page, bool) {
	r.mu.Lock()
	p, ok := r.pages[id]
	r.mu.Unlock()
	if ok {
		p.touch()
	}
	return p, ok
}

// Create mounts a page for a new session.
func (r *Registry) Create(ctx context.Context) *Page {
	p := New(ctx, r.newID(), r.deps)

	r.mu.Lock()
	var evicted *Page
	if r.maxPages > 0 && len(r.pages) >= r.maxPages {
		evicted = r.leastRecentLocked()
		delete(r.pages, evicted.ID)
	}
	r.pages[p.ID] = p
	r.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		r.deps.Logger.Info("page limit reached, evicted least recent", "session", evicted.ID, "max_pages", r.maxPages)
	}
	r.deps.Logger.Debug("page created", "session", p.ID)
	return p
}

// leastRecentLocked returns the page seen longest ago. Callers hold r.mu and
// guarantee the map is not empty.
func (r *Registry) leastRecentLocked() *Page {
	var oldest *Page
	var oldestSeen time.Time
	for _, p := range r.pages {
		seen := p.idleSince()
		if oldest == nil || seen.Before(oldestSeen) {
			oldest, oldestSeen = p, seen
		}
	}
	return oldest
}

// Len reports the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Prune closes pages idle for longer than maxIdle and returns how many it
// removed.
func (r *Registry) Prune() int {
	cutoff := r.deps.Now().Add(-r.maxIdle)

	r.mu.Lock()
	var stale []*Page
	for id, p := range r.pages {
		if p.idleSince().Before(cutoff) {
			stale = append(stale, p)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	for _, p := range stale {
		p.Close()
	}
	if len(stale) > 0 {
		r.deps.Logger.Info("pruned idle pages", "count", len(stale))
	}
	return len(stale)
}

// Run prunes on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Prune()
		}
	}
}
