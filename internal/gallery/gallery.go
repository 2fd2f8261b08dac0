// Package gallery implements the gallery widget: it fetches the listing on
// mount, on sort change and on content-changed, renders one tile per item and
// announces the activated tile as a selection.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/memewall/service/internal/bus"
	"github.com/memewall/service/internal/media"
)

// State is the result of the most recent fetch.
type State string

const (
	StateLoading   State = "loading"
	StatePopulated State = "populated"
	StateEmpty     State = "empty"
	StateErrored   State = "errored"
)

// Placeholder texts.
const (
	MessageLoading = "Loading memes..."
	MessageEmpty   = "No memes yet. Be the first to upload one!"
)

// ErrTileNotFound is returned when an activated tile is not in the snapshot.
var ErrTileNotFound = errors.New("tile not found")

// Lister fetches the current listing.
type Lister interface {
	List(ctx context.Context) ([]media.Item, error)
}

// Bus is the part of the page bus the gallery needs.
type Bus interface {
	bus.Publisher
	bus.Subscriber
}

// Gallery is the gallery widget. Every fetch replaces the whole snapshot;
// concurrent fetches are not coalesced and the last one to finish wins.
type Gallery struct {
	lister Lister
	logger *slog.Logger

	mu          sync.Mutex
	pub         bus.Publisher
	unsubscribe func()
	state       State
	policy      media.SortPolicy
	items       []media.Item
	message     string
}

// New creates a Gallery sorted newest first.
func New(lister Lister, logger *slog.Logger) *Gallery {
	return &Gallery{
		lister:  lister,
		logger:  logger,
		state:   StateLoading,
		policy:  media.SortNewest,
		message: MessageLoading,
	}
}

// Mount subscribes to content-changed on b and performs the initial fetch.
func (g *Gallery) Mount(ctx context.Context, b Bus) {
	unsubscribe := b.Subscribe(bus.TopicContentChanged, func(ctx context.Context, _ bus.Event) {
		g.Refresh(ctx)
	})

	g.mu.Lock()
	g.pub = b
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	g.Refresh(ctx)
}

// Unmount stops listening for content-changed.
func (g *Gallery) Unmount() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// SetSort changes the sort policy and refetches.
func (g *Gallery) SetSort(ctx context.Context, policy media.SortPolicy) {
	g.mu.Lock()
	g.policy = policy
	g.mu.Unlock()

	g.Refresh(ctx)
}

// Refresh shows the loading placeholder, fetches the listing and renders it
// with the policy selected when the fetch completes. A fetch error replaces
// the grid with an error message.
func (g *Gallery) Refresh(ctx context.Context) {
	g.mu.Lock()
	g.state = StateLoading
	g.message = MessageLoading
	g.mu.Unlock()

	items, err := g.lister.List(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case err != nil:
		g.logger.Warn("gallery fetch failed", "error", err)
		g.state = StateErrored
		g.items = nil
		g.message = fmt.Sprintf("Error loading memes: %s", err)
	case len(items) == 0:
		g.state = StateEmpty
		g.items = nil
		g.message = MessageEmpty
	default:
		g.state = StatePopulated
		g.items = media.Sort(items, g.policy, nil)
		g.message = ""
	}
}

// Activate publishes a selection for the tile at index in the current
// snapshot.
func (g *Gallery) Activate(ctx context.Context, index int) error {
	g.mu.Lock()
	if g.state != StatePopulated || index < 0 || index >= len(g.items) {
		g.mu.Unlock()
		return ErrTileNotFound
	}
	item := g.items[index]
	pub := g.pub
	g.mu.Unlock()

	if pub != nil {
		pub.Publish(ctx, bus.Selection{Item: item})
	}
	return nil
}

// State returns the state of the last fetch.
func (g *Gallery) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Policy returns the selected sort policy.
func (g *Gallery) Policy() media.SortPolicy {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.policy
}

// Items returns a copy of the rendered snapshot.
func (g *Gallery) Items() []media.Item {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]media.Item(nil), g.items...)
}

// Message returns the placeholder or error text, empty when populated.
func (g *Gallery) Message() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.message
}
