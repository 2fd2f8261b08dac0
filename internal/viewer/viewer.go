// Package viewer implements the full-screen overlay that shows whichever item
// was last selected anywhere on the page.
package viewer

import (
	"context"
	"sync"

	"github.com/memewall/service/internal/bus"
	"github.com/memewall/service/internal/media"
)

// State is Hidden or Visible.
type State string

const (
	StateHidden  State = "hidden"
	StateVisible State = "visible"
)

// ScrollLocker controls page-level scrolling.
type ScrollLocker interface {
	LockScroll()
	UnlockScroll()
}

// Element is the media element currently attached to the overlay.
type Element struct {
	Kind     media.Kind
	URL      string
	Controls bool
	Autoplay bool
}

// Viewer is the overlay widget. It has no keyboard handling.
type Viewer struct {
	scroll ScrollLocker

	mu          sync.Mutex
	unsubscribe func()
	state       State
	element     *Element
}

// New creates a hidden Viewer.
func New(scroll ScrollLocker) *Viewer {
	return &Viewer{scroll: scroll, state: StateHidden}
}

// Mount subscribes once to selection on the page bus; any publisher opens
// the viewer.
func (v *Viewer) Mount(b bus.Subscriber) {
	unsubscribe := b.Subscribe(bus.TopicSelection, func(_ context.Context, ev bus.Event) {
		if sel, ok := ev.(bus.Selection); ok {
			v.Show(sel.Item)
		}
	})

	v.mu.Lock()
	v.unsubscribe = unsubscribe
	v.mu.Unlock()
}

// Unmount stops listening for selections.
func (v *Viewer) Unmount() {
	v.mu.Lock()
	unsubscribe := v.unsubscribe
	v.unsubscribe = nil
	v.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Show replaces the overlay content with item and makes it visible. Videos
// get transport controls and autoplay.
func (v *Viewer) Show(item media.Item) {
	el := &Element{Kind: item.Kind(), URL: item.URL}
	if el.Kind == media.KindVideo {
		el.Controls = true
		el.Autoplay = true
	}

	v.mu.Lock()
	v.element = el
	v.state = StateVisible
	v.mu.Unlock()

	v.scroll.LockScroll()
}

// Close detaches the media element, hides the overlay and restores page
// scrolling. Backdrop and close button both end up here.
func (v *Viewer) Close() {
	v.mu.Lock()
	v.element = nil
	v.state = StateHidden
	v.mu.Unlock()

	v.scroll.UnlockScroll()
}

// State returns whether the overlay is shown.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Element returns a copy of the attached media element, or nil when hidden.
func (v *Viewer) Element() *Element {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.element == nil {
		return nil
	}
	el := *v.element
	return &el
}
