// Package bus is the page-wide notification channel widgets use to talk to
// each other without holding references. Any publisher reaches every
// subscriber of a topic; neither side knows the other's identity.
package bus

import (
	"context"
	"sync"

	"github.com/memewall/service/internal/media"
)

// Topics carried on the bus.
const (
	TopicContentChanged = "content-changed"
	TopicSelection      = "selection"
)

// Event is a named, typed notification.
type Event interface {
	Topic() string
}

// ContentChanged announces that stored media changed and listings are stale.
type ContentChanged struct{}

func (ContentChanged) Topic() string { return TopicContentChanged }

// Selection carries the item a user activated in a gallery.
type Selection struct {
	Item media.Item
}

func (Selection) Topic() string { return TopicSelection }

// Handler reacts to a published event.
type Handler func(ctx context.Context, ev Event)

// Publisher is the sending half of the bus.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Subscriber is the receiving half of the bus.
type Subscriber interface {
	Subscribe(topic string, h Handler) (unsubscribe func())
}

type subscription struct {
	id int
	h  Handler
}

// Bus dispatches events synchronously, in subscription order, on the
// publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers h for topic. The returned func removes it and is safe
// to call more than once.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, h: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

// Publish delivers ev to every current subscriber of its topic. Handlers may
// subscribe or publish themselves; they see a snapshot taken at publish time.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[ev.Topic()]))
	copy(subs, b.subs[ev.Topic()])
	b.mu.RUnlock()

	for _, s := range subs {
		s.h(ctx, ev)
	}
}

func (b *Bus) remove(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}
