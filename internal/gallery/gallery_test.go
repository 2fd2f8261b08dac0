package gallery

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/memewall/service/internal/bus"
	"github.com/memewall/service/internal/logging"
	"github.com/memewall/service/internal/media"
)

type fakeLister struct {
	mu    sync.Mutex
	items []media.Item
	err   error
	calls int
}

func (l *fakeLister) List(context.Context) ([]media.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return slices.Clone(l.items), l.err
}

func (l *fakeLister) set(items []media.Item, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items, l.err = items, err
}

func mounted(t *testing.T, l Lister) (*Gallery, *bus.Bus) {
	t.Helper()
	b := bus.New()
	g := New(l, logging.Discard())
	g.Mount(context.Background(), b)
	return g, b
}

func itemNames(items []media.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

var scenario = []media.Item{
	{Name: "a.png", URL: "https://x/a.png"},
	{Name: "b.mp4", URL: "https://x/b.mp4"},
}

func TestMount_FetchesAndSortsNewestFirst(t *testing.T) {
	l := &fakeLister{items: scenario}
	g, _ := mounted(t, l)

	if l.calls != 1 {
		t.Errorf("expected one fetch on mount, got %d", l.calls)
	}
	if g.State() != StatePopulated {
		t.Fatalf("expected populated, got %q", g.State())
	}
	if got := itemNames(g.Items()); !slices.Equal(got, []string{"b.mp4", "a.png"}) {
		t.Errorf("unexpected order %v", got)
	}
}

func TestSetSort_Refetches(t *testing.T) {
	l := &fakeLister{items: scenario}
	g, _ := mounted(t, l)

	g.SetSort(context.Background(), media.SortOldest)

	if l.calls != 2 {
		t.Errorf("expected refetch on sort change, got %d fetches", l.calls)
	}
	if got := itemNames(g.Items()); !slices.Equal(got, []string{"a.png", "b.mp4"}) {
		t.Errorf("unexpected order %v", got)
	}

	g.SetSort(context.Background(), media.SortRandom)
	got := itemNames(g.Items())
	slices.Sort(got)
	if !slices.Equal(got, []string{"a.png", "b.mp4"}) {
		t.Errorf("random order is not a permutation: %v", got)
	}
}

func TestEmptyListing(t *testing.T) {
	g, _ := mounted(t, &fakeLister{})

	if g.State() != StateEmpty {
		t.Errorf("expected empty, got %q", g.State())
	}
	if g.Message() != MessageEmpty {
		t.Errorf("unexpected message %q", g.Message())
	}
}

func TestFetchError_ReplacesGrid(t *testing.T) {
	l := &fakeLister{items: scenario}
	g, _ := mounted(t, l)

	l.set(nil, errors.New("network down"))
	g.Refresh(context.Background())

	if g.State() != StateErrored {
		t.Fatalf("expected errored, got %q", g.State())
	}
	if g.Message() != "Error loading memes: network down" {
		t.Errorf("unexpected message %q", g.Message())
	}
	if len(g.Items()) != 0 {
		t.Error("expected stale items to be dropped")
	}
}

func TestContentChanged_Refetches(t *testing.T) {
	l := &fakeLister{}
	g, b := mounted(t, l)

	l.set(scenario, nil)
	b.Publish(context.Background(), bus.ContentChanged{})

	if l.calls != 2 {
		t.Errorf("expected refetch on content-changed, got %d fetches", l.calls)
	}
	if g.State() != StatePopulated {
		t.Errorf("expected populated, got %q", g.State())
	}
}

func TestUnmount_StopsListening(t *testing.T) {
	l := &fakeLister{}
	g, b := mounted(t, l)

	g.Unmount()
	g.Unmount()
	b.Publish(context.Background(), bus.ContentChanged{})

	if l.calls != 1 {
		t.Errorf("expected no refetch after unmount, got %d fetches", l.calls)
	}
}

func TestActivate_PublishesSelection(t *testing.T) {
	g, b := mounted(t, &fakeLister{items: scenario})

	var selected []media.Item
	b.Subscribe(bus.TopicSelection, func(_ context.Context, ev bus.Event) {
		selected = append(selected, ev.(bus.Selection).Item)
	})

	if err := g.Activate(context.Background(), 0); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	want := media.Item{Name: "b.mp4", URL: "https://x/b.mp4"}
	if len(selected) != 1 || selected[0] != want {
		t.Errorf("unexpected selection %+v", selected)
	}
}

func TestActivate_UnknownTile(t *testing.T) {
	g, _ := mounted(t, &fakeLister{items: scenario})

	for _, idx := range []int{-1, 2, 100} {
		if err := g.Activate(context.Background(), idx); !errors.Is(err, ErrTileNotFound) {
			t.Errorf("index %d: expected ErrTileNotFound, got %v", idx, err)
		}
	}

	empty, _ := mounted(t, &fakeLister{})
	if err := empty.Activate(context.Background(), 0); !errors.Is(err, ErrTileNotFound) {
		t.Errorf("expected ErrTileNotFound on empty gallery, got %v", err)
	}
}

func TestRender(t *testing.T) {
	l := &fakeLister{items: scenario}
	g, _ := mounted(t, l)

	var buf bytes.Buffer
	if err := g.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()

	video := strings.Index(html, `<video src="https://x/b.mp4" muted autoplay loop>`)
	image := strings.Index(html, `<img src="https://x/a.png" alt="Meme">`)
	if video < 0 || image < 0 {
		t.Fatalf("expected both tiles in output:\n%s", html)
	}
	if video > image {
		t.Error("expected b.mp4 tile before a.png tile")
	}
	if !strings.Contains(html, `<option value="newest" selected>`) {
		t.Error("expected newest to be the selected option")
	}
	if !strings.Contains(html, `action="/gallery/tiles/1"`) {
		t.Error("expected tile forms addressed by index")
	}

	l.set(nil, nil)
	g.Refresh(context.Background())
	buf.Reset()
	if err := g.Render(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No memes yet") {
		t.Errorf("expected empty placeholder, got %s", buf.String())
	}
}
