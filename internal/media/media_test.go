package media

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestKindFromName(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"clip.mp4", KindVideo},
		{"clip.webm", KindVideo},
		{"clip.MP4", KindImage},
		{"clip.WEBM", KindImage},
		{"photo.png", KindImage},
		{"mp4", KindImage},
		{"archive.mp4.zip", KindImage},
		{"", KindImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindFromName(tt.name); got != tt.want {
				t.Errorf("KindFromName(%q) = %q, want %q", tt.name, got, tt.want)
			}
			if got := (Item{Name: tt.name}).Kind(); got != tt.want {
				t.Errorf("Item.Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindFromMIME(t *testing.T) {
	tests := []struct {
		contentType string
		want        Kind
	}{
		{"image/png", KindImage},
		{"image/gif", KindImage},
		{"video/mp4", KindVideo},
		{"video/webm", KindVideo},
		{"application/octet-stream", KindUnknown},
		{"", KindUnknown},
		{"text/plain", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := KindFromMIME(tt.contentType); got != tt.want {
				t.Errorf("KindFromMIME(%q) = %q, want %q", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestClassificationRulesAreIndependent(t *testing.T) {
	// A file named like a video but typed as an image previews as an image,
	// and lists as a video once uploaded.
	f := File{Name: "funny.mp4", ContentType: "image/png"}
	if KindFromMIME(f.ContentType) != KindImage {
		t.Error("expected MIME rule to classify as image")
	}
	if KindFromName(f.Name) != KindVideo {
		t.Error("expected extension rule to classify as video")
	}
}

func TestFile_Extension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"cat.png", "png"},
		{"archive.tar.gz", "gz"},
		{"noext", "noext"},
		{".hidden", "hidden"},
		{"trailing.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (File{Name: tt.name}).Extension(); got != tt.want {
				t.Errorf("Extension() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuccessCount(t *testing.T) {
	outcomes := []UploadOutcome{
		{Success: true, URL: "a"},
		{Success: false, Error: "boom"},
		{Success: true, URL: "b"},
	}
	if got := SuccessCount(outcomes); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := SuccessCount(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestParseSortPolicy(t *testing.T) {
	tests := map[string]SortPolicy{
		"newest": SortNewest,
		"oldest": SortOldest,
		"random": SortRandom,
		"":       SortNewest,
		"Oldest": SortNewest,
	}
	for in, want := range tests {
		if got := ParseSortPolicy(in); got != want {
			t.Errorf("ParseSortPolicy(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSort_Scenario(t *testing.T) {
	items := []Item{{Name: "a.png"}, {Name: "b.mp4"}}

	if got := names(Sort(items, SortNewest, nil)); !slices.Equal(got, []string{"b.mp4", "a.png"}) {
		t.Errorf("newest: got %v", got)
	}
	if got := names(Sort(items, SortOldest, nil)); !slices.Equal(got, []string{"a.png", "b.mp4"}) {
		t.Errorf("oldest: got %v", got)
	}
}

func TestSort_NewestReversedEqualsOldest(t *testing.T) {
	inputs := [][]Item{
		{{Name: "x"}},
		{{Name: "b"}, {Name: "a"}, {Name: "c"}},
		{{Name: "0.41.png"}, {Name: "0.9.mp4"}, {Name: "0.123.gif"}, {Name: "0.9.mp4"}},
		{{Name: "Zebra"}, {Name: "apple"}, {Name: "Apple"}, {Name: "zebra"}},
	}

	for _, in := range inputs {
		newest := names(Sort(in, SortNewest, nil))
		oldest := names(Sort(in, SortOldest, nil))
		slices.Reverse(newest)
		if !slices.Equal(newest, oldest) {
			t.Errorf("reversed newest %v != oldest %v", newest, oldest)
		}
	}
}

func TestSort_RandomIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	inputs := [][]Item{
		nil,
		{},
		{{Name: "only.png"}},
		{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "b"}},
	}

	for _, in := range inputs {
		for range 20 {
			got := names(Sort(in, SortRandom, rng))
			want := names(in)
			slices.Sort(got)
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Fatalf("random sort of %v produced non-permutation %v", want, got)
			}
		}
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := []Item{{Name: "b"}, {Name: "c"}, {Name: "a"}}
	before := names(in)

	for _, p := range SortPolicies {
		Sort(in, p, nil)
	}

	if !slices.Equal(names(in), before) {
		t.Errorf("input reordered: %v", names(in))
	}
}
