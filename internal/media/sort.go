package media

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// SortPolicy orders a listing snapshot at render time.
type SortPolicy string

const (
	SortNewest SortPolicy = "newest"
	SortOldest SortPolicy = "oldest"
	SortRandom SortPolicy = "random"
)

// SortPolicies lists the policies in the order they are offered to users.
var SortPolicies = []SortPolicy{SortNewest, SortOldest, SortRandom}

// ParseSortPolicy maps user input to a policy, falling back to SortNewest.
func ParseSortPolicy(s string) SortPolicy {
	switch p := SortPolicy(s); p {
	case SortNewest, SortOldest, SortRandom:
		return p
	default:
		return SortNewest
	}
}

// Label is the human-readable option text.
func (p SortPolicy) Label() string {
	switch p {
	case SortOldest:
		return "Oldest first"
	case SortRandom:
		return "Random"
	default:
		return "Newest first"
	}
}

// Sort returns a sorted copy of items; the input slice is never reordered.
// Newest and oldest compare names lexicographically. Random shuffles with rng,
// or with the global source when rng is nil; the only promise it makes is that
// the result is a permutation of the input.
func Sort(items []Item, policy SortPolicy, rng *rand.Rand) []Item {
	sorted := slices.Clone(items)
	if sorted == nil {
		sorted = []Item{}
	}

	switch policy {
	case SortOldest:
		slices.SortStableFunc(sorted, func(a, b Item) int {
			return strings.Compare(a.Name, b.Name)
		})
	case SortRandom:
		shuffle := rand.Shuffle
		if rng != nil {
			shuffle = rng.Shuffle
		}
		shuffle(len(sorted), func(i, j int) {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		})
	default:
		slices.SortStableFunc(sorted, func(a, b Item) int {
			return strings.Compare(b.Name, a.Name)
		})
	}

	return sorted
}
