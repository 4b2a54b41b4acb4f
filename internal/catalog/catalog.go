package catalog

import (
	"errors"
	"math/rand/v2"

	"github.com/samber/lo"
)

// ErrEmpty is returned when a catalog is constructed with no entries.
var ErrEmpty = errors.New("catalog: no entries")

// Track is one audio entry in the station rotation.
type Track struct {
	Title string
	URL   string
}

// Backdrop is one decorative scene. Palette holds the colors the UI uses to
// paint the scene panel, darkest first.
type Backdrop struct {
	Name    string
	Palette []string
}

// Tracks is a fixed, ordered track catalog. It is never mutated after New.
type Tracks struct {
	entries []Track
}

// NewTracks builds a track catalog. The catalog must be non-empty.
func NewTracks(entries []Track) (*Tracks, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return &Tracks{entries: append([]Track(nil), entries...)}, nil
}

// Len returns the number of tracks.
func (t *Tracks) Len() int { return len(t.entries) }

// At returns the track at index i. Valid returns whether i is a usable index.
func (t *Tracks) At(i int) Track { return t.entries[i] }

// Valid reports whether i is a valid track index.
func (t *Tracks) Valid(i int) bool { return i >= 0 && i < len(t.entries) }

// Pick draws a uniformly random track index. Both directional skip controls
// use this rather than stepping sequentially, matching the station's shuffle
// behavior.
func (t *Tracks) Pick(rng *rand.Rand) int {
	return rng.IntN(len(t.entries))
}

// Titles returns the display titles in catalog order.
func (t *Tracks) Titles() []string {
	return lo.Map(t.entries, func(tr Track, _ int) string { return tr.Title })
}

// Backdrops is a fixed, ordered backdrop catalog.
type Backdrops struct {
	entries []Backdrop
}

// NewBackdrops builds a backdrop catalog. The catalog must be non-empty.
func NewBackdrops(entries []Backdrop) (*Backdrops, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return &Backdrops{entries: append([]Backdrop(nil), entries...)}, nil
}

// Len returns the number of backdrops.
func (b *Backdrops) Len() int { return len(b.entries) }

// At returns the backdrop at index i.
func (b *Backdrops) At(i int) Backdrop { return b.entries[i] }

// Pick draws a uniformly random backdrop.
func (b *Backdrops) Pick(rng *rand.Rand) Backdrop {
	return b.entries[rng.IntN(len(b.entries))]
}
