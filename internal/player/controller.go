package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/nightwavefm/nightwave/internal/catalog"
	"github.com/nightwavefm/nightwave/internal/events"
)

// Play state glyphs shown in the UI.
const (
	GlyphPlay  = "▶"
	GlyphPause = "⏸"
)

var (
	// ErrNoHandle is returned by volume changes when nothing is loaded.
	ErrNoHandle = errors.New("player: no active track")
	// ErrInvalidIndex is returned for track indices outside the catalog.
	ErrInvalidIndex = errors.New("player: invalid track index")
)

// Options configure a Controller.
type Options struct {
	Tracks        *catalog.Tracks
	Backdrops     *catalog.Backdrops
	Bus           *events.Bus
	Factory       Factory
	RNG           *rand.Rand
	DefaultVolume float64 // applied to every freshly loaded handle
	VolumeStep    float64 // keyboard nudge size
}

// Controller mediates every audio and backdrop state transition. It owns the
// current track index, the playing flag, and the single active handle; no
// other code mutates them.
type Controller struct {
	mu sync.Mutex

	tracks    *catalog.Tracks
	backdrops *catalog.Backdrops
	bus       *events.Bus
	factory   Factory
	rng       *rand.Rand

	defaultVolume float64
	volumeStep    float64

	idx      int
	playing  bool
	handle   Handle
	volume   float64
	backdrop catalog.Backdrop
}

// NewController creates a controller in the initial state: track 0 selected,
// nothing loaded, paused, with a backdrop already picked so the UI never
// renders bare.
func NewController(opts Options) *Controller {
	c := &Controller{
		tracks:        opts.Tracks,
		backdrops:     opts.Backdrops,
		bus:           opts.Bus,
		factory:       opts.Factory,
		rng:           opts.RNG,
		defaultVolume: opts.DefaultVolume,
		volumeStep:    opts.VolumeStep,
		volume:        opts.DefaultVolume,
	}
	c.backdrop = c.backdrops.Pick(c.rng)
	return c
}

// LoadTrack releases the active handle, opens a looping handle for the
// catalog entry at index, and starts it at the default volume. The playing
// flag moves to true only when playback actually starts; on failure it keeps
// its prior value and a notice is published instead. A backdrop change fires
// on every call, success or not.
func (c *Controller) LoadTrack(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.tracks.Valid(index) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	c.idx = index
	track := c.tracks.At(index)
	c.bus.Publish(events.Event{Kind: events.TrackChanged, Track: track, TrackIdx: index})
	defer c.changeBackdropLocked()

	if c.handle != nil {
		c.handle.Close()
		c.handle = nil
	}

	h, err := c.factory.Open(ctx, track)
	if err != nil {
		c.reportFailure(track, err)
		return nil
	}

	h.SetVolume(c.defaultVolume)
	c.volume = c.defaultVolume

	if err := h.Start(ctx); err != nil {
		h.Close()
		c.reportFailure(track, err)
		return nil
	}

	c.handle = h
	c.playing = true
	log.Printf("Now playing: %s", track.Title)
	c.bus.Publish(events.Event{Kind: events.PlaybackChanged, Playing: true})
	c.bus.Publish(events.Event{Kind: events.VolumeChanged, Volume: c.volume})
	return nil
}

// reportFailure logs a playback failure and surfaces one generic notice.
// The playing flag is left untouched. Must be called with mu held.
func (c *Controller) reportFailure(track catalog.Track, err error) {
	log.Printf("Playback failed for %s: %v", track.Title, err)
	c.bus.Publish(events.Event{
		Kind:    events.Notice,
		Message: "playback unavailable, try again",
	})
}

// TogglePlay flips between playing and paused. With nothing loaded it loads
// the currently selected track first.
func (c *Controller) TogglePlay(ctx context.Context) error {
	c.mu.Lock()
	if c.handle == nil {
		idx := c.idx
		c.mu.Unlock()
		return c.LoadTrack(ctx, idx)
	}
	defer c.mu.Unlock()

	if c.playing {
		c.handle.Pause()
		c.playing = false
		c.bus.Publish(events.Event{Kind: events.PlaybackChanged, Playing: false})
		return nil
	}

	if err := c.handle.Resume(); err != nil {
		c.reportFailure(c.tracks.At(c.idx), err)
		return nil
	}
	c.playing = true
	c.bus.Publish(events.Event{Kind: events.PlaybackChanged, Playing: true})
	return nil
}

// ChangeVolume sets the active handle's level to v as given, with no
// clamping or validation.
func (c *Controller) ChangeVolume(v float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return ErrNoHandle
	}
	c.handle.SetVolume(v)
	c.volume = v
	c.bus.Publish(events.Event{Kind: events.VolumeChanged, Volume: v})
	return nil
}

// NudgeVolume moves the volume one step in the given direction (+1 or -1),
// clamped to [0,1]. Steps are rounded to the step grid so five nudges up
// from 0.5 land on exactly 1.0.
func (c *Controller) NudgeVolume(dir int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	steps := 1 / c.volumeStep
	v := math.Round((c.volume+float64(dir)*c.volumeStep)*steps) / steps
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	c.volume = v
	if c.handle != nil {
		c.handle.SetVolume(v)
	}
	c.bus.Publish(events.Event{Kind: events.VolumeChanged, Volume: v})
}

// NextTrack jumps to a uniformly random track. The station shuffles rather
// than walking the catalog in order, in both directions.
func (c *Controller) NextTrack(ctx context.Context) error {
	return c.LoadTrack(ctx, c.pick())
}

// PrevTrack jumps to a uniformly random track, same as NextTrack.
func (c *Controller) PrevTrack(ctx context.Context) error {
	return c.LoadTrack(ctx, c.pick())
}

func (c *Controller) pick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracks.Pick(c.rng)
}

// ChangeBackdrop applies a uniformly random backdrop.
func (c *Controller) ChangeBackdrop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changeBackdropLocked()
}

func (c *Controller) changeBackdropLocked() {
	c.backdrop = c.backdrops.Pick(c.rng)
	c.bus.Publish(events.Event{Kind: events.BackdropChanged, Backdrop: c.backdrop})
}

// Close releases the active handle, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != nil {
		c.handle.Close()
		c.handle = nil
		c.playing = false
	}
}

// CurrentIndex returns the selected track index.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx
}

// CurrentTrack returns the selected catalog entry.
func (c *Controller) CurrentTrack() catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracks.At(c.idx)
}

// Playing reports whether audio is producing sound.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Volume returns the current level.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Backdrop returns the current backdrop.
func (c *Controller) Backdrop() catalog.Backdrop {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backdrop
}

// Glyph returns the play/pause indicator: ⏸ while playing, ▶ otherwise.
func (c *Controller) Glyph() string {
	if c.Playing() {
		return GlyphPause
	}
	return GlyphPlay
}
