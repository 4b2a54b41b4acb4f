package player

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/nightwavefm/nightwave/internal/catalog"
	"github.com/nightwavefm/nightwave/internal/events"
)

// fakeHandle records the commands the controller issues.
type fakeHandle struct {
	volume    float64
	paused    bool
	closed    bool
	startErr  error
	resumeErr error
}

func (h *fakeHandle) Start(ctx context.Context) error { return h.startErr }
func (h *fakeHandle) Pause()                          { h.paused = true }
func (h *fakeHandle) Resume() error {
	if h.resumeErr != nil {
		return h.resumeErr
	}
	h.paused = false
	return nil
}
func (h *fakeHandle) SetVolume(v float64) { h.volume = v }
func (h *fakeHandle) Close()              { h.closed = true }

// fakeFactory hands out pre-built handles in order, or fails.
type fakeFactory struct {
	opened  []*fakeHandle
	openErr error
	next    *fakeHandle
}

func (f *fakeFactory) Open(ctx context.Context, track catalog.Track) (Handle, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	h := f.next
	if h == nil {
		h = &fakeHandle{}
	}
	f.next = nil
	f.opened = append(f.opened, h)
	return h, nil
}

func testTracks(t *testing.T, n int) *catalog.Tracks {
	t.Helper()
	entries := make([]catalog.Track, n)
	for i := range entries {
		entries[i] = catalog.Track{Title: "t", URL: "u"}
	}
	tr, err := catalog.NewTracks(entries)
	if err != nil {
		t.Fatalf("NewTracks: %v", err)
	}
	return tr
}

func testBackdrops(t *testing.T) *catalog.Backdrops {
	t.Helper()
	b, err := catalog.NewBackdrops(catalog.DefaultBackdrops)
	if err != nil {
		t.Fatalf("NewBackdrops: %v", err)
	}
	return b
}

func newTestController(t *testing.T, factory Factory) (*Controller, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	c := NewController(Options{
		Tracks:        testTracks(t, 4),
		Backdrops:     testBackdrops(t),
		Bus:           bus,
		Factory:       factory,
		RNG:           rand.New(rand.NewPCG(1, 1)),
		DefaultVolume: 0.5,
		VolumeStep:    0.1,
	})
	return c, bus
}

// drainKind counts buffered events of a kind on a subscriber.
func drainKind(sub *events.Subscriber, kind events.Kind) int {
	n := 0
	for {
		select {
		case ev := <-sub.C:
			if ev.Kind == kind {
				n++
			}
		default:
			return n
		}
	}
}

func TestInitialState(t *testing.T) {
	c, _ := newTestController(t, &fakeFactory{})
	if c.Playing() {
		t.Error("new controller reports playing")
	}
	if c.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex = %d, want 0", c.CurrentIndex())
	}
	if c.Glyph() != GlyphPlay {
		t.Errorf("Glyph = %q, want %q", c.Glyph(), GlyphPlay)
	}
	if c.Backdrop().Name == "" {
		t.Error("no initial backdrop picked")
	}
}

func TestLoadTrackSetsIndex(t *testing.T) {
	c, _ := newTestController(t, &fakeFactory{})
	for i := 0; i < 4; i++ {
		if err := c.LoadTrack(context.Background(), i); err != nil {
			t.Fatalf("LoadTrack(%d): %v", i, err)
		}
		if c.CurrentIndex() != i {
			t.Errorf("after LoadTrack(%d): CurrentIndex = %d", i, c.CurrentIndex())
		}
	}
}

func TestLoadTrackInvalidIndex(t *testing.T) {
	c, bus := newTestController(t, &fakeFactory{})
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	for _, idx := range []int{-1, 4, 100} {
		if err := c.LoadTrack(context.Background(), idx); !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("LoadTrack(%d) error = %v, want ErrInvalidIndex", idx, err)
		}
	}
	if c.CurrentIndex() != 0 {
		t.Errorf("invalid load moved index to %d", c.CurrentIndex())
	}
	if n := drainKind(sub, events.BackdropChanged); n != 0 {
		t.Errorf("invalid load changed backdrop %d times", n)
	}
}

func TestLoadTrackStartsPlayback(t *testing.T) {
	f := &fakeFactory{}
	c, _ := newTestController(t, f)

	if err := c.LoadTrack(context.Background(), 0); err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	if !c.Playing() {
		t.Error("not playing after successful load")
	}
	if c.Glyph() != GlyphPause {
		t.Errorf("Glyph = %q, want %q", c.Glyph(), GlyphPause)
	}
	if len(f.opened) != 1 {
		t.Fatalf("opened %d handles, want 1", len(f.opened))
	}
	if f.opened[0].volume != 0.5 {
		t.Errorf("handle volume = %v, want default 0.5", f.opened[0].volume)
	}
}

func TestLoadTrackReleasesPreviousHandle(t *testing.T) {
	f := &fakeFactory{}
	c, _ := newTestController(t, f)

	c.LoadTrack(context.Background(), 0)
	c.LoadTrack(context.Background(), 1)

	if len(f.opened) != 2 {
		t.Fatalf("opened %d handles, want 2", len(f.opened))
	}
	if !f.opened[0].closed {
		t.Error("first handle not closed before second load")
	}
	if f.opened[1].closed {
		t.Error("active handle closed")
	}
}

func TestLoadTrackFailureKeepsPlayingFlag(t *testing.T) {
	f := &fakeFactory{}
	c, bus := newTestController(t, f)

	// Get into the playing state first.
	c.LoadTrack(context.Background(), 0)

	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	f.openErr = errors.New("decode failed")
	if err := c.LoadTrack(context.Background(), 2); err != nil {
		t.Fatalf("LoadTrack returned %v; failures are reported, not returned", err)
	}

	if !c.Playing() {
		t.Error("playing flag changed by a failed load")
	}
	if c.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex = %d, want 2 even on failure", c.CurrentIndex())
	}
	if n := drainKind(sub, events.Notice); n != 1 {
		t.Errorf("published %d notices, want 1", n)
	}
}

func TestLoadTrackStartErrClosesHandle(t *testing.T) {
	h := &fakeHandle{startErr: errors.New("device busy")}
	f := &fakeFactory{next: h}
	c, _ := newTestController(t, f)

	c.LoadTrack(context.Background(), 0)
	if c.Playing() {
		t.Error("playing after failed start")
	}
	if !h.closed {
		t.Error("failed handle not closed")
	}
}

func TestEveryLoadChangesBackdropOnce(t *testing.T) {
	f := &fakeFactory{}
	c, bus := newTestController(t, f)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	c.LoadTrack(context.Background(), 1)
	if n := drainKind(sub, events.BackdropChanged); n != 1 {
		t.Errorf("successful load changed backdrop %d times, want 1", n)
	}

	f.openErr = errors.New("network down")
	c.LoadTrack(context.Background(), 2)
	if n := drainKind(sub, events.BackdropChanged); n != 1 {
		t.Errorf("failed load changed backdrop %d times, want 1", n)
	}
}

func TestTogglePlayLoadsWhenNothingActive(t *testing.T) {
	f := &fakeFactory{}
	c, _ := newTestController(t, f)

	if err := c.TogglePlay(context.Background()); err != nil {
		t.Fatalf("TogglePlay: %v", err)
	}
	if len(f.opened) != 1 {
		t.Fatalf("opened %d handles, want 1", len(f.opened))
	}
	if !c.Playing() || c.Glyph() != GlyphPause {
		t.Errorf("Playing=%v Glyph=%q after first toggle", c.Playing(), c.Glyph())
	}
}

func TestTogglePlayAlternatesGlyph(t *testing.T) {
	c, _ := newTestController(t, &fakeFactory{})
	ctx := context.Background()

	want := []string{GlyphPause, GlyphPlay, GlyphPause, GlyphPlay, GlyphPause}
	for i, w := range want {
		c.TogglePlay(ctx)
		if c.Glyph() != w {
			t.Errorf("toggle %d: Glyph = %q, want %q", i+1, c.Glyph(), w)
		}
	}
}

func TestTogglePlayPausesHandle(t *testing.T) {
	h := &fakeHandle{}
	f := &fakeFactory{next: h}
	c, _ := newTestController(t, f)
	ctx := context.Background()

	c.TogglePlay(ctx)
	c.TogglePlay(ctx)
	if !h.paused {
		t.Error("handle not paused")
	}
	if c.Playing() {
		t.Error("controller still playing after pause")
	}

	c.TogglePlay(ctx)
	if h.paused {
		t.Error("handle not resumed")
	}
	if !c.Playing() {
		t.Error("controller not playing after resume")
	}
}

func TestResumeFailureLeavesPaused(t *testing.T) {
	h := &fakeHandle{resumeErr: errors.New("device gone")}
	f := &fakeFactory{next: h}
	c, bus := newTestController(t, f)
	ctx := context.Background()

	c.TogglePlay(ctx) // load + play
	c.TogglePlay(ctx) // pause

	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	c.TogglePlay(ctx) // resume fails
	if c.Playing() {
		t.Error("playing flag flipped although resume failed")
	}
	if c.Glyph() != GlyphPlay {
		t.Errorf("Glyph = %q, want %q after failed resume", c.Glyph(), GlyphPlay)
	}
	if n := drainKind(sub, events.Notice); n != 1 {
		t.Errorf("published %d notices, want 1", n)
	}
}

func TestChangeVolumeRequiresHandle(t *testing.T) {
	c, _ := newTestController(t, &fakeFactory{})
	if err := c.ChangeVolume(0.3); !errors.Is(err, ErrNoHandle) {
		t.Errorf("ChangeVolume without handle = %v, want ErrNoHandle", err)
	}
}

func TestChangeVolumePassesThroughUnvalidated(t *testing.T) {
	h := &fakeHandle{}
	f := &fakeFactory{next: h}
	c, _ := newTestController(t, f)
	c.LoadTrack(context.Background(), 0)

	for _, v := range []float64{0.25, 0, 1, 1.7, -0.4} {
		if err := c.ChangeVolume(v); err != nil {
			t.Fatalf("ChangeVolume(%v): %v", v, err)
		}
		if h.volume != v {
			t.Errorf("handle volume = %v, want %v exactly", h.volume, v)
		}
		if c.Volume() != v {
			t.Errorf("Volume() = %v, want %v", c.Volume(), v)
		}
	}
}

func TestNudgeVolumeStepsAndClamps(t *testing.T) {
	h := &fakeHandle{}
	f := &fakeFactory{next: h}
	c, _ := newTestController(t, f)
	c.LoadTrack(context.Background(), 0) // volume now 0.5

	// Five nudges up from 0.5 land on exactly 1.0 and stay there.
	for i := 0; i < 5; i++ {
		c.NudgeVolume(+1)
	}
	if c.Volume() != 1.0 {
		t.Errorf("after 5 nudges up: Volume = %v, want exactly 1.0", c.Volume())
	}
	c.NudgeVolume(+1)
	if c.Volume() != 1.0 {
		t.Errorf("nudge past max: Volume = %v, want 1.0", c.Volume())
	}

	for i := 0; i < 12; i++ {
		c.NudgeVolume(-1)
	}
	if c.Volume() != 0.0 {
		t.Errorf("nudge past min: Volume = %v, want 0.0", c.Volume())
	}
	if h.volume != 0.0 {
		t.Errorf("handle volume = %v, want 0.0", h.volume)
	}
}

func TestNextPrevStayInRange(t *testing.T) {
	c, _ := newTestController(t, &fakeFactory{})
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		var err error
		if i%2 == 0 {
			err = c.NextTrack(ctx)
		} else {
			err = c.PrevTrack(ctx)
		}
		if err != nil {
			t.Fatalf("skip %d: %v", i, err)
		}
		if idx := c.CurrentIndex(); idx < 0 || idx >= 4 {
			t.Fatalf("skip %d landed on index %d, out of [0,4)", i, idx)
		}
	}
}

func TestNextTrackReproducibleWithSeed(t *testing.T) {
	run := func() []int {
		bus := events.NewBus()
		c := NewController(Options{
			Tracks:        testTracks(t, 4),
			Backdrops:     testBackdrops(t),
			Bus:           bus,
			Factory:       &fakeFactory{},
			RNG:           rand.New(rand.NewPCG(77, 0)),
			DefaultVolume: 0.5,
			VolumeStep:    0.1,
		})
		var seq []int
		for i := 0; i < 20; i++ {
			c.NextTrack(context.Background())
			seq = append(seq, c.CurrentIndex())
		}
		return seq
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d: %d != %d with identical seed", i, a[i], b[i])
		}
	}
}

func TestCloseReleasesHandle(t *testing.T) {
	h := &fakeHandle{}
	f := &fakeFactory{next: h}
	c, _ := newTestController(t, f)
	c.LoadTrack(context.Background(), 0)

	c.Close()
	if !h.closed {
		t.Error("Close did not release the handle")
	}
	if c.Playing() {
		t.Error("still playing after Close")
	}
}

func TestSilentFactory(t *testing.T) {
	bus := events.NewBus()
	c := NewController(Options{
		Tracks:        testTracks(t, 4),
		Backdrops:     testBackdrops(t),
		Bus:           bus,
		Factory:       SilentFactory{},
		RNG:           rand.New(rand.NewPCG(5, 5)),
		DefaultVolume: 0.5,
		VolumeStep:    0.1,
	})
	if err := c.TogglePlay(context.Background()); err != nil {
		t.Fatalf("TogglePlay with silent factory: %v", err)
	}
	if !c.Playing() {
		t.Error("silent handle should behave like a playing track")
	}
}
