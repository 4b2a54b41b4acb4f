package player

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/nightwavefm/nightwave/internal/catalog"
	"github.com/nightwavefm/nightwave/internal/fetch"
)

// speakerRate is the shared output rate; every track is resampled to it.
const speakerRate = beep.SampleRate(44100)

// releaseRamp is the fade applied when a handle is stopped.
const releaseRamp = 120 * time.Millisecond

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	return speakerErr
}

// BeepFactory opens real audio handles: it downloads the track bytes and
// decodes them with beep.
type BeepFactory struct {
	fetcher *fetch.Client
}

// NewBeepFactory creates a factory downloading tracks with fetcher.
func NewBeepFactory(fetcher *fetch.Client) *BeepFactory {
	return &BeepFactory{fetcher: fetcher}
}

// Open downloads and decodes the track and builds the playback chain. The
// returned handle loops forever until closed.
func (f *BeepFactory) Open(ctx context.Context, track catalog.Track) (Handle, error) {
	if err := initSpeaker(); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	data, err := f.fetcher.Download(ctx, track.URL)
	if err != nil {
		return nil, err
	}

	streamer, format, err := decode(track.URL, data)
	if err != nil {
		return nil, err
	}

	// Loop forever, declick on release, pause control, match the speaker
	// rate, then volume. Same chain shape as any looping background music
	// player built on beep.
	fader := NewFader(beep.Loop(-1, streamer), speakerRate.N(releaseRamp))
	ctrl := &beep.Ctrl{Streamer: fader}
	resampled := beep.Resample(4, format.SampleRate, speakerRate, ctrl)
	vol := &effects.Volume{Streamer: resampled, Base: 2}

	return &beepHandle{
		streamer: streamer,
		fader:    fader,
		ctrl:     ctrl,
		vol:      vol,
	}, nil
}

// decode picks a decoder from the URL's file extension. Unknown extensions
// are tried as mp3, the catalog's dominant format.
func decode(rawURL string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}

	rc := nopCloser{bytes.NewReader(data)}
	switch ext {
	case ".wav":
		return wav.Decode(rc)
	case ".flac":
		return flac.Decode(rc)
	case ".ogg", ".oga":
		return vorbis.Decode(rc)
	default:
		return mp3.Decode(rc)
	}
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// beepHandle is the live playback chain for one track.
type beepHandle struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	fader    *Fader
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	started  bool
	closed   bool
}

// Start hands the chain to the speaker. The decoder is closed by a callback
// once the chain drains after Close.
func (h *beepHandle) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	h.started = true
	speaker.Play(beep.Seq(h.vol, beep.Callback(func() {
		h.streamer.Close()
	})))
	return nil
}

func (h *beepHandle) Pause() {
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
}

func (h *beepHandle) Resume() error {
	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// SetVolume maps level in (0,1] onto the volume effect's log scale; zero and
// below mean silent. Out-of-range values pass through as given.
func (h *beepHandle) SetVolume(v float64) {
	speaker.Lock()
	if v <= 0 {
		h.vol.Silent = true
	} else {
		h.vol.Silent = false
		h.vol.Volume = math.Log2(v)
	}
	speaker.Unlock()
}

// Close fades the stream out and lets it drain. Closing a paused or
// never-started handle releases it immediately.
func (h *beepHandle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true

	if !h.started {
		h.streamer.Close()
		return
	}

	speaker.Lock()
	if h.ctrl.Paused {
		// Nothing audible to fade; detach so the chain drains at once.
		h.ctrl.Streamer = nil
		h.ctrl.Paused = false
	} else {
		h.fader.Release()
	}
	speaker.Unlock()
}
