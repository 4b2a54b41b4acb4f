package player

import (
	"context"

	"github.com/nightwavefm/nightwave/internal/catalog"
)

// Handle is one loaded, looping audio stream. At most one exists at a time;
// the controller owns it exclusively and must Close the old handle before
// opening a new one so tracks never overlap.
type Handle interface {
	// Start begins playback. May fail when the audio device refuses the
	// stream, the analog of a browser rejecting autoplay.
	Start(ctx context.Context) error
	// Pause halts output, keeping the stream position.
	Pause()
	// Resume continues a paused stream.
	Resume() error
	// SetVolume sets output level. Values are applied as given; the handle
	// performs no clamping or validation.
	SetVolume(v float64)
	// Close releases the stream. Safe to call once, at any state.
	Close()
}

// Factory opens handles for catalog tracks. The real implementation fetches
// and decodes audio; tests substitute fakes.
type Factory interface {
	Open(ctx context.Context, track catalog.Track) (Handle, error)
}

// SilentFactory produces handles that track state but emit no sound, for
// machines without an audio device (--no-audio).
type SilentFactory struct{}

// Open returns a no-op handle.
func (SilentFactory) Open(ctx context.Context, track catalog.Track) (Handle, error) {
	return &silentHandle{}, nil
}

type silentHandle struct{}

func (*silentHandle) Start(context.Context) error { return nil }
func (*silentHandle) Pause()                      {}
func (*silentHandle) Resume() error               { return nil }
func (*silentHandle) SetVolume(float64)           {}
func (*silentHandle) Close()                      {}
