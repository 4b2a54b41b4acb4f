package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// Smoothstep returns the smoothstep interpolation 3t^2 - 2t^3 for t in [0,1].
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Fader wraps a streamer with a smoothstep gain ramp on either end: samples
// ramp up from silence when the stream starts, and Release begins a ramp
// down after which the stream reports drained. Releasing the previous track
// through a short ramp keeps switches from clicking.
type Fader struct {
	mu       sync.Mutex
	s        beep.Streamer
	rampLen  int // samples per ramp
	attacked int // samples played during attack
	released int // samples played since Release, -1 while not released
	drained  bool
}

// NewFader wraps s with rampLen-sample attack and release ramps.
func NewFader(s beep.Streamer, rampLen int) *Fader {
	return &Fader{s: s, rampLen: rampLen, released: -1}
}

// Release starts the fade-out. After rampLen further samples the fader
// drains. Calling it again has no effect.
func (f *Fader) Release() {
	f.mu.Lock()
	if f.released < 0 {
		f.released = 0
	}
	f.mu.Unlock()
}

// Released reports whether the fade-out has begun.
func (f *Fader) Released() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released >= 0
}

// Stream fills samples, applying the current ramp gain.
func (f *Fader) Stream(samples [][2]float64) (n int, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.drained {
		return 0, false
	}

	n, ok = f.s.Stream(samples)
	for i := 0; i < n; i++ {
		gain := 1.0
		if f.attacked < f.rampLen {
			gain = Smoothstep(float64(f.attacked) / float64(f.rampLen))
			f.attacked++
		}
		if f.released >= 0 {
			if f.released >= f.rampLen {
				gain = 0
			} else {
				gain *= 1 - Smoothstep(float64(f.released)/float64(f.rampLen))
				f.released++
			}
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
	}

	if f.released >= f.rampLen {
		f.drained = true
		if n > 0 {
			return n, true
		}
		return 0, false
	}
	return n, ok
}

// Err returns the wrapped streamer's error.
func (f *Fader) Err() error {
	return f.s.Err()
}
