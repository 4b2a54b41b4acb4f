// Package audience fakes a listener count. The original station never
// measured its audience; the number on screen is a fresh uniform draw every
// tick with no relation to any real connection. Nothing here should ever be
// wired to actual session tracking.
package audience

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/nightwavefm/nightwave/internal/events"
)

// Simulator re-rolls a fake listener count on a fixed interval and publishes
// it on the bus.
type Simulator struct {
	bus      *events.Bus
	rng      *rand.Rand
	interval time.Duration
	ceiling  int
}

// NewSimulator creates a simulator drawing counts from [0, ceiling) every
// interval.
func NewSimulator(bus *events.Bus, rng *rand.Rand, interval time.Duration, ceiling int) *Simulator {
	return &Simulator{
		bus:      bus,
		rng:      rng,
		interval: interval,
		ceiling:  ceiling,
	}
}

// Roll draws one sample. Each draw is independent of every previous one.
func (s *Simulator) Roll() int {
	return s.rng.IntN(s.ceiling)
}

// Run publishes an initial count, then a fresh one every interval. Blocks
// until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	s.bus.Publish(events.Event{Kind: events.AudienceChanged, Count: s.Roll()})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.bus.Publish(events.Event{Kind: events.AudienceChanged, Count: s.Roll()})
		}
	}
}
