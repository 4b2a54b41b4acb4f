package events

import (
	"sync"

	"github.com/nightwavefm/nightwave/internal/catalog"
)

// Kind discriminates bus events.
type Kind int

const (
	// TrackChanged fires when the controller loads a new track.
	TrackChanged Kind = iota
	// PlaybackChanged fires when the playing flag flips.
	PlaybackChanged
	// VolumeChanged fires on any volume adjustment.
	VolumeChanged
	// BackdropChanged fires when a new backdrop is applied.
	BackdropChanged
	// Notice carries a user-visible message, usually a playback failure.
	Notice
	// AudienceChanged carries a fresh simulated listener count.
	AudienceChanged
)

// Event is a single state-change notification from the player or the
// audience simulator.
type Event struct {
	Kind     Kind
	Track    catalog.Track
	TrackIdx int
	Playing  bool
	Volume   float64
	Backdrop catalog.Backdrop
	Message  string
	Count    int
}

// Bus fans out events from the player side to N subscribers (the TUI, the
// status logger). Publishing never blocks: a subscriber that falls behind
// has events dropped.
type Bus struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

// Subscriber receives events from the bus.
type Subscriber struct {
	C    chan Event
	done chan struct{}
}

// Done is closed when the subscriber is removed from the bus.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber.
func (b *Bus) Subscribe() *Subscriber {
	s := &Subscriber{
		C:    make(chan Event, 64),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unsubscribe removes a subscriber and signals it to stop.
func (b *Bus) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
	close(s.done)
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers ev to every subscriber. Slow subscribers get the event
// dropped rather than stalling the publisher.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	for s := range b.subs {
		select {
		case s.C <- ev:
		default:
			// subscriber too slow, drop to keep the player responsive
		}
	}
	b.mu.RUnlock()
}
