// Package session tracks player sessions: the party, inventory, crafting
// bench and current battle belonging to one player, and the presentation feed
// their battle events are pushed to.
package session

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/skillforge/internal/game/combat"
)

// Feed routes battle events to a Go channel, bridging a player's battle to
// whatever renders it.
type Feed struct {
	uid    string
	events chan combat.Event
	mu     sync.Mutex
	closed bool
}

// NewFeed creates a Feed for the given player UID.
//
// Precondition: uid must be non-empty.
// Postcondition: Returns a Feed with an open events channel.
func NewFeed(uid string, bufferSize int) *Feed {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Feed{
		uid:    uid,
		events: make(chan combat.Event, bufferSize),
	}
}

// UID returns the player's unique identifier.
func (f *Feed) UID() string {
	return f.uid
}

// Push enqueues events in order.
//
// Postcondition: every event is enqueued, or an error is returned if the feed
// is closed or its buffer fills; events enqueued before the failure stay queued.
func (f *Feed) Push(events ...combat.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("feed %s is closed", f.uid)
	}
	for _, ev := range events {
		select {
		case f.events <- ev:
		default:
			return fmt.Errorf("feed %s event buffer full", f.uid)
		}
	}
	return nil
}

// Events returns the read-only events channel.
func (f *Feed) Events() <-chan combat.Event {
	return f.events
}

// Drain returns every event currently buffered without blocking.
func (f *Feed) Drain() []combat.Event {
	var out []combat.Event
	for {
		select {
		case ev, ok := <-f.events:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Close marks the feed as closed and closes the events channel.
//
// Postcondition: The events channel is closed. Further Push calls return an error.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// IsClosed reports whether the feed has been closed.
func (f *Feed) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
