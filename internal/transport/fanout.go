package transport

import (
	"errors"
	"sync"
)

// Fanout forwards every message to all targets. A failing target does not
// stop delivery to the others; Send returns the joined errors.
type Fanout struct {
	targets []Transport
}

var _ Transport = (*Fanout)(nil)

// NewFanout composes the given transports into one.
func NewFanout(targets ...Transport) *Fanout {
	return &Fanout{targets: targets}
}

// Send delivers msg to every target.
func (f *Fanout) Send(msg Message) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Send(msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every target.
func (f *Fanout) Close() error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tracker remembers the most recent strength so samplers on their own clock
// (the UDP publisher) can read it between messages. A terminate message
// resets the strength to zero.
type Tracker struct {
	mu     sync.Mutex
	latest float64
}

var _ Transport = (*Tracker)(nil)

// NewTracker returns a tracker with zero strength.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Send records the message's strength.
func (t *Tracker) Send(msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if msg.Kind == KindStrength {
		t.latest = msg.Strength
	} else {
		t.latest = 0
	}
	return nil
}

// LatestStrength returns the most recently recorded strength.
func (t *Tracker) LatestStrength() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Close is a no-op.
func (t *Tracker) Close() error {
	return nil
}
