package events

import (
	"context"
	"errors"
	"sync"
)

// ErrRecorderClosed is returned by a Recorder set to fail.
var ErrRecorderClosed = errors.New("recorder refuses delivery")

// Recorder is an in-memory Publisher for tests and local runs without NATS.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrRecorderClosed
	}
	r.events = append(r.events, e)
	return nil
}

// FailDeliveries makes every later Publish fail.
func (r *Recorder) FailDeliveries(fail bool) {
	r.mu.Lock()
	r.fail = fail
	r.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Named returns the recorded events with the given name.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}
