package events

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// ErrNoPublisher is returned by Deliver when events are switched off.
var ErrNoPublisher = errors.New("events: no publisher configured")

// Dispatcher emits events after the primary write has committed.
// Delivery failures are logged and counted, never returned.
type Dispatcher struct {
	pub    Publisher
	log    *slog.Logger
	sent   atomic.Int64
	failed atomic.Int64
}

// NewDispatcher wraps a Publisher. With a nil publisher every delivery fails
// with ErrNoPublisher and is counted.
func NewDispatcher(pub Publisher, log *slog.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, log: log}
}

// Emit publishes each event in order.
func (d *Dispatcher) Emit(ctx context.Context, evs ...Event) {
	for _, e := range evs {
		_ = d.Deliver(ctx, e)
	}
}

// Deliver publishes one event and reports whether it went out.
func (d *Dispatcher) Deliver(ctx context.Context, e Event) error {
	if d.pub == nil {
		d.failed.Add(1)
		d.log.Warn("event dropped, no publisher", "event", e.Name())
		return ErrNoPublisher
	}
	if err := d.pub.Publish(ctx, e); err != nil {
		d.failed.Add(1)
		d.log.Warn("event delivery failed", "event", e.Name(), "err", err)
		return err
	}
	d.sent.Add(1)
	return nil
}

// Publish makes a Dispatcher usable wherever a Publisher is expected.
func (d *Dispatcher) Publish(ctx context.Context, e Event) error {
	return d.Deliver(ctx, e)
}

// Sent returns the number of delivered events.
func (d *Dispatcher) Sent() int64 { return d.sent.Load() }

// Failed returns the number of events the publisher refused.
func (d *Dispatcher) Failed() int64 { return d.failed.Load() }
