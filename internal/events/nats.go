package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NatsPublisher publishes events as JSON on <prefix>.<event name>.
type NatsPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNatsPublisher connects to NATS.
func NewNatsPublisher(url, prefix string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("trio-connect"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NatsPublisher{nc: nc, prefix: prefix}, nil
}

// Subject returns the subject an event is published on.
func (p *NatsPublisher) Subject(e Event) string {
	if p.prefix == "" {
		return e.Name()
	}
	return p.prefix + "." + e.Name()
}

func (p *NatsPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := &nats.Msg{
		Subject: p.Subject(e),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Event", e.Name())
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NatsPublisher) Close() {
	if p.nc == nil {
		return
	}
	_ = p.nc.Drain()
}
