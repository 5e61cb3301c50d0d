// Package notify publishes scoring events on NATS so scoreboards and
// overlays can follow a game without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ernie/courtside/internal/domain"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// Publisher sends domain events to subjects of the form <prefix>.<event type>
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

// Connect dials the NATS server at url
func Connect(url, prefix string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("courtside"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	return NewPublisher(nc, prefix), nil
}

// NewPublisher wraps an existing connection
func NewPublisher(nc *nats.Conn, prefix string) *Publisher {
	return &Publisher{nc: nc, prefix: prefix}
}

// Subject returns the subject an event type is published on
func (p *Publisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

// Publish encodes the event as JSON and publishes it. Delivery is best effort.
func (p *Publisher) Publish(event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", event.Type, err)
	}
	if err := p.nc.Publish(p.Subject(event.Type), data); err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection
func (p *Publisher) Close() {
	_ = p.nc.Drain()
}

// StartEmbedded runs an in-process NATS server on host:port. A port of -1
// picks a random free port.
func StartEmbedded(host string, port int) (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		Host:   host,
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedded nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats server not ready")
	}
	return ns, nil
}
