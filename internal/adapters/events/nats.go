package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"trip-planner-service/internal/ports"

	"github.com/nats-io/nats.go"
)

const subjectPrefix = "tripplanner"

// Subject returns the NATS subject an event is published on,
// e.g. tripplanner.route.computed.<session>. Events outside a session
// go to tripplanner.<kind>.global.
func Subject(e ports.Event) string {
	session := e.SessionID
	if session == "" {
		session = "global"
	}
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, e.Kind, session)
}

// NATSPublisher implements ports.EventPublisher over core NATS.
// Delivery is fire-and-forget; subscribers that are offline miss events.
type NATSPublisher struct {
	conn *nats.Conn
}

// Connect to NATS, retrying in the background if the server is not up yet.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("trip-planner-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, e ports.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(Subject(e), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", Subject(e), err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
