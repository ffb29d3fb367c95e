package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"financetracker/backend/config"
	"financetracker/backend/models"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Message is the JSON body published for every transaction change.
type Message struct {
	Event       string             `json:"event"`
	OccurredAt  time.Time          `json:"occurredAt"`
	Transaction models.Transaction `json:"transaction"`
}

// Publisher sends transaction change events. Close releases any connection.
type Publisher interface {
	Publish(ctx context.Context, event string, t models.Transaction) error
	Close()
}

// NATSPublisher publishes to "<prefix>.<event>" on a NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	now    func() time.Time
}

// Noop discards every event. It is used when NATS is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, models.Transaction) error { return nil }
func (Noop) Close()                                                    {}

// Connect returns a NATSPublisher when cfg.URL is set and a Noop otherwise.
func Connect(cfg config.NATSConfig, logger zerolog.Logger) (Publisher, error) {
	if cfg.URL == "" {
		logger.Info().Msg("NATS_URL not set, transaction events disabled")
		return Noop{}, nil
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("finance-tracker"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("Disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrlRedacted()).Msg("Reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info().Str("url", conn.ConnectedUrlRedacted()).Msg("Connected to NATS")
	return NewNATSPublisher(conn, cfg.SubjectPrefix), nil
}

func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, now: time.Now}
}

func (p *NATSPublisher) Publish(ctx context.Context, event string, t models.Transaction) error {
	data, err := encode(event, t, p.now())
	if err != nil {
		return err
	}

	subject := Subject(p.prefix, event)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	zerolog.Ctx(ctx).Debug().Str("subject", subject).Str("transaction_id", t.ID).Msg("Published transaction event")
	return nil
}

// Close drains pending messages before closing the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// Subject joins prefix and event with a dot. An empty prefix yields the bare
// event name.
func Subject(prefix, event string) string {
	if prefix == "" {
		return event
	}
	return prefix + "." + event
}

func encode(event string, t models.Transaction, at time.Time) ([]byte, error) {
	data, err := json.Marshal(Message{Event: event, OccurredAt: at.UTC(), Transaction: t})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	return data, nil
}
