package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeVenueChanges delivers venue change notifications to handler.
// Messages that cannot be decoded are terminated; handler errors are
// redelivered up to three times.
func (s *Subscriber) SubscribeVenueChanges(ctx context.Context, handler func(ctx context.Context, event *domain.VenueChangedEvent) error) error {
	sub, err := s.js.Subscribe(subjectVenueChanged+">", func(msg *nats.Msg) {
		metrics.EventsReceived.WithLabelValues("venues.changed").Inc()
		event, err := decodeVenueChanged(msg.Data)
		if err != nil {
			slog.Warn("dropping malformed venue event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("network-rebuilder"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func decodeVenueChanged(data []byte) (*domain.VenueChangedEvent, error) {
	var event domain.VenueChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.VenueID == "" {
		return nil, fmt.Errorf("venue event without venue_id")
	}
	return &event, nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
