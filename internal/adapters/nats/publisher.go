package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

const (
	subjectTourRescored   = "booking.tours.rescored."
	subjectStopStatus     = "booking.stops.status."
	subjectNetworkRebuilt = "booking.network.rebuilt"
	subjectVenueChanged   = "booking.venues.changed."
	subjectBroadcast      = "booking.updates.broadcast"

	// RelaySubject matches everything the WebSocket relay forwards.
	RelaySubject = "booking.>"
)

// Streams are the JetStream streams the engine relies on.
var Streams = []nats.StreamConfig{
	{
		Name:      "BOOKING_EVENTS",
		Subjects:  []string{"booking.tours.>", "booking.stops.>", "booking.network.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	},
	{
		Name:      "VENUE_CHANGES",
		Subjects:  []string{"booking.venues.>"},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    72 * time.Hour,
		Storage:   nats.FileStorage,
	},
}

// TourRescoredSubject is the subject a tour's rescore events go to.
func TourRescoredSubject(tourID string) string { return subjectTourRescored + tourID }

// StopStatusSubject is the subject status changes of a tour's stops go to.
func StopStatusSubject(tourID string) string { return subjectStopStatus + tourID }

// VenueChangedSubject is the subject a venue's change notifications go to.
func VenueChangedSubject(venueID string) string { return subjectVenueChanged + venueID }

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
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

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	for _, cfg := range Streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

func (p *Publisher) publishJSON(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishTourRescored(ctx context.Context, event *domain.TourRescoredEvent) error {
	return p.publishJSON(ctx, TourRescoredSubject(event.TourID), event)
}

func (p *Publisher) PublishStopStatusChanged(ctx context.Context, event *domain.StopStatusChangedEvent) error {
	return p.publishJSON(ctx, StopStatusSubject(event.TourID), event)
}

func (p *Publisher) PublishNetworkRebuilt(ctx context.Context, event *domain.NetworkRebuiltEvent) error {
	return p.publishJSON(ctx, subjectNetworkRebuilt, event)
}

// PublishVenueChanged emits a venue change notification. The engine itself
// only consumes these; the method serves tooling and tests.
func (p *Publisher) PublishVenueChanged(ctx context.Context, event *domain.VenueChangedEvent) error {
	return p.publishJSON(ctx, VenueChangedSubject(event.VenueID), event)
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish(subjectBroadcast, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
