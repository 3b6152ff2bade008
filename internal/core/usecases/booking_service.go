package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/ports"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/telemetry"
)

// BookingService moves stops through the booking state machine.
type BookingService struct {
	stops     ports.StopRepository
	tours     *TourService
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewBookingService creates a new BookingService. tours may be nil, in which
// case status changes do not trigger a rescore.
func NewBookingService(stops ports.StopRepository, tours *TourService, publisher ports.EventPublisher) *BookingService {
	return &BookingService{stops: stops, tours: tours, publisher: publisher, now: time.Now}
}

// StatusChange describes an applied transition.
type StatusChange struct {
	Stop    *domain.Stop         `json:"stop"`
	From    domain.BookingStatus `json:"from"`
	Metrics *domain.TourMetrics  `json:"metrics,omitempty"`
}

// TransitionStatus validates and applies a status change to a stop. Invalid
// edges return *domain.InvalidTransitionError and leave the stop untouched.
func (s *BookingService) TransitionStatus(ctx context.Context, stopID string, to domain.BookingStatus, opts domain.TransitionOptions) (*StatusChange, error) {
	ctx, span := telemetry.StartSpan(ctx, "BookingService.TransitionStatus", telemetry.AttrStopID.String(stopID))
	defer span.End()

	stop, err := s.stops.GetByID(ctx, stopID)
	if err != nil {
		return nil, telemetry.RecordError(span, fmt.Errorf("get stop: %w", err))
	}

	from := stop.Status
	if err := stop.ApplyStatus(to, s.now(), opts); err != nil {
		metrics.StatusTransitions.WithLabelValues(string(from), string(to), "rejected").Inc()
		return nil, err
	}

	if err := s.stops.UpdateStatus(ctx, stop.ID, from, stop.Status, stop.StatusUpdatedAt); err != nil {
		metrics.StatusTransitions.WithLabelValues(string(from), string(to), "error").Inc()
		return nil, telemetry.RecordError(span, fmt.Errorf("update stop status: %w", err))
	}
	metrics.StatusTransitions.WithLabelValues(string(from), string(to), "ok").Inc()

	change := &StatusChange{Stop: stop, From: from}

	// Cancellations and confirmations change the route and its anchors.
	if s.tours != nil {
		res, err := s.tours.Rescore(ctx, stop.TourID)
		if err != nil {
			slog.Warn("rescore after status change failed", "tour_id", stop.TourID, "stop_id", stop.ID, "error", err)
		} else {
			change.Metrics = res.Tour.Metrics
		}
	}

	if s.publisher != nil {
		event := &domain.StopStatusChangedEvent{
			TourID: stop.TourID,
			StopID: stop.ID,
			From:   from,
			To:     stop.Status,
			At:     stop.StatusUpdatedAt,
		}
		if err := s.publisher.PublishStopStatusChanged(ctx, event); err != nil {
			slog.Warn("publish status change failed", "stop_id", stop.ID, "error", err)
		}
	}

	return change, nil
}

// NextStatuses lists the statuses a stop can move to from its current one.
func (s *BookingService) NextStatuses(ctx context.Context, stopID string, opts domain.TransitionOptions) ([]domain.BookingStatus, error) {
	stop, err := s.stops.GetByID(ctx, stopID)
	if err != nil {
		return nil, err
	}
	return domain.NextStatuses(stop.Status, opts), nil
}
