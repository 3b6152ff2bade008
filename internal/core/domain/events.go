package domain

import "time"

// TourRescoredEvent is published after a tour's metrics were recomputed.
type TourRescoredEvent struct {
	TourID      string        `json:"tour_id"`
	Metrics     TourMetrics   `json:"metrics"`
	Improvement *MetricsDelta `json:"improvement,omitempty"`
	SkippedLegs int           `json:"skipped_legs"`
	At          time.Time     `json:"at"`
}

// StopStatusChangedEvent is published after a stop changed booking status.
type StopStatusChangedEvent struct {
	TourID string        `json:"tour_id"`
	StopID string        `json:"stop_id"`
	From   BookingStatus `json:"from"`
	To     BookingStatus `json:"to"`
	At     time.Time     `json:"at"`
}

// NetworkRebuiltEvent is published after the venue network was recomputed.
type NetworkRebuiltEvent struct {
	Venues     int       `json:"venues"`
	Edges      int       `json:"edges"`
	DurationMs int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// VenueChangedEvent is emitted by the booking application when a venue is
// created, edited or removed.
type VenueChangedEvent struct {
	VenueID string    `json:"venue_id"`
	Action  string    `json:"action"` // created, updated, deleted
	At      time.Time `json:"at"`
}
