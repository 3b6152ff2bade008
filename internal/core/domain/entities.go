package domain

import (
	"time"
)

// Venue is a performance venue that can host a tour stop.
type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Region    string    `json:"region,omitempty"` // state or province
	Capacity  int       `json:"capacity"`
	Location  *GeoPoint `json:"location,omitempty"`
	Genres    []string  `json:"genres,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Artist is the act a tour is routed for.
type Artist struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Genres       []string `json:"genres,omitempty"`
	ExpectedDraw int      `json:"expected_draw,omitempty"` // typical audience size
}

// Stop is a single venue booking within a tour's ordered route.
type Stop struct {
	ID              string        `json:"id"`
	TourID          string        `json:"tour_id"`
	VenueID         string        `json:"venue_id"`
	Sequence        int           `json:"sequence"`
	Date            *time.Time    `json:"date,omitempty"`
	Status          BookingStatus `json:"status"`
	StatusUpdatedAt time.Time     `json:"status_updated_at"`
}

// IsAnchor reports whether the stop is confirmed and dated.
func (s Stop) IsAnchor() bool {
	return s.Status == StatusConfirmed && s.Date != nil
}

// ApplyStatus moves the stop to a new status and stamps the change time.
func (s *Stop) ApplyStatus(to BookingStatus, now time.Time, opts TransitionOptions) error {
	next, err := TransitionWith(s.Status, to, opts)
	if err != nil {
		return err
	}
	s.Status = next
	s.StatusUpdatedAt = now
	return nil
}

// TourMetrics are the derived routing figures of a tour.
type TourMetrics struct {
	TotalDistanceKm        float64 `json:"total_distance_km"`
	TotalTravelTimeMinutes int     `json:"total_travel_time_minutes"`
	OptimizationScore      int     `json:"optimization_score"`
}

// MetricsDelta is live minus initial metrics.
type MetricsDelta struct {
	DistanceKm        float64 `json:"distance_km"`
	TravelTimeMinutes int     `json:"travel_time_minutes"`
	OptimizationScore int     `json:"optimization_score"`
}

// Tour is an artist's ordered run of stops.
type Tour struct {
	ID             string       `json:"id"`
	ArtistID       string       `json:"artist_id"`
	Name           string       `json:"name"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	Stops          []Stop       `json:"stops,omitempty"`
	Metrics        *TourMetrics `json:"metrics,omitempty"`
	InitialMetrics *TourMetrics `json:"initial_metrics,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ApplyMetrics stores freshly computed metrics. The first call also captures
// the initial snapshot, which later calls never touch.
func (t *Tour) ApplyMetrics(m TourMetrics) {
	live := m
	t.Metrics = &live
	if t.InitialMetrics == nil {
		initial := m
		t.InitialMetrics = &initial
	}
}

// Improvement compares live metrics against the initial snapshot.
func (t *Tour) Improvement() *MetricsDelta {
	if t.Metrics == nil || t.InitialMetrics == nil {
		return nil
	}
	return &MetricsDelta{
		DistanceKm:        t.Metrics.TotalDistanceKm - t.InitialMetrics.TotalDistanceKm,
		TravelTimeMinutes: t.Metrics.TotalTravelTimeMinutes - t.InitialMetrics.TotalTravelTimeMinutes,
		OptimizationScore: t.Metrics.OptimizationScore - t.InitialMetrics.OptimizationScore,
	}
}

// VenueIDs returns the distinct venue ids booked on the tour, cancelled
// stops included.
func (t *Tour) VenueIDs() []string {
	seen := make(map[string]bool, len(t.Stops))
	ids := make([]string, 0, len(t.Stops))
	for _, s := range t.Stops {
		if s.VenueID == "" || seen[s.VenueID] {
			continue
		}
		seen[s.VenueID] = true
		ids = append(ids, s.VenueID)
	}
	return ids
}

// GapKind tells which sides of a gap are bounded by anchors.
type GapKind string

const (
	GapBetween  GapKind = "between"
	GapLeading  GapKind = "leading"
	GapTrailing GapKind = "trailing"
)

// Gap is an interval of a tour not yet covered by a confirmed stop.
// StartDate and EndDate are the first and last idle dates, inclusive.
type Gap struct {
	ID                  string      `json:"id"`
	TourID              string      `json:"tour_id"`
	Kind                GapKind     `json:"kind"`
	PreviousStopID      *string     `json:"previous_stop_id,omitempty"`
	NextStopID          *string     `json:"next_stop_id,omitempty"`
	StartDate           time.Time   `json:"start_date"`
	EndDate             time.Time   `json:"end_date"`
	PreviousLocation    *GeoPoint   `json:"previous_location,omitempty"`
	NextLocation        *GeoPoint   `json:"next_location,omitempty"`
	IdleDays            int         `json:"idle_days"`
	MaxTravelDistanceKm float64     `json:"max_travel_distance_km"`
	OccupiedDates       []time.Time `json:"occupied_dates,omitempty"`
}

// ScoreComponents break a match score into its parts, each in [0,100].
type ScoreComponents struct {
	DistanceFit float64 `json:"distance_fit"`
	SlackFit    float64 `json:"slack_fit"`
	Affinity    float64 `json:"affinity"`
}

// GapSuggestion is a ranked candidate venue for a gap.
type GapSuggestion struct {
	GapID                  string          `json:"gap_id"`
	VenueID                string          `json:"venue_id"`
	SuggestedDate          time.Time       `json:"suggested_date"`
	MatchScore             int             `json:"match_score"`
	DistanceFromPreviousKm *float64        `json:"distance_from_previous_km,omitempty"`
	DistanceToNextKm       *float64        `json:"distance_to_next_km,omitempty"`
	AddedDistanceKm        float64         `json:"added_distance_km"`
	Components             ScoreComponents `json:"components"`
}

// NetworkEdge is the symmetric trust relation between two venues, stored with
// VenueA < VenueB.
type NetworkEdge struct {
	VenueA                  string  `json:"venue_a"`
	VenueB                  string  `json:"venue_b"`
	TrustScore              int     `json:"trust_score"`
	CollaborationLikelihood float64 `json:"collaboration_likelihood"`
	TierDistance            int     `json:"tier_distance"`
	SameRegion              bool    `json:"same_region"`
}

// Other returns the venue on the opposite end of the edge.
func (e NetworkEdge) Other(venueID string) string {
	if e.VenueA == venueID {
		return e.VenueB
	}
	return e.VenueA
}

// Civil truncates t to its UTC calendar date.
func Civil(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
