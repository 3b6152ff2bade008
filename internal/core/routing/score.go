package routing

import (
	"errors"
	"sort"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// Leg is the travel between two consecutive located stops.
type Leg struct {
	FromStopID    string  `json:"from_stop_id"`
	ToStopID      string  `json:"to_stop_id"`
	DistanceKm    float64 `json:"distance_km"`
	TravelMinutes int     `json:"travel_minutes"`
	Score         int     `json:"score"`
}

// TourScore is the result of scoring a tour's route.
type TourScore struct {
	domain.TourMetrics
	Legs        []Leg `json:"legs"`
	SkippedLegs int   `json:"skipped_legs"`
	// LocatedStops counts route stops with a resolved coordinate.
	LocatedStops int `json:"located_stops"`
}

// Err reports domain.ErrInsufficientData when fewer than two located stops
// made the score trivially optimal.
func (s TourScore) Err() error {
	if s.LocatedStops < 2 {
		return domain.ErrInsufficientData
	}
	return nil
}

// Calculator aggregates per-leg distances into a tour score.
type Calculator struct {
	model DistanceModel
}

// NewCalculator creates a Calculator from cfg.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{model: NewDistanceModel(cfg.AverageSpeedKmh)}
}

// Score walks the stops in sequence order and sums the legs whose endpoints
// both have coordinates. Cancelled stops are not part of the route.
func (c *Calculator) Score(stops []domain.Stop, coords map[string]domain.GeoPoint) TourScore {
	route := make([]domain.Stop, 0, len(stops))
	for _, s := range stops {
		if s.Status == domain.StatusCancelled {
			continue
		}
		route = append(route, s)
	}
	sort.SliceStable(route, func(i, j int) bool { return route[i].Sequence < route[j].Sequence })

	var out TourScore
	for _, s := range route {
		if _, ok := coords[s.VenueID]; ok {
			out.LocatedStops++
		}
	}

	for i := 1; i < len(route); i++ {
		prev, next := route[i-1], route[i]
		km, err := c.model.Distance(lookup(coords, prev.VenueID), lookup(coords, next.VenueID))
		if errors.Is(err, domain.ErrMissingCoordinate) {
			out.SkippedLegs++
			continue
		}
		minutes := c.model.TravelMinutes(km)
		out.Legs = append(out.Legs, Leg{
			FromStopID:    prev.ID,
			ToStopID:      next.ID,
			DistanceKm:    km,
			TravelMinutes: minutes,
			Score:         distanceScore(km),
		})
		out.TotalDistanceKm += km
		out.TotalTravelTimeMinutes += minutes
	}

	out.OptimizationScore = distanceScore(out.TotalDistanceKm)
	return out
}
