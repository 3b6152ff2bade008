// Package routing scores tour routes, finds schedule gaps between confirmed
// stops and ranks venues that could fill them. Everything here is a pure
// function of its inputs.
package routing

import (
	"math"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/geospatial"
)

// DistanceModel estimates distance and travel time between coordinates.
// Great-circle distance stands in for road distance.
type DistanceModel struct {
	AverageSpeedKmh float64
}

// NewDistanceModel returns a model assuming the given average road speed.
func NewDistanceModel(speedKmh float64) DistanceModel {
	if speedKmh <= 0 {
		speedKmh = DefaultConfig().AverageSpeedKmh
	}
	return DistanceModel{AverageSpeedKmh: speedKmh}
}

// Distance returns the great-circle distance in kilometres.
func (m DistanceModel) Distance(a, b *domain.GeoPoint) (float64, error) {
	if a == nil || b == nil {
		return 0, domain.ErrMissingCoordinate
	}
	return geospatial.HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon), nil
}

// TravelMinutes converts a distance into whole minutes of driving.
func (m DistanceModel) TravelMinutes(distanceKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / m.speed() * 60))
}

// DailyBudgetMinutes is how long covering budgetKm takes at the model speed.
func (m DistanceModel) DailyBudgetMinutes(budgetKm float64) float64 {
	return budgetKm / m.speed() * 60
}

func (m DistanceModel) speed() float64 {
	if m.AverageSpeedKmh <= 0 {
		return DefaultConfig().AverageSpeedKmh
	}
	return m.AverageSpeedKmh
}

// distanceScore is the per-distance score shared by legs and whole tours:
// it falls by one point per 10 km and never loses more than 50 points.
func distanceScore(km float64) int {
	return int(math.Round(100 - math.Min(50, km/10)))
}

// lookup returns a pointer to the venue's coordinate or nil when unresolved.
func lookup(coords map[string]domain.GeoPoint, venueID string) *domain.GeoPoint {
	p, ok := coords[venueID]
	if !ok {
		return nil
	}
	return &p
}
