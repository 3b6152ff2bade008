package routing

import (
	"math"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// kmPerDegree is the length of one degree of latitude on the model sphere.
var kmPerDegree = 6371.0 * math.Pi / 180

var day0 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// north returns a point km kilometres north of the equator on the prime
// meridian, so distances between such points are exact differences.
func north(km float64) domain.GeoPoint {
	return domain.GeoPoint{Lat: km / kmPerDegree, Lon: 0}
}

func northPtr(km float64) *domain.GeoPoint {
	p := north(km)
	return &p
}

func dayPtr(n int) *time.Time {
	t := day0.AddDate(0, 0, n)
	return &t
}

func day(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

func anchor(id, venue string, seq, d int) domain.Stop {
	return domain.Stop{ID: id, VenueID: venue, Sequence: seq, Date: dayPtr(d), Status: domain.StatusConfirmed}
}
