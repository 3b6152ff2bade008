package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

func stop(id, venue string, seq int) domain.Stop {
	return domain.Stop{ID: id, VenueID: venue, Sequence: seq, Status: domain.StatusHold1}
}

func TestCalculator_ThreeStopTour(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	coords := map[string]domain.GeoPoint{"a": north(0), "b": north(100), "c": north(300)}
	stops := []domain.Stop{stop("s3", "c", 3), stop("s1", "a", 1), stop("s2", "b", 2)}

	got := c.Score(stops, coords)

	require.NoError(t, got.Err())
	assert.InDelta(t, 300, got.TotalDistanceKm, 1e-6)
	assert.Equal(t, 360, got.TotalTravelTimeMinutes)
	assert.Equal(t, 70, got.OptimizationScore)
	require.Len(t, got.Legs, 2)
	assert.Equal(t, "s1", got.Legs[0].FromStopID)
	assert.Equal(t, "s2", got.Legs[0].ToStopID)
	assert.Equal(t, 90, got.Legs[0].Score)
	assert.Equal(t, 80, got.Legs[1].Score)
	assert.Equal(t, 3, got.LocatedStops)
	assert.Zero(t, got.SkippedLegs)
}

func TestCalculator_TrivialTours(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	coords := map[string]domain.GeoPoint{"a": north(0)}

	empty := c.Score(nil, coords)
	assert.Equal(t, 100, empty.OptimizationScore)
	assert.ErrorIs(t, empty.Err(), domain.ErrInsufficientData)

	single := c.Score([]domain.Stop{stop("s1", "a", 1)}, coords)
	assert.Equal(t, 100, single.OptimizationScore)
	assert.Zero(t, single.TotalDistanceKm)
	assert.ErrorIs(t, single.Err(), domain.ErrInsufficientData)
}

func TestCalculator_SkipsLegsWithoutCoordinates(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	coords := map[string]domain.GeoPoint{"a": north(0), "c": north(300)}
	stops := []domain.Stop{stop("s1", "a", 1), stop("s2", "unknown", 2), stop("s3", "c", 3)}

	got := c.Score(stops, coords)
	assert.Equal(t, 2, got.SkippedLegs)
	assert.Empty(t, got.Legs)
	assert.Zero(t, got.TotalDistanceKm)
	assert.Equal(t, 100, got.OptimizationScore)
	assert.Equal(t, 2, got.LocatedStops)
}

func TestCalculator_IgnoresCancelledStops(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	coords := map[string]domain.GeoPoint{"a": north(0), "x": north(2000), "c": north(300)}
	cancelled := stop("s2", "x", 2)
	cancelled.Status = domain.StatusCancelled
	stops := []domain.Stop{stop("s1", "a", 1), cancelled, stop("s3", "c", 3)}

	got := c.Score(stops, coords)
	assert.InDelta(t, 300, got.TotalDistanceKm, 1e-6)
	assert.Equal(t, 70, got.OptimizationScore)
}

func TestCalculator_ScoreBoundsAndMonotonicity(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	prev := 101
	for _, km := range []float64{0, 10, 55, 120, 300, 499, 500, 800, 4000, 9000} {
		coords := map[string]domain.GeoPoint{"a": north(0), "b": north(km)}
		got := c.Score([]domain.Stop{stop("s1", "a", 1), stop("s2", "b", 2)}, coords)
		assert.GreaterOrEqual(t, got.OptimizationScore, 50)
		assert.LessOrEqual(t, got.OptimizationScore, 100)
		assert.LessOrEqual(t, got.OptimizationScore, prev, "km=%v", km)
		prev = got.OptimizationScore
	}
	assert.Equal(t, 50, prev)
}

func TestCalculator_AntipodalLegStaysInBounds(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	coords := map[string]domain.GeoPoint{
		"a": {Lat: 10, Lon: 0},
		"b": {Lat: -10, Lon: 180},
	}

	got := c.Score([]domain.Stop{stop("s1", "a", 1), stop("s2", "b", 2)}, coords)

	require.NoError(t, got.Err())
	assert.InDelta(t, 20015.09, got.TotalDistanceKm, 0.1)
	assert.GreaterOrEqual(t, got.TotalTravelTimeMinutes, 0)
	assert.Equal(t, 50, got.OptimizationScore)
	require.Len(t, got.Legs, 1)
	assert.GreaterOrEqual(t, got.Legs[0].Score, 0)
	assert.LessOrEqual(t, got.Legs[0].Score, 100)
}
