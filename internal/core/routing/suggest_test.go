package routing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// betweenGap spans days 1..9 between anchors 600 km apart.
func betweenGap() domain.Gap {
	return domain.Gap{
		ID:                  "g1",
		Kind:                domain.GapBetween,
		StartDate:           day(1),
		EndDate:             day(9),
		PreviousLocation:    northPtr(0),
		NextLocation:        northPtr(600),
		IdleDays:            9,
		MaxTravelDistanceKm: 5400,
	}
}

func venueAt(id string, loc *domain.GeoPoint) domain.Venue {
	return domain.Venue{ID: id, Name: id, Location: loc}
}

func TestRanker_VenueOnTheRoute(t *testing.T) {
	r := NewRanker(DefaultConfig())

	got := r.Rank(betweenGap(), []domain.Venue{venueAt("mid", northPtr(300))}, day0, RankOptions{})

	require.Len(t, got, 1)
	s := got[0]
	assert.Equal(t, "g1", s.GapID)
	assert.Equal(t, "mid", s.VenueID)
	assert.InDelta(t, 0, s.AddedDistanceKm, 1e-6)
	assert.InDelta(t, 100, s.Components.DistanceFit, 1e-6)
	assert.InDelta(t, 88.89, s.Components.SlackFit, 0.01)
	assert.Equal(t, neutralScore, s.Components.Affinity)
	assert.Equal(t, 80, s.MatchScore)
	assert.Equal(t, day(5), s.SuggestedDate)
	require.NotNil(t, s.DistanceFromPreviousKm)
	require.NotNil(t, s.DistanceToNextKm)
	assert.InDelta(t, 300, *s.DistanceFromPreviousKm, 1e-6)
	assert.InDelta(t, 300, *s.DistanceToNextKm, 1e-6)
}

func TestRanker_OrderAndTieBreak(t *testing.T) {
	r := NewRanker(DefaultConfig())
	detour := &domain.GeoPoint{Lat: north(300).Lat, Lon: 2}
	candidates := []domain.Venue{
		venueAt("zeta", northPtr(300)),
		venueAt("far", detour),
		venueAt("alpha", northPtr(300)),
		venueAt("alpha", northPtr(100)),
	}

	got := r.Rank(betweenGap(), candidates, day0, RankOptions{})

	require.Len(t, got, 3)
	assert.Equal(t, "alpha", got[0].VenueID)
	assert.Equal(t, "zeta", got[1].VenueID)
	assert.Equal(t, "far", got[2].VenueID)
	assert.Greater(t, got[2].AddedDistanceKm, got[0].AddedDistanceKm)

	again := r.Rank(betweenGap(), candidates, day0, RankOptions{})
	assert.Equal(t, got, again)
}

func TestRanker_Rejections(t *testing.T) {
	r := NewRanker(DefaultConfig())
	gap := betweenGap()
	gap.IdleDays = 1
	gap.MaxTravelDistanceKm = 600
	gap.EndDate = gap.StartDate

	candidates := []domain.Venue{
		venueAt("nowhere", nil),
		venueAt("toofar", northPtr(-700)),
		venueAt("booked", northPtr(300)),
		venueAt("ok", northPtr(200)),
	}
	got := r.Rank(gap, candidates, day0, RankOptions{Exclude: map[string]bool{"booked": true}})

	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].VenueID)
	assert.Equal(t, day(1), got[0].SuggestedDate)
}

func TestRanker_EmptyPool(t *testing.T) {
	r := NewRanker(DefaultConfig())
	got := r.Rank(betweenGap(), nil, day0, RankOptions{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRanker_Limit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SuggestionLimit = 3
	r := NewRanker(cfg)

	var candidates []domain.Venue
	for i := 0; i < 8; i++ {
		candidates = append(candidates, venueAt(fmt.Sprintf("v%d", i), northPtr(float64(50*i))))
	}

	assert.Len(t, r.Rank(betweenGap(), candidates, day0, RankOptions{}), 3)
	assert.Len(t, r.Rank(betweenGap(), candidates, day0, RankOptions{Limit: 5}), 5)
}

func TestRanker_TodayCutoff(t *testing.T) {
	r := NewRanker(DefaultConfig())
	candidates := []domain.Venue{venueAt("early", northPtr(30)), venueAt("mid", northPtr(300))}

	got := r.Rank(betweenGap(), candidates, day(7), RankOptions{})
	require.Len(t, got, 2)
	for _, s := range got {
		assert.False(t, s.SuggestedDate.Before(day(7)), s.VenueID)
		assert.False(t, s.SuggestedDate.After(day(9)), s.VenueID)
	}

	assert.Empty(t, r.Rank(betweenGap(), candidates, day(10), RankOptions{}))
}

func TestRanker_AvoidsOccupiedDates(t *testing.T) {
	r := NewRanker(DefaultConfig())
	gap := betweenGap()
	gap.OccupiedDates = []time.Time{day(5)}

	got := r.Rank(gap, []domain.Venue{venueAt("mid", northPtr(300))}, day0, RankOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, day(6), got[0].SuggestedDate)

	full := betweenGap()
	full.StartDate, full.EndDate = day(5), day(5)
	full.OccupiedDates = []time.Time{day(5)}
	assert.Empty(t, r.Rank(full, []domain.Venue{venueAt("mid", northPtr(300))}, day0, RankOptions{}))
}

func TestRanker_OpenGapsPlaceDatesNearTheAnchor(t *testing.T) {
	r := NewRanker(DefaultConfig())

	leading := domain.Gap{
		ID: "lead", Kind: domain.GapLeading,
		StartDate: day(1), EndDate: day(5),
		NextLocation: northPtr(0), IdleDays: 5, MaxTravelDistanceKm: 3000,
	}
	got := r.Rank(leading, []domain.Venue{venueAt("v", northPtr(100))}, day0, RankOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, day(5), got[0].SuggestedDate)
	assert.Nil(t, got[0].DistanceFromPreviousKm)
	assert.InDelta(t, 100, got[0].AddedDistanceKm, 1e-6)

	trailing := domain.Gap{
		ID: "trail", Kind: domain.GapTrailing,
		StartDate: day(1), EndDate: day(5),
		PreviousLocation: northPtr(0), IdleDays: 5, MaxTravelDistanceKm: 3000,
	}
	got = r.Rank(trailing, []domain.Venue{venueAt("v", northPtr(100))}, day0, RankOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, day(1), got[0].SuggestedDate)
	assert.Nil(t, got[0].DistanceToNextKm)
}

func TestRanker_ArtistAffinity(t *testing.T) {
	r := NewRanker(DefaultConfig())
	artist := &domain.Artist{ID: "ar", ExpectedDraw: 1000, Genres: []string{"Rock", "indie"}}

	fit := venueAt("fit", northPtr(300))
	fit.Capacity = 1000
	fit.Genres = []string{"rock", "Indie "}
	misfit := venueAt("misfit", northPtr(300))
	misfit.Capacity = 250
	misfit.Genres = []string{"jazz"}

	got := r.Rank(betweenGap(), []domain.Venue{misfit, fit}, day0, RankOptions{Artist: artist})
	require.Len(t, got, 2)
	assert.Equal(t, "fit", got[0].VenueID)
	assert.InDelta(t, 100, got[0].Components.Affinity, 1e-9)
	assert.InDelta(t, 12.5, got[1].Components.Affinity, 1e-9)
}

func TestRanker_AffinityOnlyWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Affinity: 1}
	r := NewRanker(cfg)
	artist := &domain.Artist{ExpectedDraw: 500}
	v := venueAt("v", northPtr(300))
	v.Capacity = 1000

	got := r.Rank(betweenGap(), []domain.Venue{v}, day0, RankOptions{Artist: artist})
	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].MatchScore)
}

func TestRanker_ScoresStayInRange(t *testing.T) {
	r := NewRanker(DefaultConfig())
	artist := &domain.Artist{ExpectedDraw: 800, Genres: []string{"folk"}}

	var candidates []domain.Venue
	for lat := -4.0; lat <= 10; lat += 1.5 {
		for lon := -6.0; lon <= 6; lon += 2 {
			v := venueAt(fmt.Sprintf("%v/%v", lat, lon), &domain.GeoPoint{Lat: lat, Lon: lon})
			v.Capacity = int(100 + 300*(lat+5))
			v.Genres = []string{"folk", "pop"}
			candidates = append(candidates, v)
		}
	}

	got := r.Rank(betweenGap(), candidates, day0, RankOptions{Artist: artist, Limit: len(candidates)})
	require.NotEmpty(t, got)
	for i, s := range got {
		assert.GreaterOrEqual(t, s.MatchScore, 0)
		assert.LessOrEqual(t, s.MatchScore, 100)
		for _, c := range []float64{s.Components.DistanceFit, s.Components.SlackFit, s.Components.Affinity} {
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 100.0)
		}
		if i > 0 {
			assert.LessOrEqual(t, s.MatchScore, got[i-1].MatchScore)
		}
	}
}

func TestAffinity_Neutral(t *testing.T) {
	assert.Equal(t, neutralScore, affinity(nil, domain.Venue{Capacity: 100}))
	assert.Equal(t, neutralScore, affinity(&domain.Artist{}, domain.Venue{Capacity: 100}))
	assert.Equal(t, 0.0, jaccard([]string{"a"}, []string{"b"}))
	assert.InDelta(t, 1.0/3, jaccard([]string{"a", "b"}, []string{"B", "c", "c"}), 1e-9)
}
