package routing

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// neutralScore is used for a component that cannot be evaluated.
const neutralScore = 50.0

// RankOptions narrow and shape a ranking.
type RankOptions struct {
	// Artist enables capacity and genre affinity when set.
	Artist *domain.Artist
	// Exclude holds venue ids already booked on the tour.
	Exclude map[string]bool
	// Limit caps the result; zero means the configured default.
	Limit int
}

// Ranker scores candidate venues for a gap.
type Ranker struct {
	cfg   Config
	model DistanceModel
}

// NewRanker creates a Ranker from cfg.
func NewRanker(cfg Config) *Ranker {
	def := DefaultConfig()
	if cfg.DailyTravelBudgetKm <= 0 {
		cfg.DailyTravelBudgetKm = def.DailyTravelBudgetKm
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = def.SuggestionLimit
	}
	if cfg.Weights.sum() <= 0 {
		cfg.Weights = def.Weights
	}
	return &Ranker{cfg: cfg, model: NewDistanceModel(cfg.AverageSpeedKmh)}
}

// Rank returns the eligible candidates ordered by match score, then by lower
// added distance, then by venue id. An empty pool yields an empty list.
func (r *Ranker) Rank(gap domain.Gap, candidates []domain.Venue, today time.Time, opts RankOptions) []domain.GapSuggestion {
	seen := make(map[string]bool, len(candidates))
	out := make([]domain.GapSuggestion, 0, len(candidates))

	for _, v := range candidates {
		if seen[v.ID] || opts.Exclude[v.ID] {
			continue
		}
		seen[v.ID] = true

		s, ok := r.evaluate(gap, v, today, opts.Artist)
		if ok {
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		if out[i].AddedDistanceKm != out[j].AddedDistanceKm {
			return out[i].AddedDistanceKm < out[j].AddedDistanceKm
		}
		return out[i].VenueID < out[j].VenueID
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = r.cfg.SuggestionLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *Ranker) evaluate(gap domain.Gap, v domain.Venue, today time.Time, artist *domain.Artist) (domain.GapSuggestion, bool) {
	if v.Location == nil {
		return domain.GapSuggestion{}, false
	}

	maxKm := gap.MaxTravelDistanceKm
	if maxKm <= 0 {
		maxKm = float64(max(gap.IdleDays, 1)) * r.cfg.DailyTravelBudgetKm
	}

	fromPrev := r.optionalDistance(gap.PreviousLocation, v.Location)
	toNext := r.optionalDistance(v.Location, gap.NextLocation)
	if (fromPrev != nil && *fromPrev > maxKm) || (toNext != nil && *toNext > maxKm) {
		return domain.GapSuggestion{}, false
	}

	date, ok := r.suggestDate(gap, fromPrev, toNext, today)
	if !ok {
		return domain.GapSuggestion{}, false
	}

	added := r.addedDistance(gap, fromPrev, toNext)
	comp := domain.ScoreComponents{
		DistanceFit: neutralScore,
		SlackFit:    neutralScore,
		Affinity:    affinity(artist, v),
	}
	if fromPrev != nil || toNext != nil {
		comp.DistanceFit = clampScore(100 * (1 - added/maxKm))

		needed := 0
		if fromPrev != nil {
			needed += r.model.TravelMinutes(*fromPrev)
		}
		if toNext != nil {
			needed += r.model.TravelMinutes(*toNext)
		}
		budget := r.model.DailyBudgetMinutes(r.cfg.DailyTravelBudgetKm) * float64(max(gap.IdleDays, 1))
		comp.SlackFit = clampScore(100 * (1 - float64(needed)/budget))
	}

	w := r.cfg.Weights
	score := (w.Distance*comp.DistanceFit + w.Slack*comp.SlackFit + w.Affinity*comp.Affinity) / w.sum()

	return domain.GapSuggestion{
		GapID:                  gap.ID,
		VenueID:                v.ID,
		SuggestedDate:          date,
		MatchScore:             int(clampScore(math.Round(score))),
		DistanceFromPreviousKm: fromPrev,
		DistanceToNextKm:       toNext,
		AddedDistanceKm:        added,
		Components:             comp,
	}, true
}

func (r *Ranker) optionalDistance(a, b *domain.GeoPoint) *float64 {
	km, err := r.model.Distance(a, b)
	if err != nil {
		return nil
	}
	return &km
}

// addedDistance is the detour over the direct anchor-to-anchor line, or the
// one-sided distance for open gaps.
func (r *Ranker) addedDistance(gap domain.Gap, fromPrev, toNext *float64) float64 {
	switch {
	case fromPrev != nil && toNext != nil:
		direct, err := r.model.Distance(gap.PreviousLocation, gap.NextLocation)
		if err != nil {
			return *fromPrev + *toNext
		}
		return math.Max(0, *fromPrev+*toNext-direct)
	case fromPrev != nil:
		return *fromPrev
	case toNext != nil:
		return *toNext
	}
	return 0
}

// suggestDate places the venue inside the gap in proportion to how far along
// the anchor-to-anchor line it sits, then moves to the nearest free date on
// or after today.
func (r *Ranker) suggestDate(gap domain.Gap, fromPrev, toNext *float64, today time.Time) (time.Time, bool) {
	start, end := domain.Civil(gap.StartDate), domain.Civil(gap.EndDate)
	earliest := start
	if t := domain.Civil(today); t.After(earliest) {
		earliest = t
	}
	if earliest.After(end) {
		return time.Time{}, false
	}

	span := daysBetween(start, end)
	var frac float64
	switch {
	case fromPrev != nil && toNext != nil && *fromPrev+*toNext > 0:
		frac = *fromPrev / (*fromPrev + *toNext)
	case fromPrev == nil && toNext != nil:
		frac = 1 // leading gap: play just before the first anchor
	}
	target := start.AddDate(0, 0, int(math.Round(frac*float64(span))))
	if target.Before(earliest) {
		target = earliest
	}

	occupied := make(map[time.Time]bool, len(gap.OccupiedDates))
	for _, d := range gap.OccupiedDates {
		occupied[domain.Civil(d)] = true
	}

	window := daysBetween(earliest, end)
	for off := 0; off <= window; off++ {
		for _, cand := range []time.Time{target.AddDate(0, 0, off), target.AddDate(0, 0, -off)} {
			if cand.Before(earliest) || cand.After(end) || occupied[cand] {
				continue
			}
			return cand, true
		}
	}
	return time.Time{}, false
}

// affinity compares the artist's draw with the venue capacity and their
// genres. Without metadata on both sides it returns the neutral midpoint.
func affinity(artist *domain.Artist, v domain.Venue) float64 {
	if artist == nil {
		return neutralScore
	}
	var parts []float64
	if artist.ExpectedDraw > 0 && v.Capacity > 0 {
		lo := math.Min(float64(artist.ExpectedDraw), float64(v.Capacity))
		hi := math.Max(float64(artist.ExpectedDraw), float64(v.Capacity))
		parts = append(parts, 100*lo/hi)
	}
	if len(artist.Genres) > 0 && len(v.Genres) > 0 {
		parts = append(parts, 100*jaccard(artist.Genres, v.Genres))
	}
	if len(parts) == 0 {
		return neutralScore
	}
	var sum float64
	for _, p := range parts {
		sum += p
	}
	return sum / float64(len(parts))
}

func jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, g := range a {
		set[strings.ToLower(strings.TrimSpace(g))] = true
	}
	union := len(set)
	inter := 0
	other := make(map[string]bool, len(b))
	for _, g := range b {
		k := strings.ToLower(strings.TrimSpace(g))
		if other[k] {
			continue
		}
		other[k] = true
		if set[k] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
