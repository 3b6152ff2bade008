// Package network scores how likely pairs of venues are to collaborate on
// bookings. Scores come from capacity tiers and shared region; they are
// heuristic priors, not measured collaboration frequencies.
package network

import (
	"sort"
	"strings"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/geospatial"
)

// Tier is a venue capacity class.
type Tier int

const (
	TierSmall Tier = iota
	TierMedium
	TierLarge
	TierExtraLarge
)

func (t Tier) String() string {
	switch t {
	case TierSmall:
		return "small"
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	default:
		return "extraLarge"
	}
}

// ClassifyTier buckets a venue by capacity.
func ClassifyTier(capacity int) Tier {
	switch {
	case capacity <= 500:
		return TierSmall
	case capacity <= 2000:
		return TierMedium
	case capacity <= 5000:
		return TierLarge
	default:
		return TierExtraLarge
	}
}

// Trust score bounds.
const (
	MinTrustScore = 50
	MaxTrustScore = 100
)

// Base compatibility and collaboration prior, indexed by tier distance.
var (
	baseByTierDistance       = [4]int{85, 75, 65, 50}
	likelihoodByTierDistance = [4]float64{0.8, 0.6, 0.3, 0.1}
)

// Config tunes the location part of the score.
type Config struct {
	RegionBonus int
	// ProximityRadiusKm enables an extra bonus for located venues in
	// different regions that are closer than this. Zero disables it.
	ProximityRadiusKm float64
	ProximityBonus    int
}

// DefaultConfig returns the reference policy: +10 for a shared region and
// no distance-based bonus.
func DefaultConfig() Config {
	return Config{RegionBonus: 10}
}

// Scorer computes network edges over a venue population.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// venueIndex is a dense arena over the venue population so the pair loop
// works on slices instead of map lookups.
type venueIndex struct {
	ids     []string
	tiers   []Tier
	regions []string
	locs    []*domain.GeoPoint
}

func buildIndex(venues []domain.Venue) venueIndex {
	sorted := make([]domain.Venue, 0, len(venues))
	seen := make(map[string]bool, len(venues))
	for _, v := range venues {
		if v.ID == "" || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		sorted = append(sorted, v)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return indexOf(sorted)
}

func indexOf(sorted []domain.Venue) venueIndex {
	idx := venueIndex{
		ids:     make([]string, len(sorted)),
		tiers:   make([]Tier, len(sorted)),
		regions: make([]string, len(sorted)),
		locs:    make([]*domain.GeoPoint, len(sorted)),
	}
	for i, v := range sorted {
		idx.ids[i] = v.ID
		idx.tiers[i] = ClassifyTier(v.Capacity)
		idx.regions[i] = strings.ToLower(strings.TrimSpace(v.Region))
		idx.locs[i] = v.Location
	}
	return idx
}

// Score returns one edge per unordered venue pair, VenueA < VenueB, sorted
// by (VenueA, VenueB). Duplicate ids are scored once.
func (s *Scorer) Score(venues []domain.Venue) []domain.NetworkEdge {
	idx := buildIndex(venues)
	n := len(idx.ids)
	if n < 2 {
		return nil
	}

	edges := make([]domain.NetworkEdge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, s.pair(idx, i, j))
		}
	}
	return edges
}

// Pair scores two venues directly.
func (s *Scorer) Pair(a, b domain.Venue) domain.NetworkEdge {
	if b.ID < a.ID {
		a, b = b, a
	}
	return s.pair(indexOf([]domain.Venue{a, b}), 0, 1)
}

func (s *Scorer) pair(idx venueIndex, i, j int) domain.NetworkEdge {
	dist := tierDistance(idx.tiers[i], idx.tiers[j])
	sameRegion := idx.regions[i] != "" && idx.regions[i] == idx.regions[j]

	score := baseByTierDistance[dist]
	if sameRegion {
		score += s.cfg.RegionBonus
	} else {
		score += s.proximityBonus(idx.locs[i], idx.locs[j])
	}

	return domain.NetworkEdge{
		VenueA:                  idx.ids[i],
		VenueB:                  idx.ids[j],
		TrustScore:              clamp(score, MinTrustScore, MaxTrustScore),
		CollaborationLikelihood: likelihoodByTierDistance[dist],
		TierDistance:            dist,
		SameRegion:              sameRegion,
	}
}

func (s *Scorer) proximityBonus(a, b *domain.GeoPoint) int {
	if s.cfg.ProximityRadiusKm <= 0 || s.cfg.ProximityBonus == 0 || a == nil || b == nil {
		return 0
	}
	if geospatial.HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon) <= s.cfg.ProximityRadiusKm {
		return s.cfg.ProximityBonus
	}
	return 0
}

func tierDistance(a, b Tier) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
