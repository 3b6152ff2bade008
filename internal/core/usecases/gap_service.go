package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/ports"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/routing"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/telemetry"
)

const suggestionCacheTTL = 300

// MaxSuggestionLimit caps how many suggestions one request may ask for.
const MaxSuggestionLimit = 50

// GapService finds open stretches in a tour and ranks venues to fill them.
type GapService struct {
	tours     ports.TourRepository
	venues    ports.VenueRepository
	artists   ports.ArtistRepository
	cache     ports.CacheService
	detector  *routing.Detector
	ranker    *routing.Ranker
	poolLimit int
	now       func() time.Time
}

// NewGapService creates a new GapService. poolLimit caps how many of the
// nearest candidate venues are ranked per gap.
func NewGapService(
	tours ports.TourRepository,
	venues ports.VenueRepository,
	artists ports.ArtistRepository,
	cache ports.CacheService,
	cfg routing.Config,
	poolLimit int,
) *GapService {
	if poolLimit <= 0 {
		poolLimit = 500
	}
	return &GapService{
		tours:     tours,
		venues:    venues,
		artists:   artists,
		cache:     cache,
		detector:  routing.NewDetector(cfg),
		ranker:    routing.NewRanker(cfg),
		poolLimit: poolLimit,
		now:       time.Now,
	}
}

// DetectGaps returns the gaps of a tour in date order.
func (s *GapService) DetectGaps(ctx context.Context, tourID string) ([]domain.Gap, error) {
	ctx, span := telemetry.StartSpan(ctx, "GapService.DetectGaps", telemetry.AttrTourID.String(tourID))
	defer span.End()

	_, gaps, err := s.detect(ctx, tourID)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	for _, g := range gaps {
		metrics.GapsDetected.WithLabelValues(string(g.Kind)).Inc()
	}
	return gaps, nil
}

func (s *GapService) detect(ctx context.Context, tourID string) (*domain.Tour, []domain.Gap, error) {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, nil, fmt.Errorf("get tour: %w", err)
	}
	coords, err := loadCoordinates(ctx, s.venues, tour.VenueIDs())
	if err != nil {
		return nil, nil, err
	}
	gaps := s.detector.Detect(*tour, tour.Stops, coords)
	if gaps == nil {
		gaps = []domain.Gap{}
	}
	return tour, gaps, nil
}

// Suggestions ranks venues for one gap of a tour. Results are cached for a
// few minutes per tour revision.
func (s *GapService) Suggestions(ctx context.Context, tourID, gapID string, limit int) ([]domain.GapSuggestion, error) {
	ctx, span := telemetry.StartSpan(ctx, "GapService.Suggestions",
		telemetry.AttrTourID.String(tourID), telemetry.AttrGapID.String(gapID))
	defer span.End()

	if limit < 0 {
		limit = 0
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}

	tour, gaps, err := s.detect(ctx, tourID)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	gap, ok := findGap(gaps, gapID)
	if !ok {
		return nil, fmt.Errorf("gap %s: %w", gapID, domain.ErrNotFound)
	}

	today := domain.Civil(s.now())
	cacheKey := fmt.Sprintf("suggestions:%s:%s:%d:%s:%d",
		tourID, gapID, tour.UpdatedAt.Unix(), today.Format("20060102"), limit)

	var cached []domain.GapSuggestion
	if cacheGet(ctx, s.cache, "suggestions", cacheKey, &cached) {
		return cached, nil
	}

	booked := tour.VenueIDs()
	candidates, err := s.candidatePool(ctx, gap, booked)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	exclude := make(map[string]bool, len(booked))
	for _, id := range booked {
		exclude[id] = true
	}

	suggestions := s.ranker.Rank(gap, candidates, today, routing.RankOptions{
		Artist:  s.artist(ctx, tour.ArtistID),
		Exclude: exclude,
		Limit:   limit,
	})
	metrics.SuggestionsRanked.Observe(float64(len(suggestions)))
	span.SetAttributes(telemetry.AttrCount.Int(len(suggestions)))

	cacheSet(ctx, s.cache, cacheKey, suggestions, suggestionCacheTTL)
	return suggestions, nil
}

// candidatePool loads venues within the gap's travel radius of every
// located side, nearest first, skipping venues the tour already uses. The
// pool limit drops the farthest venues. A gap without located sides cannot
// be narrowed, so every venue is a candidate.
func (s *GapService) candidatePool(ctx context.Context, gap domain.Gap, booked []string) ([]domain.Venue, error) {
	q := domain.CandidateQuery{
		RadiusKm:   gap.MaxTravelDistanceKm,
		ExcludeIDs: booked,
	}
	for _, p := range []*domain.GeoPoint{gap.PreviousLocation, gap.NextLocation} {
		if p != nil {
			q.Near = append(q.Near, *p)
		}
	}
	if len(q.Near) > 0 {
		q.Limit = s.poolLimit
	}

	venues, err := s.venues.FindCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find candidate venues: %w", err)
	}
	return venues, nil
}

// artist loads the tour's artist for affinity scoring. A missing artist only
// disables affinity.
func (s *GapService) artist(ctx context.Context, id string) *domain.Artist {
	if id == "" || s.artists == nil {
		return nil
	}
	a, err := s.artists.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("load artist failed", "artist_id", id, "error", err)
		}
		return nil
	}
	return a
}

func findGap(gaps []domain.Gap, id string) (domain.Gap, bool) {
	for _, g := range gaps {
		if g.ID == id {
			return g, true
		}
	}
	return domain.Gap{}, false
}
