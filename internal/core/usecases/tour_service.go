package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/ports"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/routing"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/telemetry"
)

const tourCacheTTL = 60

// TourService loads tours and keeps their routing metrics current.
type TourService struct {
	tours     ports.TourRepository
	venues    ports.VenueRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
	calc      *routing.Calculator
	now       func() time.Time
}

// NewTourService creates a new TourService.
func NewTourService(
	tours ports.TourRepository,
	venues ports.VenueRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
	cfg routing.Config,
) *TourService {
	return &TourService{
		tours:     tours,
		venues:    venues,
		publisher: publisher,
		cache:     cache,
		calc:      routing.NewCalculator(cfg),
		now:       time.Now,
	}
}

// RescoreResult is a tour with the score it was just given.
type RescoreResult struct {
	Tour  *domain.Tour      `json:"tour"`
	Score routing.TourScore `json:"score"`
}

func tourCacheKey(id string) string { return "tours:id:" + id }

// Get returns a tour with its stops.
func (s *TourService) Get(ctx context.Context, id string) (*domain.Tour, error) {
	var cached domain.Tour
	if cacheGet(ctx, s.cache, "tour", tourCacheKey(id), &cached) {
		return &cached, nil
	}

	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, tourCacheKey(id), tour, tourCacheTTL)
	return tour, nil
}

// Rescore recomputes a tour's routing metrics from its current stops,
// persists them and announces the result.
func (s *TourService) Rescore(ctx context.Context, id string) (*RescoreResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "TourService.Rescore", telemetry.AttrTourID.String(id))
	defer span.End()

	res, err := s.rescore(ctx, id)
	if err != nil {
		metrics.TourRescores.WithLabelValues("error").Inc()
		return nil, telemetry.RecordError(span, err)
	}
	metrics.TourRescores.WithLabelValues("ok").Inc()
	return res, nil
}

func (s *TourService) rescore(ctx context.Context, id string) (*RescoreResult, error) {
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tour: %w", err)
	}

	coords, err := loadCoordinates(ctx, s.venues, tour.VenueIDs())
	if err != nil {
		return nil, err
	}

	score := s.calc.Score(tour.Stops, coords)
	tour.ApplyMetrics(score.TourMetrics)

	if err := s.tours.UpdateMetrics(ctx, tour.ID, *tour.Metrics, tour.InitialMetrics); err != nil {
		return nil, fmt.Errorf("update tour metrics: %w", err)
	}
	tour.UpdatedAt = s.now()
	cacheDelete(ctx, s.cache, tourCacheKey(tour.ID))

	if s.publisher != nil {
		event := &domain.TourRescoredEvent{
			TourID:      tour.ID,
			Metrics:     *tour.Metrics,
			Improvement: tour.Improvement(),
			SkippedLegs: score.SkippedLegs,
			At:          tour.UpdatedAt,
		}
		if err := s.publisher.PublishTourRescored(ctx, event); err != nil {
			slog.Warn("publish tour rescored failed", "tour_id", tour.ID, "error", err)
		}
	}

	return &RescoreResult{Tour: tour, Score: score}, nil
}

// loadCoordinates resolves the locations of the given venues. Venues without
// a location are left out of the map.
func loadCoordinates(ctx context.Context, venues ports.VenueRepository, ids []string) (map[string]domain.GeoPoint, error) {
	coords := make(map[string]domain.GeoPoint, len(ids))
	if len(ids) == 0 {
		return coords, nil
	}
	list, err := venues.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load venues: %w", err)
	}
	for _, v := range list {
		if v.Location != nil {
			coords[v.ID] = *v.Location
		}
	}
	return coords, nil
}
