package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/network"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/ports"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/telemetry"
)

const (
	partnersCacheTTL   = 300
	defaultPartnerSize = 20
	maxPartnerSize     = 100
)

// NetworkService rebuilds and queries the venue collaboration network.
type NetworkService struct {
	venues    ports.VenueRepository
	edges     ports.NetworkEdgeRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
	scorer    *network.Scorer
	now       func() time.Time
}

// NewNetworkService creates a new NetworkService.
func NewNetworkService(
	venues ports.VenueRepository,
	edges ports.NetworkEdgeRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
	cfg network.Config,
) *NetworkService {
	return &NetworkService{
		venues:    venues,
		edges:     edges,
		publisher: publisher,
		cache:     cache,
		scorer:    network.NewScorer(cfg),
		now:       time.Now,
	}
}

// RebuildResult summarises a network rebuild.
type RebuildResult struct {
	Venues     int   `json:"venues"`
	Edges      int   `json:"edges"`
	DurationMs int64 `json:"duration_ms"`
}

// Rebuild recomputes every venue pair, replaces the stored network and
// announces the new network.
func (s *NetworkService) Rebuild(ctx context.Context) (*RebuildResult, error) {
	res, err := s.RebuildEdges(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Announce(ctx, res); err != nil {
		slog.Warn("publish network rebuilt failed", "error", err)
	}
	return res, nil
}

// RebuildEdges recomputes and stores the network without announcing it.
func (s *NetworkService) RebuildEdges(ctx context.Context) (*RebuildResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "NetworkService.RebuildEdges")
	defer span.End()

	start := s.now()

	venues, err := s.venues.ListAll(ctx)
	if err != nil {
		return nil, telemetry.RecordError(span, fmt.Errorf("list venues: %w", err))
	}

	edges := s.scorer.Score(venues)

	stored, err := s.edges.ReplaceAll(ctx, edges)
	if err != nil {
		return nil, telemetry.RecordError(span, fmt.Errorf("replace network edges: %w", err))
	}

	elapsed := s.now().Sub(start)
	metrics.NetworkEdges.Set(float64(stored))
	metrics.NetworkRebuildDuration.Observe(elapsed.Seconds())
	span.SetAttributes(telemetry.AttrCount.Int64(stored))

	slog.Info("venue network rebuilt", "venues", len(venues), "edges", stored, "duration", elapsed)
	return &RebuildResult{Venues: len(venues), Edges: int(stored), DurationMs: elapsed.Milliseconds()}, nil
}

// Announce publishes a NetworkRebuiltEvent for res.
func (s *NetworkService) Announce(ctx context.Context, res *RebuildResult) error {
	if s.publisher == nil || res == nil {
		return nil
	}
	return s.publisher.PublishNetworkRebuilt(ctx, &domain.NetworkRebuiltEvent{
		Venues:     res.Venues,
		Edges:      res.Edges,
		DurationMs: res.DurationMs,
		At:         s.now(),
	})
}

// Pair scores two venues without touching storage.
func (s *NetworkService) Pair(a, b domain.Venue) domain.NetworkEdge {
	return s.scorer.Pair(a, b)
}

// PairByID loads two venues and scores them without touching storage.
func (s *NetworkService) PairByID(ctx context.Context, a, b string) (domain.NetworkEdge, error) {
	venues, err := s.venues.GetByIDs(ctx, []string{a, b})
	if err != nil {
		return domain.NetworkEdge{}, fmt.Errorf("get venues: %w", err)
	}
	byID := make(map[string]domain.Venue, len(venues))
	for _, v := range venues {
		byID[v.ID] = v
	}
	va, okA := byID[a]
	vb, okB := byID[b]
	if !okA || !okB || a == b {
		return domain.NetworkEdge{}, domain.ErrNotFound
	}
	return s.scorer.Pair(va, vb), nil
}

// Partners returns the strongest stored edges of a venue.
func (s *NetworkService) Partners(ctx context.Context, venueID string, limit int) ([]domain.NetworkEdge, error) {
	if limit <= 0 {
		limit = defaultPartnerSize
	}
	if limit > maxPartnerSize {
		limit = maxPartnerSize
	}

	cacheKey := fmt.Sprintf("partners:%s:%d", venueID, limit)
	var cached []domain.NetworkEdge
	if cacheGet(ctx, s.cache, "partners", cacheKey, &cached) {
		return cached, nil
	}

	edges, err := s.edges.ListByVenue(ctx, venueID, limit)
	if err != nil {
		return nil, err
	}
	if edges == nil {
		edges = []domain.NetworkEdge{}
	}

	cacheSet(ctx, s.cache, cacheKey, edges, partnersCacheTTL)
	return edges, nil
}
