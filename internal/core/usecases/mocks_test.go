package usecases_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/geospatial"
)

// --- Mock TourRepository ---

type mockTourRepo struct {
	getByIDFn       func(ctx context.Context, id string) (*domain.Tour, error)
	updateMetricsFn func(ctx context.Context, tourID string, live domain.TourMetrics, initial *domain.TourMetrics) error
	getCalls        int
}

func (m *mockTourRepo) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	m.getCalls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockTourRepo) UpdateMetrics(ctx context.Context, tourID string, live domain.TourMetrics, initial *domain.TourMetrics) error {
	if m.updateMetricsFn != nil {
		return m.updateMetricsFn(ctx, tourID, live, initial)
	}
	return nil
}

// --- Mock StopRepository ---

type mockStopRepo struct {
	getByIDFn      func(ctx context.Context, id string) (*domain.Stop, error)
	updateStatusFn func(ctx context.Context, id string, from, to domain.BookingStatus, at time.Time) error
	updateCalls    int
}

func (m *mockStopRepo) GetByID(ctx context.Context, id string) (*domain.Stop, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStopRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Stop, error) {
	return nil, nil
}

func (m *mockStopRepo) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, at time.Time) error {
	m.updateCalls++
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, from, to, at)
	}
	return nil
}

// --- Mock VenueRepository ---

type mockVenueRepo struct {
	venues           map[string]domain.Venue
	findCandidatesFn func(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error)
	listAllFn        func(ctx context.Context) ([]domain.Venue, error)
	findCalls        int
}

func (m *mockVenueRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Venue, error) {
	var out []domain.Venue
	for _, id := range ids {
		if v, ok := m.venues[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// FindCandidates applies the query in memory over every known venue, the
// way the Postgres repository does.
func (m *mockVenueRepo) FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	m.findCalls++
	if m.findCandidatesFn != nil {
		return m.findCandidatesFn(ctx, q)
	}

	excluded := make(map[string]bool, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}
	distance := make(map[string]float64)
	var hits []domain.Venue
	for _, v := range m.venues {
		if v.Location == nil || excluded[v.ID] {
			continue
		}
		total, ok := 0.0, true
		for _, p := range q.Near {
			km := geospatial.HaversineKm(p.Lat, p.Lon, v.Location.Lat, v.Location.Lon)
			if km > q.RadiusKm {
				ok = false
				break
			}
			total += km
		}
		if ok {
			distance[v.ID] = total
			hits = append(hits, v)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		di, dj := distance[hits[i].ID], distance[hits[j].ID]
		if di != dj {
			return di < dj
		}
		return hits[i].ID < hits[j].ID
	})
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

func (m *mockVenueRepo) ListAll(ctx context.Context) ([]domain.Venue, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	var out []domain.Venue
	for _, v := range m.venues {
		out = append(out, v)
	}
	return out, nil
}

// --- Mock ArtistRepository ---

type mockArtistRepo struct {
	artist *domain.Artist
}

func (m *mockArtistRepo) GetByID(ctx context.Context, id string) (*domain.Artist, error) {
	if m.artist == nil || m.artist.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.artist, nil
}

// --- Mock NetworkEdgeRepository ---

type mockEdgeRepo struct {
	stored        []domain.NetworkEdge
	replaceErr    error
	listByVenueFn func(ctx context.Context, venueID string, limit int) ([]domain.NetworkEdge, error)
	listCalls     int
}

func (m *mockEdgeRepo) ReplaceAll(ctx context.Context, edges []domain.NetworkEdge) (int64, error) {
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	m.stored = edges
	return int64(len(edges)), nil
}

func (m *mockEdgeRepo) ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.NetworkEdge, error) {
	m.listCalls++
	if m.listByVenueFn != nil {
		return m.listByVenueFn(ctx, venueID, limit)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	err           error
	rescored      []*domain.TourRescoredEvent
	statusChanges []*domain.StopStatusChangedEvent
	rebuilt       []*domain.NetworkRebuiltEvent
}

func (m *mockPublisher) PublishTourRescored(ctx context.Context, event *domain.TourRescoredEvent) error {
	m.rescored = append(m.rescored, event)
	return m.err
}

func (m *mockPublisher) PublishStopStatusChanged(ctx context.Context, event *domain.StopStatusChangedEvent) error {
	m.statusChanges = append(m.statusChanges, event)
	return m.err
}

func (m *mockPublisher) PublishNetworkRebuilt(ctx context.Context, event *domain.NetworkRebuiltEvent) error {
	m.rebuilt = append(m.rebuilt, event)
	return m.err
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return m.err }

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// --- Fixtures ---

// firstShow is far enough ahead that suggestions are never cut off by today.
var firstShow = domain.Civil(time.Now()).AddDate(0, 0, 30)

func showDay(n int) *time.Time {
	t := firstShow.AddDate(0, 0, n)
	return &t
}

func loc(lat, lon float64) *domain.GeoPoint { return &domain.GeoPoint{Lat: lat, Lon: lon} }

// testVenues: New York, Boston and a Providence venue already on the tour.
func testVenues() map[string]domain.Venue {
	return map[string]domain.Venue{
		"nyc": {ID: "nyc", Name: "Bowery Ballroom", Region: "NY", Capacity: 575, Location: loc(40.7204, -73.9934)},
		"bos": {ID: "bos", Name: "Paradise Rock Club", Region: "MA", Capacity: 933, Location: loc(42.3519, -71.1187)},
		"pvd": {ID: "pvd", Name: "Fete", Region: "RI", Capacity: 1000, Location: loc(41.8240, -71.4128)},
	}
}

// testTour confirms New York on day 0 and Boston on day 10 with a hold in
// Providence in between.
func testTour() *domain.Tour {
	return &domain.Tour{
		ID:        "t1",
		ArtistID:  "a1",
		Name:      "Spring Run",
		StartDate: showDay(0),
		EndDate:   showDay(10),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Stops: []domain.Stop{
			{ID: "s1", TourID: "t1", VenueID: "nyc", Sequence: 1, Date: showDay(0), Status: domain.StatusConfirmed},
			{ID: "s2", TourID: "t1", VenueID: "pvd", Sequence: 2, Status: domain.StatusHold2},
			{ID: "s3", TourID: "t1", VenueID: "bos", Sequence: 3, Date: showDay(10), Status: domain.StatusConfirmed},
		},
	}
}
