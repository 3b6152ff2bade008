package http_test

import (
	"context"
	"sort"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/geospatial"
)

// ---- Mock repositories ----

type mockTourRepo struct {
	tours         map[string]*domain.Tour
	updateMetrics int
}

func (m *mockTourRepo) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	t, ok := m.tours[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	cp.Stops = append([]domain.Stop(nil), t.Stops...)
	return &cp, nil
}

func (m *mockTourRepo) UpdateMetrics(ctx context.Context, tourID string, live domain.TourMetrics, initial *domain.TourMetrics) error {
	m.updateMetrics++
	t, ok := m.tours[tourID]
	if !ok {
		return domain.ErrNotFound
	}
	t.Metrics = &live
	if t.InitialMetrics == nil {
		t.InitialMetrics = initial
	}
	return nil
}

type mockStopRepo struct {
	tours     *mockTourRepo
	updateErr error
}

func (m *mockStopRepo) find(id string) (*domain.Stop, bool) {
	for _, t := range m.tours.tours {
		for i := range t.Stops {
			if t.Stops[i].ID == id {
				return &t.Stops[i], true
			}
		}
	}
	return nil, false
}

func (m *mockStopRepo) GetByID(ctx context.Context, id string) (*domain.Stop, error) {
	s, ok := m.find(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStopRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Stop, error) {
	t, ok := m.tours.tours[tourID]
	if !ok {
		return nil, nil
	}
	return t.Stops, nil
}

func (m *mockStopRepo) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, at time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	s, ok := m.find(id)
	if !ok {
		return domain.ErrNotFound
	}
	if s.Status != from {
		return domain.ErrStaleStatus
	}
	s.Status, s.StatusUpdatedAt = to, at
	return nil
}

type mockVenueRepo struct {
	venues map[string]domain.Venue
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

func (m *mockVenueRepo) FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	return filterCandidates(m.sorted(), q), nil
}

// filterCandidates applies a CandidateQuery in memory the way the Postgres
// repository does.
func filterCandidates(venues []domain.Venue, q domain.CandidateQuery) []domain.Venue {
	excluded := make(map[string]bool, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}
	type scored struct {
		v  domain.Venue
		km float64
	}
	var hits []scored
	for _, v := range venues {
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
			hits = append(hits, scored{v, total})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].km != hits[j].km {
			return hits[i].km < hits[j].km
		}
		return hits[i].v.ID < hits[j].v.ID
	})
	out := make([]domain.Venue, 0, len(hits))
	for _, h := range hits {
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
		out = append(out, h.v)
	}
	return out
}

func (m *mockVenueRepo) ListAll(ctx context.Context) ([]domain.Venue, error) {
	return m.sorted(), nil
}

func (m *mockVenueRepo) sorted() []domain.Venue {
	out := make([]domain.Venue, 0, len(m.venues))
	for _, v := range m.venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type mockArtistRepo struct{}

func (m *mockArtistRepo) GetByID(ctx context.Context, id string) (*domain.Artist, error) {
	return &domain.Artist{ID: id, Name: "The Routers", Genres: []string{"indie"}}, nil
}

type mockEdgeRepo struct {
	stored []domain.NetworkEdge
}

func (m *mockEdgeRepo) ReplaceAll(ctx context.Context, edges []domain.NetworkEdge) (int64, error) {
	m.stored = edges
	return int64(len(edges)), nil
}

func (m *mockEdgeRepo) ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.NetworkEdge, error) {
	var out []domain.NetworkEdge
	for _, e := range m.stored {
		if (e.VenueA == venueID || e.VenueB == venueID) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---- Fixtures ----

func loc(lat, lon float64) *domain.GeoPoint { return &domain.GeoPoint{Lat: lat, Lon: lon} }

func showDay(n int) *time.Time {
	d := domain.Civil(time.Now()).AddDate(0, 0, 30+n)
	return &d
}

func testVenues() map[string]domain.Venue {
	return map[string]domain.Venue{
		"nyc": {ID: "nyc", Name: "Bowery Ballroom", Region: "NY", Capacity: 575, Location: loc(40.7204, -73.9934)},
		"bos": {ID: "bos", Name: "Paradise Rock Club", Region: "MA", Capacity: 933, Location: loc(42.3519, -71.1187)},
		"pvd": {ID: "pvd", Name: "Fete", Region: "RI", Capacity: 1000, Location: loc(41.8240, -71.4128)},
		"hfd": {ID: "hfd", Name: "Webster Theater", Region: "CT", Capacity: 1250, Location: loc(41.7470, -72.6910), Genres: []string{"indie"}},
	}
}

func testTour() *domain.Tour {
	return &domain.Tour{
		ID:        "t1",
		ArtistID:  "a1",
		Name:      "Spring Run",
		StartDate: showDay(0),
		EndDate:   showDay(10),
		Stops: []domain.Stop{
			{ID: "s1", TourID: "t1", VenueID: "nyc", Sequence: 1, Date: showDay(0), Status: domain.StatusConfirmed},
			{ID: "s2", TourID: "t1", VenueID: "pvd", Sequence: 2, Status: domain.StatusHold2},
			{ID: "s3", TourID: "t1", VenueID: "bos", Sequence: 3, Date: showDay(10), Status: domain.StatusConfirmed},
		},
	}
}
