package ports

import (
	"context"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// TourRepository persists tours.
type TourRepository interface {
	// GetByID returns the tour with its stops ordered by sequence.
	GetByID(ctx context.Context, id string) (*domain.Tour, error)
	// UpdateMetrics stores live metrics; initial is written only while the
	// stored initial snapshot is still empty.
	UpdateMetrics(ctx context.Context, tourID string, live domain.TourMetrics, initial *domain.TourMetrics) error
}

// StopRepository persists tour stops (tour_venues).
type StopRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Stop, error)
	ListByTour(ctx context.Context, tourID string) ([]domain.Stop, error)
	// UpdateStatus moves a stop from one status to another and fails with
	// domain.ErrStaleStatus when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, at time.Time) error
}

// VenueRepository reads venues.
type VenueRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Venue, error)
	// FindCandidates returns located venues matching q, nearest first.
	FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error)
	ListAll(ctx context.Context) ([]domain.Venue, error)
}

// ArtistRepository reads artists.
type ArtistRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Artist, error)
}

// NetworkEdgeRepository persists the venue network.
type NetworkEdgeRepository interface {
	// ReplaceAll swaps the stored network for edges atomically.
	ReplaceAll(ctx context.Context, edges []domain.NetworkEdge) (int64, error)
	// ListByVenue returns the strongest edges touching a venue.
	ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.NetworkEdge, error)
}
