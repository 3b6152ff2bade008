package postgres

import (
	"context"
	"fmt"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// TourRepo implements ports.TourRepository with pgx.
type TourRepo struct {
	db    *DB
	stops *StopRepo
}

// NewTourRepo creates a new TourRepo.
func NewTourRepo(db *DB) *TourRepo {
	return &TourRepo{db: db, stops: NewStopRepo(db)}
}

// GetByID returns a tour and its stops ordered by sequence.
func (r *TourRepo) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	var t domain.Tour
	var (
		dist, initDist   *float64
		mins, initMins   *int
		score, initScore *int
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id::text, artist_id::text, name, start_date, end_date,
		       total_distance_km, total_travel_time_minutes, optimization_score,
		       initial_total_distance_km, initial_total_travel_time_minutes, initial_optimization_score,
		       updated_at
		FROM tours WHERE id = $1
	`, id).Scan(
		&t.ID, &t.ArtistID, &t.Name, &t.StartDate, &t.EndDate,
		&dist, &mins, &score,
		&initDist, &initMins, &initScore,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	t.Metrics = metricsFrom(dist, mins, score)
	t.InitialMetrics = metricsFrom(initDist, initMins, initScore)

	stops, err := r.stops.ListByTour(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	t.Stops = stops
	return &t, nil
}

// UpdateMetrics stores live metrics. The initial columns are only filled
// while they are still NULL.
func (r *TourRepo) UpdateMetrics(ctx context.Context, tourID string, live domain.TourMetrics, initial *domain.TourMetrics) error {
	var initDist *float64
	var initMins, initScore *int
	if initial != nil {
		initDist = &initial.TotalDistanceKm
		initMins = &initial.TotalTravelTimeMinutes
		initScore = &initial.OptimizationScore
	}

	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE tours SET
			total_distance_km = $2,
			total_travel_time_minutes = $3,
			optimization_score = $4,
			initial_total_distance_km = COALESCE(initial_total_distance_km, $5),
			initial_total_travel_time_minutes = COALESCE(initial_total_travel_time_minutes, $6),
			initial_optimization_score = COALESCE(initial_optimization_score, $7),
			updated_at = now()
		WHERE id = $1
	`, tourID, live.TotalDistanceKm, live.TotalTravelTimeMinutes, live.OptimizationScore,
		initDist, initMins, initScore)
	if err != nil {
		return fmt.Errorf("update tour metrics: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func metricsFrom(dist *float64, mins, score *int) *domain.TourMetrics {
	if dist == nil || mins == nil || score == nil {
		return nil
	}
	return &domain.TourMetrics{
		TotalDistanceKm:        *dist,
		TotalTravelTimeMinutes: *mins,
		OptimizationScore:      *score,
	}
}
