package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

const stopColumns = `id::text, tour_id::text, venue_id::text, sequence, date, status, status_updated_at`

// StopRepo implements ports.StopRepository over tour_venues.
type StopRepo struct {
	db *DB
}

// NewStopRepo creates a new StopRepo.
func NewStopRepo(db *DB) *StopRepo {
	return &StopRepo{db: db}
}

// GetByID returns a stop by UUID.
func (r *StopRepo) GetByID(ctx context.Context, id string) (*domain.Stop, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+stopColumns+` FROM tour_venues WHERE id = $1`, id)
	s, err := scanStop(row)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// ListByTour returns a tour's stops ordered by sequence.
func (r *StopRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Stop, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+stopColumns+`
		FROM tour_venues
		WHERE tour_id = $1
		ORDER BY sequence, id
	`, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// UpdateStatus performs a compare-and-set on the stored status.
func (r *StopRepo) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, at time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE tour_venues
		SET status = $3, status_updated_at = $4
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("update stop status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tour_venues WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check stop: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrStaleStatus
}

func scanStop(row scanner) (domain.Stop, error) {
	var s domain.Stop
	var status string
	if err := row.Scan(
		&s.ID, &s.TourID, &s.VenueID, &s.Sequence, &s.Date, &status, &s.StatusUpdatedAt,
	); err != nil {
		return s, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return s, fmt.Errorf("stop %s: %w", s.ID, err)
	}
	s.Status = st
	return s, nil
}
