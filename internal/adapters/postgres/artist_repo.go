package postgres

import (
	"context"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// ArtistRepo implements ports.ArtistRepository with pgx.
type ArtistRepo struct {
	db *DB
}

// NewArtistRepo creates a new ArtistRepo.
func NewArtistRepo(db *DB) *ArtistRepo {
	return &ArtistRepo{db: db}
}

// GetByID returns an artist by UUID.
func (r *ArtistRepo) GetByID(ctx context.Context, id string) (*domain.Artist, error) {
	var a domain.Artist
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id::text, name, genres, COALESCE(expected_draw, 0)
		FROM artists WHERE id = $1
	`, id).Scan(&a.ID, &a.Name, &a.Genres, &a.ExpectedDraw)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}
