package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

const venueColumns = `
	id::text, name, COALESCE(city, ''), COALESCE(region, ''), capacity,
	ST_Y(location::geometry) AS lat,
	ST_X(location::geometry) AS lon,
	genres, created_at`

// VenueRepo implements ports.VenueRepository with pgx.
type VenueRepo struct {
	db *DB
}

// NewVenueRepo creates a new VenueRepo.
func NewVenueRepo(db *DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// GetByIDs returns the venues with the given ids, in id order.
func (r *VenueRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Venue, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+venueColumns+`
		FROM venues WHERE id = ANY($1::uuid[])
		ORDER BY id`, ids)
}

// FindCandidates filters with ST_DWithin on geography, which handles the
// antimeridian and uses the GiST index on location. The tour's own venues
// are excluded before the limit applies.
func (r *VenueRepo) FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	sql, args := candidateSQL(q)
	return r.query(ctx, sql, args...)
}

func candidateSQL(q domain.CandidateQuery) (string, []any) {
	exclude := q.ExcludeIDs
	if exclude == nil {
		exclude = []string{}
	}
	args := []any{exclude}
	where := []string{
		"location IS NOT NULL",
		"NOT (id::text = ANY($1::text[]))",
	}

	var dist []string
	if len(q.Near) > 0 {
		args = append(args, q.RadiusKm*1000)
		radius := len(args)
		for _, p := range q.Near {
			args = append(args, p.Lon, p.Lat)
			point := fmt.Sprintf("ST_SetSRID(ST_MakePoint($%d, $%d), 4326)::geography", len(args)-1, len(args))
			where = append(where, fmt.Sprintf("ST_DWithin(location, %s, $%d)", point, radius))
			dist = append(dist, "ST_Distance(location, "+point+")")
		}
	}

	sql := `SELECT ` + venueColumns + `
		FROM venues
		WHERE ` + strings.Join(where, "\n\t\t  AND ")
	if len(dist) > 0 {
		sql += "\n\t\tORDER BY " + strings.Join(dist, " + ") + ", id"
	} else {
		sql += "\n\t\tORDER BY id"
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}
	return sql, args
}

// ListAll returns every venue.
func (r *VenueRepo) ListAll(ctx context.Context) ([]domain.Venue, error) {
	return r.query(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY id`)
}

func (r *VenueRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Venue, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func scanVenue(row scanner) (domain.Venue, error) {
	var v domain.Venue
	var lat, lon *float64
	if err := row.Scan(
		&v.ID, &v.Name, &v.City, &v.Region, &v.Capacity,
		&lat, &lon, &v.Genres, &v.CreatedAt,
	); err != nil {
		return v, err
	}
	if lat != nil && lon != nil {
		v.Location = &domain.GeoPoint{Lat: *lat, Lon: *lon}
	}
	return v, nil
}

// UpsertResult reports how a single venue was written.
type UpsertResult struct {
	ID      string
	Created bool
}

// Upsert writes venues in one transaction. Venues without an ID get a
// generated one; existing IDs are updated in place.
func (r *VenueRepo) Upsert(ctx context.Context, venues []domain.Venue) ([]UpsertResult, error) {
	if len(venues) == 0 {
		return nil, nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := make([]UpsertResult, 0, len(venues))
	for _, v := range venues {
		var lat, lon *float64
		if v.Location != nil {
			lat, lon = &v.Location.Lat, &v.Location.Lon
		}
		var id *string
		if v.ID != "" {
			id = &v.ID
		}

		var res UpsertResult
		err := tx.QueryRow(ctx, `
			INSERT INTO venues (id, name, city, region, capacity, location, genres)
			VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, NULLIF($3, ''), NULLIF($4, ''), $5,
			        ST_SetSRID(ST_MakePoint($7, $6), 4326)::geography, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				city = EXCLUDED.city,
				region = EXCLUDED.region,
				capacity = EXCLUDED.capacity,
				location = EXCLUDED.location,
				genres = EXCLUDED.genres
			RETURNING id::text, (xmax = 0) AS created
		`, id, v.Name, v.City, v.Region, v.Capacity, lat, lon, v.Genres).Scan(&res.ID, &res.Created)
		if err != nil {
			return nil, fmt.Errorf("upsert venue %q: %w", v.Name, err)
		}
		results = append(results, res)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return results, nil
}
