package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

var edgeColumns = []string{
	"venue_a", "venue_b", "trust_score", "collaboration_likelihood", "tier_distance", "same_region",
}

// NetworkRepo implements ports.NetworkEdgeRepository over venue_network_edges.
type NetworkRepo struct {
	db *DB
}

// NewNetworkRepo creates a new NetworkRepo.
func NewNetworkRepo(db *DB) *NetworkRepo {
	return &NetworkRepo{db: db}
}

// ReplaceAll truncates the edge table and bulk-loads edges in one transaction.
func (r *NetworkRepo) ReplaceAll(ctx context.Context, edges []domain.NetworkEdge) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM venue_network_edges`); err != nil {
		return 0, fmt.Errorf("clear edges: %w", err)
	}

	var n int64
	if len(edges) > 0 {
		n, err = tx.CopyFrom(ctx, pgx.Identifier{"venue_network_edges"}, edgeColumns,
			pgx.CopyFromSlice(len(edges), func(i int) ([]any, error) {
				e := edges[i]
				return []any{
					e.VenueA, e.VenueB, e.TrustScore, e.CollaborationLikelihood, e.TierDistance, e.SameRegion,
				}, nil
			}))
		if err != nil {
			return 0, fmt.Errorf("copy edges: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// ListByVenue returns the edges touching venueID, strongest first.
func (r *NetworkRepo) ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.NetworkEdge, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT venue_a::text, venue_b::text, trust_score, collaboration_likelihood, tier_distance, same_region
		FROM venue_network_edges
		WHERE venue_a = $1 OR venue_b = $1
		ORDER BY trust_score DESC, collaboration_likelihood DESC, venue_a, venue_b
		LIMIT $2
	`, venueID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.NetworkEdge
	for rows.Next() {
		var e domain.NetworkEdge
		if err := rows.Scan(
			&e.VenueA, &e.VenueB, &e.TrustScore, &e.CollaborationLikelihood, &e.TierDistance, &e.SameRegion,
		); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
