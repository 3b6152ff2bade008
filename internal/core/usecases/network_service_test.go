package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/network"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/usecases"
)

func TestNetworkService_Rebuild(t *testing.T) {
	edges := &mockEdgeRepo{}
	pub := &mockPublisher{}
	svc := usecases.NewNetworkService(&mockVenueRepo{venues: testVenues()}, edges, pub, nil, network.DefaultConfig())

	res, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Venues != 3 || res.Edges != 3 {
		t.Errorf("expected 3 venues and 3 edges, got %+v", res)
	}
	if len(edges.stored) != 3 {
		t.Fatalf("expected 3 stored edges, got %d", len(edges.stored))
	}
	for _, e := range edges.stored {
		if e.VenueA >= e.VenueB {
			t.Errorf("edge not canonical: %s/%s", e.VenueA, e.VenueB)
		}
		if e.TrustScore < network.MinTrustScore || e.TrustScore > network.MaxTrustScore {
			t.Errorf("trust score out of range: %d", e.TrustScore)
		}
	}
	if len(pub.rebuilt) != 1 || pub.rebuilt[0].Edges != 3 {
		t.Errorf("expected one rebuilt event with 3 edges, got %+v", pub.rebuilt)
	}
}

func TestNetworkService_Rebuild_StoreFails(t *testing.T) {
	edges := &mockEdgeRepo{replaceErr: errors.New("deadlock detected")}
	pub := &mockPublisher{}
	svc := usecases.NewNetworkService(&mockVenueRepo{venues: testVenues()}, edges, pub, nil, network.DefaultConfig())

	if _, err := svc.Rebuild(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.rebuilt) != 0 {
		t.Error("failed rebuild must not be announced")
	}
}

func TestNetworkService_Partners_CachedAndClamped(t *testing.T) {
	var gotLimit int
	edges := &mockEdgeRepo{
		listByVenueFn: func(ctx context.Context, venueID string, limit int) ([]domain.NetworkEdge, error) {
			gotLimit = limit
			return []domain.NetworkEdge{{VenueA: "bos", VenueB: venueID, TrustScore: 85}}, nil
		},
	}
	svc := usecases.NewNetworkService(&mockVenueRepo{}, edges, nil, newMockCache(), network.DefaultConfig())

	for i := 0; i < 2; i++ {
		partners, err := svc.Partners(context.Background(), "nyc", 1000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(partners) != 1 || partners[0].Other("nyc") != "bos" {
			t.Fatalf("unexpected partners %+v", partners)
		}
	}
	if gotLimit != 100 {
		t.Errorf("expected limit clamped to 100, got %d", gotLimit)
	}
	if edges.listCalls != 1 {
		t.Errorf("expected one repository call, got %d", edges.listCalls)
	}
}

func TestNetworkService_Partners_EmptyIsNotNil(t *testing.T) {
	svc := usecases.NewNetworkService(&mockVenueRepo{}, &mockEdgeRepo{}, nil, nil, network.DefaultConfig())
	partners, err := svc.Partners(context.Background(), "nyc", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partners == nil {
		t.Error("expected an empty slice")
	}
}

func TestNetworkService_Pair(t *testing.T) {
	svc := usecases.NewNetworkService(&mockVenueRepo{}, &mockEdgeRepo{}, nil, nil, network.DefaultConfig())
	v := testVenues()
	e := svc.Pair(v["bos"], v["pvd"])
	if e.VenueA != "bos" || e.TrustScore != 85 {
		t.Errorf("unexpected edge %+v", e)
	}
}

func TestNetworkService_PairByID(t *testing.T) {
	svc := usecases.NewNetworkService(&mockVenueRepo{venues: testVenues()}, &mockEdgeRepo{}, nil, nil, network.DefaultConfig())

	e, err := svc.PairByID(context.Background(), "pvd", "bos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.VenueA != "bos" || e.VenueB != "pvd" || e.TrustScore != 85 {
		t.Errorf("unexpected edge %+v", e)
	}

	if _, err := svc.PairByID(context.Background(), "bos", "nowhere"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.PairByID(context.Background(), "bos", "bos"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for self pair, got %v", err)
	}
}
