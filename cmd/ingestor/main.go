package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	natsadapter "github.com/morgankhalil/VenueConnect-sub003/internal/adapters/nats"
	"github.com/morgankhalil/VenueConnect-sub003/internal/adapters/postgres"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/config"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/logging"
)

// venueWriter is the slice of postgres.VenueRepo the importer needs.
type venueWriter interface {
	Upsert(ctx context.Context, venues []domain.Venue) ([]postgres.UpsertResult, error)
}

// venueChangePublisher announces imported venues so the network worker can
// rebuild.
type venueChangePublisher interface {
	PublishVenueChanged(ctx context.Context, event *domain.VenueChangedEvent) error
}

func main() {
	cfg, err := config.Load("venueconnect-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	sources := os.Args[1:]
	if len(sources) == 0 {
		sources = []string{"venues.csv"}
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var publisher venueChangePublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, venue changes will not be announced", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	slog.Info("venue import starting", "sources", len(sources))

	repo := postgres.NewVenueRepo(db)

	var g errgroup.Group
	g.SetLimit(4) // max 4 concurrent files

	for _, src := range sources {
		g.Go(func() error {
			if err := importSource(ctx, repo, publisher, src); err != nil {
				slog.Error("import failed", "source", src, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	slog.Info("venue import complete")
}

func importSource(ctx context.Context, repo venueWriter, publisher venueChangePublisher, src string) error {
	rc, err := openSource(src)
	if err != nil {
		return err
	}
	defer rc.Close()

	venues, rejected, err := parseVenues(rc)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	for _, r := range rejected {
		slog.Warn("venue row skipped", "source", src, "line", r.Line, "error", r.Err)
	}

	n, err := importVenues(ctx, repo, publisher, venues)
	if err != nil {
		return err
	}
	slog.Info("venues imported", "source", src, "venues", n, "skipped", len(rejected))
	return nil
}

// importVenues writes venues and announces each change. Announcing is
// best-effort; a failed publish is logged and the import continues.
func importVenues(ctx context.Context, repo venueWriter, publisher venueChangePublisher, venues []domain.Venue) (int, error) {
	results, err := repo.Upsert(ctx, venues)
	if err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	if publisher == nil {
		return len(results), nil
	}

	now := time.Now().UTC()
	for _, res := range results {
		action := "updated"
		if res.Created {
			action = "created"
		}
		event := &domain.VenueChangedEvent{VenueID: res.ID, Action: action, At: now}
		if err := publisher.PublishVenueChanged(ctx, event); err != nil {
			slog.Warn("publish venue changed failed", "venue_id", res.ID, "error", err)
		}
	}
	return len(results), nil
}

func openSource(src string) (io.ReadCloser, error) {
	if src == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(src)
}
