package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/morgankhalil/VenueConnect-sub003/internal/adapters/nats"
	"github.com/morgankhalil/VenueConnect-sub003/internal/adapters/postgres"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/ports"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/usecases"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/config"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/logging"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/telemetry"
	"github.com/morgankhalil/VenueConnect-sub003/internal/workflows"
)

func main() {
	cfg, err := config.Load("venueconnect-networker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats publisher unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	networkSvc := usecases.NewNetworkService(
		postgres.NewVenueRepo(db),
		postgres.NewNetworkRepo(db),
		publisher,
		nil,
		cfg.Engine.Network(),
	)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.NetworkRebuildWorkflow)
	w.RegisterActivity(&workflows.NetworkActivities{Network: networkSvc})

	if cfg.Temporal.RebuildCron != "" {
		_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:           workflows.NightlyRebuildWorkflowID,
			TaskQueue:    cfg.Temporal.TaskQueue,
			CronSchedule: cfg.Temporal.RebuildCron,
		}, workflows.NetworkRebuildWorkflow, workflows.NetworkRebuildInput{Reason: "scheduled"})
		if err != nil {
			slog.Warn("schedule nightly rebuild failed", "error", err)
		}
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable, venue changes will not trigger rebuilds", "error", err)
	} else {
		defer sub.Close()
		debounce := time.Duration(cfg.Temporal.RebuildDebounce) * time.Second
		if err := watchVenueChanges(ctx, sub, c, cfg.Temporal.TaskQueue, debounce); err != nil {
			log.Fatalf("subscribe venue changes: %v", err)
		}
	}

	slog.Info("network worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func watchVenueChanges(ctx context.Context, sub ports.EventSubscriber, c client.Client, taskQueue string, debounce time.Duration) error {
	return sub.SubscribeVenueChanges(ctx, requestRebuild(c, taskQueue, debounce))
}

// requestRebuild starts the shared rebuild workflow. While a run is still
// debouncing, starting it again returns the existing run, so bursts of venue
// edits produce one rebuild.
func requestRebuild(c client.Client, taskQueue string, debounce time.Duration) func(context.Context, *domain.VenueChangedEvent) error {
	return func(ctx context.Context, event *domain.VenueChangedEvent) error {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        workflows.NetworkRebuildWorkflowID,
			TaskQueue: taskQueue,
		}, workflows.NetworkRebuildWorkflow, workflows.NetworkRebuildInput{
			Reason:   event.Action,
			VenueID:  event.VenueID,
			Debounce: debounce,
		})
		if err != nil {
			return fmt.Errorf("start network rebuild: %w", err)
		}
		slog.Info("network rebuild requested",
			"venue_id", event.VenueID,
			"action", event.Action,
			"run_id", run.GetRunID(),
		)
		return nil
	}
}
