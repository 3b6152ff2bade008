package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/usecases"
)

const (
	// NetworkRebuildWorkflowID is shared by every event-driven rebuild so a
	// burst of venue changes collapses into a single run.
	NetworkRebuildWorkflowID = "venue-network-rebuild"
	// NightlyRebuildWorkflowID identifies the scheduled rebuild.
	NightlyRebuildWorkflowID = "venue-network-nightly"
)

// NetworkRebuildInput describes why a rebuild was requested.
type NetworkRebuildInput struct {
	Reason   string        `json:"reason"`
	VenueID  string        `json:"venue_id,omitempty"`
	Debounce time.Duration `json:"debounce"`
}

// NetworkRebuildWorkflow waits out the debounce window, rebuilds the venue
// network and announces the result.
//
// Steps:
//  1. Sleep for Debounce so further venue edits join this run
//  2. Rebuild and store all edges
//  3. Publish a network-rebuilt event (best-effort)
func NetworkRebuildWorkflow(ctx workflow.Context, input NetworkRebuildInput) (*usecases.RebuildResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("network rebuild requested", "reason", input.Reason, "venue_id", input.VenueID)

	if input.Debounce > 0 {
		if err := workflow.Sleep(ctx, input.Debounce); err != nil {
			return nil, err
		}
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var res usecases.RebuildResult
	if err := workflow.ExecuteActivity(ctx, "RebuildEdges").Get(ctx, &res); err != nil {
		logger.Error("network rebuild failed", "error", err)
		return nil, err
	}

	announceCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})
	if err := workflow.ExecuteActivity(announceCtx, "AnnounceRebuilt", res).Get(announceCtx, nil); err != nil {
		logger.Warn("announce rebuilt network failed", "error", err)
	}

	logger.Info("network rebuild completed", "venues", res.Venues, "edges", res.Edges)
	return &res, nil
}
