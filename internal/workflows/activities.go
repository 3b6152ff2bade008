package workflows

import (
	"context"
	"fmt"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/usecases"
)

// NetworkActivities holds the activity implementations for the network rebuild workflow.
type NetworkActivities struct {
	Network *usecases.NetworkService
}

// RebuildEdges recomputes every venue pair and replaces the stored network.
func (a *NetworkActivities) RebuildEdges(ctx context.Context) (*usecases.RebuildResult, error) {
	res, err := a.Network.RebuildEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild edges: %w", err)
	}
	return res, nil
}

// AnnounceRebuilt publishes the outcome of a rebuild to subscribers.
func (a *NetworkActivities) AnnounceRebuilt(ctx context.Context, res usecases.RebuildResult) error {
	if err := a.Network.Announce(ctx, &res); err != nil {
		return fmt.Errorf("announce rebuilt network: %w", err)
	}
	return nil
}
