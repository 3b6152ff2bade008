package workflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/network"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/usecases"
)

func TestNetworkRebuildWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterActivity(&NetworkActivities{})

	want := &usecases.RebuildResult{Venues: 4, Edges: 6, DurationMs: 12}
	env.OnActivity("RebuildEdges", mock.Anything).Return(want, nil).Once()
	env.OnActivity("AnnounceRebuilt", mock.Anything, *want).Return(nil).Once()

	env.ExecuteWorkflow(NetworkRebuildWorkflow, NetworkRebuildInput{
		Reason:   "updated",
		VenueID:  "v1",
		Debounce: time.Minute,
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var got usecases.RebuildResult
	require.NoError(t, env.GetWorkflowResult(&got))
	assert.Equal(t, *want, got)
	env.AssertExpectations(t)
}

func TestNetworkRebuildWorkflow_AnnounceFailureIsNotFatal(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterActivity(&NetworkActivities{})

	env.OnActivity("RebuildEdges", mock.Anything).Return(&usecases.RebuildResult{Venues: 2, Edges: 1}, nil)
	env.OnActivity("AnnounceRebuilt", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	env.ExecuteWorkflow(NetworkRebuildWorkflow, NetworkRebuildInput{Reason: "nightly"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var got usecases.RebuildResult
	require.NoError(t, env.GetWorkflowResult(&got))
	assert.Equal(t, 1, got.Edges)
}

func TestNetworkRebuildWorkflow_RebuildFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterActivity(&NetworkActivities{})

	env.OnActivity("RebuildEdges", mock.Anything).
		Return((*usecases.RebuildResult)(nil), errors.New("db down"))

	env.ExecuteWorkflow(NetworkRebuildWorkflow, NetworkRebuildInput{Reason: "updated"})

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
}

type venueList []domain.Venue

func (v venueList) GetByIDs(context.Context, []string) ([]domain.Venue, error) { return v, nil }
func (v venueList) FindCandidates(context.Context, domain.CandidateQuery) ([]domain.Venue, error) {
	return v, nil
}
func (v venueList) ListAll(context.Context) ([]domain.Venue, error) { return v, nil }

type edgeSink struct {
	stored []domain.NetworkEdge
}

func (e *edgeSink) ReplaceAll(_ context.Context, edges []domain.NetworkEdge) (int64, error) {
	e.stored = edges
	return int64(len(edges)), nil
}

func (e *edgeSink) ListByVenue(context.Context, string, int) ([]domain.NetworkEdge, error) {
	return e.stored, nil
}

func TestNetworkActivities(t *testing.T) {
	venues := venueList{
		{ID: "a", Name: "A", Region: "NY", Capacity: 500, Location: &domain.GeoPoint{Lat: 40.7, Lon: -74.0}},
		{ID: "b", Name: "B", Region: "MA", Capacity: 600, Location: &domain.GeoPoint{Lat: 42.36, Lon: -71.06}},
		{ID: "c", Name: "C", Region: "RI", Capacity: 2000, Location: &domain.GeoPoint{Lat: 41.82, Lon: -71.41}},
	}
	sink := &edgeSink{}
	acts := &NetworkActivities{
		Network: usecases.NewNetworkService(venues, sink, nil, nil, network.DefaultConfig()),
	}

	res, err := acts.RebuildEdges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Venues)
	assert.Equal(t, 3, res.Edges)
	assert.Len(t, sink.stored, 3)

	// No publisher configured: announcing is a no-op.
	assert.NoError(t, acts.AnnounceRebuilt(context.Background(), *res))
}
