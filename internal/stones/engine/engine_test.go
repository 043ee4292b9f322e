package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/stone-planner-server/internal/stones/db"
	"github.com/rsned/stone-planner-server/internal/stones/planner"
	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

func newTestEngine(t *testing.T, withDB bool) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := planner.New(registry.Default(), planner.DefaultConfig(), logger)

	var database *db.DB
	if withDB {
		var err error
		database, err = db.OpenAndInit(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = database.Close() })
	}

	return New(p, database, DefaultCacheSize, logger)
}

var dodgeAndDR = stones.PlanBuildRequest{
	Goals: []stones.Goal{{Stat: "Dodge", Value: 30}, {Stat: "DR", Value: 20}},
}

func TestPlanBuild(t *testing.T) {
	e := newTestEngine(t, true)

	res, err := e.PlanBuild(context.Background(), dodgeAndDR)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.NotEmpty(t, res.PlanID)
	require.NotNil(t, res.Plan)
	assert.Equal(t, 5, res.Plan.SocketsUsed)
}

func TestPlanBuildInvalidOptions(t *testing.T) {
	e := newTestEngine(t, false)

	tests := []struct {
		name string
		opts stones.PlanOptions
	}{
		{"negative merges", stones.PlanOptions{MaxMerges: -1}},
		{"huge beam", stones.PlanOptions{BeamWidth: 100000}},
		{"long time limit", stones.PlanOptions{TimeLimitMs: 120000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dodgeAndDR
			req.Options = tt.opts
			_, err := e.PlanBuild(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestPlanBuildCachesResults(t *testing.T) {
	e := newTestEngine(t, false)

	first, err := e.PlanBuild(context.Background(), dodgeAndDR)
	require.NoError(t, err)
	second, err := e.PlanBuild(context.Background(), dodgeAndDR)
	require.NoError(t, err)

	assert.Equal(t, 1, e.cache.Len())
	assert.NotEqual(t, first.PlanID, second.PlanID)
	assert.Equal(t, first.Plan, second.Plan)
	assert.Equal(t, first.Strategy, second.Strategy)
}

func TestCachedPlansAreIndependent(t *testing.T) {
	e := newTestEngine(t, false)
	ctx := context.Background()

	first, err := e.PlanBuild(ctx, dodgeAndDR)
	require.NoError(t, err)
	want := first.Plan.Clone()

	first.Plan.UsedL7["red"] = 99
	first.Plan.Sockets[0].Contribution["Dodge"] = -1

	second, err := e.PlanBuild(ctx, dodgeAndDR)
	require.NoError(t, err)
	assert.Equal(t, want, second.Plan)

	second.Plan.Achieved["DR"] = 0
	third, err := e.PlanBuild(ctx, dodgeAndDR)
	require.NoError(t, err)
	assert.Equal(t, want, third.Plan)
}

func TestPlanBuildRecordsHistory(t *testing.T) {
	e := newTestEngine(t, true)
	ctx := context.Background()

	res, err := e.PlanBuild(ctx, dodgeAndDR)
	require.NoError(t, err)
	_, err = e.PlanBuild(ctx, stones.PlanBuildRequest{})
	require.NoError(t, err)

	hist, err := e.PlanHistory(ctx, stones.PlanHistoryRequest{})
	require.NoError(t, err)
	require.Len(t, hist.Runs, 2)

	var found bool
	for _, run := range hist.Runs {
		if run.ID == res.PlanID {
			found = true
			assert.True(t, run.Success)
			assert.Equal(t, dodgeAndDR.Goals, run.Goals)
			assert.Equal(t, 5, run.Sockets)
		}
	}
	assert.True(t, found)
}

func TestPlanHistoryWithoutDatabase(t *testing.T) {
	e := newTestEngine(t, false)

	hist, err := e.PlanHistory(context.Background(), stones.PlanHistoryRequest{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, hist.Runs)
	assert.NotNil(t, hist.Runs)
}

func TestPlanBatchKeepsOrder(t *testing.T) {
	e := newTestEngine(t, true)

	req := stones.PlanBatchRequest{Requests: []stones.PlanBuildRequest{
		{Goals: []stones.Goal{{Stat: "Dodge", Value: 12}}},
		{Goals: []stones.Goal{{Stat: "Nope", Value: 1}}},
		dodgeAndDR,
		{Goals: []stones.Goal{{Stat: "Dodge", Value: 100000}}},
	}}

	resp, err := e.PlanBatch(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Results, 4)

	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, 1, resp.Results[0].Plan.SocketsUsed)
	assert.Equal(t, planner.ReasonNoGoals, resp.Results[1].Reason)
	assert.Equal(t, 5, resp.Results[2].Plan.SocketsUsed)
	assert.False(t, resp.Results[3].Success)

	ids := map[string]bool{}
	for _, r := range resp.Results {
		ids[r.PlanID] = true
	}
	assert.Len(t, ids, 4)
}

func TestPlanBatchRejectsInvalidRequest(t *testing.T) {
	e := newTestEngine(t, false)

	req := stones.PlanBatchRequest{Requests: []stones.PlanBuildRequest{
		dodgeAndDR,
		{Goals: dodgeAndDR.Goals, Options: stones.PlanOptions{TopChildren: -3}},
	}}

	_, err := e.PlanBatch(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Contains(t, err.Error(), "request 1")
}

func TestStoneLookup(t *testing.T) {
	e := newTestEngine(t, false)

	resp, err := e.StoneLookup(context.Background(), stones.StoneLookupRequest{Stone: "Blue"})
	require.NoError(t, err)
	require.NotNil(t, resp.Stone)
	assert.Equal(t, "blue", resp.Stone.Key)
	assert.Equal(t, 11.0, resp.MaxRankValue)
	assert.Equal(t, 11.0, resp.AsPrimary)
	assert.Equal(t, 5.5, resp.AsSecondary)

	_, err = e.StoneLookup(context.Background(), stones.StoneLookupRequest{Stone: "obsidian"})
	assert.ErrorIs(t, err, registry.ErrUnknownStone)
}

func TestStoneLookupSearch(t *testing.T) {
	e := newTestEngine(t, true)
	ctx := context.Background()

	// empty store falls back to the registry
	resp, err := e.StoneLookup(ctx, stones.StoneLookupRequest{Search: "dodge"})
	require.NoError(t, err)
	require.Len(t, resp.SearchResults, 1)
	require.NotNil(t, resp.Stone)
	assert.Equal(t, "red", resp.Stone.Key)

	require.NoError(t, e.stones.BulkInsertStones(ctx, registry.DefaultStones()))
	resp, err = e.StoneLookup(ctx, stones.StoneLookupRequest{Search: "dr"})
	require.NoError(t, err)
	assert.Len(t, resp.SearchResults, 2)
	assert.Nil(t, resp.Stone)
}

func TestResolveGoals(t *testing.T) {
	e := newTestEngine(t, false)

	resp, err := e.ResolveGoals(context.Background(), stones.ResolveGoalsRequest{
		Goals: []stones.Goal{{Stat: "Movement Speed", Value: 40}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Targets, 1)
	assert.Equal(t, "yellow", resp.Targets[0].Stone)
	assert.Equal(t, "MS", resp.Targets[0].Stat)
}
