package engine

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rsned/stone-planner-server/pkg/stones"
)

// PlanBatch executes the plan_batch tool logic. Requests are planned
// concurrently and results keep request order. Options are validated up
// front so a bad request fails the batch before any work starts.
func (e *Engine) PlanBatch(ctx context.Context, req stones.PlanBatchRequest) (*stones.PlanBatchResponse, error) {
	for i, r := range req.Requests {
		if err := e.validateOptions(r.Options); err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
	}

	results := make([]*stones.PlanResult, len(req.Requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range req.Requests {
		g.Go(func() error {
			res := e.plan(gctx, r)
			e.record(gctx, r, res)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &stones.PlanBatchResponse{Results: results}, nil
}
