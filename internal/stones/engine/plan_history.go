package engine

import (
	"context"

	"github.com/rsned/stone-planner-server/pkg/stones"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// PlanHistory executes the plan_history tool logic.
func (e *Engine) PlanHistory(ctx context.Context, req stones.PlanHistoryRequest) (*stones.PlanHistoryResponse, error) {
	// Apply defaults
	if req.Limit <= 0 {
		req.Limit = defaultHistoryLimit
	}
	if req.Limit > maxHistoryLimit {
		req.Limit = maxHistoryLimit
	}

	resp := &stones.PlanHistoryResponse{Runs: []stones.PlanRun{}}
	if e.plans == nil {
		return resp, nil
	}

	runs, err := e.plans.RecentRuns(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	if runs != nil {
		resp.Runs = runs
	}

	return resp, nil
}
