package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rsned/stone-planner-server/internal/stones/db"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

// PlanBuild executes the plan_build tool logic.
func (e *Engine) PlanBuild(ctx context.Context, req stones.PlanBuildRequest) (*stones.PlanResult, error) {
	if err := e.validateOptions(req.Options); err != nil {
		return nil, err
	}

	res := e.plan(ctx, req)
	e.record(ctx, req, res)

	return res, nil
}

func (e *Engine) validateOptions(opts stones.PlanOptions) error {
	if err := e.validate.Struct(opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// plan runs the planner, serving identical earlier requests from the cache.
// Every call gets its own plan id.
func (e *Engine) plan(ctx context.Context, req stones.PlanBuildRequest) *stones.PlanResult {
	key := cacheKey(req)
	if e.cache != nil && key != "" {
		if cached, ok := e.cache.Get(key); ok {
			e.logger.Debug("plan cache hit", "strategy", cached.Strategy)
			res := *cached
			res.Plan = cached.Plan.Clone()
			res.PlanID = uuid.NewString()
			res.ElapsedMs = 0
			return &res
		}
	}

	res := e.planner.PlanBuild(ctx, req.Goals, req.Inventory, req.Options)

	// a canceled call may hold a degraded plan
	if e.cache != nil && key != "" && ctx.Err() == nil {
		stored := *res
		stored.Plan = res.Plan.Clone()
		e.cache.Add(key, &stored)
	}

	res.PlanID = uuid.NewString()
	return res
}

func cacheKey(req stones.PlanBuildRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(data)
}

// record appends the run to the plan log. Failures are logged, not returned.
func (e *Engine) record(ctx context.Context, req stones.PlanBuildRequest, res *stones.PlanResult) {
	if e.plans == nil {
		return
	}

	run := stones.PlanRun{
		ID:        res.PlanID,
		CreatedAt: time.Now().UTC().Format(db.TimeLayout),
		Goals:     req.Goals,
		Success:   res.Success,
		Strategy:  string(res.Strategy),
		ElapsedMs: res.ElapsedMs,
		Reason:    res.Reason,
	}
	if res.Plan != nil {
		run.MergesUsed = res.Plan.MergesUsed
		run.Sockets = res.Plan.SocketsUsed
	}
	if run.Goals == nil {
		run.Goals = []stones.Goal{}
	}

	if err := e.plans.RecordRun(ctx, run); err != nil {
		e.logger.Warn("failed to record plan run", "id", run.ID, "error", err)
	}
}
