package engine

import (
	"context"

	"github.com/rsned/stone-planner-server/pkg/stones"
)

// ResolveGoals executes the resolve_goals tool logic.
func (e *Engine) ResolveGoals(_ context.Context, req stones.ResolveGoalsRequest) (*stones.ResolveGoalsResponse, error) {
	return e.planner.ResolveGoals(req.Goals), nil
}
