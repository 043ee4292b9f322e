// Package planner computes socket plans that meet defensive stat goals with
// as few merges as possible.
//
// A planning call runs a fixed pipeline: resolve goals into targets, build
// the candidate catalog, try the constructive triple solver, prefill owned
// stones, then fall back through beam search and a greedy pass. Whatever
// sequence wins is rewritten to reuse owned composites and assembled into a
// ledger. Each call works on private copies and shares nothing, so a Planner
// may serve concurrent calls.
package planner

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

// Config holds the defaults applied when a caller leaves an option at zero.
type Config struct {
	MaxMerges     int
	BeamWidth     int
	TopChildren   int
	TimeLimit     time.Duration
	RelaxedFactor int
}

// DefaultConfig returns the stock search limits.
func DefaultConfig() Config {
	return Config{
		MaxMerges:     24,
		BeamWidth:     16,
		TopChildren:   10,
		TimeLimit:     1000 * time.Millisecond,
		RelaxedFactor: 2,
	}
}

// Planner runs planning calls against one stone registry.
type Planner struct {
	reg    *registry.Registry
	cfg    Config
	logger *slog.Logger
}

// New creates a Planner. Zero config fields take the defaults.
func New(reg *registry.Registry, cfg Config, logger *slog.Logger) *Planner {
	if reg == nil {
		reg = registry.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	def := DefaultConfig()
	if cfg.MaxMerges <= 0 {
		cfg.MaxMerges = def.MaxMerges
	}
	if cfg.BeamWidth <= 0 {
		cfg.BeamWidth = def.BeamWidth
	}
	if cfg.TopChildren <= 0 {
		cfg.TopChildren = def.TopChildren
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = def.TimeLimit
	}
	if cfg.RelaxedFactor <= 0 {
		cfg.RelaxedFactor = def.RelaxedFactor
	}
	return &Planner{reg: reg, cfg: cfg, logger: logger}
}

// Registry returns the stone table the planner works against.
func (p *Planner) Registry() *registry.Registry {
	return p.reg
}

// ResolveGoals exposes the target builder on its own.
func (p *Planner) ResolveGoals(goals []stones.Goal) *stones.ResolveGoalsResponse {
	ts, dropped := buildTargets(p.reg, goals)
	return &stones.ResolveGoalsResponse{
		Targets: append([]stones.Target{}, ts.targets...),
		Goals:   ts.goalMap(),
		Dropped: dropped,
		Stones:  append([]string{}, ts.types...),
	}
}

func (p *Planner) beamParams(opts stones.PlanOptions) beamParams {
	bp := beamParams{
		width:       p.cfg.BeamWidth,
		topChildren: p.cfg.TopChildren,
		maxMerges:   p.cfg.MaxMerges,
		timeLimit:   p.cfg.TimeLimit,
	}
	if opts.BeamWidth > 0 {
		bp.width = opts.BeamWidth
	}
	if opts.TopChildren > 0 {
		bp.topChildren = opts.TopChildren
	}
	if opts.MaxMerges > 0 {
		bp.maxMerges = opts.MaxMerges
	}
	if opts.TimeLimitMs > 0 {
		bp.timeLimit = time.Duration(opts.TimeLimitMs) * time.Millisecond
	}
	return bp
}

// PlanBuild plans sockets for the goals. It never fails for bad input; the
// result says whether the goals were met and why not. The context and the
// time limit are only checked between beam layers.
func (p *Planner) PlanBuild(ctx context.Context, goals []stones.Goal, inv stones.Inventory, opts stones.PlanOptions) *stones.PlanResult {
	start := time.Now()
	result := p.planBuild(ctx, goals, inv, opts)
	result.ElapsedMs = time.Since(start).Milliseconds()
	return result
}

func (p *Planner) planBuild(ctx context.Context, goals []stones.Goal, inv stones.Inventory, opts stones.PlanOptions) *stones.PlanResult {
	ts, dropped := buildTargets(p.reg, goals)
	if len(dropped) > 0 {
		p.logger.Debug("dropped goals", "count", len(dropped))
	}
	if ts.empty() {
		return &stones.PlanResult{Success: false, Reason: ReasonNoGoals}
	}

	capacity := stones.DefensiveSockets
	owned := normalizeInventory(p.reg, inv)
	cat := buildCatalog(p.reg, ts, owned)
	b := newBounds(cat)
	residual0 := ts.residual()
	p.logger.Debug("targets resolved", "axes", ts.axes, "stones", ts.types, "candidates", len(cat.items))

	if opts.ExactEnabled() && !owned.hasComposites() {
		if seq := cat.exact(exactGoalsFromTargets(ts), capacity); seq != nil {
			p.logger.Debug("exact solver hit", "sockets", len(seq))
			if res, ok := p.finish(cat, seq, stones.StrategyExact); ok {
				return res
			}
		}
	}

	var pre prefillResult
	if opts.DisablePrefill {
		pre = prefillResult{state: searchState{
			residual: ts.residual(),
			pairs:    owned.pairCounts(),
			triples:  owned.tripleCounts(),
		}}
	} else {
		pre = cat.prefill(residual0, capacity, b)
		p.logger.Debug("prefill placed", "sockets", pre.state.sockets, "residual", residualSum(pre.state.residual))
	}

	if residualMet(pre.state.residual) && len(pre.seq) > 0 {
		if res, ok := p.finish(cat, pre.seq, stones.StrategyPrefill); ok {
			return res
		}
	}

	if opts.ExactEnabled() {
		left := capacity - pre.state.sockets
		reduced := exactGoalsFromResidual(ts, pre.state.residual)
		if left > 0 && len(reduced) >= 3 && len(reduced) <= 4 {
			if seq := cat.exact(reduced, left); seq != nil {
				combined := append(append([]candidate(nil), pre.seq...), seq...)
				if res, ok := p.finish(cat, combined, stones.StrategyPrefillExact); ok {
					return res
				}
			}
		}
	}

	bp := p.beamParams(opts)
	if st, ok := cat.beam(ctx, pre.state, capacity, b, bp, p.logger); ok {
		if res, ok := p.finish(cat, cat.withPrefix(pre.seq, st.seq), stones.StrategyBeam); ok {
			return res
		}
	}
	if ctx.Err() == nil {
		relaxed := bp.relaxed(p.cfg.RelaxedFactor)
		if st, ok := cat.beam(ctx, pre.state, capacity, b, relaxed, p.logger); ok {
			if res, ok := p.finish(cat, cat.withPrefix(pre.seq, st.seq), stones.StrategyBeamRelaxed); ok {
				return res
			}
		}
	}

	p.logger.Debug("falling back to greedy")
	st := cat.greedy(pre.state, capacity, bp.maxMerges)
	seq := cat.substitute(cat.withPrefix(pre.seq, st.seq))
	plan, success := cat.assemble(seq)
	res := &stones.PlanResult{Success: success, Plan: plan, Strategy: stones.StrategyGreedy}
	if !success {
		if !b.feasible(residual0, capacity) {
			res.Reason = ReasonUnattainable
		} else {
			res.Reason = ReasonExhausted
		}
	}
	return res
}

// finish substitutes owned composites into seq and assembles it. It only
// reports ok when every goal is met.
func (p *Planner) finish(cat *catalog, seq []candidate, strategy stones.Strategy) (*stones.PlanResult, bool) {
	plan, success := cat.assemble(cat.substitute(seq))
	if !success {
		p.logger.Debug("candidate plan rejected", "strategy", strategy)
		return nil, false
	}
	return &stones.PlanResult{Success: true, Plan: plan, Strategy: strategy}, true
}

// withPrefix joins the prefill placements with a searched index sequence.
func (c *catalog) withPrefix(prefix []candidate, idx []int) []candidate {
	out := make([]candidate, 0, len(prefix)+len(idx))
	out = append(out, prefix...)
	for _, i := range idx {
		out = append(out, c.items[i])
	}
	return out
}
