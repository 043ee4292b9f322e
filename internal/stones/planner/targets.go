package planner

import (
	"math"

	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

// epsilon is the tolerance for every threshold comparison.
const epsilon = 1e-6

// targetSet is the normalized goal list. Axes are the distinct defensive
// stats in first-seen order; every dense vector in the planner is indexed by
// axis.
type targetSet struct {
	targets []stones.Target
	axes    []string
	goals   []float64
	axisOf  map[string]int

	// types are the distinct stones referenced by the targets.
	types []string
}

// buildTargets resolves caller goals against the registry. Unknown stat names
// and non-positive or non-finite values are dropped without error.
func buildTargets(reg *registry.Registry, goals []stones.Goal) (*targetSet, []stones.Goal) {
	ts := &targetSet{axisOf: make(map[string]int)}
	byPair := make(map[[2]string]int)
	seenType := make(map[string]bool)
	var dropped []stones.Goal

	for _, g := range goals {
		if g.Value <= 0 || math.IsNaN(g.Value) || math.IsInf(g.Value, 0) {
			dropped = append(dropped, g)
			continue
		}
		keys := reg.ResolveStat(g.Stat)
		if len(keys) == 0 {
			dropped = append(dropped, g)
			continue
		}

		countedAxis := make(map[string]bool)
		for _, key := range keys {
			stat := reg.DefensiveStat(key)

			pair := [2]string{stat, key}
			if i, ok := byPair[pair]; ok {
				ts.targets[i].Threshold += g.Value
			} else {
				byPair[pair] = len(ts.targets)
				ts.targets = append(ts.targets, stones.Target{
					Stat:           stat,
					Stone:          key,
					Threshold:      g.Value,
					PerUnitPotency: reg.MaxRankPotency(key),
				})
			}

			ax, ok := ts.axisOf[stat]
			if !ok {
				ax = len(ts.axes)
				ts.axisOf[stat] = ax
				ts.axes = append(ts.axes, stat)
				ts.goals = append(ts.goals, 0)
			}
			// one goal feeds its axis once, however many stones fan out from it
			if !countedAxis[stat] {
				ts.goals[ax] += g.Value
				countedAxis[stat] = true
			}

			if !seenType[key] {
				seenType[key] = true
				ts.types = append(ts.types, key)
			}
		}
	}

	return ts, dropped
}

func (ts *targetSet) empty() bool {
	return len(ts.targets) == 0
}

// goalMap returns the per-stat thresholds.
func (ts *targetSet) goalMap() map[string]float64 {
	m := make(map[string]float64, len(ts.axes))
	for i, stat := range ts.axes {
		m[stat] = ts.goals[i]
	}
	return m
}

// residual starts as a copy of the goals.
func (ts *targetSet) residual() []float64 {
	return append([]float64(nil), ts.goals...)
}

// applyVec subtracts a contribution from a residual, clamping at zero.
func applyVec(residual, vec []float64) []float64 {
	next := make([]float64, len(residual))
	for i, need := range residual {
		next[i] = math.Max(0, need-vec[i])
	}
	return next
}

func residualSum(residual []float64) float64 {
	var sum float64
	for _, v := range residual {
		sum += v
	}
	return sum
}

// residualMet reports whether every axis is closed within epsilon.
func residualMet(residual []float64) bool {
	for _, v := range residual {
		if v > epsilon {
			return false
		}
	}
	return true
}

// useful is the part of a contribution that lands on still-open axes.
func useful(residual, vec []float64) float64 {
	var u float64
	for i, need := range residual {
		if need > 0 && vec[i] > 0 {
			u += math.Min(vec[i], need)
		}
	}
	return u
}

// axesCovered counts open axes a contribution touches.
func axesCovered(residual, vec []float64) int {
	n := 0
	for i, need := range residual {
		if need > 0 && vec[i] > 0 {
			n++
		}
	}
	return n
}
