package planner

import "math"

// maxBoundUnits caps unit counts before int conversion; anything above it
// is far beyond any socket layout.
const maxBoundUnits = 1 << 20

// bounds are the per-socket pruning limits derived from a catalog.
type bounds struct {
	// perSocket is the best single-candidate contribution per axis.
	perSocket []float64
	// axisPotency is the best rank 7 value feeding each axis.
	axisPotency []float64
	// maxUnits is the most half-potency units one socket can carry.
	maxUnits int
}

func newBounds(c *catalog) bounds {
	b := bounds{
		perSocket:   make([]float64, len(c.ts.axes)),
		axisPotency: make([]float64, len(c.ts.axes)),
	}
	for _, cand := range c.items {
		for ax, v := range cand.vec {
			b.perSocket[ax] = math.Max(b.perSocket[ax], v)
		}
		if cand.units > b.maxUnits {
			b.maxUnits = cand.units
		}
	}
	for _, t := range c.ts.targets {
		ax := c.ts.axisOf[t.Stat]
		b.axisPotency[ax] = math.Max(b.axisPotency[ax], t.PerUnitPotency)
	}
	return b
}

// canPossiblyMeet is the weak bound: every open axis must be reachable if
// each remaining socket held that axis's best candidate.
func (b bounds) canPossiblyMeet(residual []float64, socketsLeft int) bool {
	for ax, need := range residual {
		if need <= 0 {
			continue
		}
		if b.perSocket[ax]*float64(socketsLeft)+epsilon < need {
			return false
		}
	}
	return true
}

// minSockets is the unit lower bound on sockets still needed.
func (b bounds) minSockets(residual []float64) int {
	if b.maxUnits <= 0 {
		return 0
	}
	units := 0.0
	for ax, need := range residual {
		if need <= 0 || b.axisPotency[ax] <= 0 {
			continue
		}
		units += math.Max(0, math.Ceil(2*need/b.axisPotency[ax]-1e-9))
	}
	if units > maxBoundUnits {
		return math.MaxInt32
	}
	return ceilDiv(int(units), b.maxUnits)
}

// feasible combines both bounds.
func (b bounds) feasible(residual []float64, socketsLeft int) bool {
	if !b.canPossiblyMeet(residual, socketsLeft) {
		return false
	}
	return b.minSockets(residual) <= socketsLeft
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
