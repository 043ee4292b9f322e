package planner

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math"
	"sort"
	"time"
)

// beamParams are the limits for one beam pass.
type beamParams struct {
	width       int
	topChildren int
	maxMerges   int
	timeLimit   time.Duration
}

func (bp beamParams) relaxed(factor int) beamParams {
	if factor < 1 {
		factor = 1
	}
	return beamParams{
		width:       bp.width * factor,
		topChildren: bp.topChildren * factor,
		maxMerges:   bp.maxMerges,
		timeLimit:   bp.timeLimit * time.Duration(factor),
	}
}

type scoredChild struct {
	idx   int
	score float64
}

// beam runs one layered search from seed. It returns the best complete
// state by (merges, sockets), or false when none was found before the
// layers, the clock, or the context ran out.
func (c *catalog) beam(ctx context.Context, seed searchState, capacity int, b bounds, bp beamParams, logger *slog.Logger) (searchState, bool) {
	if residualMet(seed.residual) {
		return seed, true
	}
	if !b.feasible(seed.residual, capacity-seed.sockets) {
		return searchState{}, false
	}

	deadline := time.Now().Add(bp.timeLimit)
	frontier := []searchState{seed}
	var best *searchState

	for layer := 0; layer < capacity-seed.sockets && len(frontier) > 0; layer++ {
		if ctx.Err() != nil || time.Now().After(deadline) {
			logger.Debug("beam stopped early", "layer", layer, "frontier", len(frontier), "found", best != nil)
			break
		}

		seen := make(map[string]bool)
		var next []searchState

		for _, st := range frontier {
			for _, ch := range c.rankChildren(st, bp) {
				cand := &c.items[ch.idx]
				child := st.clone()
				child.residual = applyVec(st.residual, cand.vec)
				consume(cand, child.pairs, child.triples)
				child.sockets++
				child.merges += cand.cost
				child.seq = append(child.seq, ch.idx)

				if best != nil && !betterThan(child, *best) {
					continue
				}
				if residualMet(child.residual) {
					done := child
					best = &done
					if best.merges == 0 {
						logger.Debug("beam found merge-free plan", "layer", layer, "sockets", best.sockets)
						return *best, true
					}
					continue
				}
				if !b.feasible(child.residual, capacity-child.sockets) {
					continue
				}

				fp := fingerprint(child)
				if seen[fp] {
					continue
				}
				seen[fp] = true
				next = append(next, child)
			}
		}

		sort.SliceStable(next, func(i, j int) bool {
			if next[i].merges != next[j].merges {
				return next[i].merges < next[j].merges
			}
			if next[i].sockets != next[j].sockets {
				return next[i].sockets < next[j].sockets
			}
			return residualSum(next[i].residual) < residualSum(next[j].residual)
		})
		if len(next) > bp.width {
			next = next[:bp.width]
		}
		frontier = next
		logger.Debug("beam layer", "layer", layer, "frontier", len(frontier), "found", best != nil)
	}

	if best == nil {
		return searchState{}, false
	}
	return *best, true
}

// rankChildren orders the legal candidates for a state by usefulness per
// merge and keeps the top few.
func (c *catalog) rankChildren(st searchState, bp beamParams) []scoredChild {
	var out []scoredChild
	for i := range c.items {
		cand := &c.items[i]
		if !available(cand, st.pairs, st.triples) {
			continue
		}
		if st.merges+cand.cost > bp.maxMerges {
			continue
		}
		u := useful(st.residual, cand.vec)
		if u <= 0 {
			continue
		}
		out = append(out, scoredChild{
			idx:   i,
			score: u/float64(cand.cost+1) - 0.0001*float64(cand.cost),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > bp.topChildren {
		out = out[:bp.topChildren]
	}
	return out
}

// betterThan reports whether a state could still beat the incumbent. A
// partial state only gains sockets and merges, so it must already be ahead.
func betterThan(st, incumbent searchState) bool {
	if st.merges != incumbent.merges {
		return st.merges < incumbent.merges
	}
	return st.sockets < incumbent.sockets
}

// fingerprint identifies states that differ only in placement order.
func fingerprint(st searchState) string {
	buf := make([]byte, 0, 8*len(st.residual)+4*(len(st.pairs)+len(st.triples)+2))
	for _, v := range st.residual {
		buf = binary.BigEndian.AppendUint64(buf, uint64(math.Round(v/epsilon)))
	}
	for _, n := range st.pairs {
		buf = binary.BigEndian.AppendUint32(buf, uint32(n))
	}
	for _, n := range st.triples {
		buf = binary.BigEndian.AppendUint32(buf, uint32(n))
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(st.sockets))
	buf = binary.BigEndian.AppendUint32(buf, uint32(st.merges))
	return string(buf)
}
