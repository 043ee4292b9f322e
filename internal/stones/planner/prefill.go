package planner

import "math"

// searchState is a partial plan: what is still open, which composites are
// left, and what has been placed.
type searchState struct {
	residual []float64
	pairs    []int
	triples  []int
	sockets  int
	merges   int
	seq      []int // indices into catalog.items
}

func (s searchState) clone() searchState {
	return searchState{
		residual: append([]float64(nil), s.residual...),
		pairs:    append([]int(nil), s.pairs...),
		triples:  append([]int(nil), s.triples...),
		sockets:  s.sockets,
		merges:   s.merges,
		seq:      append([]int(nil), s.seq...),
	}
}

// prefillResult is the seed handed to the general solvers. The placements
// live in seq; state.seq stays empty so searched indices can be appended.
type prefillResult struct {
	state searchState
	seq   []candidate
}

// prefill greedily places zero-cost stones the caller already owns: existing
// composites first, then a few base stones. Every placement must keep both
// feasibility bounds satisfied for the sockets that remain.
func (c *catalog) prefill(residual []float64, capacity int, b bounds) prefillResult {
	st := searchState{
		residual: append([]float64(nil), residual...),
		pairs:    c.inv.pairCounts(),
		triples:  c.inv.tripleCounts(),
	}
	base := make(map[string]int, len(c.inv.base))
	for k, v := range c.inv.base {
		base[k] = v
	}

	maxBase := min(3, capacity)
	maxExisting := max(1, min(4, capacity/3))
	baseUsed, existingUsed := 0, 0
	var seq []candidate

	var existingPool, basePool []int
	for i := range c.items {
		switch c.items[i].kind {
		case KindPairExisting, KindTripleExisting:
			existingPool = append(existingPool, i)
		case KindBase:
			basePool = append(basePool, i)
		case KindPairNew, KindTripleNew, KindUpgrade:
		}
	}

	tryPlace := func(idx int) bool {
		cand := &c.items[idx]
		next := applyVec(st.residual, cand.vec)
		if !b.feasible(next, capacity-(st.sockets+1)) {
			return false
		}
		switch cand.kind {
		case KindPairExisting, KindTripleExisting:
			consume(cand, st.pairs, st.triples)
			existingUsed++
		case KindBase:
			base[cand.parts[0]]--
			baseUsed++
		case KindPairNew, KindTripleNew, KindUpgrade:
		}
		st.residual = next
		st.sockets++
		seq = append(seq, *cand)
		return true
	}

	for st.sockets < capacity {
		bestPos := -1
		bestScore := math.Inf(-1)
		for pos, idx := range existingPool {
			if existingUsed >= maxExisting {
				break
			}
			cand := &c.items[idx]
			if !available(cand, st.pairs, st.triples) {
				continue
			}
			u := useful(st.residual, cand.vec)
			if u <= 0 {
				continue
			}
			covered := axesCovered(st.residual, cand.vec)
			// tight on sockets: only stones that close two or more goals
			if capacity-(st.sockets+1) <= ceilDiv(capacity, 2) && covered < 2 {
				continue
			}
			if score := u + 0.05*float64(covered); score > bestScore {
				bestPos, bestScore = pos, score
			}
		}
		if bestPos < 0 {
			break
		}
		if !tryPlace(existingPool[bestPos]) {
			existingPool = append(existingPool[:bestPos], existingPool[bestPos+1:]...)
			continue
		}
		if residualSum(st.residual) <= epsilon {
			break
		}
	}

	for st.sockets < capacity && baseUsed < maxBase && residualSum(st.residual) > epsilon {
		bestPos := -1
		bestUseful := 0.0
		for pos, idx := range basePool {
			cand := &c.items[idx]
			if base[cand.parts[0]] <= 0 {
				continue
			}
			if u := useful(st.residual, cand.vec); u > bestUseful {
				bestPos, bestUseful = pos, u
			}
		}
		if bestPos < 0 {
			break
		}
		if !tryPlace(basePool[bestPos]) {
			basePool = append(basePool[:bestPos], basePool[bestPos+1:]...)
			continue
		}
	}

	return prefillResult{state: st, seq: seq}
}
