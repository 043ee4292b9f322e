package planner

import (
	"math"
	"sort"
)

// greedyWeights bias scoring toward the largest open gaps; every axis past
// the third gets the last weight.
var greedyWeights = []float64{1.0, 0.8, 0.6, 0.25}

// greedy fills the remaining sockets one at a time with the best weighted
// candidate. It always returns, and the result may leave goals open.
func (c *catalog) greedy(seed searchState, capacity, maxMerges int) searchState {
	st := seed.clone()

	for st.sockets < capacity && !residualMet(st.residual) {
		weights := axisWeights(st.residual)

		bestIdx := -1
		bestScore := math.Inf(-1)
		for i := range c.items {
			cand := &c.items[i]
			if !available(cand, st.pairs, st.triples) {
				continue
			}
			if st.merges+cand.cost > maxMerges {
				continue
			}
			var weighted float64
			helped := 0
			for ax, need := range st.residual {
				if need > 0 && cand.vec[ax] > 0 {
					weighted += weights[ax] * math.Min(cand.vec[ax], need)
					helped++
				}
			}
			if helped == 0 {
				continue
			}
			score := weighted + 0.05*float64(helped) - 0.0001*float64(cand.cost)
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}

		if bestIdx < 0 {
			bestIdx = c.fallbackBase(st.residual)
			if bestIdx < 0 {
				break
			}
		}

		cand := &c.items[bestIdx]
		consume(cand, st.pairs, st.triples)
		st.residual = applyVec(st.residual, cand.vec)
		st.sockets++
		st.merges += cand.cost
		st.seq = append(st.seq, bestIdx)
	}
	return st
}

// axisWeights ranks open axes by residual, largest first.
func axisWeights(residual []float64) []float64 {
	order := make([]int, len(residual))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return residual[order[a]] > residual[order[b]] })

	w := make([]float64, len(residual))
	for rank, ax := range order {
		if rank < len(greedyWeights) {
			w[ax] = greedyWeights[rank]
		} else {
			w[ax] = greedyWeights[len(greedyWeights)-1]
		}
	}
	return w
}

// fallbackBase picks the base stone feeding the largest open axis.
func (c *catalog) fallbackBase(residual []float64) int {
	top, topNeed := -1, 0.0
	for ax, need := range residual {
		if need > topNeed {
			top, topNeed = ax, need
		}
	}
	if top < 0 {
		return -1
	}
	for _, t := range c.ts.targets {
		if c.ts.axisOf[t.Stat] != top {
			continue
		}
		if idx, ok := c.baseIdx[t.Stone]; ok {
			return idx
		}
	}
	return -1
}
