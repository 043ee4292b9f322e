package planner

import (
	"math"
	"sort"
)

// maxOvershootPasses caps the overshoot local search.
const maxOvershootPasses = 50

// exactGoal is one stone type handed to the constructive solver.
type exactGoal struct {
	stone   string
	axis    int
	potency float64
	goal    float64
}

// exactGoalsFromTargets feeds the solver the full target thresholds.
func exactGoalsFromTargets(ts *targetSet) []exactGoal {
	out := make([]exactGoal, 0, len(ts.targets))
	for _, t := range ts.targets {
		out = append(out, exactGoal{
			stone:   t.Stone,
			axis:    ts.axisOf[t.Stat],
			potency: t.PerUnitPotency,
			goal:    t.Threshold,
		})
	}
	return out
}

// exactGoalsFromResidual feeds the solver whatever is still open, one entry
// per target stone with a positive residual on its axis.
func exactGoalsFromResidual(ts *targetSet, residual []float64) []exactGoal {
	var out []exactGoal
	seen := make(map[string]bool)
	for _, t := range ts.targets {
		if seen[t.Stone] {
			continue
		}
		seen[t.Stone] = true
		ax := ts.axisOf[t.Stat]
		if residual[ax] <= 0 {
			continue
		}
		out = append(out, exactGoal{stone: t.Stone, axis: ax, potency: t.PerUnitPotency, goal: residual[ax]})
	}
	return out
}

// unitAlloc is the per-type primary/secondary split for k triples.
type unitAlloc struct {
	k int
	p []int
	s []int
}

// exact builds k triples over 3 or 4 stone types, trying the smallest k
// first. It returns nil when no k up to capacity works.
func (c *catalog) exact(goals []exactGoal, capacity int) []candidate {
	var per []exactGoal
	axisSeen := make(map[int]bool)
	for _, g := range goals {
		if g.potency <= 0 {
			continue
		}
		if axisSeen[g.axis] {
			// two stones on one axis break the per-type unit math
			return nil
		}
		axisSeen[g.axis] = true
		per = append(per, g)
	}
	if len(per) < 3 || len(per) > 4 {
		return nil
	}

	need := make([]int, len(per))
	total := 0
	for i, g := range per {
		units := math.Ceil(2 * g.goal / g.potency)
		// no socket layout within capacity carries more than 4 units each
		if math.IsNaN(units) || units > float64(4*capacity) {
			return nil
		}
		need[i] = int(units)
		total += need[i]
	}

	kLower := max(1, ceilDiv(total, 4))
	for k := kLower; k <= capacity; k++ {
		if total > 4*k {
			continue
		}
		alloc, ok := allocateUnits(per, need, k)
		if !ok {
			continue
		}
		assigned := assignSecondaries(alloc)
		if assigned == nil {
			continue
		}

		seq := make([]candidate, len(assigned))
		for i, sock := range assigned {
			seq[i] = c.newCandidate(KindTripleNew, per[sock[0]].stone, per[sock[1]].stone, per[sock[2]].stone)
		}
		if !meetsGoals(sumVecs(seq, len(c.ts.axes)), per) {
			continue
		}
		return c.minimizeOvershoot(seq, assigned, per)
	}
	return nil
}

// allocateUnits picks primary counts P and secondary counts S so that
// sum(P) == k and 2*sum(P)+sum(S) == 4k with S[t] <= k-P[t].
func allocateUnits(per []exactGoal, need []int, k int) (unitAlloc, bool) {
	n := len(per)
	p := make([]int, n)
	s := make([]int, n)

	sumP := 0
	for i := range per {
		p[i] = min(k, need[i]/2)
		sumP += p[i]
	}

	for sumP > k {
		c := -1
		for i := range per {
			if p[i] > 0 && (c < 0 || per[i].potency < per[c].potency) {
				c = i
			}
		}
		if c < 0 {
			return unitAlloc{}, false
		}
		p[c]--
		sumP--
	}
	for sumP < k {
		c := -1
		for i := range per {
			if p[i] < k && (c < 0 || per[i].potency > per[c].potency) {
				c = i
			}
		}
		if c < 0 {
			return unitAlloc{}, false
		}
		p[c]++
		sumP++
	}

	feasible := true
	for i := range per {
		s[i] = max(0, need[i]-2*p[i])
		if required := need[i] - k; p[i] < required {
			if inc := min(required-p[i], k-p[i]); inc > 0 {
				p[i] += inc
				s[i] = max(0, need[i]-2*p[i])
			}
		}
		if s[i] > k-p[i] {
			feasible = false
		}
	}
	if !feasible {
		return unitAlloc{}, false
	}

	sumP = sumInts(p)
	if sumP > k {
		for sumP > k {
			c := -1
			for i := range per {
				slack := k - p[i] - s[i]
				if p[i] <= 0 || slack < 1 {
					continue
				}
				if c < 0 {
					c = i
					continue
				}
				best := k - p[c] - s[c]
				if slack > best || (slack == best && per[i].potency < per[c].potency) {
					c = i
				}
			}
			if c < 0 {
				break
			}
			p[c]--
			s[c] += 2
			sumP--
		}
		if sumP != k {
			return unitAlloc{}, false
		}
		for i := range per {
			if s[i] > k-p[i] {
				return unitAlloc{}, false
			}
		}
	}

	spare := 4*k - 2*sumInts(p) - sumInts(s)
	if spare < 0 {
		return unitAlloc{}, false
	}
	// secondaries first, one unit per type per round
	for spare > 0 {
		progressed := false
		for i := range per {
			if spare <= 0 {
				break
			}
			if s[i] < k-p[i] {
				s[i]++
				spare--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	// With 3+ types the secondary caps add up to at least 4k, so in practice
	// this and the remainder pass below see no spare units.
	for spare >= 2 {
		c := -1
		for i := range per {
			if p[i] < k {
				c = i
				break
			}
		}
		if c < 0 {
			break
		}
		p[c]++
		s[c] = max(0, need[c]-2*p[c])
		spare -= 2
	}
	for i := range per {
		if spare <= 0 {
			break
		}
		if d := min(spare, k-p[i]-s[i]); d > 0 {
			s[i] += d
			spare -= d
		}
	}

	if sumInts(p) != k || 2*sumInts(p)+sumInts(s) != 4*k {
		return unitAlloc{}, false
	}
	for i := range per {
		if s[i] < 0 || s[i] > k-p[i] {
			return unitAlloc{}, false
		}
	}
	// each primary socket draws two secondaries from the other types
	for i := range per {
		others := sumInts(s) - s[i]
		if others < 2*p[i] {
			return unitAlloc{}, false
		}
	}

	return unitAlloc{k: k, p: p, s: s}, true
}

// supplyKey is a structural memo key over at most four types.
type supplyKey struct {
	at  int
	rem [4]int
}

// assignSecondaries gives every primary socket two distinct secondary types
// by depth-first search. Sockets are returned as type indices
// [primary, secondary, secondary].
func assignSecondaries(alloc unitAlloc) [][3]int {
	n := len(alloc.p)

	var primaries []int
	for t := 0; t < n; t++ {
		for j := 0; j < alloc.p[t]; j++ {
			primaries = append(primaries, t)
		}
	}
	// types whose secondaries are scarce for the others go first
	sort.SliceStable(primaries, func(a, b int) bool {
		return alloc.k-alloc.p[primaries[a]] > alloc.k-alloc.p[primaries[b]]
	})

	var rem [4]int
	copy(rem[:], alloc.s)

	pairCache := make(map[supplyKey][][2]int)
	deadEnds := make(map[supplyKey]bool)
	sockets := make([][3]int, 0, len(primaries))

	pairsFor := func(p int) [][2]int {
		key := supplyKey{at: p, rem: rem}
		if cached, ok := pairCache[key]; ok {
			return cached
		}
		var others []int
		for t := 0; t < n; t++ {
			if t != p && rem[t] > 0 {
				others = append(others, t)
			}
		}
		type scored struct {
			a, b, score int
		}
		var cands []scored
		for i := 0; i < len(others); i++ {
			for j := i + 1; j < len(others); j++ {
				a, b := others[i], others[j]
				cands = append(cands, scored{a, b, rem[a] + rem[b]})
			}
		}
		sort.SliceStable(cands, func(x, y int) bool { return cands[x].score > cands[y].score })
		out := make([][2]int, len(cands))
		for i, c := range cands {
			out[i] = [2]int{c.a, c.b}
		}
		pairCache[key] = out
		return out
	}

	var dfs func(idx int) bool
	dfs = func(idx int) bool {
		if idx == len(primaries) {
			return true
		}
		state := supplyKey{at: idx, rem: rem}
		if deadEnds[state] {
			return false
		}
		p := primaries[idx]

		remaining := 0
		for _, x := range primaries[idx:] {
			if x == p {
				remaining++
			}
		}
		supply := 0
		for t := 0; t < n; t++ {
			if t != p {
				supply += rem[t]
			}
		}
		if supply < 2*remaining {
			deadEnds[state] = true
			return false
		}

		for _, pair := range pairsFor(p) {
			s1, s2 := pair[0], pair[1]
			if rem[s1] <= 0 || rem[s2] <= 0 {
				continue
			}
			rem[s1]--
			rem[s2]--
			sockets = append(sockets, [3]int{p, s1, s2})
			if dfs(idx + 1) {
				return true
			}
			sockets = sockets[:len(sockets)-1]
			rem[s1]++
			rem[s2]++
		}
		deadEnds[state] = true
		return false
	}

	if !dfs(0) {
		return nil
	}
	return sockets
}

// minimizeOvershoot swaps single sockets for another ordering of the same
// three types, or a pair drawn from them, while every goal stays met. Each
// pass applies the one best strict improvement.
func (c *catalog) minimizeOvershoot(seq []candidate, sockets [][3]int, per []exactGoal) []candidate {
	best := append([]candidate(nil), seq...)
	achieved := sumVecs(best, len(c.ts.axes))
	score := overshoot(achieved, per)

	for pass := 0; pass < maxOvershootPasses; pass++ {
		chosenIdx := -1
		var chosen candidate
		var chosenAch []float64
		chosenScore := math.Inf(1)

		for i, sock := range sockets {
			p, s1, s2 := per[sock[0]].stone, per[sock[1]].stone, per[sock[2]].stone
			options := []candidate{
				c.newCandidate(KindTripleNew, p, s1, s2),
				c.newCandidate(KindTripleNew, s1, p, s2),
				c.newCandidate(KindTripleNew, s2, p, s1),
				c.newCandidate(KindPairNew, p, s1),
				c.newCandidate(KindPairNew, p, s2),
				c.newCandidate(KindPairNew, s1, p),
				c.newCandidate(KindPairNew, s2, p),
				c.newCandidate(KindPairNew, s1, s2),
				c.newCandidate(KindPairNew, s2, s1),
			}
			for _, opt := range options {
				next := make([]float64, len(achieved))
				for ax := range achieved {
					next[ax] = achieved[ax] - best[i].vec[ax] + opt.vec[ax]
				}
				if !meetsGoals(next, per) {
					continue
				}
				s := overshoot(next, per)
				if s+1e-9 < score && (chosenIdx < 0 || s < chosenScore-1e-9) {
					chosenIdx, chosen, chosenAch, chosenScore = i, opt, next, s
				}
			}
		}

		if chosenIdx < 0 {
			break
		}
		best[chosenIdx] = chosen
		achieved = chosenAch
		score = chosenScore
	}
	return best
}

func sumVecs(seq []candidate, axes int) []float64 {
	out := make([]float64, axes)
	for _, cand := range seq {
		for ax, v := range cand.vec {
			out[ax] += v
		}
	}
	return out
}

func meetsGoals(achieved []float64, per []exactGoal) bool {
	for _, g := range per {
		if achieved[g.axis]+epsilon < g.goal {
			return false
		}
	}
	return true
}

func overshoot(achieved []float64, per []exactGoal) float64 {
	var sum float64
	for _, g := range per {
		sum += math.Max(0, achieved[g.axis]-g.goal)
	}
	return sum
}

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
