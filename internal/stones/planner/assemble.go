package planner

import (
	"github.com/rsned/stone-planner-server/pkg/stones"
)

// Failure reasons.
const (
	ReasonNoGoals      = "No valid goals provided"
	ReasonUnattainable = "Goals are unattainable within the 12 defensive sockets: even the strongest stone in every socket cannot reach at least one target. Lower the goals or change the target mix."
	ReasonExhausted    = "Search exhausted without meeting every goal; the socket bound does not rule the goals out. Retry with a larger time limit, beam width, or merge budget."
)

// assemble turns a final sequence into the consumption ledger and checks it
// against the goals.
func (c *catalog) assemble(seq []candidate) (*stones.Plan, bool) {
	plan := &stones.Plan{
		Sockets:                   make([]stones.Placement, 0, len(seq)),
		Merges:                    []stones.MergeStep{},
		UsedL7:                    make(map[string]int),
		UsedExistingPairs:         make(map[string]int),
		UsedExistingTriples:       make(map[string]int),
		MissingL7:                 make(map[string]int),
		SocketsUsed:               len(seq),
		SocketsAvailableDefensive: stones.DefensiveSockets,
		SocketsAvailableOffensive: stones.OffensiveSockets,
		Goals:                     c.ts.goalMap(),
		Achieved:                  make(map[string]float64),
	}
	for _, stat := range c.ts.axes {
		plan.Achieved[stat] = 0
	}

	for _, cand := range seq {
		contrib := c.contribution(cand)
		plan.Sockets = append(plan.Sockets, stones.Placement{
			Kind:         cand.kind.placementKind(),
			Source:       cand.kind.source(),
			Parts:        append([]string(nil), cand.parts...),
			Label:        cand.label,
			MergeCost:    cand.cost,
			Contribution: contrib,
		})
		plan.MergesUsed += cand.cost
		for stat, v := range contrib {
			plan.Achieved[stat] += v
		}

		p := cand.parts
		switch cand.kind {
		case KindBase:
			plan.UsedL7[p[0]]++
		case KindPairNew:
			plan.UsedL7[p[0]]++
			plan.UsedL7[p[1]]++
			plan.Merges = append(plan.Merges, stones.MergeStep{
				Type: "pair", Primary: p[0], Secondary: p[1], Cost: cand.cost,
			})
		case KindTripleNew:
			plan.UsedL7[p[0]]++
			plan.UsedL7[p[1]]++
			plan.UsedL7[p[2]]++
			plan.Merges = append(plan.Merges, stones.MergeStep{
				Type: "triple", Primary: p[0], Secondary: p[1], Tertiary: p[2], Cost: cand.cost,
			})
		case KindPairExisting:
			plan.UsedExistingPairs[p[0]+"+"+p[1]]++
		case KindTripleExisting:
			plan.UsedExistingTriples[p[0]+"+"+p[1]+"+"+p[2]]++
		case KindUpgrade:
			plan.UsedL7[p[2]]++
			plan.UsedExistingPairs[p[0]+"+"+p[1]]++
			plan.Merges = append(plan.Merges, stones.MergeStep{
				Type: "upgrade", Primary: p[0], Secondary: p[1], Tertiary: p[2], Cost: cand.cost,
			})
		}
	}

	for stone, used := range plan.UsedL7 {
		if short := used - c.inv.base[stone]; short > 0 {
			plan.MissingL7[stone] = short
		}
	}

	success := plan.SocketsUsed <= stones.DefensiveSockets
	for ax, stat := range c.ts.axes {
		if plan.Achieved[stat]+epsilon < c.ts.goals[ax] {
			success = false
			break
		}
	}
	return plan, success
}
