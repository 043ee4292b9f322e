package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

func newTestCatalog(t *testing.T, goals []stones.Goal, inv stones.Inventory) *catalog {
	t.Helper()
	reg := registry.Default()
	ts, _ := buildTargets(reg, goals)
	require.False(t, ts.empty())
	return buildCatalog(reg, ts, normalizeInventory(reg, inv))
}

func TestAllocateUnits(t *testing.T) {
	per := []exactGoal{
		{stone: "red", axis: 0, potency: 12, goal: 90},
		{stone: "rotten", axis: 1, potency: 20, goal: 90},
		{stone: "blue", axis: 2, potency: 11, goal: 70},
	}
	need := []int{15, 9, 13}

	alloc, ok := allocateUnits(per, need, 10)

	require.True(t, ok)
	assert.Equal(t, []int{6, 1, 3}, alloc.p)
	assert.Equal(t, []int{4, 9, 7}, alloc.s)
	assert.Equal(t, 10, sumInts(alloc.p))
	assert.Equal(t, 40, 2*sumInts(alloc.p)+sumInts(alloc.s))
}

func TestAllocateUnitsFourTypes(t *testing.T) {
	per := []exactGoal{
		{stone: "red", axis: 0, potency: 12, goal: 90},
		{stone: "rotten", axis: 1, potency: 20, goal: 90},
		{stone: "blue", axis: 2, potency: 11, goal: 90},
		{stone: "yellow", axis: 3, potency: 35, goal: 120},
	}
	need := []int{15, 9, 17, 7}

	alloc, ok := allocateUnits(per, need, 12)

	require.True(t, ok)
	assert.Equal(t, []int{5, 2, 5, 0}, alloc.p)
	assert.Equal(t, []int{5, 5, 7, 7}, alloc.s)
}

func TestAssignSecondariesUsesAllSupply(t *testing.T) {
	alloc := unitAlloc{k: 12, p: []int{5, 2, 5, 0}, s: []int{5, 5, 7, 7}}

	sockets := assignSecondaries(alloc)

	require.Len(t, sockets, 12)
	used := make([]int, 4)
	primaries := make([]int, 4)
	for _, sock := range sockets {
		assert.NotEqual(t, sock[0], sock[1])
		assert.NotEqual(t, sock[0], sock[2])
		assert.NotEqual(t, sock[1], sock[2])
		primaries[sock[0]]++
		used[sock[1]]++
		used[sock[2]]++
	}
	assert.Equal(t, alloc.p, primaries)
	assert.Equal(t, alloc.s, used)
}

func TestAssignSecondariesImpossible(t *testing.T) {
	// one type holds all secondary supply, so no socket gets two distinct types
	alloc := unitAlloc{k: 2, p: []int{2, 0, 0}, s: []int{0, 4, 0}}

	assert.Nil(t, assignSecondaries(alloc))
}

func TestExactMeetsGoals(t *testing.T) {
	cat := newTestCatalog(t, []stones.Goal{
		{Stat: "Dodge", Value: 90},
		{Stat: "ZDR", Value: 90},
		{Stat: "DR", Value: 70},
	}, stones.Inventory{})

	goals := exactGoalsFromTargets(cat.ts)
	seq := cat.exact(goals, stones.DefensiveSockets)

	require.Len(t, seq, 10)
	achieved := sumVecs(seq, len(cat.ts.axes))
	assert.True(t, meetsGoals(achieved, goals))
	for _, cand := range seq {
		assert.Contains(t, []Kind{KindTripleNew, KindPairNew}, cand.kind)
	}
}

func TestExactReducesOvershoot(t *testing.T) {
	cat := newTestCatalog(t, []stones.Goal{
		{Stat: "Dodge", Value: 90},
		{Stat: "ZDR", Value: 90},
		{Stat: "DR", Value: 70},
	}, stones.Inventory{})
	goals := exactGoalsFromTargets(cat.ts)

	alloc, ok := allocateUnits(goals, []int{15, 9, 13}, 10)
	require.True(t, ok)
	sockets := assignSecondaries(alloc)
	require.NotNil(t, sockets)

	raw := make([]candidate, len(sockets))
	for i, s := range sockets {
		raw[i] = cat.newCandidate(KindTripleNew, goals[s[0]].stone, goals[s[1]].stone, goals[s[2]].stone)
	}
	before := overshoot(sumVecs(raw, len(cat.ts.axes)), goals)

	seq := cat.exact(goals, stones.DefensiveSockets)
	after := overshoot(sumVecs(seq, len(cat.ts.axes)), goals)

	assert.Less(t, after, before)
}

func TestExactRejectsWrongTypeCount(t *testing.T) {
	tests := []struct {
		name  string
		goals []stones.Goal
	}{
		{"two types", []stones.Goal{{Stat: "Dodge", Value: 10}, {Stat: "DR", Value: 10}}},
		{"five types", []stones.Goal{
			{Stat: "Dodge", Value: 10}, {Stat: "DR", Value: 10}, {Stat: "ZDR", Value: 10},
			{Stat: "MS", Value: 10}, {Stat: "XP", Value: 10},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newTestCatalog(t, tt.goals, stones.Inventory{})
			assert.Nil(t, cat.exact(exactGoalsFromTargets(cat.ts), stones.DefensiveSockets))
		})
	}
}

func TestExactRespectsCapacity(t *testing.T) {
	cat := newTestCatalog(t, []stones.Goal{
		{Stat: "Dodge", Value: 90},
		{Stat: "ZDR", Value: 90},
		{Stat: "DR", Value: 70},
	}, stones.Inventory{})

	assert.Nil(t, cat.exact(exactGoalsFromTargets(cat.ts), 9))
}

func TestExactRejectsOversizedGoal(t *testing.T) {
	cat := newTestCatalog(t, []stones.Goal{
		{Stat: "Dodge", Value: 1e20},
		{Stat: "ZDR", Value: 10},
		{Stat: "DR", Value: 10},
	}, stones.Inventory{})

	assert.Nil(t, cat.exact(exactGoalsFromTargets(cat.ts), stones.DefensiveSockets))
}
