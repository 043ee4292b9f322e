package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

var threeGoals = []stones.Goal{
	{Stat: "Dodge", Value: 30},
	{Stat: "ZDR", Value: 30},
	{Stat: "DR", Value: 10},
}

func countKinds(items []candidate) map[Kind]int {
	out := make(map[Kind]int)
	for _, c := range items {
		out[c.kind]++
	}
	return out
}

func TestBuildTargetsSumsDuplicates(t *testing.T) {
	reg := registry.Default()

	ts, dropped := buildTargets(reg, []stones.Goal{
		{Stat: "DR", Value: 10},
		{Stat: "Damage Reduction", Value: 5},
		{Stat: "Dodge", Value: 12},
		{Stat: "HP", Value: -1},
	})

	assert.Equal(t, []string{"DR", "Dodge"}, ts.axes)
	assert.Equal(t, []float64{15, 12}, ts.goals)
	assert.Equal(t, []string{"blue", "red"}, ts.types)
	require.Len(t, dropped, 1)
	assert.Equal(t, "HP", dropped[0].Stat)
}

func TestCatalogEnumeration(t *testing.T) {
	cat := newTestCatalog(t, threeGoals, stones.Inventory{})

	kinds := countKinds(cat.items)
	assert.Equal(t, 3, kinds[KindBase])
	assert.Equal(t, 6, kinds[KindPairNew])
	assert.Equal(t, 3, kinds[KindTripleNew])
	assert.Zero(t, kinds[KindUpgrade])
	assert.Zero(t, kinds[KindPairExisting])
}

func TestCatalogWithInventory(t *testing.T) {
	cat := newTestCatalog(t, threeGoals, stones.Inventory{
		PairComposites: []stones.PairComposite{
			{Primary: "red", Secondary: "blue", Quantity: 1},
			{Primary: "green", Secondary: "purple", Quantity: 4},
			{Primary: "red", Secondary: "rotten", Quantity: 0},
		},
		TripleComposites: []stones.TripleComposite{
			{Primary: "Rotten", Secondary: "red", Tertiary: "green", Quantity: 1},
		},
	})

	kinds := countKinds(cat.items)
	assert.Equal(t, 1, kinds[KindTripleExisting])
	// green+purple feeds no goal and red+rotten has no stock
	assert.Equal(t, 1, kinds[KindPairExisting])
	// red+blue upgrades with rotten; green+purple upgrades with each target
	assert.Equal(t, 4, kinds[KindUpgrade])

	// display-name keys are normalized
	assert.Equal(t, []string{"rotten", "red", "green"}, cat.items[0].parts)
}

func TestCandidateContribution(t *testing.T) {
	cat := newTestCatalog(t, threeGoals, stones.Inventory{})
	ax := cat.ts.axisOf

	triple := cat.newCandidate(KindTripleNew, "red", "rotten", "blue")
	assert.Equal(t, 12.0, triple.vec[ax["Dodge"]])
	assert.Equal(t, 10.0, triple.vec[ax["ZDR"]])
	assert.Equal(t, 5.5, triple.vec[ax["DR"]])
	assert.Equal(t, 4, triple.units)
	assert.Equal(t, 2, triple.cost)
	assert.Equal(t, "Triple Red+Rotten+Blue", triple.label)

	pair := cat.newCandidate(KindPairNew, "blue", "red")
	assert.Equal(t, 6.0, pair.vec[ax["Dodge"]])
	assert.Equal(t, 11.0, pair.vec[ax["DR"]])
	assert.Equal(t, 3, pair.units)
	assert.Equal(t, 1, pair.cost)

	upgrade := cat.newCandidate(KindUpgrade, "red", "blue", "rotten")
	assert.Equal(t, "Upgrade Pair Red+Blue -> +Rotten", upgrade.label)
	assert.Equal(t, 1, upgrade.cost)

	// stats outside the goals still show up in the public contribution
	mixed := cat.newCandidate(KindTripleExisting, "red", "green", "blue")
	assert.Equal(t, map[string]float64{"Dodge": 12, "HP": 150, "DR": 5.5}, cat.contribution(mixed))
	assert.Equal(t, 3, mixed.units)
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		kind   Kind
		wire   stones.PlacementKind
		source string
		cost   int
	}{
		{KindBase, stones.KindBase, stones.SourceBase, 0},
		{KindPairNew, stones.KindPair, stones.SourceCrafted, 1},
		{KindPairExisting, stones.KindPairExisting, stones.SourceExisting, 0},
		{KindTripleNew, stones.KindTriple, stones.SourceCrafted, 2},
		{KindTripleExisting, stones.KindTripleExisting, stones.SourceExisting, 0},
		{KindUpgrade, stones.KindUpgrade, stones.SourceUpgrade, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.wire), func(t *testing.T) {
			assert.Equal(t, tt.wire, tt.kind.placementKind())
			assert.Equal(t, string(tt.wire), tt.kind.String())
			assert.Equal(t, tt.source, tt.kind.source())
			assert.Equal(t, tt.cost, tt.kind.MergeCost())
		})
	}
}

func TestBounds(t *testing.T) {
	cat := newTestCatalog(t, threeGoals, stones.Inventory{})
	b := newBounds(cat)
	ax := cat.ts.axisOf

	assert.Equal(t, 12.0, b.perSocket[ax["Dodge"]])
	assert.Equal(t, 20.0, b.perSocket[ax["ZDR"]])
	assert.Equal(t, 11.0, b.perSocket[ax["DR"]])
	assert.Equal(t, 4, b.maxUnits)

	residual := []float64{0, 0, 0}
	residual[ax["Dodge"]] = 24
	assert.True(t, b.canPossiblyMeet(residual, 2))
	assert.False(t, b.canPossiblyMeet(residual, 1))
	assert.True(t, b.canPossiblyMeet([]float64{0, 0, 0}, 0))

	// 24 Dodge is 4 units, 40 ZDR is 4 units: two triples at best
	residual[ax["ZDR"]] = 40
	assert.Equal(t, 2, b.minSockets(residual))
	assert.True(t, b.feasible(residual, 2))
	assert.False(t, b.feasible(residual, 1))
}

func TestMinSocketsHugeResidual(t *testing.T) {
	cat := newTestCatalog(t, threeGoals, stones.Inventory{})
	b := newBounds(cat)
	ax := cat.ts.axisOf

	residual := []float64{0, 0, 0}
	residual[ax["Dodge"]] = 1e20
	assert.Greater(t, b.minSockets(residual), stones.DefensiveSockets)
	assert.False(t, b.feasible(residual, stones.DefensiveSockets))

	residual[ax["Dodge"]] = math.MaxFloat64
	assert.False(t, b.feasible(residual, stones.DefensiveSockets))
}
