package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/stone-planner-server/internal/stones/db"
)

const keyedTable = `{
  "stones": {
    "red": {
      "name": "Red",
      "offensive": "Burn",
      "defensive": "Dodge",
      "offensiveLevels": [40, 60, 80, 100, 150, 225, 250],
      "defensiveLevels": [3, 4, 5, 6, 8, 10, 12]
    },
    "blue": {
      "defensive_stat": "DR",
      "offensive_stat": "Tentacles",
      "offensive_levels": [25, 30, 35, 45, 60, 75, 90],
      "defensive_levels": [2, 3, 4, 5, 7, 9, 11]
    }
  }
}`

const arrayTable = `[
  {"id": "Rotten", "name": "Rotten", "defensiveStat": "ZDR",
   "defensiveLevels": [4, 6, 8, 10, 13, 16, 20],
   "offensiveLevels": [5, 10, 15, 20, 30, 45, 60],
   "offensiveFlatLevels": [2, 4, 6, 8, 10, 15, 20]}
]`

func TestParseStonesKeyedObject(t *testing.T) {
	types, err := ParseStones([]byte(keyedTable))
	require.NoError(t, err)
	require.Len(t, types, 2)

	assert.Equal(t, "red", types[0].Key)
	assert.Equal(t, "Dodge", types[0].DefensiveStat)
	assert.Equal(t, 12.0, types[0].MaxRankPotency())

	// snake_case fields and a derived name
	assert.Equal(t, "blue", types[1].Key)
	assert.Equal(t, "Blue", types[1].Name)
	assert.Equal(t, "DR", types[1].DefensiveStat)
	assert.Len(t, types[1].DefensiveLevels, 7)
}

func TestParseStonesArray(t *testing.T) {
	types, err := ParseStones([]byte(arrayTable))
	require.NoError(t, err)
	require.Len(t, types, 1)

	assert.Equal(t, "rotten", types[0].Key)
	assert.Equal(t, []float64{2, 4, 6, 8, 10, 15, 20}, types[0].OffensiveFlatLevels)
}

func TestParseStonesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"stones": [`},
		{"empty array", `[]`},
		{"scalar", `42`},
		{"no objects", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStones([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestImportStonesFromFile(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenAndInit(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	path := filepath.Join(t.TempDir(), "stones.json")
	require.NoError(t, os.WriteFile(path, []byte(keyedTable), 0o644))

	syncer := NewSyncer(database)
	n, err := syncer.ImportStonesFromFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := database.GetSyncMetadata(ctx, "stones_count")
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	reg, err := db.NewStoneStore(database).LoadRegistry(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue"}, reg.Keys())

	require.NoError(t, syncer.ClearAll(ctx))
	stored, err := db.NewStoneStore(database).CountStones(ctx)
	require.NoError(t, err)
	assert.Zero(t, stored)
}

func TestImportStonesRejectsShortTables(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenAndInit(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, err = NewSyncer(database).ImportStones(ctx, []byte(`[{"key": "red", "defensive": "Dodge", "defensiveLevels": [1, 2]}]`))
	assert.Error(t, err)

	n, err := db.NewStoneStore(database).CountStones(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
