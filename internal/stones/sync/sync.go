// Package sync imports stone tables into the database.
package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rsned/stone-planner-server/internal/stones/db"
	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

// ErrNoStones is returned when an import document holds no stone entries.
var ErrNoStones = errors.New("no stones in document")

// Syncer handles stone table imports.
type Syncer struct {
	db *db.DB
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB) *Syncer {
	return &Syncer{db: database}
}

// ImportStonesFromFile imports a stone table from a JSON file and returns
// the number of stones stored.
func (s *Syncer) ImportStonesFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}
	return s.ImportStones(ctx, data)
}

// ImportStones parses, validates and stores a stone table.
func (s *Syncer) ImportStones(ctx context.Context, data []byte) (int, error) {
	types, err := ParseStones(data)
	if err != nil {
		return 0, err
	}

	// the registry rejects tables the planner could not use
	if _, err := registry.New(types); err != nil {
		return 0, fmt.Errorf("validating stones: %w", err)
	}

	store := db.NewStoneStore(s.db)
	if err := store.BulkInsertStones(ctx, types); err != nil {
		return 0, fmt.Errorf("inserting stones: %w", err)
	}

	// Update sync metadata
	if err := s.db.SetSyncMetadata(ctx, "stones_last_sync", time.Now().Format(time.RFC3339)); err != nil {
		return 0, err
	}
	if err := s.db.SetSyncMetadata(ctx, "stones_count", fmt.Sprintf("%d", len(types))); err != nil {
		return 0, err
	}

	return len(types), nil
}

// ClearAll removes all stone data from the database.
func (s *Syncer) ClearAll(ctx context.Context) error {
	return db.NewStoneStore(s.db).ClearStones(ctx)
}

// ParseStones reads a stone table in any of the accepted shapes: an array of
// stone objects, an object keyed by stone key, or either of those under a
// top-level "stones" field. Field names may be camelCase or snake_case.
func ParseStones(data []byte) ([]stones.StoneType, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing JSON: invalid document")
	}

	root := gjson.ParseBytes(data)
	if nested := root.Get("stones"); nested.Exists() && (nested.IsArray() || nested.IsObject()) {
		root = nested
	}

	var out []stones.StoneType
	switch {
	case root.IsArray():
		root.ForEach(func(_, v gjson.Result) bool {
			out = append(out, transformStone(first(v, "key", "id").String(), v))
			return true
		})
	case root.IsObject():
		root.ForEach(func(k, v gjson.Result) bool {
			if !v.IsObject() {
				return true
			}
			key := first(v, "key", "id").String()
			if key == "" {
				key = k.String()
			}
			out = append(out, transformStone(key, v))
			return true
		})
	}

	if len(out) == 0 {
		return nil, ErrNoStones
	}
	return out, nil
}

// transformStone converts one import entry to domain format.
func transformStone(key string, v gjson.Result) stones.StoneType {
	key = strings.ToLower(strings.TrimSpace(key))
	st := stones.StoneType{
		Key:                    key,
		Name:                   v.Get("name").String(),
		Color:                  v.Get("color").String(),
		OffensiveStat:          first(v, "offensive", "offensiveStat", "offensive_stat").String(),
		DefensiveStat:          first(v, "defensive", "defensiveStat", "defensive_stat").String(),
		OffensiveType:          first(v, "offensiveType", "offensive_type").String(),
		DefensiveType:          first(v, "defensiveType", "defensive_type").String(),
		OffensiveLevels:        readFloats(first(v, "offensiveLevels", "offensive_levels")),
		DefensiveLevels:        readFloats(first(v, "defensiveLevels", "defensive_levels")),
		OffensiveSecondary:     first(v, "offensiveSecondary", "offensive_secondary").String(),
		OffensiveSecondaryType: first(v, "offensiveSecondaryType", "offensive_secondary_type").String(),
		OffensiveFlatLevels:    readFloats(first(v, "offensiveFlatLevels", "offensive_flat_levels")),
	}
	if st.Name == "" && key != "" {
		st.Name = strings.ToUpper(key[:1]) + key[1:]
	}
	return st
}

// first returns the first of the named fields present on v.
func first(v gjson.Result, names ...string) gjson.Result {
	for _, n := range names {
		if r := v.Get(n); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func readFloats(v gjson.Result) []float64 {
	if !v.Exists() || !v.IsArray() {
		return nil
	}
	arr := v.Array()
	out := make([]float64, len(arr))
	for i, item := range arr {
		out[i] = item.Float()
	}
	return out
}
