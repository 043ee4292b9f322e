package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

// StoneStore handles stone table access.
type StoneStore struct {
	db *DB
}

// NewStoneStore creates a new StoneStore.
func NewStoneStore(db *DB) *StoneStore {
	return &StoneStore{db: db}
}

// GetStone retrieves a single stone type by key with its rank levels.
func (s *StoneStore) GetStone(ctx context.Context, key string) (*stones.StoneType, error) {
	st := &stones.StoneType{Key: key}

	err := s.db.QueryRowContext(ctx, `
		SELECT name, color, offensive_stat, defensive_stat, offensive_type,
		       defensive_type, offensive_secondary, offensive_secondary_type
		FROM stones WHERE key = ?
	`, key).Scan(
		&st.Name,
		&st.Color,
		&st.OffensiveStat,
		&st.DefensiveStat,
		&st.OffensiveType,
		&st.DefensiveType,
		&st.OffensiveSecondary,
		&st.OffensiveSecondaryType,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying stone: %w", err)
	}

	if err := s.loadLevels(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

// loadLevels fills the per-rank columns of st.
func (s *StoneStore) loadLevels(ctx context.Context, st *stones.StoneType) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT defensive, offensive, offensive_flat
		FROM stone_levels
		WHERE stone_key = ?
		ORDER BY rank
	`, st.Key)
	if err != nil {
		return fmt.Errorf("querying stone levels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var flat []float64
	hasFlat := false
	for rows.Next() {
		var def, off float64
		var f sql.NullFloat64
		if err := rows.Scan(&def, &off, &f); err != nil {
			return fmt.Errorf("scanning stone level: %w", err)
		}
		st.DefensiveLevels = append(st.DefensiveLevels, def)
		st.OffensiveLevels = append(st.OffensiveLevels, off)
		flat = append(flat, f.Float64)
		hasFlat = hasFlat || f.Valid
	}
	if hasFlat {
		st.OffensiveFlatLevels = flat
	}

	return rows.Err()
}

// ListStones returns every stored stone type in table order.
func (s *StoneStore) ListStones(ctx context.Context) ([]stones.StoneType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, name, color, offensive_stat, defensive_stat, offensive_type,
		       defensive_type, offensive_secondary, offensive_secondary_type
		FROM stones
		ORDER BY sort_order, key
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all stones: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []stones.StoneType
	for rows.Next() {
		var st stones.StoneType
		if err := rows.Scan(
			&st.Key,
			&st.Name,
			&st.Color,
			&st.OffensiveStat,
			&st.DefensiveStat,
			&st.OffensiveType,
			&st.DefensiveType,
			&st.OffensiveSecondary,
			&st.OffensiveSecondaryType,
		); err != nil {
			return nil, fmt.Errorf("scanning stone: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := s.loadLevels(ctx, &out[i]); err != nil {
			return nil, fmt.Errorf("loading levels for %s: %w", out[i].Key, err)
		}
	}

	return out, nil
}

// SearchStones searches stones by key, name or defensive stat
// (case-insensitive partial match).
func (s *StoneStore) SearchStones(ctx context.Context, term string, limit int) ([]stones.StoneSearchHit, error) {
	like := "%" + term + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, name, defensive_stat
		FROM stones
		WHERE key LIKE ? OR name LIKE ? OR defensive_stat LIKE ?
		ORDER BY sort_order, key
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("searching stones: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []stones.StoneSearchHit
	for rows.Next() {
		var hit stones.StoneSearchHit
		if err := rows.Scan(&hit.Key, &hit.Name, &hit.DefensiveStat); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		results = append(results, hit)
	}

	return results, rows.Err()
}

// CountStones returns the number of stored stone types.
func (s *StoneStore) CountStones(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stones`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting stones: %w", err)
	}
	return count, nil
}

// BulkInsertStones upserts stone types and replaces their levels in one
// transaction. Slice order becomes table order.
func (s *StoneStore) BulkInsertStones(ctx context.Context, types []stones.StoneType) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		stoneStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stones
			(key, name, color, offensive_stat, defensive_stat, offensive_type,
			 defensive_type, offensive_secondary, offensive_secondary_type, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				name = excluded.name,
				color = excluded.color,
				offensive_stat = excluded.offensive_stat,
				defensive_stat = excluded.defensive_stat,
				offensive_type = excluded.offensive_type,
				defensive_type = excluded.defensive_type,
				offensive_secondary = excluded.offensive_secondary,
				offensive_secondary_type = excluded.offensive_secondary_type,
				sort_order = excluded.sort_order
		`)
		if err != nil {
			return fmt.Errorf("preparing stone statement: %w", err)
		}
		defer func() { _ = stoneStmt.Close() }()

		clearStmt, err := tx.PrepareContext(ctx, `DELETE FROM stone_levels WHERE stone_key = ?`)
		if err != nil {
			return fmt.Errorf("preparing level cleanup: %w", err)
		}
		defer func() { _ = clearStmt.Close() }()

		levelStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stone_levels (stone_key, rank, defensive, offensive, offensive_flat)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing level statement: %w", err)
		}
		defer func() { _ = levelStmt.Close() }()

		for i, st := range types {
			_, err := stoneStmt.ExecContext(ctx,
				st.Key, st.Name, st.Color, st.OffensiveStat, st.DefensiveStat,
				st.OffensiveType, st.DefensiveType, st.OffensiveSecondary,
				st.OffensiveSecondaryType, i,
			)
			if err != nil {
				return fmt.Errorf("inserting stone %s: %w", st.Key, err)
			}

			if _, err := clearStmt.ExecContext(ctx, st.Key); err != nil {
				return fmt.Errorf("clearing levels for %s: %w", st.Key, err)
			}

			for r, def := range st.DefensiveLevels {
				var off float64
				if r < len(st.OffensiveLevels) {
					off = st.OffensiveLevels[r]
				}
				var flat sql.NullFloat64
				if r < len(st.OffensiveFlatLevels) {
					flat = sql.NullFloat64{Float64: st.OffensiveFlatLevels[r], Valid: true}
				}
				if _, err := levelStmt.ExecContext(ctx, st.Key, r+1, def, off, flat); err != nil {
					return fmt.Errorf("inserting level %d for %s: %w", r+1, st.Key, err)
				}
			}
		}

		return nil
	})
}

// ClearStones removes all stone data (for re-import).
func (s *StoneStore) ClearStones(ctx context.Context) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stone_levels`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM stones`)
		return err
	})
}

// LoadRegistry builds a registry from the stored table. An empty table
// yields the built-in default registry.
func (s *StoneStore) LoadRegistry(ctx context.Context) (*registry.Registry, error) {
	types, err := s.ListStones(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return registry.Default(), nil
	}

	reg, err := registry.New(types)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}
	return reg, nil
}
