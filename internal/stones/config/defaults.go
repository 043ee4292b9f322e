package config

import (
	"time"

	"github.com/rsned/stone-planner-server/internal/stones/planner"
)

// DefaultDatabasePath is where the server keeps its SQLite file.
const DefaultDatabasePath = "data/stones/stones.db"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultDatabasePath
	}

	def := planner.DefaultConfig()
	if cfg.Planner.MaxMerges == 0 {
		cfg.Planner.MaxMerges = def.MaxMerges
	}
	if cfg.Planner.BeamWidth == 0 {
		cfg.Planner.BeamWidth = def.BeamWidth
	}
	if cfg.Planner.TopChildren == 0 {
		cfg.Planner.TopChildren = def.TopChildren
	}
	if cfg.Planner.TimeLimit == 0 {
		cfg.Planner.TimeLimit = def.TimeLimit
	}
	if cfg.Planner.RelaxedFactor == 0 {
		cfg.Planner.RelaxedFactor = def.RelaxedFactor
	}
	if cfg.Planner.CacheSize == 0 {
		cfg.Planner.CacheSize = 128
	}

	if cfg.History.Retention == 0 {
		cfg.History.Retention = 30 * 24 * time.Hour
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
