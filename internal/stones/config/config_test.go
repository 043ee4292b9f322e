package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 24, cfg.Planner.MaxMerges)
	assert.Equal(t, 16, cfg.Planner.BeamWidth)
	assert.Equal(t, 10, cfg.Planner.TopChildren)
	assert.Equal(t, time.Second, cfg.Planner.TimeLimit)
	assert.Equal(t, 2, cfg.Planner.RelaxedFactor)
	assert.Equal(t, 128, cfg.Planner.CacheSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/stones-test.db
planner:
  beam_width: 32
  time_limit: 250ms
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/stones-test.db", cfg.Database.Path)
	assert.Equal(t, 32, cfg.Planner.BeamWidth)
	assert.Equal(t, 250*time.Millisecond, cfg.Planner.TimeLimit)
	assert.Equal(t, 24, cfg.Planner.MaxMerges)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.SlogLevel())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "planner:\n  top_children: 12\n")
	t.Setenv("STONES_PLANNER_TOP_CHILDREN", "20")
	t.Setenv("STONES_DATABASE_PATH", ":memory:")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Planner.TopChildren)
	assert.Equal(t, ":memory:", cfg.Database.Path)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad level", "logging:\n  level: loud\n"},
		{"beam too wide", "planner:\n  beam_width: 4096\n"},
		{"time limit too long", "planner:\n  time_limit: 5m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestPlannerSettings(t *testing.T) {
	cfg := Default()
	cfg.Planner.BeamWidth = 40

	pc := cfg.Planner.PlannerSettings()

	assert.Equal(t, 40, pc.BeamWidth)
	assert.Equal(t, cfg.Planner.TimeLimit, pc.TimeLimit)
}
