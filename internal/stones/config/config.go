// Package config loads server configuration from a YAML file, the
// environment and built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rsned/stone-planner-server/internal/stones/planner"
)

// EnvPrefix prefixes every environment override, e.g. STONES_DATABASE_PATH.
const EnvPrefix = "STONES"

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// PlannerConfig holds the search defaults applied when a request leaves an
// option at zero.
type PlannerConfig struct {
	MaxMerges     int           `mapstructure:"max_merges" validate:"min=1"`
	BeamWidth     int           `mapstructure:"beam_width" validate:"min=1,max=512"`
	TopChildren   int           `mapstructure:"top_children" validate:"min=1,max=256"`
	TimeLimit     time.Duration `mapstructure:"time_limit" validate:"min=1ms,max=60s"`
	RelaxedFactor int           `mapstructure:"relaxed_factor" validate:"min=1,max=8"`
	CacheSize     int           `mapstructure:"cache_size" validate:"min=1"`
}

// HistoryConfig controls the plan run log.
type HistoryConfig struct {
	// Runs older than this are pruned at startup. Zero keeps everything.
	Retention time.Duration `mapstructure:"retention" validate:"min=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only reaches keys viper already knows about.
	registerKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration holding only the defaults.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}

func registerKeys(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("planner.max_merges", d.Planner.MaxMerges)
	v.SetDefault("planner.beam_width", d.Planner.BeamWidth)
	v.SetDefault("planner.top_children", d.Planner.TopChildren)
	v.SetDefault("planner.time_limit", d.Planner.TimeLimit)
	v.SetDefault("planner.relaxed_factor", d.Planner.RelaxedFactor)
	v.SetDefault("planner.cache_size", d.Planner.CacheSize)
	v.SetDefault("history.retention", d.History.Retention)
	v.SetDefault("logging.level", d.Logging.Level)
}

// PlannerSettings converts the planner section to the planner's own config.
func (c PlannerConfig) PlannerSettings() planner.Config {
	return planner.Config{
		MaxMerges:     c.MaxMerges,
		BeamWidth:     c.BeamWidth,
		TopChildren:   c.TopChildren,
		TimeLimit:     c.TimeLimit,
		RelaxedFactor: c.RelaxedFactor,
	}
}

// SlogLevel maps the configured level name to a slog level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
