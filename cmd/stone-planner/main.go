// Stone socket planner: MCP server and command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rsned/stone-planner-server/internal/stones/config"
	"github.com/rsned/stone-planner-server/internal/stones/db"
	"github.com/rsned/stone-planner-server/internal/stones/engine"
	"github.com/rsned/stone-planner-server/internal/stones/planner"
)

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool
)

func main() {
	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stone-planner",
		Short: "Plan defensive stone sockets with the fewest merges",
		Long: `stone-planner finds socket layouts of rank 7 stones, supers and megas
that reach a set of defensive stat goals while spending as few merges as
possible and reusing stones you already own.

Examples:
  stone-planner serve
  stone-planner plan --request build.yaml
  stone-planner import-stones --file stones.json`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newImportStonesCommand())

	return rootCmd
}

// app carries what every subcommand needs after flag parsing.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Setup logging
	logLevel := cfg.Logging.SlogLevel()
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	return &app{cfg: cfg, logger: logger}, nil
}

// openDB opens the configured database, creating its directory if needed.
func (a *app) openDB(ctx context.Context) (*db.DB, error) {
	path := a.cfg.Database.Path
	if !strings.HasPrefix(path, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	return db.OpenAndInit(ctx, path)
}

// newEngine builds the planner over the stored stone table, or the
// built-in one when nothing has been imported.
func (a *app) newEngine(ctx context.Context, database *db.DB) (*engine.Engine, error) {
	reg, err := db.NewStoneStore(database).LoadRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stones: %w", err)
	}

	p := planner.New(reg, a.cfg.Planner.PlannerSettings(), a.logger)
	return engine.New(p, database, a.cfg.Planner.CacheSize, a.logger), nil
}
