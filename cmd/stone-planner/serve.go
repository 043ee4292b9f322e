package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rsned/stone-planner-server/internal/stones/db"
	"github.com/rsned/stone-planner-server/internal/stones/mcp"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp()
			if err != nil {
				return err
			}

			database, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if retention := a.cfg.History.Retention; retention > 0 {
				n, err := db.NewPlanLogStore(database).PruneRuns(ctx, time.Now().Add(-retention))
				if err != nil {
					a.logger.Warn("failed to prune plan history", "error", err)
				} else if n > 0 {
					a.logger.Info("pruned plan history", "runs", n)
				}
			}

			eng, err := a.newEngine(ctx, database)
			if err != nil {
				return err
			}
			server := mcp.NewServer(eng, a.logger)

			a.logger.Info("starting MCP server", "db", a.cfg.Database.Path)
			if err := server.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}

			a.logger.Info("server stopped")
			return nil
		},
	}
}
