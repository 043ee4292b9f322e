package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsned/stone-planner-server/internal/stones/sync"
)

func newImportStonesCommand() *cobra.Command {
	var (
		file  string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "import-stones",
		Short: "Import a stone potency table into the database",
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

			syncer := sync.NewSyncer(database)
			if reset {
				if err := syncer.ClearAll(ctx); err != nil {
					return fmt.Errorf("clearing stones: %w", err)
				}
			}

			a.logger.Info("importing stones", "file", file)
			n, err := syncer.ImportStonesFromFile(ctx, file)
			if err != nil {
				return fmt.Errorf("importing stones: %w", err)
			}
			a.logger.Info("stones imported successfully", "count", n)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Stone table JSON file")
	cmd.Flags().BoolVar(&reset, "clear", false, "Remove stored stones before importing")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
