package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rsned/stone-planner-server/internal/stones/format"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

func newPlanCommand() *cobra.Command {
	var (
		requestPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan one build from a request file",
		Long: `Plan one build from a YAML or JSON request holding goals, inventory
and options. Use "-" to read JSON from stdin.

Example request (YAML):
  goals:
    - {stat: Dodge, value: 60}
    - {stat: DR, value: 30}
  inventory:
    baseCounts: {red: 4}
  options:
    maxMerges: 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp()
			if err != nil {
				return err
			}

			req, err := readRequest(requestPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			database, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			eng, err := a.newEngine(ctx, database)
			if err != nil {
				return err
			}

			res, err := eng.PlanBuild(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return format.Result(out, res)
		},
	}

	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "Request file (.yaml, .yml or .json)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw result as JSON")
	_ = cmd.MarkFlagRequired("request")

	return cmd
}

// readRequest decodes a plan request. YAML is chosen by file extension,
// everything else is read as JSON.
func readRequest(path string, stdin io.Reader) (stones.PlanBuildRequest, error) {
	var req stones.PlanBuildRequest

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("reading request: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parsing YAML request: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parsing JSON request: %w", err)
		}
	}

	return req, nil
}
