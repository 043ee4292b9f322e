//go:build lambda

// Stone planner behind an AWS Lambda function URL.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/rsned/stone-planner-server/internal/stones/config"
	"github.com/rsned/stone-planner-server/internal/stones/engine"
	"github.com/rsned/stone-planner-server/internal/stones/funcurl"
	"github.com/rsned/stone-planner-server/internal/stones/planner"
	"github.com/rsned/stone-planner-server/internal/stones/registry"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))

	// No database: the function runs on the built-in stone table and keeps
	// no plan history.
	p := planner.New(registry.Default(), cfg.Planner.PlannerSettings(), logger)
	eng := engine.New(p, nil, cfg.Planner.CacheSize, logger)

	lambda.Start(funcurl.NewHandler(eng).Handle)
}
