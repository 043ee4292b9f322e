// Package engine contains the stone planner business logic behind the
// tool surfaces.
package engine

import (
	"errors"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rsned/stone-planner-server/internal/stones/db"
	"github.com/rsned/stone-planner-server/internal/stones/planner"
	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

// ErrInvalidOptions is returned when caller-supplied plan options fail
// validation.
var ErrInvalidOptions = errors.New("invalid plan options")

// DefaultCacheSize is the number of plan results kept for repeat calls.
const DefaultCacheSize = 128

// Engine is the main query engine for planning operations.
type Engine struct {
	planner  *planner.Planner
	stones   *db.StoneStore
	plans    *db.PlanLogStore
	cache    *lru.Cache[string, *stones.PlanResult]
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a new Engine. database may be nil, in which case plan runs
// are not logged and lookups use the in-memory registry only. A
// non-positive cacheSize disables result caching.
func New(p *planner.Planner, database *db.DB, cacheSize int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	e := &Engine{
		planner:  p,
		validate: validator.New(),
		logger:   logger,
	}
	if database != nil {
		e.stones = db.NewStoneStore(database)
		e.plans = db.NewPlanLogStore(database)
	}
	if cacheSize > 0 {
		// only fails on a non-positive size
		e.cache, _ = lru.New[string, *stones.PlanResult](cacheSize)
	}

	return e
}

// Registry returns the stone table the engine plans against.
func (e *Engine) Registry() *registry.Registry {
	return e.planner.Registry()
}
