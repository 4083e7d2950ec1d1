package report

import (
	"context"
	"errors"
	"time"

	"github.com/honai-puma/honai-puma/internal/territory"
)

// ErrDataUnavailable indicates the warehouse reader failed for any level.
// The whole rollup aborts atomically; partial hierarchies are never
// returned and zero-rows are never fabricated to mask the failure.
var ErrDataUnavailable = errors.New("report: data unavailable")

// FactQuery asks for one aggregate per territory node at a level, summed
// over the given snapshot dates inside the scope.
type FactQuery struct {
	Table string
	// Expr is the aggregate select expression produced by the adapter.
	Expr  string
	Level territory.Level
	Scope territory.Scope
	Dates []time.Time
}

// TargetQuery asks for the scaled monthly plan figure per territory node.
type TargetQuery struct {
	Table  string
	Column string
	Level  territory.Level
	Scope  territory.Scope
	// Month is the yyyy-MM key of the month under report.
	Month string
	Scale float64
}

// FactReader sums fact-table values grouped by territory. A territory
// with no rows is simply absent from the map; the engine coalesces it
// to zero.
type FactReader interface {
	SumFactByTerritory(ctx context.Context, q FactQuery) (map[string]float64, error)
}

// TargetReader sums plan figures grouped by territory. Missing target
// rows contribute zero, not an error.
type TargetReader interface {
	SumTargetByTerritory(ctx context.Context, q TargetQuery) (map[string]float64, error)
}

// TerritoryReader exposes the reference data the rollup joins against.
type TerritoryReader interface {
	ListNodes(ctx context.Context, level territory.Level, scope territory.Scope) ([]territory.Node, error)
	NodeExists(ctx context.Context, level territory.Level, scope territory.Scope, name string) (bool, error)
}
