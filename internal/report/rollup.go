package report

import (
	"context"
	"fmt"
	"time"

	"github.com/honai-puma/honai-puma/internal/territory"
)

// Aggregate is the raw per-territory rollup for one metric and period:
// plain sums, before any derived comparison is computed. Missing source
// rows are already coalesced to zero here.
type Aggregate struct {
	Territory string
	Parent    string

	Current    float64
	PriorMonth float64
	PriorYear  float64
	YTDCurrent float64
	YTDPrior   float64
	Target     float64

	QTDCurrent float64
	QTDPrior   float64
	HasQoQ     bool
}

// Engine computes one Aggregate per territory node in scope for a single
// metric and level. The five period points are independent sums; nodes
// come from the reference set so zero-activity territories stay visible.
type Engine struct {
	facts       FactReader
	targets     TargetReader
	territories TerritoryReader
}

// NewEngine wires the rollup engine with its readers.
func NewEngine(facts FactReader, targets TargetReader, territories TerritoryReader) *Engine {
	return &Engine{facts: facts, targets: targets, territories: territories}
}

// RollupLevel aggregates one territory level. Any reader failure wraps
// ErrDataUnavailable so the caller can abort the whole assembly.
func (e *Engine) RollupLevel(ctx context.Context, adapter Adapter, level territory.Level, scope territory.Scope, period Period) ([]Aggregate, error) {
	nodes, err := e.territories.ListNodes(ctx, level, scope)
	if err != nil {
		return nil, unavailable("list territories", level, err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	current, err := e.sumPoint(ctx, adapter, level, scope, period.CurrentAnchor, period.CurrentAnchor)
	if err != nil {
		return nil, unavailable("current", level, err)
	}
	priorMonth, err := e.sumPoint(ctx, adapter, level, scope, period.PriorMonthAnchor, period.PriorMonthAnchor)
	if err != nil {
		return nil, unavailable("prior month", level, err)
	}
	priorYear, err := e.sumPoint(ctx, adapter, level, scope, period.PriorYearAnchor, period.PriorYearAnchor)
	if err != nil {
		return nil, unavailable("prior year", level, err)
	}
	ytdCurrent, err := e.sumPoint(ctx, adapter, level, scope, period.YearToDateStart, period.CurrentAnchor)
	if err != nil {
		return nil, unavailable("ytd current", level, err)
	}
	ytdPrior, err := e.sumPoint(ctx, adapter, level, scope, period.PriorYearToDateStart, period.PriorYearToDateEnd)
	if err != nil {
		return nil, unavailable("ytd prior", level, err)
	}

	var qtdCurrent, qtdPrior map[string]float64
	if adapter.HasQoQ {
		qtdCurrent, err = e.sumPoint(ctx, adapter, level, scope, period.QuarterToDateStart, period.CurrentAnchor)
		if err != nil {
			return nil, unavailable("qtd current", level, err)
		}
		qtdPrior, err = e.sumPoint(ctx, adapter, level, scope, period.PriorQuarterStart, period.PriorQuarterEnd)
		if err != nil {
			return nil, unavailable("qtd prior", level, err)
		}
	}

	targets, err := e.targets.SumTargetByTerritory(ctx, TargetQuery{
		Table:  adapter.TargetTable,
		Column: adapter.TargetColumn,
		Level:  level,
		Scope:  scope,
		Month:  period.TargetMonth(),
		Scale:  adapter.Scale(),
	})
	if err != nil {
		return nil, unavailable("target", level, err)
	}

	// Left join from the reference set: every node appears exactly once,
	// zero-filled when the fact table has nothing for it.
	aggregates := make([]Aggregate, 0, len(nodes))
	for _, node := range nodes {
		agg := Aggregate{
			Territory:  node.Name,
			Parent:     node.Parent,
			Current:    current[node.Name],
			PriorMonth: priorMonth[node.Name],
			PriorYear:  priorYear[node.Name],
			YTDCurrent: ytdCurrent[node.Name],
			YTDPrior:   ytdPrior[node.Name],
			Target:     targets[node.Name],
			HasQoQ:     adapter.HasQoQ,
		}
		if adapter.HasQoQ {
			agg.QTDCurrent = qtdCurrent[node.Name]
			agg.QTDPrior = qtdPrior[node.Name]
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, nil
}

// sumPoint sums the adapter's fact expression over the snapshot rows of
// [from, to]. A single-day point passes from == to.
func (e *Engine) sumPoint(ctx context.Context, adapter Adapter, level territory.Level, scope territory.Scope, from, to time.Time) (map[string]float64, error) {
	return e.facts.SumFactByTerritory(ctx, FactQuery{
		Table: adapter.FactTable,
		Expr:  adapter.selectExpr(),
		Level: level,
		Scope: scope,
		Dates: SnapshotDates(from, to),
	})
}

func unavailable(point string, level territory.Level, err error) error {
	return fmt.Errorf("%w: %s at %s: %v", ErrDataUnavailable, point, level, err)
}
