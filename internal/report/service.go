package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/honai-puma/honai-puma/internal/territory"
)

// Result is one computed report: the assembled row sequence plus the
// period bookkeeping the presentation layer needs.
type Result struct {
	Metric MetricID        `json:"metric"`
	Title  string          `json:"title"`
	Unit   Unit            `json:"unit"`
	Date   time.Time       `json:"date"`
	Period Period          `json:"period"`
	Filter FilterEcho      `json:"filter"`
	Rows   []Row           `json:"rows"`
}

// FilterEcho mirrors the narrowing applied, for display.
type FilterEcho struct {
	Regional  string `json:"regional"`
	Branch    string `json:"branch,omitempty"`
	Subbranch string `json:"subbranch,omitempty"`
	Cluster   string `json:"cluster,omitempty"`
	Kabupaten string `json:"kabupaten,omitempty"`
}

// Service coordinates the rollup computation: period derivation, filter
// resolution, concurrent per-level rollups, derived metrics, assembly,
// and the versioned cache in front of it all.
type Service struct {
	registry    *Registry
	engine      *Engine
	territories TerritoryReader
	cache       *Cache
	regional    string
	now         func() time.Time
}

// NewService wires the reporting service. regional is the fixed
// top-level root every request is scoped to (configuration, not request
// input).
func NewService(registry *Registry, engine *Engine, territories TerritoryReader, cache *Cache, regional string) *Service {
	return &Service{
		registry:    registry,
		engine:      engine,
		territories: territories,
		cache:       cache,
		regional:    regional,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Metrics lists the registered adapters for the catalogue endpoint.
func (s *Service) Metrics() []Adapter {
	return s.registry.All()
}

// ListTerritories exposes the reference nodes backing cascading filter
// dropdowns.
func (s *Service) ListTerritories(ctx context.Context, level territory.Level, filter territory.Filter) ([]territory.Node, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: unknown level %q", territory.ErrInvalidFilter, level)
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	nodes, err := s.territories.ListNodes(ctx, level, territory.NewScope(s.regional, filter))
	if err != nil {
		return nil, fmt.Errorf("%w: list territories: %v", ErrDataUnavailable, err)
	}
	return nodes, nil
}

// ComputeRollup runs the full hierarchical rollup for one metric. A nil
// date defaults to today minus the metric's pipeline latency. Filter
// violations surface before any warehouse query; any reader failure
// aborts atomically with ErrDataUnavailable.
func (s *Service) ComputeRollup(ctx context.Context, id MetricID, date *time.Time, filter territory.Filter) (Result, error) {
	adapter, err := s.registry.Lookup(id)
	if err != nil {
		return Result{}, err
	}

	selected := s.defaultDate(adapter)
	if date != nil && !date.IsZero() {
		selected = truncateDay(date.UTC())
	}

	if err := filter.Validate(); err != nil {
		return Result{}, err
	}
	scope := territory.NewScope(s.regional, filter)
	if err := s.validateFilterNames(ctx, scope, filter); err != nil {
		return Result{}, err
	}

	loader := func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, adapter, selected, scope, filter)
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Result{}, err
		}
		return value.(Result), nil
	}

	key, err := s.cache.BuildKey(ctx, keyRollup(id, selected, filter))
	if err != nil {
		return Result{}, fmt.Errorf("%w: cache key: %v", ErrDataUnavailable, err)
	}
	var result Result
	if err := s.cache.FetchJSON(ctx, key, &result, loader); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (s *Service) defaultDate(adapter Adapter) time.Time {
	return truncateDay(s.now().AddDate(0, 0, -adapter.LatencyDays))
}

// validateFilterNames checks every supplied territory name against the
// reference set of its parent scope. Runs before any fact query.
func (s *Service) validateFilterNames(ctx context.Context, scope territory.Scope, filter territory.Filter) error {
	checks := []struct {
		level territory.Level
		name  string
	}{
		{territory.LevelBranch, filter.Branch},
		{territory.LevelSubbranch, filter.Subbranch},
		{territory.LevelCluster, filter.Cluster},
		{territory.LevelKabupaten, filter.Kabupaten},
	}
	for _, check := range checks {
		if check.name == "" {
			continue
		}
		exists, err := s.territories.NodeExists(ctx, check.level, scope.ParentScope(check.level), check.name)
		if err != nil {
			return fmt.Errorf("%w: validate filter: %v", ErrDataUnavailable, err)
		}
		if !exists {
			return fmt.Errorf("%w: unknown %s %q", territory.ErrInvalidFilter, check.level, check.name)
		}
	}
	return nil
}

// compute runs the five level rollups concurrently and assembles the
// ordered row sequence. Levels are independent; concurrency is purely a
// performance optimisation.
func (s *Service) compute(ctx context.Context, adapter Adapter, selected time.Time, scope territory.Scope, filter territory.Filter) (Result, error) {
	period := NewPeriod(selected)

	byLevel := make(map[territory.Level][]Row, 5)
	g, gctx := errgroup.WithContext(ctx)
	results := make(map[territory.Level][]Aggregate, 5)
	var mu sync.Mutex

	for _, level := range territory.Levels() {
		level := level
		g.Go(func() error {
			aggregates, err := s.engine.RollupLevel(gctx, adapter, level, scope, period)
			if err != nil {
				return err
			}
			mu.Lock()
			results[level] = aggregates
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	for level, aggregates := range results {
		rows := make([]Row, 0, len(aggregates))
		for _, agg := range aggregates {
			rows = append(rows, DataRow(level, agg.Territory, Derive(agg, period)))
		}
		byLevel[level] = rows
	}

	return Result{
		Metric: adapter.ID,
		Title:  adapter.Title,
		Unit:   adapter.Unit,
		Date:   selected,
		Period: period,
		Filter: FilterEcho{
			Regional:  scope.Regional,
			Branch:    filter.Branch,
			Subbranch: filter.Subbranch,
			Cluster:   filter.Cluster,
			Kabupaten: filter.Kabupaten,
		},
		Rows: Assemble(byLevel),
	}, nil
}
