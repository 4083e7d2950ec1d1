package report

import (
	"errors"
	"fmt"
)

// MetricID selects one registered metric.
type MetricID string

// Registered metrics. Each maps to one fact table/column pair plus one
// target column, mirroring the warehouse layout.
const (
	MetricNewSales        MetricID = "new-sales"
	MetricNewSalesByu     MetricID = "new-sales-byu"
	MetricNewSalesPrepaid MetricID = "new-sales-prepaid"
	MetricSO              MetricID = "so"
	MetricRedeemPV        MetricID = "redeem-pv"
	MetricRevenue         MetricID = "revenue"
	MetricRevenueByu      MetricID = "revenue-byu"
	MetricHouseholdDemand MetricID = "household-demand"
	MetricHouseholdDeploy MetricID = "household-deploy"
)

// ErrUnknownMetric indicates a metric id with no registered adapter.
var ErrUnknownMetric = errors.New("report: unknown metric")

// Unit declares what a raw aggregate counts.
type Unit string

// Aggregate units.
const (
	UnitCount  Unit = "count"
	UnitRupiah Unit = "rupiah"
)

// Adapter binds a metric to its warehouse sources. Everything the rollup
// engine varies per metric lives here: which columns feed in, how the
// stored target is scaled, and which comparison extras apply.
type Adapter struct {
	ID    MetricID
	Title string

	// FactTable rows are daily snapshots carrying cumulative
	// month-to-date values, keyed by event_date plus the five territory
	// columns.
	FactTable  string
	FactColumn string

	// ByuColumn, with PrepaidEquivalent set, defines the metric as the
	// all-segment column minus the byu-segment column. This subtraction
	// is the named prepaid-equivalent derivation, never implied.
	ByuColumn         string
	PrepaidEquivalent bool

	TargetTable  string
	TargetColumn string
	// TargetScale is a fixed unit correction applied to the stored plan
	// figure (some targets land in the warehouse at 1/10 scale). Config,
	// not derived.
	TargetScale float64

	Unit Unit
	// LatencyDays is how far behind today the pipeline runs; the default
	// reporting date backs off by this much.
	LatencyDays int
	HasQoQ      bool
}

// selectExpr renders the aggregate expression for the fact query.
func (a Adapter) selectExpr() string {
	if a.PrepaidEquivalent && a.ByuColumn != "" {
		return fmt.Sprintf("COALESCE(SUM(%s), 0) - COALESCE(SUM(%s), 0)", a.FactColumn, a.ByuColumn)
	}
	return fmt.Sprintf("COALESCE(SUM(%s), 0)", a.FactColumn)
}

// Scale returns the target scale factor, defaulting to identity.
func (a Adapter) Scale() float64 {
	if a.TargetScale == 0 {
		return 1
	}
	return a.TargetScale
}

// Registry holds the metric adapter table.
type Registry struct {
	adapters map[MetricID]Adapter
	order    []MetricID
}

// NewRegistry builds the registry with the built-in PUMA metric set.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[MetricID]Adapter)}
	for _, a := range builtinAdapters() {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an adapter.
func (r *Registry) Register(a Adapter) {
	if _, exists := r.adapters[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	r.adapters[a.ID] = a
}

// Lookup resolves an adapter by id.
func (r *Registry) Lookup(id MetricID) (Adapter, error) {
	a, ok := r.adapters[id]
	if !ok {
		return Adapter{}, fmt.Errorf("%w: %s", ErrUnknownMetric, id)
	}
	return a, nil
}

// All lists adapters in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id])
	}
	return out
}

func builtinAdapters() []Adapter {
	return []Adapter{
		{
			ID: MetricNewSales, Title: "New Sales",
			FactTable: "fact_new_sales_daily", FactColumn: "trx_all",
			TargetTable: "target_monthly", TargetColumn: "target_new_sales",
			Unit: UnitCount, LatencyDays: 2, HasQoQ: true,
		},
		{
			ID: MetricNewSalesByu, Title: "New Sales byU",
			FactTable: "fact_new_sales_daily", FactColumn: "trx_byu",
			TargetTable: "target_monthly", TargetColumn: "target_new_sales_byu",
			Unit: UnitCount, LatencyDays: 2,
		},
		{
			ID: MetricNewSalesPrepaid, Title: "New Sales Prepaid",
			FactTable: "fact_new_sales_daily", FactColumn: "trx_all",
			ByuColumn: "trx_byu", PrepaidEquivalent: true,
			TargetTable: "target_monthly", TargetColumn: "target_new_sales_prepaid",
			Unit: UnitCount, LatencyDays: 2,
		},
		{
			ID: MetricSO, Title: "SO Transactions",
			FactTable: "fact_so_daily", FactColumn: "trx_so",
			TargetTable: "target_monthly", TargetColumn: "target_so",
			Unit: UnitCount, LatencyDays: 3,
		},
		{
			ID: MetricRedeemPV, Title: "Redeem PV Revenue",
			FactTable: "fact_redeem_pv_daily", FactColumn: "rev_pv",
			TargetTable: "target_monthly", TargetColumn: "target_redeem_pv",
			// Redeem PV plan figures land at 1/10 scale in the warehouse.
			TargetScale: 10,
			Unit:        UnitRupiah, LatencyDays: 2, HasQoQ: true,
		},
		{
			ID: MetricRevenue, Title: "Revenue All",
			FactTable: "fact_revenue_daily", FactColumn: "rev_all",
			TargetTable: "target_monthly", TargetColumn: "target_revenue",
			Unit: UnitRupiah, LatencyDays: 3, HasQoQ: true,
		},
		{
			ID: MetricRevenueByu, Title: "Revenue byU",
			FactTable: "fact_revenue_daily", FactColumn: "rev_byu",
			TargetTable: "target_monthly", TargetColumn: "target_revenue_byu",
			Unit: UnitRupiah, LatencyDays: 3,
		},
		{
			ID: MetricHouseholdDemand, Title: "Household Demand",
			FactTable: "fact_household_daily", FactColumn: "demand",
			TargetTable: "target_monthly", TargetColumn: "target_demand",
			Unit: UnitCount, LatencyDays: 3,
		},
		{
			ID: MetricHouseholdDeploy, Title: "Household Deployment",
			FactTable: "fact_household_daily", FactColumn: "deploy",
			TargetTable: "target_monthly", TargetColumn: "target_deploy",
			Unit: UnitCount, LatencyDays: 3,
		},
	}
}
