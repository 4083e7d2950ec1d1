package report

// RowData is the derived comparison set for one territory. Ratios are
// tri-state Values: zero denominators surface as "not computable", never
// NaN or Inf. Differences are always computable and stay plain floats.
type RowData struct {
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`

	// Achievement is actual versus the full-month target (Ach FM).
	Achievement Value `json:"achievement"`
	// RunRate is actual versus the pro-rata share of the target for the
	// days elapsed so far this month (DRR).
	RunRate Value `json:"run_rate"`
	// Gap is actual minus target, sign preserved.
	Gap float64 `json:"gap"`

	MoM            Value   `json:"mom"`
	AbsoluteChange float64 `json:"abs_change"`
	YoY            Value   `json:"yoy"`
	YTDGrowth      Value   `json:"ytd"`
	// QoQ is only present for metrics that define it.
	QoQ *Value `json:"qoq,omitempty"`
}

// Derive computes the standard comparison figures from one raw rollup.
func Derive(agg Aggregate, period Period) RowData {
	data := RowData{
		Target:         round2(agg.Target),
		Actual:         round2(agg.Current),
		Achievement:    ratioPercent(agg.Current, agg.Target),
		Gap:            round2(agg.Current - agg.Target),
		MoM:            growthPercent(agg.PriorMonth, agg.Current),
		AbsoluteChange: round2(agg.Current - agg.PriorMonth),
		YoY:            growthPercent(agg.PriorYear, agg.Current),
		YTDGrowth:      growthPercent(agg.YTDPrior, agg.YTDCurrent),
	}
	data.RunRate = ratioPercent(agg.Current, period.RunRateFraction()*agg.Target)
	if agg.HasQoQ {
		qoq := growthPercent(agg.QTDPrior, agg.QTDCurrent)
		data.QoQ = &qoq
	}
	return data
}
