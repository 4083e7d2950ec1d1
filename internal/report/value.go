package report

import (
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotComputableLabel is the display marker for a ratio whose denominator
// was zero or missing. It is embedded data, not an error: callers render
// it instead of a percentage and must never see NaN or Inf.
const NotComputableLabel = "not computable"

// Value is a tri-state numeric result: a number, or "not computable".
// It keeps zero distinct from absent all the way to the presentation
// boundary.
type Value struct {
	Float64 float64
	Valid   bool
}

// Number wraps a computable value.
func Number(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// NotComputable is the sentinel for an undefined ratio.
var NotComputable = Value{}

// MarshalJSON encodes invalid values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON restores the tri-state from null or a number.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = NotComputable
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Number(f)
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// growthPercent is the (current-base)/base*100 comparison shared by MoM,
// YoY, YTD and QoQ. Zero base yields the sentinel, never Inf.
func growthPercent(base, current float64) Value {
	if base == 0 {
		return NotComputable
	}
	return Number(round2((current - base) / base * 100))
}

// ratioPercent is current/base*100 with the same zero-base policy.
func ratioPercent(current, base float64) Value {
	if base == 0 {
		return NotComputable
	}
	return Number(round2(current / base * 100))
}

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatPercent renders a Value as "120.00%" or the sentinel label.
// Percent strings keep the dot decimal separator regardless of locale;
// only magnitude formatting is localised.
func FormatPercent(v Value) string {
	if !v.Valid {
		return NotComputableLabel
	}
	return fmt.Sprintf("%.2f%%", v.Float64)
}

// FormatBillions renders a rupiah magnitude scaled to billions with the
// id-ID locale and at most two fraction digits. Presentation only; raw
// aggregates stay in the unit the adapter declares.
func FormatBillions(v float64) string {
	return idPrinter.Sprintf("%v", number.Decimal(v/1e9, number.MaxFractionDigits(2)))
}
