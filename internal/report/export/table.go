// Package export renders assembled reports into tabular download formats.
package export

import (
	"strconv"

	"github.com/honai-puma/honai-puma/internal/report"
)

// Table is the flattened, display-formatted view of an assembled report.
// Percent columns carry "120.00%" style strings or the not-computable
// label; magnitudes are localised per the metric unit.
type Table struct {
	Metric  string
	Title   string
	Unit    report.Unit
	Date    string
	Headers []string
	Rows    []TableRow
}

// TableRow is one output line. Section headers span the territory column
// and carry no figures.
type TableRow struct {
	Header bool
	Cells  []string
}

// BuildTable formats a computed result for CSV and XLSX writers. The QoQ
// column appears only when the metric defines it.
func BuildTable(result report.Result) Table {
	hasQoQ := false
	for _, row := range result.Rows {
		if row.Kind == report.KindData && row.Data != nil && row.Data.QoQ != nil {
			hasQoQ = true
			break
		}
	}

	headers := []string{"Territory", "Target", "Actual", "Ach FM", "DRR", "Gap", "MoM", "Abs Change", "YoY", "YTD"}
	if hasQoQ {
		headers = append(headers, "QoQ")
	}

	table := Table{
		Metric:  string(result.Metric),
		Title:   result.Title,
		Unit:    result.Unit,
		Date:    result.Date.Format("2006-01-02"),
		Headers: headers,
	}

	for _, row := range result.Rows {
		if row.Kind == report.KindSectionHeader {
			table.Rows = append(table.Rows, TableRow{Header: true, Cells: []string{row.Name}})
			continue
		}
		data := row.Data
		cells := []string{
			row.Name,
			formatAmount(data.Target, result.Unit),
			formatAmount(data.Actual, result.Unit),
			report.FormatPercent(data.Achievement),
			report.FormatPercent(data.RunRate),
			formatAmount(data.Gap, result.Unit),
			report.FormatPercent(data.MoM),
			formatAmount(data.AbsoluteChange, result.Unit),
			report.FormatPercent(data.YoY),
			report.FormatPercent(data.YTDGrowth),
		}
		if hasQoQ {
			qoq := report.NotComputable
			if data.QoQ != nil {
				qoq = *data.QoQ
			}
			cells = append(cells, report.FormatPercent(qoq))
		}
		table.Rows = append(table.Rows, TableRow{Cells: cells})
	}
	return table
}

// formatAmount localises rupiah magnitudes to billions; counts print as
// plain numbers.
func formatAmount(v float64, unit report.Unit) string {
	if unit == report.UnitRupiah {
		return report.FormatBillions(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
