package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/honai-puma/honai-puma/internal/report"
	"github.com/honai-puma/honai-puma/internal/territory"
)

func sampleResult(unit report.Unit, withQoQ bool) report.Result {
	data := report.RowData{
		Target:      100,
		Actual:      120,
		Achievement: report.Number(120),
		RunRate:     report.Number(240),
		Gap:         20,
		MoM:         report.Number(-10),
		YoY:         report.NotComputable,
		YTDGrowth:   report.Number(5.5),
	}
	if withQoQ {
		qoq := report.Number(3)
		data.QoQ = &qoq
	}
	return report.Result{
		Metric: report.MetricSO,
		Title:  "SO Transactions",
		Unit:   unit,
		Date:   time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
		Rows: []report.Row{
			report.DataRow(territory.LevelRegional, "PUMA", data),
			report.SectionHeader(territory.LevelBranch),
			report.DataRow(territory.LevelBranch, "AMBON", data),
		},
	}
}

func TestBuildTableFormatsCells(t *testing.T) {
	table := BuildTable(sampleResult(report.UnitCount, false))

	if len(table.Headers) != 10 {
		t.Fatalf("expected 10 headers without QoQ, got %v", table.Headers)
	}
	first := table.Rows[0]
	if first.Header {
		t.Fatalf("regional row must not be a header: %+v", first)
	}
	if first.Cells[0] != "PUMA" || first.Cells[1] != "100" || first.Cells[2] != "120" {
		t.Fatalf("magnitude cells: %v", first.Cells)
	}
	if first.Cells[3] != "120.00%" || first.Cells[4] != "240.00%" {
		t.Fatalf("percent cells: %v", first.Cells)
	}
	if first.Cells[8] != report.NotComputableLabel {
		t.Fatalf("sentinel cell: %v", first.Cells)
	}

	divider := table.Rows[1]
	if !divider.Header || divider.Cells[0] != "BRANCH" {
		t.Fatalf("divider row: %+v", divider)
	}
}

func TestBuildTableQoQColumnOnlyWhenPresent(t *testing.T) {
	with := BuildTable(sampleResult(report.UnitCount, true))
	if with.Headers[len(with.Headers)-1] != "QoQ" {
		t.Fatalf("expected trailing QoQ header, got %v", with.Headers)
	}
	if got := with.Rows[0].Cells[len(with.Headers)-1]; got != "3.00%" {
		t.Fatalf("qoq cell: %s", got)
	}
	without := BuildTable(sampleResult(report.UnitCount, false))
	for _, h := range without.Headers {
		if h == "QoQ" {
			t.Fatal("QoQ header must be absent for metrics without it")
		}
	}
}

func TestBuildTableLocalisesRupiah(t *testing.T) {
	table := BuildTable(sampleResult(report.UnitRupiah, false))
	// 120 rupiah is a rounding dust fraction of a billion; the localiser
	// keeps at most two decimals.
	if got := table.Rows[0].Cells[2]; got != "0" {
		t.Fatalf("billions cell: %s", got)
	}
}

func TestWriteCSVPreservesRowSequence(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, BuildTable(sampleResult(report.UnitCount, false))); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[0], "Report,SO Transactions") {
		t.Fatalf("title line: %s", lines[0])
	}
	if !strings.Contains(out, "120.00%") {
		t.Fatalf("percent formatting missing:\n%s", out)
	}
	var headerIdx, dividerIdx int
	for i, line := range lines {
		if strings.HasPrefix(line, "Territory,") {
			headerIdx = i
		}
		if strings.HasPrefix(line, "BRANCH,") {
			dividerIdx = i
		}
	}
	if headerIdx == 0 || dividerIdx == 0 || dividerIdx < headerIdx {
		t.Fatalf("row sequence broken:\n%s", out)
	}
}

func TestWriteXLSXRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, BuildTable(sampleResult(report.UnitCount, true))); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	if got, _ := f.GetCellValue(sheetName, "A4"); got != "Territory" {
		t.Fatalf("header cell A4: %s", got)
	}
	if got, _ := f.GetCellValue(sheetName, "A5"); got != "PUMA" {
		t.Fatalf("first data cell A5: %s", got)
	}
	if got, _ := f.GetCellValue(sheetName, "A6"); got != "BRANCH" {
		t.Fatalf("divider cell A6: %s", got)
	}
	if got, _ := f.GetCellValue(sheetName, "D5"); got != "120.00%" {
		t.Fatalf("percent cell D5: %s", got)
	}
}

func TestFilename(t *testing.T) {
	table := BuildTable(sampleResult(report.UnitCount, false))
	if got := Filename(table, "xlsx"); got != "honai-so-2025-03-14.xlsx" {
		t.Fatalf("filename: %s", got)
	}
}
