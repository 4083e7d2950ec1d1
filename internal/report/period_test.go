package report

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPeriodMidMonth(t *testing.T) {
	p := NewPeriod(date(2025, time.February, 15))
	if !p.CurrentAnchor.Equal(date(2025, time.February, 15)) {
		t.Fatalf("current anchor: %s", p.CurrentAnchor)
	}
	if !p.PriorMonthAnchor.Equal(date(2025, time.January, 15)) {
		t.Fatalf("prior month anchor: %s", p.PriorMonthAnchor)
	}
	if !p.PriorYearAnchor.Equal(date(2024, time.February, 15)) {
		t.Fatalf("prior year anchor: %s", p.PriorYearAnchor)
	}
	if p.DayOfMonth != 15 || p.DaysInMonth != 28 {
		t.Fatalf("day bookkeeping: %d/%d", p.DayOfMonth, p.DaysInMonth)
	}
}

func TestNewPeriodEndOfMonthAlignment(t *testing.T) {
	p := NewPeriod(date(2025, time.February, 28))
	if !p.PriorMonthAnchor.Equal(date(2025, time.January, 31)) {
		t.Fatalf("prior month must snap to Jan 31, got %s", p.PriorMonthAnchor)
	}
	if !p.PriorYearAnchor.Equal(date(2024, time.February, 29)) {
		t.Fatalf("prior year must snap to Feb 29 (leap), got %s", p.PriorYearAnchor)
	}
	if !p.PriorQuarterEnd.Equal(date(2024, time.November, 30)) {
		t.Fatalf("prior quarter end must snap to Nov 30, got %s", p.PriorQuarterEnd)
	}
}

func TestNewPeriodClampsShortMonths(t *testing.T) {
	// Mar 30 is not end of month; minus one month must clamp to Feb 28.
	p := NewPeriod(date(2025, time.March, 30))
	if !p.PriorMonthAnchor.Equal(date(2025, time.February, 28)) {
		t.Fatalf("expected clamp to Feb 28, got %s", p.PriorMonthAnchor)
	}
}

func TestNewPeriodYearToDateBounds(t *testing.T) {
	p := NewPeriod(date(2025, time.August, 20))
	if !p.YearToDateStart.Equal(date(2025, time.January, 1)) {
		t.Fatalf("ytd start: %s", p.YearToDateStart)
	}
	if !p.PriorYearToDateStart.Equal(date(2024, time.January, 1)) {
		t.Fatalf("prior ytd start: %s", p.PriorYearToDateStart)
	}
	if !p.PriorYearToDateEnd.Equal(date(2024, time.August, 20)) {
		t.Fatalf("prior ytd end: %s", p.PriorYearToDateEnd)
	}
	if p.TargetMonth() != "2025-08" {
		t.Fatalf("target month: %s", p.TargetMonth())
	}
}

func TestRunRateFraction(t *testing.T) {
	p := NewPeriod(date(2025, time.April, 15))
	if got := p.RunRateFraction(); got < 0.499 || got > 0.501 {
		t.Fatalf("run rate fraction: %f", got)
	}
}

func TestSnapshotDatesExpandsMonthEnds(t *testing.T) {
	dates := SnapshotDates(date(2025, time.January, 1), date(2025, time.March, 20))
	want := []time.Time{
		date(2025, time.January, 31),
		date(2025, time.February, 28),
		date(2025, time.March, 20),
	}
	if len(dates) != len(want) {
		t.Fatalf("expected %d snapshot dates, got %v", len(want), dates)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Fatalf("snapshot %d: want %s got %s", i, want[i], dates[i])
		}
	}
}

func TestSnapshotDatesSingleDay(t *testing.T) {
	dates := SnapshotDates(date(2025, time.May, 10), date(2025, time.May, 10))
	if len(dates) != 1 || !dates[0].Equal(date(2025, time.May, 10)) {
		t.Fatalf("expected single anchor date, got %v", dates)
	}
}
