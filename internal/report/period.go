package report

import "time"

// Period carries every comparison anchor derived from one selected
// reporting date. It is computed once per request and never mutated.
type Period struct {
	Selected time.Time `json:"selected"`

	CurrentAnchor    time.Time `json:"current_anchor"`
	PriorMonthAnchor time.Time `json:"prior_month_anchor"`
	PriorYearAnchor  time.Time `json:"prior_year_anchor"`

	YearToDateStart      time.Time `json:"ytd_start"`
	PriorYearToDateStart time.Time `json:"prior_ytd_start"`
	PriorYearToDateEnd   time.Time `json:"prior_ytd_end"`

	QuarterToDateStart time.Time `json:"qtd_start"`
	PriorQuarterStart  time.Time `json:"prior_qtd_start"`
	PriorQuarterEnd    time.Time `json:"prior_qtd_end"`

	DayOfMonth  int `json:"day_of_month"`
	DaysInMonth int `json:"days_in_month"`
}

// NewPeriod derives all comparison anchors from the selected date.
//
// When selected falls on the last calendar day of its month, every
// end-of-period comparison snaps to the last day of the respective
// comparison month instead of the same day number. The daily fact tables
// are cumulative month-to-date snapshots, so this alignment decides which
// snapshot row a comparison reads and must hold exactly.
func NewPeriod(selected time.Time) Period {
	selected = truncateDay(selected)
	last := lastDayOfMonth(selected)
	endOfMonth := selected.Day() == last.Day()

	p := Period{
		Selected:    selected,
		DayOfMonth:  selected.Day(),
		DaysInMonth: last.Day(),
	}

	if endOfMonth {
		p.CurrentAnchor = last
		p.PriorMonthAnchor = lastDayOfMonth(firstOfMonth(selected).AddDate(0, -1, 0))
		p.PriorYearAnchor = lastDayOfMonth(firstOfMonth(selected).AddDate(-1, 0, 0))
	} else {
		p.CurrentAnchor = selected
		p.PriorMonthAnchor = shiftMonthsClamped(selected, -1)
		p.PriorYearAnchor = shiftMonthsClamped(selected, -12)
	}

	p.YearToDateStart = time.Date(selected.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	p.PriorYearToDateStart = p.YearToDateStart.AddDate(-1, 0, 0)
	p.PriorYearToDateEnd = p.PriorYearAnchor

	p.QuarterToDateStart = firstOfQuarter(p.CurrentAnchor)
	p.PriorQuarterStart = p.QuarterToDateStart.AddDate(0, -3, 0)
	if endOfMonth {
		p.PriorQuarterEnd = lastDayOfMonth(firstOfMonth(selected).AddDate(0, -3, 0))
	} else {
		p.PriorQuarterEnd = shiftMonthsClamped(selected, -3)
	}

	return p
}

// TargetMonth returns the yyyy-MM key of the month under report.
func (p Period) TargetMonth() string {
	return p.CurrentAnchor.Format("2006-01")
}

// RunRateFraction is the days-elapsed over days-in-month ratio used to
// pro-rate the monthly target for DRR.
func (p Period) RunRateFraction() float64 {
	if p.DaysInMonth == 0 {
		return 0
	}
	return float64(p.DayOfMonth) / float64(p.DaysInMonth)
}

// SnapshotDates expands a date range over cumulative month-to-date
// snapshot tables into the rows that must be summed: the month-end
// snapshot of every completed month in the range plus the final partial
// anchor. Summing every daily row would double count.
func SnapshotDates(from, to time.Time) []time.Time {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return nil
	}
	var dates []time.Time
	month := firstOfMonth(from)
	endMonth := firstOfMonth(to)
	for month.Before(endMonth) {
		snap := lastDayOfMonth(month)
		if !snap.Before(from) {
			dates = append(dates, snap)
		}
		month = month.AddDate(0, 1, 0)
	}
	return append(dates, to)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func firstOfQuarter(t time.Time) time.Time {
	quarterMonth := time.Month(((int(t.Month())-1)/3)*3 + 1)
	return time.Date(t.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(t time.Time) time.Time {
	return firstOfMonth(t).AddDate(0, 1, -1)
}

// shiftMonthsClamped moves by whole months keeping the day number,
// clamping to the target month's length (Mar 30 minus one month is
// Feb 28/29, never an overflow into March).
func shiftMonthsClamped(t time.Time, months int) time.Time {
	anchor := firstOfMonth(t).AddDate(0, months, 0)
	day := t.Day()
	if max := lastDayOfMonth(anchor).Day(); day > max {
		day = max
	}
	return time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, time.UTC)
}
