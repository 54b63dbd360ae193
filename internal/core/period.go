package core

import (
	"fmt"
	"time"
)

// MonthNames are the fixed labels for monthly breakdown rows, January first.
// The consuming assistant renders French reports, so the labels are French
// regardless of host locale.
var MonthNames = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Period is a resolved aggregation window. Start and End are inclusive
// day-granular bounds. Year is the anchor year: monthly breakdowns always
// cover its 12 calendar months, even when Start/End span something else.
type Period struct {
	Start time.Time
	End   time.Time
	Year  int
}

// ResolvePeriod turns raw request fields into a Period.
//
// Precedence: an explicit start_date/end_date pair wins over year, which wins
// over the default (the calendar year of now). Supplying only one of
// start_date/end_date is an argument error; a start after end is a period
// error. Dates are YYYY-MM-DD.
func ResolvePeriod(year int, startDate, endDate string, now time.Time) (Period, error) {
	if startDate != "" || endDate != "" {
		if startDate == "" || endDate == "" {
			return Period{}, fmt.Errorf("%w: start_date and end_date must be supplied together", ErrInvalidArgument)
		}
		start, err := parseDay(startDate)
		if err != nil {
			return Period{}, err
		}
		end, err := parseDay(endDate)
		if err != nil {
			return Period{}, err
		}
		if start.After(end) {
			return Period{}, fmt.Errorf("%w: start_date %s is after end_date %s", ErrInvalidPeriod, startDate, endDate)
		}
		return Period{Start: start, End: end, Year: start.Year()}, nil
	}

	if year == 0 {
		year = now.Year()
	}
	if year < 0 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidArgument, year)
	}
	return yearPeriod(year), nil
}

func yearPeriod(year int) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		Year:  year,
	}
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidPeriod, s)
	}
	return dateOnly(t), nil
}

// Contains reports whether the day of t falls inside the requested window.
func (p Period) Contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// ComparisonWindow is the union of the requested window and the anchor year.
// Both the ledger-vs-fallback decision and the row fetches run over this
// union so that headline totals (requested window) and the monthly breakdown
// (anchor year) come from a single, consistent pass.
func (p Period) ComparisonWindow() (time.Time, time.Time) {
	start, end := p.Start, p.End
	anchor := yearPeriod(p.Year)
	if anchor.Start.Before(start) {
		start = anchor.Start
	}
	if anchor.End.After(end) {
		end = anchor.End
	}
	return start, end
}
