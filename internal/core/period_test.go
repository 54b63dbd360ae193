package core_test

import (
	"errors"
	"testing"
	"time"

	"billing-agent/internal/core"
)

func TestResolvePeriod(t *testing.T) {
	now := day("2026-09-01")

	tests := []struct {
		name      string
		year      int
		start     string
		end       string
		wantStart string
		wantEnd   string
		wantYear  int
		wantErr   error
	}{
		{
			name: "explicit year",
			year: 2024,
			wantStart: "2024-01-01", wantEnd: "2024-12-31", wantYear: 2024,
		},
		{
			name:      "defaults to the current year",
			wantStart: "2026-01-01", wantEnd: "2026-12-31", wantYear: 2026,
		},
		{
			name:  "explicit range",
			start: "2024-03-01", end: "2024-06-30",
			wantStart: "2024-03-01", wantEnd: "2024-06-30", wantYear: 2024,
		},
		{
			name: "range wins over year",
			year: 2020, start: "2024-03-01", end: "2024-06-30",
			wantStart: "2024-03-01", wantEnd: "2024-06-30", wantYear: 2024,
		},
		{
			name:  "range crossing years anchors on the start year",
			start: "2023-11-01", end: "2024-02-29",
			wantStart: "2023-11-01", wantEnd: "2024-02-29", wantYear: 2023,
		},
		{
			name:  "start after end",
			start: "2024-06-30", end: "2024-03-01",
			wantErr: core.ErrInvalidPeriod,
		},
		{
			name:  "malformed start date",
			start: "03/01/2024", end: "2024-06-30",
			wantErr: core.ErrInvalidPeriod,
		},
		{
			name:  "start without end",
			start: "2024-03-01",
			wantErr: core.ErrInvalidArgument,
		},
		{
			name: "end without start",
			end:  "2024-06-30",
			wantErr: core.ErrInvalidArgument,
		},
		{
			name: "negative year",
			year: -3,
			wantErr: core.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := core.ResolvePeriod(tt.year, tt.start, tt.end, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !p.Start.Equal(day(tt.wantStart)) {
				t.Errorf("start = %s, want %s", p.Start, tt.wantStart)
			}
			if !p.End.Equal(day(tt.wantEnd)) {
				t.Errorf("end = %s, want %s", p.End, tt.wantEnd)
			}
			if p.Year != tt.wantYear {
				t.Errorf("year = %d, want %d", p.Year, tt.wantYear)
			}
		})
	}
}

func TestPeriodContains(t *testing.T) {
	p, err := core.ResolvePeriod(2024, "", "", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !p.Contains(day("2024-01-01")) || !p.Contains(day("2024-12-31")) {
		t.Error("window bounds must be inclusive")
	}
	if p.Contains(day("2023-12-31")) || p.Contains(day("2025-01-01")) {
		t.Error("days outside the year must not match")
	}
	// Intra-day timestamps count for their calendar day.
	if !p.Contains(time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)) {
		t.Error("a timestamp on the last day must match")
	}
}

func TestComparisonWindowCoversAnchorYear(t *testing.T) {
	p, err := core.ResolvePeriod(0, "2024-03-01", "2024-06-30", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	start, end := p.ComparisonWindow()
	if !start.Equal(day("2024-01-01")) || !end.Equal(day("2024-12-31")) {
		t.Errorf("window = [%s, %s], want the full anchor year", start, end)
	}

	p, err = core.ResolvePeriod(0, "2023-11-01", "2024-02-29", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	start, end = p.ComparisonWindow()
	if !start.Equal(day("2023-01-01")) || !end.Equal(day("2024-02-29")) {
		t.Errorf("window = [%s, %s], want anchor-year start through range end", start, end)
	}
}

func TestMonthNames(t *testing.T) {
	if core.MonthNames[0] != "janvier" || core.MonthNames[11] != "décembre" {
		t.Errorf("unexpected month labels: %v", core.MonthNames)
	}
}
