package calendar

import (
	"strconv"
	"strings"
	"time"
)

// Week is one row of the month grid.
type Week [7]time.Time

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// PrevMonth returns the month before ym, rolling back into the previous year from January.
func PrevMonth(ym YearMonth) YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// NextMonth returns the month after ym, rolling into the next year from December.
func NextMonth(ym YearMonth) YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// First returns the first day of the month.
func (ym YearMonth) First() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last returns the last day of the month.
func (ym YearMonth) Last() time.Time {
	return time.Date(ym.Year, ym.Month, DaysIn(ym.Year, ym.Month), 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the month.
func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

// ResolveMonth reads year/month query values. Missing, non-numeric or out of range
// values fall back to the month containing today.
func ResolveMonth(yearStr, monthStr string, today time.Time) YearMonth {
	fallback := YearMonth{Year: today.Year(), Month: today.Month()}
	if strings.TrimSpace(yearStr) == "" || strings.TrimSpace(monthStr) == "" {
		return fallback
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil || year < 1 || year > 9999 {
		return fallback
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil || month < 1 || month > 12 {
		return fallback
	}
	return YearMonth{Year: year, Month: time.Month(month)}
}

// MonthGrid lays out ym as full weeks starting on weekStart. The first row is padded
// with the tail of the previous month and the last row with the head of the next one.
func MonthGrid(ym YearMonth, weekStart time.Weekday) []Week {
	first := ym.First()
	last := ym.Last()

	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	start := first.AddDate(0, 0, -lead)

	trail := (int(weekStart) + 6 - int(last.Weekday()) + 7) % 7
	end := last.AddDate(0, 0, trail)

	days := int(end.Sub(start).Hours()/24) + 1
	weeks := make([]Week, 0, days/7)
	for offset := 0; offset < days; offset += 7 {
		var w Week
		for i := range w {
			w[i] = start.AddDate(0, 0, offset+i)
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// GridRange returns the first and last date shown by MonthGrid.
func GridRange(weeks []Week) (time.Time, time.Time) {
	if len(weeks) == 0 {
		return time.Time{}, time.Time{}
	}
	return weeks[0][0], weeks[len(weeks)-1][6]
}
