// Package calendar holds the date arithmetic behind the planners: civil-date
// helpers, the month grid, the week window and grouping of dated items.
package calendar

import (
	"strings"
	"time"
)

// DateLayout is the ISO date format used in query strings and map keys.
const DateLayout = "2006-01-02"

// DateOf strips the clock from t, returning midnight UTC of the same calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return DateOf(t), true
}

// ParseDateOr parses s and falls back to today when s is empty or malformed.
func ParseDateOr(s string, today time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return DateOf(today)
}

// Key formats t as a YYYY-MM-DD map key.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a civil date by n days.
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month of year.
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeap(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// ParseWeekStart maps "monday"/"sunday" to a weekday. Anything else is Monday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return time.Sunday
	}
	return time.Monday
}
