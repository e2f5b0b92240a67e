package calendar

import "time"

// Window is an inclusive seven-day span.
type Window struct {
	Start time.Time
	End   time.Time
}

// WeekWindow returns the week containing anchor. Start is the latest weekStart on or
// before anchor and End is six days later.
func WeekWindow(anchor time.Time, weekStart time.Weekday) Window {
	day := DateOf(anchor)
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -back)
	return Window{Start: start, End: start.AddDate(0, 0, 6)}
}

// Days lists the seven dates of the window.
func (w Window) Days() []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Prev is the window seven days earlier.
func (w Window) Prev() Window {
	return Window{Start: w.Start.AddDate(0, 0, -7), End: w.End.AddDate(0, 0, -7)}
}

// Next is the window seven days later.
func (w Window) Next() Window {
	return Window{Start: w.Start.AddDate(0, 0, 7), End: w.End.AddDate(0, 0, 7)}
}

// ShiftWeeks moves anchor by n weeks.
func ShiftWeeks(anchor time.Time, n int) time.Time {
	return DateOf(anchor).AddDate(0, 0, 7*n)
}
