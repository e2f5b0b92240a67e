package services

import (
	"time"

	"github.com/riverkeep/river-ops/internal/calendar"
)

// Clock supplies the current time. Tests pin it.
type Clock func() time.Time

// Calendar carries the site-wide date settings shared by the planners and
// the section pages.
type Calendar struct {
	Now       Clock
	Location  *time.Location
	WeekStart time.Weekday
}

// NewCalendar returns a Calendar on the wall clock.
func NewCalendar(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Now: time.Now, Location: loc, WeekStart: weekStart}
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today is the current civil date in the site's timezone.
func (c Calendar) Today() time.Time {
	return calendar.Today(c.now(), c.Location)
}
