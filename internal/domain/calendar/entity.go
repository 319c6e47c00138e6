package calendar

import (
	"time"
)

// Calendar dates are represented as time.Time values at midnight UTC.
// Instants are converted with DateOf before any day arithmetic.

const DateLayout = "2006-01-02"

// NewDate builds a calendar date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the calendar date of instant as observed in loc.
func DateOf(instant time.Time, loc *time.Location) time.Time {
	local := instant.In(loc)
	return NewDate(local.Year(), local.Month(), local.Day())
}

// Truncate drops any time-of-day and zone from an already date-like value.
func Truncate(t time.Time) time.Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to time.Time) int {
	return int(Truncate(to).Sub(Truncate(from)).Hours() / 24)
}

// MonthRange returns the first and last date of a month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := NewDate(year, month, 1)
	return first, first.AddDate(0, 1, -1)
}

// EachDay calls fn for every date in [from, to].
func EachDay(from, to time.Time, fn func(date time.Time)) {
	for d := Truncate(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// WeeklyOffAssignment applies to [EffectiveDate, EndDate); a nil EndDate is open ended.
type WeeklyOffAssignment struct {
	ID            string
	EmployeeID    string
	Days          []time.Weekday
	EffectiveDate time.Time
	EndDate       *time.Time
	CreatedAt     time.Time
}

func (a WeeklyOffAssignment) Covers(date time.Time) bool {
	if date.Before(a.EffectiveDate) {
		return false
	}
	return a.EndDate == nil || date.Before(*a.EndDate)
}

func (a WeeklyOffAssignment) HasWeekday(wd time.Weekday) bool {
	for _, d := range a.Days {
		if d == wd {
			return true
		}
	}
	return false
}

// Overlaps reports whether the two date ranges share at least one day.
func (a WeeklyOffAssignment) Overlaps(b WeeklyOffAssignment) bool {
	aStartsBeforeBEnds := b.EndDate == nil || a.EffectiveDate.Before(*b.EndDate)
	bStartsBeforeAEnds := a.EndDate == nil || b.EffectiveDate.Before(*a.EndDate)
	return aStartsBeforeBEnds && bStartsBeforeAEnds
}

type Holiday struct {
	Date      time.Time
	Name      string
	CreatedAt time.Time
}

// DayCalendar is the resolved weekly-off and holiday calendar of one employee over a date range.
type DayCalendar struct {
	From      time.Time
	To        time.Time
	WeeklyOff map[time.Time]bool
	Holidays  map[time.Time]string
}

func (c DayCalendar) IsWeeklyOff(date time.Time) bool {
	return c.WeeklyOff[Truncate(date)]
}

func (c DayCalendar) IsHoliday(date time.Time) bool {
	_, ok := c.Holidays[Truncate(date)]
	return ok
}
