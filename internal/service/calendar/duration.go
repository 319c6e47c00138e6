package calendar

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var halfDay = decimal.NewFromFloat(0.5)

// Duration returns the inclusive day count of [from, to]. A half-day is only valid on a single date.
func Duration(from, to time.Time, isHalfDay bool) (decimal.Decimal, error) {
	from, to = calendar.Truncate(from), calendar.Truncate(to)

	if to.Before(from) {
		return decimal.Zero, validator.ValidationErrors{{
			Field:   "to_date",
			Message: "to_date must not be before from_date",
		}}
	}

	if isHalfDay {
		if !from.Equal(to) {
			return decimal.Zero, validator.ValidationErrors{{
				Field:   "is_half_day",
				Message: "half-day leave must start and end on the same date",
			}}
		}
		return halfDay, nil
	}

	return decimal.NewFromInt(int64(calendar.DaysBetween(from, to) + 1)), nil
}

// IsWeeklyOff resolves date against the employee's assignments. When several
// assignments cover the date the most recently effective one decides.
func IsWeeklyOff(assignments []calendar.WeeklyOffAssignment, date time.Time) bool {
	date = calendar.Truncate(date)

	var current *calendar.WeeklyOffAssignment
	for i := range assignments {
		a := &assignments[i]
		if !a.Covers(date) {
			continue
		}
		if current == nil ||
			a.EffectiveDate.After(current.EffectiveDate) ||
			(a.EffectiveDate.Equal(current.EffectiveDate) && a.CreatedAt.After(current.CreatedAt)) {
			current = a
		}
	}

	return current != nil && current.HasWeekday(date.Weekday())
}

// BuildDayCalendar resolves every date of [from, to].
func BuildDayCalendar(from, to time.Time, assignments []calendar.WeeklyOffAssignment, holidays []calendar.Holiday) calendar.DayCalendar {
	from, to = calendar.Truncate(from), calendar.Truncate(to)
	dc := calendar.DayCalendar{
		From:      from,
		To:        to,
		WeeklyOff: make(map[time.Time]bool),
		Holidays:  make(map[time.Time]string),
	}

	calendar.EachDay(from, to, func(date time.Time) {
		if IsWeeklyOff(assignments, date) {
			dc.WeeklyOff[date] = true
		}
	})

	for _, h := range holidays {
		date := calendar.Truncate(h.Date)
		if date.Before(from) || date.After(to) {
			continue
		}
		dc.Holidays[date] = h.Name
	}

	return dc
}
