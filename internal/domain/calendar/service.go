package calendar

import (
	"context"
	"time"
)

type CalendarService interface {
	// Weekly-off
	CreateWeeklyOffAssignment(ctx context.Context, req CreateWeeklyOffAssignmentRequest) (WeeklyOffAssignmentResponse, error)
	ListWeeklyOffAssignments(ctx context.Context, employeeID string) ([]WeeklyOffAssignmentResponse, error)
	IsWeeklyOff(ctx context.Context, employeeID string, date time.Time) (bool, error)

	// Holiday
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context, from, to time.Time) ([]HolidayResponse, error)

	// Resolve builds the day calendar used by attendance classification.
	Resolve(ctx context.Context, employeeID string, from, to time.Time) (DayCalendar, error)
}
