package calendar

import (
	"context"
	"time"
)

type WeeklyOffRepository interface {
	Create(ctx context.Context, assignment WeeklyOffAssignment) (WeeklyOffAssignment, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]WeeklyOffAssignment, error)
	// GetInRange returns assignments of the employee that touch [from, to].
	GetInRange(ctx context.Context, employeeID string, from, to time.Time) ([]WeeklyOffAssignment, error)
}

type HolidayRepository interface {
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	GetInRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
