package attendance

import (
	"context"
	"time"
)

type PunchRepository interface {
	// Upsert replaces the punch of (employee, date).
	Upsert(ctx context.Context, punch Punch) (Punch, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Punch, error)
	GetInRange(ctx context.Context, employeeID string, from, to time.Time) ([]Punch, error)
}

// FinalizationChecker reports whether a payslip already froze the employee's month.
type FinalizationChecker interface {
	IsPeriodFinalized(ctx context.Context, employeeID string, month, year int) (bool, error)
}
