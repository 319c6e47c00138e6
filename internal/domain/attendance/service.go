package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	RecordPunch(ctx context.Context, req RecordPunchRequest) (PunchResponse, error)
	ApplyCorrection(ctx context.Context, req ApplyCorrectionRequest) (PunchResponse, error)
	DailyStatus(ctx context.Context, employeeID string, from, to time.Time) ([]DayRecord, error)
	MonthlySummary(ctx context.Context, employeeID string, year int, month time.Month) (MonthlySummary, error)
}

// LeaveCoverageProvider is the leave workflow as seen from attendance.
type LeaveCoverageProvider interface {
	// CoverageInRange maps each covered date in [from, to] to its approved or cancellation-pending leave.
	CoverageInRange(ctx context.Context, employeeID string, from, to time.Time) (map[time.Time]LeaveCoverage, error)
	// OverrideByCorrection supersedes active leave on date after an admin correction.
	OverrideByCorrection(ctx context.Context, employeeID string, date time.Time, actorID string) error
}
