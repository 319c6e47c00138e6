package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Attendance domain errors
var (
	ErrPunchNotFound         = errors.New("attendance punch not found")
	ErrCheckOutBeforeCheckIn = errors.New("check-out must be after check-in")
	ErrDayFinalized          = errors.New("attendance day is finalized for payroll")
	ErrInvalidOverrideStatus = errors.New("status cannot be set by correction")
	ErrDayCorrected          = errors.New("attendance day was corrected by an admin")
)

// ConsistencyError reports that day classification and monthly aggregation disagree.
type ConsistencyError struct {
	EmployeeID string
	Month      time.Month
	Year       int
	Field      string
	Expected   int
	Actual     int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("attendance consistency violated for employee %s in %04d-%02d: %s expected %d, got %d",
		e.EmployeeID, e.Year, int(e.Month), e.Field, e.Expected, e.Actual)
}
