package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayStatus is the canonical classification of one calendar day.
type DayStatus string

const (
	StatusPresent                  DayStatus = "PRESENT"
	StatusLate                     DayStatus = "LATE"
	StatusAbsent                   DayStatus = "ABSENT"
	StatusOnLeave                  DayStatus = "ON_LEAVE"
	StatusHalfDayLeave             DayStatus = "HALF_DAY_LEAVE"
	StatusHoliday                  DayStatus = "HOLIDAY"
	StatusWeeklyOff                DayStatus = "WEEKLY_OFF"
	StatusLOP                      DayStatus = "LOP"
	StatusPresentByCorrection      DayStatus = "PRESENT_BY_CORRECTION"
	StatusLeaveCancellationPending DayStatus = "LEAVE_CANCELLATION_PENDING"
)

func (s DayStatus) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusOnLeave, StatusHalfDayLeave, StatusHoliday,
		StatusWeeklyOff, StatusLOP, StatusPresentByCorrection, StatusLeaveCancellationPending:
		return true
	}
	return false
}

// IsOverridable lists the statuses an admin correction may force onto a day.
// WEEKLY_OFF comes from the calendar and LEAVE_CANCELLATION_PENDING from the leave workflow.
func (s DayStatus) IsOverridable() bool {
	return s.IsValid() && s != StatusWeeklyOff && s != StatusLeaveCancellationPending
}

// Punch is the attendance record of one employee on one date.
type Punch struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	CheckIn          *time.Time
	CheckOut         *time.Time
	FromCorrection   bool
	OverrideStatus   *DayStatus
	CorrectionReason *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Worked returns check-out minus check-in, zero when either side is missing.
func (p Punch) Worked() time.Duration {
	if p.CheckIn == nil || p.CheckOut == nil || !p.CheckOut.After(*p.CheckIn) {
		return 0
	}
	return p.CheckOut.Sub(*p.CheckIn)
}

// LeaveCoverage is how an approved or cancellation-pending application covers one date.
// Paid is the paid portion of the date: up to 1 for a full day, up to 0.5 for a half-day.
type LeaveCoverage struct {
	ApplicationID       string
	LeaveType           string
	HalfDay             bool
	CancellationPending bool
	Paid                decimal.Decimal
}

// ShiftPolicy decides LATE. Start and Grace are offsets from local midnight in Location.
type ShiftPolicy struct {
	Start    time.Duration
	Grace    time.Duration
	Location *time.Location
}

// LateThreshold is the last instant on date that still counts as on time.
func (p ShiftPolicy) LateThreshold(date time.Time) time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(p.Start + p.Grace)
}

// DayInput is everything the classifier needs for one date.
type DayInput struct {
	Date        time.Time
	Punch       *Punch
	Leave       *LeaveCoverage
	IsHoliday   bool
	IsWeeklyOff bool
}

type DayRecord struct {
	EmployeeID         string
	Date               time.Time
	Status             DayStatus
	WorkingDay         bool
	PaidFraction       decimal.Decimal
	WorkedHours        decimal.Decimal
	LeaveApplicationID *string
}

// MonthlySummary is the per-employee fold of one month of day records.
// Status counts cover working days only; weekly-off dates are counted in WeeklyOff.
type MonthlySummary struct {
	EmployeeID string
	Month      time.Month
	Year       int

	TotalDays        int
	TotalWorkingDays int

	Present             int
	PresentByCorrection int
	Late                int
	OnLeave             int
	HalfDayLeave        int
	CancellationPending int
	LOP                 int
	Holiday             int
	WeeklyOff           int
	Absent              int

	UnaccountedAbsent int
	WorkingHours      decimal.Decimal
	PaidDays          decimal.Decimal
	UnpaidDays        decimal.Decimal
}

// AccountedWorkingDays is every working day that has a punch, leave coverage, correction or holiday.
func (s MonthlySummary) AccountedWorkingDays() int {
	return s.Present + s.PresentByCorrection + s.Late + s.OnLeave + s.CancellationPending + s.HalfDayLeave + s.LOP + s.Holiday
}
