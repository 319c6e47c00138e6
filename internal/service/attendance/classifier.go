package attendance

import (
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/shopspring/decimal"
)

var (
	fullDay = decimal.NewFromInt(1)
	halfDay = decimal.NewFromFloat(0.5)
)

// Classify derives the status of one day. Precedence, highest first: admin override,
// paid leave coverage, holiday, weekly-off, punch, unpaid leave coverage, absence.
func Classify(employeeID string, in attendance.DayInput, policy attendance.ShiftPolicy) attendance.DayRecord {
	rec := attendance.DayRecord{
		EmployeeID:   employeeID,
		Date:         calendar.Truncate(in.Date),
		WorkingDay:   !in.IsWeeklyOff,
		PaidFraction: decimal.Zero,
		WorkedHours:  decimal.Zero,
	}
	if in.Punch != nil {
		rec.WorkedHours = decimal.NewFromInt(int64(in.Punch.Worked().Seconds())).Div(decimal.NewFromInt(3600))
	}
	if in.Leave != nil {
		id := in.Leave.ApplicationID
		rec.LeaveApplicationID = &id
	}

	switch {
	case in.Punch != nil && in.Punch.OverrideStatus != nil:
		rec.Status = *in.Punch.OverrideStatus
		rec.PaidFraction = overridePaidFraction(rec.Status)

	case in.Leave != nil && in.Leave.Paid.IsPositive():
		rec.PaidFraction = in.Leave.Paid
		switch {
		case in.Leave.CancellationPending:
			rec.Status = attendance.StatusLeaveCancellationPending
		case in.Leave.HalfDay || in.Leave.Paid.LessThan(fullDay):
			rec.Status = attendance.StatusHalfDayLeave
		default:
			rec.Status = attendance.StatusOnLeave
		}

	case in.IsHoliday:
		rec.Status = attendance.StatusHoliday
		rec.PaidFraction = fullDay

	case in.IsWeeklyOff:
		rec.Status = attendance.StatusWeeklyOff
		rec.PaidFraction = fullDay

	case in.Punch != nil && in.Punch.CheckIn != nil:
		rec.PaidFraction = fullDay
		switch {
		case in.Punch.FromCorrection:
			rec.Status = attendance.StatusPresentByCorrection
		case in.Punch.CheckIn.After(policy.LateThreshold(rec.Date)):
			rec.Status = attendance.StatusLate
		default:
			rec.Status = attendance.StatusPresent
		}

	case in.Leave != nil:
		rec.Status = attendance.StatusLOP

	default:
		rec.Status = attendance.StatusAbsent
	}

	return rec
}

func overridePaidFraction(status attendance.DayStatus) decimal.Decimal {
	switch status {
	case attendance.StatusAbsent, attendance.StatusLOP:
		return decimal.Zero
	case attendance.StatusHalfDayLeave:
		return halfDay
	default:
		return fullDay
	}
}
