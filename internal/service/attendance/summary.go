package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/shopspring/decimal"
)

// Aggregate folds one month of classified days. The records must cover every date of the month exactly once.
func Aggregate(employeeID string, year int, month time.Month, records []attendance.DayRecord) (attendance.MonthlySummary, error) {
	first, last := calendar.MonthRange(year, month)
	s := attendance.MonthlySummary{
		EmployeeID:   employeeID,
		Month:        month,
		Year:         year,
		TotalDays:    last.Day(),
		WorkingHours: decimal.Zero,
		PaidDays:     decimal.Zero,
		UnpaidDays:   decimal.Zero,
	}

	seen := make(map[time.Time]bool, len(records))
	for _, r := range records {
		date := calendar.Truncate(r.Date)
		if date.Before(first) || date.After(last) || seen[date] {
			return attendance.MonthlySummary{}, &attendance.ConsistencyError{
				EmployeeID: employeeID, Month: month, Year: year,
				Field: "days", Expected: s.TotalDays, Actual: len(records),
			}
		}
		seen[date] = true

		s.WorkingHours = s.WorkingHours.Add(r.WorkedHours)

		if !r.WorkingDay {
			s.WeeklyOff++
			continue
		}
		s.TotalWorkingDays++

		switch r.Status {
		case attendance.StatusPresent:
			s.Present++
		case attendance.StatusPresentByCorrection:
			s.PresentByCorrection++
		case attendance.StatusLate:
			s.Late++
		case attendance.StatusOnLeave:
			s.OnLeave++
		case attendance.StatusHalfDayLeave:
			s.HalfDayLeave++
		case attendance.StatusLeaveCancellationPending:
			s.CancellationPending++
		case attendance.StatusLOP:
			s.LOP++
		case attendance.StatusHoliday:
			s.Holiday++
		case attendance.StatusAbsent:
			s.Absent++
		}
		s.PaidDays = s.PaidDays.Add(r.PaidFraction)
	}

	if len(seen) != s.TotalDays {
		return attendance.MonthlySummary{}, &attendance.ConsistencyError{
			EmployeeID: employeeID, Month: month, Year: year,
			Field: "days", Expected: s.TotalDays, Actual: len(seen),
		}
	}

	s.UnaccountedAbsent = s.Absent
	if err := CheckIdentity(s); err != nil {
		return attendance.MonthlySummary{}, err
	}

	s.UnpaidDays = decimal.NewFromInt(int64(s.LOP + s.UnaccountedAbsent))
	return s, nil
}

// CheckIdentity verifies unaccountedAbsent == totalWorkingDays - accounted working days.
func CheckIdentity(s attendance.MonthlySummary) error {
	expected := s.TotalWorkingDays - s.AccountedWorkingDays()
	if s.UnaccountedAbsent != expected {
		return &attendance.ConsistencyError{
			EmployeeID: s.EmployeeID,
			Month:      s.Month,
			Year:       s.Year,
			Field:      "unaccounted_absent",
			Expected:   expected,
			Actual:     s.UnaccountedAbsent,
		}
	}
	return nil
}
