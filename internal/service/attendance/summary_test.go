package attendance

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomMonth classifies every day of a month from randomly generated inputs.
func randomMonth(rng *rand.Rand, year int, month time.Month) []attendance.DayRecord {
	first, last := calendar.MonthRange(year, month)
	offDays := map[time.Weekday]bool{time.Sunday: true}
	if rng.Intn(2) == 0 {
		offDays[time.Saturday] = true
	}

	var records []attendance.DayRecord
	calendar.EachDay(first, last, func(date time.Time) {
		in := attendance.DayInput{
			Date:        date,
			IsWeeklyOff: offDays[date.Weekday()],
			IsHoliday:   rng.Intn(20) == 0,
		}

		switch rng.Intn(8) {
		case 0:
			in.Leave = coverage(1, false, false)
		case 1:
			in.Leave = coverage(0.5, true, false)
		case 2:
			in.Leave = coverage(0, false, false)
		case 3:
			in.Leave = coverage(1, false, true)
		}

		switch rng.Intn(6) {
		case 0, 1, 2:
			in.Punch = &attendance.Punch{CheckIn: timeOn(date, 8+rng.Intn(3), rng.Intn(60))}
		case 3:
			in.Punch = &attendance.Punch{CheckIn: timeOn(date, 10, 0), FromCorrection: true}
		case 4:
			overrides := []attendance.DayStatus{attendance.StatusAbsent, attendance.StatusPresentByCorrection, attendance.StatusLOP, attendance.StatusHalfDayLeave}
			in.Punch = &attendance.Punch{FromCorrection: true, OverrideStatus: statusPtr(overrides[rng.Intn(len(overrides))])}
		}

		records = append(records, Classify("emp-1", in, testPolicy))
	})
	return records
}

func timeOn(date time.Time, hour, minute int) *time.Time {
	t := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	return &t
}

func TestAggregate_IdentityHoldsForEveryMonth(t *testing.T) {
	rng := rand.New(rand.NewSource(20250101))

	for year := 2020; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			records := randomMonth(rng, year, month)

			s, err := Aggregate("emp-1", year, month, records)
			require.NoError(t, err, "%04d-%02d", year, month)

			_, last := calendar.MonthRange(year, month)
			assert.Equal(t, last.Day(), s.TotalDays)
			assert.Equal(t, s.TotalDays, s.TotalWorkingDays+s.WeeklyOff)
			assert.Equal(t, s.TotalWorkingDays,
				s.Present+s.PresentByCorrection+s.Late+s.OnLeave+s.HalfDayLeave+s.CancellationPending+s.LOP+s.Holiday+s.UnaccountedAbsent,
				"%04d-%02d", year, month)
			assert.True(t, s.PaidDays.LessThanOrEqual(decimal.NewFromInt(int64(s.TotalWorkingDays))))
			assert.True(t, s.UnpaidDays.Equal(decimal.NewFromInt(int64(s.LOP+s.UnaccountedAbsent))))
		}
	}
}

func TestAggregate_FullAttendancePaysEveryWorkingDay(t *testing.T) {
	// Setup: February 2025 with Saturday and Sunday off has 20 working days.
	var records []attendance.DayRecord
	first, last := calendar.MonthRange(2025, time.February)
	calendar.EachDay(first, last, func(date time.Time) {
		in := attendance.DayInput{Date: date, IsWeeklyOff: date.Weekday() == time.Saturday || date.Weekday() == time.Sunday}
		if !in.IsWeeklyOff {
			in.Punch = &attendance.Punch{CheckIn: timeOn(date, 9, 30), CheckOut: timeOn(date, 17, 30)}
		}
		records = append(records, Classify("emp-1", in, testPolicy))
	})

	// Act
	s, err := Aggregate("emp-1", 2025, time.February, records)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 28, s.TotalDays)
	assert.Equal(t, 20, s.TotalWorkingDays)
	assert.Equal(t, 8, s.WeeklyOff)
	assert.Equal(t, 20, s.Late)
	assert.Zero(t, s.UnaccountedAbsent)
	assert.True(t, s.PaidDays.Equal(decimal.NewFromInt(20)))
	assert.True(t, s.WorkingHours.Equal(decimal.NewFromInt(160)))
	assert.True(t, s.UnpaidDays.IsZero())
}

func TestAggregate_MixedMonth(t *testing.T) {
	// Setup: March 2025, Sundays off (5 Sundays, 26 working days).
	first, last := calendar.MonthRange(2025, time.March)
	var records []attendance.DayRecord
	calendar.EachDay(first, last, func(date time.Time) {
		in := attendance.DayInput{Date: date, IsWeeklyOff: date.Weekday() == time.Sunday}
		switch date.Day() {
		case 3:
			in.Leave = coverage(1, false, false)
		case 4:
			in.Leave = coverage(0.5, true, false)
		case 5:
			in.Leave = coverage(0, false, false)
		case 6:
			in.IsHoliday = true
		case 7, 8:
		default:
			if !in.IsWeeklyOff {
				in.Punch = &attendance.Punch{CheckIn: timeOn(date, 9, 0)}
			}
		}
		records = append(records, Classify("emp-1", in, testPolicy))
	})

	// Act
	s, err := Aggregate("emp-1", 2025, time.March, records)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 26, s.TotalWorkingDays)
	assert.Equal(t, 1, s.OnLeave)
	assert.Equal(t, 1, s.HalfDayLeave)
	assert.Equal(t, 1, s.LOP)
	assert.Equal(t, 1, s.Holiday)
	assert.Equal(t, 2, s.UnaccountedAbsent)
	assert.Equal(t, 20, s.Present)
	assert.True(t, s.PaidDays.Equal(decimal.NewFromFloat(22.5)), "got %s", s.PaidDays)
	assert.True(t, s.UnpaidDays.Equal(decimal.NewFromInt(3)))
}

func TestAggregate_RejectsIncompleteMonth(t *testing.T) {
	records := randomMonth(rand.New(rand.NewSource(1)), 2025, time.April)

	_, err := Aggregate("emp-1", 2025, time.April, records[:len(records)-1])

	var cerr *attendance.ConsistencyError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "days", cerr.Field)
	assert.Equal(t, 30, cerr.Expected)
}

func TestAggregate_RejectsDuplicateAndForeignDates(t *testing.T) {
	records := randomMonth(rand.New(rand.NewSource(2)), 2025, time.April)

	dup := append(append([]attendance.DayRecord{}, records...), records[0])
	_, err := Aggregate("emp-1", 2025, time.April, dup)
	var cerr *attendance.ConsistencyError
	assert.ErrorAs(t, err, &cerr)

	foreign := append([]attendance.DayRecord{}, records...)
	foreign[0].Date = calendar.NewDate(2025, 5, 1)
	_, err = Aggregate("emp-1", 2025, time.April, foreign)
	assert.ErrorAs(t, err, &cerr)
}

func TestCheckIdentity_ReportsDisagreement(t *testing.T) {
	s := attendance.MonthlySummary{
		EmployeeID:        "emp-1",
		Month:             time.June,
		Year:              2025,
		TotalWorkingDays:  22,
		Present:           20,
		UnaccountedAbsent: 1,
	}

	err := CheckIdentity(s)

	var cerr *attendance.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "unaccounted_absent", cerr.Field)
	assert.Equal(t, 2, cerr.Expected)
	assert.Equal(t, 1, cerr.Actual)
	assert.Contains(t, err.Error(), "2025-06")
}
