package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testPolicy = attendance.ShiftPolicy{
	Start:    9 * time.Hour,
	Grace:    10 * time.Minute,
	Location: time.UTC,
}

var testDate = calendar.NewDate(2025, 3, 12)

func at(hour, minute int) *time.Time {
	t := time.Date(2025, 3, 12, hour, minute, 0, 0, time.UTC)
	return &t
}

func statusPtr(s attendance.DayStatus) *attendance.DayStatus {
	return &s
}

func coverage(paid float64, halfDay, cancelPending bool) *attendance.LeaveCoverage {
	return &attendance.LeaveCoverage{
		ApplicationID:       "app-1",
		LeaveType:           "Annual",
		HalfDay:             halfDay,
		CancellationPending: cancelPending,
		Paid:                decimal.NewFromFloat(paid),
	}
}

func TestClassify_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		in     attendance.DayInput
		status attendance.DayStatus
		paid   float64
	}{
		{
			name:   "override beats paid leave",
			in:     attendance.DayInput{Punch: &attendance.Punch{FromCorrection: true, OverrideStatus: statusPtr(attendance.StatusAbsent)}, Leave: coverage(1, false, false)},
			status: attendance.StatusAbsent,
			paid:   0,
		},
		{
			name:   "override present on weekly-off",
			in:     attendance.DayInput{Punch: &attendance.Punch{OverrideStatus: statusPtr(attendance.StatusPresentByCorrection)}, IsWeeklyOff: true},
			status: attendance.StatusPresentByCorrection,
			paid:   1,
		},
		{
			name:   "paid leave beats holiday and punch",
			in:     attendance.DayInput{Punch: &attendance.Punch{CheckIn: at(9, 0)}, Leave: coverage(1, false, false), IsHoliday: true},
			status: attendance.StatusOnLeave,
			paid:   1,
		},
		{
			name:   "half-day leave",
			in:     attendance.DayInput{Leave: coverage(0.5, true, false)},
			status: attendance.StatusHalfDayLeave,
			paid:   0.5,
		},
		{
			name:   "partially paid full day reads as half-day leave",
			in:     attendance.DayInput{Leave: coverage(0.5, false, false)},
			status: attendance.StatusHalfDayLeave,
			paid:   0.5,
		},
		{
			name:   "cancellation pending never reverts to absent",
			in:     attendance.DayInput{Leave: coverage(1, false, true)},
			status: attendance.StatusLeaveCancellationPending,
			paid:   1,
		},
		{
			name:   "holiday beats weekly-off",
			in:     attendance.DayInput{IsHoliday: true, IsWeeklyOff: true},
			status: attendance.StatusHoliday,
			paid:   1,
		},
		{
			name:   "holiday beats punch",
			in:     attendance.DayInput{IsHoliday: true, Punch: &attendance.Punch{CheckIn: at(9, 0)}},
			status: attendance.StatusHoliday,
			paid:   1,
		},
		{
			name:   "weekly-off beats punch",
			in:     attendance.DayInput{IsWeeklyOff: true, Punch: &attendance.Punch{CheckIn: at(9, 0)}},
			status: attendance.StatusWeeklyOff,
			paid:   1,
		},
		{
			name:   "check-in at grace boundary is on time",
			in:     attendance.DayInput{Punch: &attendance.Punch{CheckIn: at(9, 10)}},
			status: attendance.StatusPresent,
			paid:   1,
		},
		{
			name:   "check-in after grace is late",
			in:     attendance.DayInput{Punch: &attendance.Punch{CheckIn: at(9, 11)}},
			status: attendance.StatusLate,
			paid:   1,
		},
		{
			name:   "corrected punch",
			in:     attendance.DayInput{Punch: &attendance.Punch{CheckIn: at(11, 0), FromCorrection: true}},
			status: attendance.StatusPresentByCorrection,
			paid:   1,
		},
		{
			name:   "punch beats unpaid leave",
			in:     attendance.DayInput{Punch: &attendance.Punch{CheckIn: at(8, 55)}, Leave: coverage(0, false, false)},
			status: attendance.StatusPresent,
			paid:   1,
		},
		{
			name:   "unpaid leave is lop",
			in:     attendance.DayInput{Leave: coverage(0, false, false)},
			status: attendance.StatusLOP,
			paid:   0,
		},
		{
			name:   "punch without check-in is absent",
			in:     attendance.DayInput{Punch: &attendance.Punch{}},
			status: attendance.StatusAbsent,
			paid:   0,
		},
		{
			name:   "nothing is absent",
			in:     attendance.DayInput{},
			status: attendance.StatusAbsent,
			paid:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Date = testDate

			rec := Classify("emp-1", in, testPolicy)

			assert.Equal(t, tt.status, rec.Status)
			assert.True(t, rec.PaidFraction.Equal(decimal.NewFromFloat(tt.paid)), "paid fraction: got %s", rec.PaidFraction)
			assert.Equal(t, !in.IsWeeklyOff, rec.WorkingDay)
		})
	}
}

func TestClassify_LateUsesReferenceZone(t *testing.T) {
	// Setup
	jakarta := time.FixedZone("WIB", 7*3600)
	policy := attendance.ShiftPolicy{Start: 9 * time.Hour, Grace: 0, Location: jakarta}
	// 02:30 UTC is 09:30 in UTC+7.
	checkIn := time.Date(2025, 3, 12, 2, 30, 0, 0, time.UTC)

	// Act
	rec := Classify("emp-1", attendance.DayInput{Date: testDate, Punch: &attendance.Punch{CheckIn: &checkIn}}, policy)

	// Assert
	assert.Equal(t, attendance.StatusLate, rec.Status)
}

func TestClassify_WorkedHours(t *testing.T) {
	rec := Classify("emp-1", attendance.DayInput{
		Date:  testDate,
		Punch: &attendance.Punch{CheckIn: at(9, 0), CheckOut: at(17, 30)},
	}, testPolicy)

	assert.True(t, rec.WorkedHours.Equal(decimal.NewFromFloat(8.5)), "got %s", rec.WorkedHours)

	rec = Classify("emp-1", attendance.DayInput{Date: testDate, Punch: &attendance.Punch{CheckIn: at(9, 0)}}, testPolicy)
	assert.True(t, rec.WorkedHours.IsZero())
}

func TestClassify_LeaveApplicationLinked(t *testing.T) {
	rec := Classify("emp-1", attendance.DayInput{Date: testDate, Leave: coverage(1, false, false)}, testPolicy)

	if assert.NotNil(t, rec.LeaveApplicationID) {
		assert.Equal(t, "app-1", *rec.LeaveApplicationID)
	}
}
