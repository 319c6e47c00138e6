package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeWeeklyOffRepo struct {
	mu   sync.Mutex
	rows []calendar.WeeklyOffAssignment
}

func (r *fakeWeeklyOffRepo) Create(ctx context.Context, a calendar.WeeklyOffAssignment) (calendar.WeeklyOffAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.CreatedAt = time.Now()
	r.rows = append(r.rows, a)
	return a, nil
}

func (r *fakeWeeklyOffRepo) GetByEmployeeID(ctx context.Context, employeeID string) ([]calendar.WeeklyOffAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []calendar.WeeklyOffAssignment
	for _, a := range r.rows {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeWeeklyOffRepo) GetInRange(ctx context.Context, employeeID string, from, to time.Time) ([]calendar.WeeklyOffAssignment, error) {
	all, _ := r.GetByEmployeeID(ctx, employeeID)
	var out []calendar.WeeklyOffAssignment
	for _, a := range all {
		if a.EffectiveDate.After(to) {
			continue
		}
		if a.EndDate != nil && !a.EndDate.After(from) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type fakeHolidayRepo struct {
	rows map[time.Time]calendar.Holiday
}

func (r *fakeHolidayRepo) Create(ctx context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	if _, ok := r.rows[h.Date]; ok {
		return calendar.Holiday{}, calendar.ErrHolidayExists
	}
	r.rows[h.Date] = h
	return h, nil
}

func (r *fakeHolidayRepo) GetInRange(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	var out []calendar.Holiday
	for d, h := range r.rows {
		if !d.Before(from) && !d.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func newTestCalendarService() (calendar.CalendarService, *fakeWeeklyOffRepo) {
	weeklyOffRepo := &fakeWeeklyOffRepo{}
	holidayRepo := &fakeHolidayRepo{rows: make(map[time.Time]calendar.Holiday)}
	return NewCalendarService(fakeTransactor{}, weeklyOffRepo, holidayRepo), weeklyOffRepo
}

func TestCalendarService_CreateWeeklyOffAssignment_Success(t *testing.T) {
	// Setup
	ctx := context.Background()
	svc, _ := newTestCalendarService()

	// Act
	resp, err := svc.CreateWeeklyOffAssignment(ctx, calendar.CreateWeeklyOffAssignmentRequest{
		EmployeeID:    "emp-1",
		Days:          []int{0, 6, 0},
		EffectiveDate: "2025-01-01",
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, []int{0, 6}, resp.Days)
	assert.Nil(t, resp.EndDate)
}

func TestCalendarService_CreateWeeklyOffAssignment_OverlapRejected(t *testing.T) {
	// Setup
	ctx := context.Background()
	svc, _ := newTestCalendarService()
	end := "2025-07-01"
	_, err := svc.CreateWeeklyOffAssignment(ctx, calendar.CreateWeeklyOffAssignmentRequest{
		EmployeeID: "emp-1", Days: []int{0}, EffectiveDate: "2025-01-01", EndDate: &end,
	})
	require.NoError(t, err)

	// Act
	_, overlapErr := svc.CreateWeeklyOffAssignment(ctx, calendar.CreateWeeklyOffAssignmentRequest{
		EmployeeID: "emp-1", Days: []int{6}, EffectiveDate: "2025-06-01",
	})
	_, adjacentErr := svc.CreateWeeklyOffAssignment(ctx, calendar.CreateWeeklyOffAssignmentRequest{
		EmployeeID: "emp-1", Days: []int{6}, EffectiveDate: "2025-07-01",
	})
	_, otherEmployeeErr := svc.CreateWeeklyOffAssignment(ctx, calendar.CreateWeeklyOffAssignmentRequest{
		EmployeeID: "emp-2", Days: []int{6}, EffectiveDate: "2025-06-01",
	})

	// Assert
	assert.True(t, errors.Is(overlapErr, calendar.ErrOverlappingAssignment))
	assert.NoError(t, adjacentErr)
	assert.NoError(t, otherEmployeeErr)
}

func TestCalendarService_CreateWeeklyOffAssignment_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestCalendarService()

	_, err := svc.CreateWeeklyOffAssignment(ctx, calendar.CreateWeeklyOffAssignmentRequest{
		EmployeeID: "emp-1", Days: []int{7}, EffectiveDate: "2025-13-01",
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "days")
	assert.Contains(t, fields, "effective_date")
	assert.Empty(t, repo.rows)
}

func TestCalendarService_Resolve(t *testing.T) {
	// Setup
	ctx := context.Background()
	svc, _ := newTestCalendarService()
	_, err := svc.CreateWeeklyOffAssignment(ctx, calendar.CreateWeeklyOffAssignmentRequest{
		EmployeeID: "emp-1", Days: []int{0, 6}, EffectiveDate: "2025-01-01",
	})
	require.NoError(t, err)
	_, err = svc.CreateHoliday(ctx, calendar.CreateHolidayRequest{Date: "2025-02-26", Name: "Festival"})
	require.NoError(t, err)

	// Act
	from, to := calendar.MonthRange(2025, time.February)
	dc, err := svc.Resolve(ctx, "emp-1", from, to)

	// Assert
	require.NoError(t, err)
	assert.Len(t, dc.WeeklyOff, 8)
	assert.True(t, dc.IsHoliday(calendar.NewDate(2025, time.February, 26)))

	off, err := svc.IsWeeklyOff(ctx, "emp-1", calendar.NewDate(2025, time.February, 1))
	require.NoError(t, err)
	assert.True(t, off)
}
