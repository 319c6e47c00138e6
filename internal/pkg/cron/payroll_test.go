package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls []payroll.RunPayrollRequest
	err   error
}

func (f *fakeRunner) RunPayroll(_ context.Context, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return payroll.RunPayrollResponse{}, f.err
	}
	return payroll.RunPayrollResponse{
		Month: req.Month,
		Year:  req.Year,
		Failures: []payroll.RunFailureResponse{
			{EmployeeID: "emp-1", Field: "overwrite", Error: payroll.ErrPayslipAlreadyExists.Error()},
		},
	}, nil
}

func TestPayrollJobs_RunMonthlyPayroll_PreviousMonthOnce(t *testing.T) {
	// Setup
	runner := &fakeRunner{}
	jobs := NewPayrollJobs(runner, 1)
	now := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

	// Act
	require.NoError(t, jobs.RunMonthlyPayroll(context.Background(), now))
	require.NoError(t, jobs.RunMonthlyPayroll(context.Background(), now.Add(time.Hour)))

	// Assert
	require.Len(t, runner.calls, 1)
	assert.Equal(t, 12, runner.calls[0].Month)
	assert.Equal(t, 2023, runner.calls[0].Year)
	assert.False(t, runner.calls[0].Overwrite)
}

func TestPayrollJobs_RunMonthlyPayroll_OtherDaySkipped(t *testing.T) {
	// Setup
	runner := &fakeRunner{}
	jobs := NewPayrollJobs(runner, 5)

	// Act
	err := jobs.RunMonthlyPayroll(context.Background(), time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC))

	// Assert
	require.NoError(t, err)
	assert.Empty(t, runner.calls)
}

func TestPayrollJobs_RunMonthlyPayroll_ShortMonthUsesLastDay(t *testing.T) {
	// Setup
	runner := &fakeRunner{}
	jobs := NewPayrollJobs(runner, 31)

	// Act
	err := jobs.RunMonthlyPayroll(context.Background(), time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC))

	// Assert
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, 1, runner.calls[0].Month)
	assert.Equal(t, 2024, runner.calls[0].Year)
}

func TestPayrollJobs_RunMonthlyPayroll_FailureRetried(t *testing.T) {
	// Setup
	runner := &fakeRunner{err: errors.New("payroll setting \"pf.rate\": setting is missing")}
	jobs := NewPayrollJobs(runner, 1)
	now := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	// Act
	firstErr := jobs.RunMonthlyPayroll(context.Background(), now)
	runner.err = nil
	secondErr := jobs.RunMonthlyPayroll(context.Background(), now.Add(time.Hour))

	// Assert
	assert.Error(t, firstErr)
	assert.NoError(t, secondErr)
	assert.Len(t, runner.calls, 2)
}

func TestScheduler_RunOnce_UsesLocation(t *testing.T) {
	// Setup
	loc := time.FixedZone("IST", 5*3600+1800)
	scheduler := NewScheduler(loc)
	var seen time.Time
	scheduler.AddJob("heartbeat", time.Hour, 0, func(ctx context.Context, now time.Time) error {
		seen = now
		return nil
	})

	// Act
	scheduler.RunOnce(context.Background(), time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC))

	// Assert
	assert.Equal(t, loc, seen.Location())
	assert.Equal(t, 1, seen.Day())
	assert.Equal(t, time.April, seen.Month())
}
