package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
)

// PayrollRunner is the part of the payroll service the monthly job drives.
type PayrollRunner interface {
	RunPayroll(ctx context.Context, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error)
}

type PayrollJobs struct {
	runner PayrollRunner
	runDay int

	mu      sync.Mutex
	lastRun string
}

// NewPayrollJobs runs the previous month's payroll on runDay. Days past the end of a
// short month fall back to its last day.
func NewPayrollJobs(runner PayrollRunner, runDay int) *PayrollJobs {
	return &PayrollJobs{
		runner: runner,
		runDay: runDay,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("monthly_payroll_run", 1*time.Hour, 30*time.Minute, j.RunMonthlyPayroll)
}

// RunMonthlyPayroll generates payslips for the month before now without overwriting any.
// It runs at most once per period per process; a rerun only reports conflicts.
func (j *PayrollJobs) RunMonthlyPayroll(ctx context.Context, now time.Time) error {
	if now.Day() != effectiveRunDay(j.runDay, now) {
		return nil
	}

	month, year := previousPeriod(now)
	period := fmt.Sprintf("%04d-%02d", year, month)

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastRun == period {
		return nil
	}

	slog.Info("Cron: Starting monthly payroll run", "month", month, "year", year)

	result, err := j.runner.RunPayroll(ctx, payroll.RunPayrollRequest{
		Month:     month,
		Year:      year,
		Overwrite: false,
	})
	if err != nil {
		return fmt.Errorf("payroll run for %s: %w", period, err)
	}
	j.lastRun = period

	for _, failure := range result.Failures {
		if failure.Field == "overwrite" {
			slog.Debug("Cron: Payslip already generated", "employee_id", failure.EmployeeID, "period", period)
			continue
		}
		slog.Warn("Cron: Payslip not generated",
			"employee_id", failure.EmployeeID,
			"period", period,
			"field", failure.Field,
			"error", failure.Error,
		)
	}

	slog.Info("Cron: Monthly payroll run completed",
		"period", period,
		"generated", len(result.Generated),
		"failed", len(result.Failures),
	)
	return nil
}

func effectiveRunDay(runDay int, now time.Time) int {
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if runDay > last {
		return last
	}
	return runDay
}

func previousPeriod(now time.Time) (int, int) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prev := first.AddDate(0, -1, 0)
	return int(prev.Month()), prev.Year()
}
