package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/google/uuid"
)

// maxRangeDays bounds DailyStatus queries.
const maxRangeDays = 366

type AttendanceServiceImpl struct {
	transactor database.Transactor
	attendance.PunchRepository
	attendance.FinalizationChecker
	calendarService calendar.CalendarService
	leaves          attendance.LeaveCoverageProvider
	policy          attendance.ShiftPolicy
}

func NewAttendanceService(
	transactor database.Transactor,
	punchRepository attendance.PunchRepository,
	finalizationChecker attendance.FinalizationChecker,
	calendarService calendar.CalendarService,
	leaves attendance.LeaveCoverageProvider,
	policy attendance.ShiftPolicy,
) attendance.AttendanceService {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &AttendanceServiceImpl{
		transactor:          transactor,
		PunchRepository:     punchRepository,
		FinalizationChecker: finalizationChecker,
		calendarService:     calendarService,
		leaves:              leaves,
		policy:              policy,
	}
}

// RecordPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordPunch(ctx context.Context, req attendance.RecordPunchRequest) (attendance.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PunchResponse{}, err
	}

	punch, err := a.buildPunch(req.EmployeeID, req.Date, req.CheckIn, req.CheckOut)
	if err != nil {
		return attendance.PunchResponse{}, err
	}
	if err := a.ensureOpen(ctx, punch.EmployeeID, punch.Date); err != nil {
		return attendance.PunchResponse{}, err
	}

	var saved attendance.Punch
	err = a.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := a.PunchRepository.GetByEmployeeAndDate(txCtx, punch.EmployeeID, punch.Date)
		switch {
		case err == nil:
			if existing.FromCorrection || existing.OverrideStatus != nil {
				return attendance.ErrDayCorrected
			}
			punch.ID = existing.ID
			punch.CreatedAt = existing.CreatedAt
			if punch.CheckIn == nil {
				punch.CheckIn = existing.CheckIn
			}
			if punch.CheckOut == nil {
				punch.CheckOut = existing.CheckOut
			}
		case !errors.Is(err, attendance.ErrPunchNotFound):
			return fmt.Errorf("failed to get punch: %w", err)
		}

		if punch.CheckIn == nil {
			return validator.ValidationErrors{{Field: "check_out", Message: "check_out requires a recorded check_in"}}
		}
		if punch.CheckOut != nil && !punch.CheckOut.After(*punch.CheckIn) {
			return validator.ValidationErrors{{Field: "check_out", Message: attendance.ErrCheckOutBeforeCheckIn.Error()}}
		}

		saved, err = a.PunchRepository.Upsert(txCtx, punch)
		if err != nil {
			return fmt.Errorf("failed to save punch: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	slog.Info("Attendance punch recorded", "employee_id", saved.EmployeeID, "date", saved.Date.Format(calendar.DateLayout))
	return attendance.NewPunchResponse(saved), nil
}

// ApplyCorrection implements attendance.AttendanceService.
// Active leave on the corrected date is superseded in the same transaction.
func (a *AttendanceServiceImpl) ApplyCorrection(ctx context.Context, req attendance.ApplyCorrectionRequest) (attendance.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PunchResponse{}, err
	}

	punch, err := a.buildPunch(req.EmployeeID, req.Date, req.CheckIn, req.CheckOut)
	if err != nil {
		return attendance.PunchResponse{}, err
	}
	punch.FromCorrection = true
	reason := req.Reason
	punch.CorrectionReason = &reason
	if req.OverrideStatus != nil {
		status := attendance.DayStatus(*req.OverrideStatus)
		punch.OverrideStatus = &status
	}

	if err := a.ensureOpen(ctx, punch.EmployeeID, punch.Date); err != nil {
		return attendance.PunchResponse{}, err
	}

	var saved attendance.Punch
	err = a.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.leaves.OverrideByCorrection(txCtx, punch.EmployeeID, punch.Date, req.ActorID); err != nil {
			return err
		}

		existing, err := a.PunchRepository.GetByEmployeeAndDate(txCtx, punch.EmployeeID, punch.Date)
		switch {
		case err == nil:
			punch.ID = existing.ID
			punch.CreatedAt = existing.CreatedAt
		case !errors.Is(err, attendance.ErrPunchNotFound):
			return fmt.Errorf("failed to get punch: %w", err)
		}

		saved, err = a.PunchRepository.Upsert(txCtx, punch)
		if err != nil {
			return fmt.Errorf("failed to save correction: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	slog.Info("Attendance correction applied",
		"employee_id", saved.EmployeeID,
		"date", saved.Date.Format(calendar.DateLayout),
		"has_override", saved.OverrideStatus != nil,
		"actor_id", req.ActorID,
	)
	return attendance.NewPunchResponse(saved), nil
}

// DailyStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DailyStatus(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.DayRecord, error) {
	from, to = calendar.Truncate(from), calendar.Truncate(to)
	if err := validateRange(employeeID, from, to); err != nil {
		return nil, err
	}

	days, err := a.calendarService.Resolve(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve calendar: %w", err)
	}

	punches, err := a.PunchRepository.GetInRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get punches: %w", err)
	}
	byDate := make(map[time.Time]*attendance.Punch, len(punches))
	for i := range punches {
		byDate[calendar.Truncate(punches[i].Date)] = &punches[i]
	}

	coverage, err := a.leaves.CoverageInRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}

	records := make([]attendance.DayRecord, 0, calendar.DaysBetween(from, to)+1)
	calendar.EachDay(from, to, func(date time.Time) {
		in := attendance.DayInput{
			Date:        date,
			Punch:       byDate[date],
			IsHoliday:   days.IsHoliday(date),
			IsWeeklyOff: days.IsWeeklyOff(date),
		}
		if cov, ok := coverage[date]; ok {
			in.Leave = &cov
		}
		records = append(records, Classify(employeeID, in, a.policy))
	})
	return records, nil
}

// MonthlySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MonthlySummary(ctx context.Context, employeeID string, year int, month time.Month) (attendance.MonthlySummary, error) {
	if !validator.IsValidPeriod(int(month), year) {
		return attendance.MonthlySummary{}, validator.ValidationErrors{{Field: "month", Message: "month and year must form a valid period"}}
	}

	first, last := calendar.MonthRange(year, month)
	records, err := a.DailyStatus(ctx, employeeID, first, last)
	if err != nil {
		return attendance.MonthlySummary{}, err
	}

	summary, err := Aggregate(employeeID, year, month, records)
	if err != nil {
		slog.Error("Attendance summary failed consistency check", "employee_id", employeeID, "year", year, "month", int(month), "error", err)
		return attendance.MonthlySummary{}, err
	}
	return summary, nil
}

// buildPunch normalizes instants to UTC and checks that check-in falls on date in the reference zone.
func (a *AttendanceServiceImpl) buildPunch(employeeID, dateStr string, checkIn, checkOut *string) (attendance.Punch, error) {
	date, _ := validator.IsValidDate(dateStr)
	now := time.Now()
	punch := attendance.Punch{
		EmployeeID: employeeID,
		Date:       calendar.Truncate(date),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if checkIn != nil {
		in, _ := validator.IsValidDateTime(*checkIn)
		if !calendar.DateOf(in, a.policy.Location).Equal(punch.Date) {
			return attendance.Punch{}, validator.ValidationErrors{{
				Field:   "check_in",
				Message: "check_in must fall on date in the reference timezone",
			}}
		}
		in = in.UTC()
		punch.CheckIn = &in
	}
	if checkOut != nil {
		out, _ := validator.IsValidDateTime(*checkOut)
		out = out.UTC()
		punch.CheckOut = &out
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Punch{}, fmt.Errorf("failed to generate punch id: %w", err)
	}
	punch.ID = id.String()
	return punch, nil
}

// ensureOpen rejects changes to a day whose month already has a payslip.
func (a *AttendanceServiceImpl) ensureOpen(ctx context.Context, employeeID string, date time.Time) error {
	finalized, err := a.FinalizationChecker.IsPeriodFinalized(ctx, employeeID, int(date.Month()), date.Year())
	if err != nil {
		return fmt.Errorf("failed to check payroll finalization: %w", err)
	}
	if finalized {
		return fmt.Errorf("%w: %s", attendance.ErrDayFinalized, date.Format(calendar.DateLayout))
	}
	return nil
}

func validateRange(employeeID string, from, to time.Time) error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be before from"})
	} else if calendar.DaysBetween(from, to) >= maxRangeDays {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "range must not exceed 366 days"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
