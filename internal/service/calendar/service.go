package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/google/uuid"
)

type CalendarServiceImpl struct {
	transactor database.Transactor
	calendar.WeeklyOffRepository
	calendar.HolidayRepository
	locks *keylock.KeyLock
}

func NewCalendarService(
	transactor database.Transactor,
	weeklyOffRepo calendar.WeeklyOffRepository,
	holidayRepo calendar.HolidayRepository,
) calendar.CalendarService {
	return &CalendarServiceImpl{
		transactor:          transactor,
		WeeklyOffRepository: weeklyOffRepo,
		HolidayRepository:   holidayRepo,
		locks:               keylock.New(),
	}
}

// CreateWeeklyOffAssignment implements calendar.CalendarService.
func (s *CalendarServiceImpl) CreateWeeklyOffAssignment(ctx context.Context, req calendar.CreateWeeklyOffAssignmentRequest) (calendar.WeeklyOffAssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.WeeklyOffAssignmentResponse{}, err
	}

	assignment := req.ToEntity()
	id, err := uuid.NewV7()
	if err != nil {
		return calendar.WeeklyOffAssignmentResponse{}, fmt.Errorf("failed to generate assignment id: %w", err)
	}
	assignment.ID = id.String()

	unlock := s.locks.Lock(assignment.EmployeeID)
	defer unlock()

	var created calendar.WeeklyOffAssignment
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.WeeklyOffRepository.GetByEmployeeID(txCtx, assignment.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get weekly-off assignments: %w", err)
		}
		for _, other := range existing {
			if assignment.Overlaps(other) {
				return fmt.Errorf("%w: conflicts with assignment %s", calendar.ErrOverlappingAssignment, other.ID)
			}
		}

		created, err = s.WeeklyOffRepository.Create(txCtx, assignment)
		if err != nil {
			return fmt.Errorf("failed to create weekly-off assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return calendar.WeeklyOffAssignmentResponse{}, err
	}

	slog.Info("Weekly-off assignment created", "employee_id", created.EmployeeID, "assignment_id", created.ID, "effective_date", created.EffectiveDate.Format(calendar.DateLayout))
	return calendar.NewWeeklyOffAssignmentResponse(created), nil
}

// ListWeeklyOffAssignments implements calendar.CalendarService.
func (s *CalendarServiceImpl) ListWeeklyOffAssignments(ctx context.Context, employeeID string) ([]calendar.WeeklyOffAssignmentResponse, error) {
	if validator.IsEmpty(employeeID) {
		return nil, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}

	assignments, err := s.WeeklyOffRepository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly-off assignments: %w", err)
	}

	resp := make([]calendar.WeeklyOffAssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, calendar.NewWeeklyOffAssignmentResponse(a))
	}
	return resp, nil
}

// IsWeeklyOff implements calendar.CalendarService.
func (s *CalendarServiceImpl) IsWeeklyOff(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	date = calendar.Truncate(date)
	assignments, err := s.WeeklyOffRepository.GetInRange(ctx, employeeID, date, date)
	if err != nil {
		return false, fmt.Errorf("failed to get weekly-off assignments: %w", err)
	}
	return IsWeeklyOff(assignments, date), nil
}

// CreateHoliday implements calendar.CalendarService.
func (s *CalendarServiceImpl) CreateHoliday(ctx context.Context, req calendar.CreateHolidayRequest) (calendar.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.HolidayResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)
	created, err := s.HolidayRepository.Create(ctx, calendar.Holiday{Date: date, Name: req.Name})
	if err != nil {
		return calendar.HolidayResponse{}, err
	}

	slog.Info("Holiday created", "date", req.Date, "name", req.Name)
	return calendar.HolidayResponse{Date: created.Date.Format(calendar.DateLayout), Name: created.Name}, nil
}

// ListHolidays implements calendar.CalendarService.
func (s *CalendarServiceImpl) ListHolidays(ctx context.Context, from, to time.Time) ([]calendar.HolidayResponse, error) {
	if to.Before(from) {
		return nil, calendar.ErrInvalidDateRange
	}

	holidays, err := s.HolidayRepository.GetInRange(ctx, calendar.Truncate(from), calendar.Truncate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}

	resp := make([]calendar.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, calendar.HolidayResponse{Date: h.Date.Format(calendar.DateLayout), Name: h.Name})
	}
	return resp, nil
}

// Resolve implements calendar.CalendarService.
func (s *CalendarServiceImpl) Resolve(ctx context.Context, employeeID string, from, to time.Time) (calendar.DayCalendar, error) {
	from, to = calendar.Truncate(from), calendar.Truncate(to)
	if to.Before(from) {
		return calendar.DayCalendar{}, calendar.ErrInvalidDateRange
	}

	assignments, err := s.WeeklyOffRepository.GetInRange(ctx, employeeID, from, to)
	if err != nil {
		return calendar.DayCalendar{}, fmt.Errorf("failed to get weekly-off assignments: %w", err)
	}

	holidays, err := s.HolidayRepository.GetInRange(ctx, from, to)
	if err != nil {
		return calendar.DayCalendar{}, fmt.Errorf("failed to get holidays: %w", err)
	}

	return BuildDayCalendar(from, to, assignments, holidays), nil
}
