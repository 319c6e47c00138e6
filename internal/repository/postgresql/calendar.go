package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type weeklyOffRepositoryImpl struct {
	db *database.DB
}

func NewWeeklyOffRepository(db *database.DB) calendar.WeeklyOffRepository {
	return &weeklyOffRepositoryImpl{db: db}
}

const weeklyOffColumns = `id, employee_id, days, effective_date, end_date, created_at`

func scanWeeklyOff(row pgx.Row) (calendar.WeeklyOffAssignment, error) {
	var a calendar.WeeklyOffAssignment
	var days []int16
	if err := row.Scan(&a.ID, &a.EmployeeID, &days, &a.EffectiveDate, &a.EndDate, &a.CreatedAt); err != nil {
		return calendar.WeeklyOffAssignment{}, err
	}
	a.Days = make([]time.Weekday, 0, len(days))
	for _, d := range days {
		a.Days = append(a.Days, time.Weekday(d))
	}
	return a, nil
}

// Create implements calendar.WeeklyOffRepository.
func (w *weeklyOffRepositoryImpl) Create(ctx context.Context, assignment calendar.WeeklyOffAssignment) (calendar.WeeklyOffAssignment, error) {
	q := GetQuerier(ctx, w.db)

	days := make([]int16, 0, len(assignment.Days))
	for _, d := range assignment.Days {
		days = append(days, int16(d))
	}

	query := `
		INSERT INTO weekly_off_assignments (id, employee_id, days, effective_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + weeklyOffColumns

	created, err := scanWeeklyOff(q.QueryRow(ctx, query,
		assignment.ID, assignment.EmployeeID, days, assignment.EffectiveDate, assignment.EndDate,
	))
	if err != nil {
		return calendar.WeeklyOffAssignment{}, fmt.Errorf("failed to insert weekly-off assignment: %w", err)
	}
	return created, nil
}

// GetByEmployeeID implements calendar.WeeklyOffRepository.
func (w *weeklyOffRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]calendar.WeeklyOffAssignment, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT ` + weeklyOffColumns + `
		FROM weekly_off_assignments
		WHERE employee_id = $1
		ORDER BY effective_date
	`
	return w.query(ctx, q, query, employeeID)
}

// GetInRange implements calendar.WeeklyOffRepository.
func (w *weeklyOffRepositoryImpl) GetInRange(ctx context.Context, employeeID string, from, to time.Time) ([]calendar.WeeklyOffAssignment, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT ` + weeklyOffColumns + `
		FROM weekly_off_assignments
		WHERE employee_id = $1
		  AND effective_date <= $3
		  AND (end_date IS NULL OR end_date > $2)
		ORDER BY effective_date
	`
	return w.query(ctx, q, query, employeeID, from, to)
}

func (w *weeklyOffRepositoryImpl) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]calendar.WeeklyOffAssignment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query weekly-off assignments: %w", err)
	}
	defer rows.Close()

	var assignments []calendar.WeeklyOffAssignment
	for rows.Next() {
		a, err := scanWeeklyOff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weekly-off assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// Create implements calendar.HolidayRepository.
func (h *holidayRepositoryImpl) Create(ctx context.Context, holiday calendar.Holiday) (calendar.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		INSERT INTO holidays (date, name, created_at)
		VALUES ($1, $2, NOW())
		RETURNING date, name, created_at
	`
	var created calendar.Holiday
	err := q.QueryRow(ctx, query, holiday.Date, holiday.Name).Scan(&created.Date, &created.Name, &created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return calendar.Holiday{}, calendar.ErrHolidayExists
		}
		return calendar.Holiday{}, fmt.Errorf("failed to insert holiday: %w", err)
	}
	return created, nil
}

// GetInRange implements calendar.HolidayRepository.
func (h *holidayRepositoryImpl) GetInRange(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		SELECT date, name, created_at
		FROM holidays
		WHERE date BETWEEN $1 AND $2
		ORDER BY date
	`
	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var hol calendar.Holiday
		if err := rows.Scan(&hol.Date, &hol.Name, &hol.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, hol)
	}
	return holidays, rows.Err()
}
