package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type punchRepositoryImpl struct {
	db *database.DB
}

func NewPunchRepository(db *database.DB) attendance.PunchRepository {
	return &punchRepositoryImpl{db: db}
}

const punchColumns = `id, employee_id, date, check_in, check_out, from_correction, override_status, correction_reason, created_at, updated_at`

func scanPunch(row pgx.Row) (attendance.Punch, error) {
	var p attendance.Punch
	var override *string
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.Date, &p.CheckIn, &p.CheckOut,
		&p.FromCorrection, &override, &p.CorrectionReason,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return attendance.Punch{}, err
	}
	if override != nil {
		status := attendance.DayStatus(*override)
		p.OverrideStatus = &status
	}
	return p, nil
}

// Upsert implements attendance.PunchRepository.
func (p *punchRepositoryImpl) Upsert(ctx context.Context, punch attendance.Punch) (attendance.Punch, error) {
	q := GetQuerier(ctx, p.db)

	var override *string
	if punch.OverrideStatus != nil {
		s := string(*punch.OverrideStatus)
		override = &s
	}

	query := `
		INSERT INTO attendance_punches (
			id, employee_id, date, check_in, check_out,
			from_correction, override_status, correction_reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (employee_id, date) DO UPDATE SET
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			from_correction = EXCLUDED.from_correction,
			override_status = EXCLUDED.override_status,
			correction_reason = EXCLUDED.correction_reason,
			updated_at = NOW()
		RETURNING ` + punchColumns

	saved, err := scanPunch(q.QueryRow(ctx, query,
		punch.ID, punch.EmployeeID, punch.Date, punch.CheckIn, punch.CheckOut,
		punch.FromCorrection, override, punch.CorrectionReason,
	))
	if err != nil {
		return attendance.Punch{}, fmt.Errorf("failed to upsert punch: %w", err)
	}
	return saved, nil
}

// GetByEmployeeAndDate implements attendance.PunchRepository.
func (p *punchRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Punch, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + punchColumns + ` FROM attendance_punches WHERE employee_id = $1 AND date = $2`
	punch, err := scanPunch(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if isNotFound(err) {
			return attendance.Punch{}, attendance.ErrPunchNotFound
		}
		return attendance.Punch{}, fmt.Errorf("failed to get punch: %w", err)
	}
	return punch, nil
}

// GetInRange implements attendance.PunchRepository.
func (p *punchRepositoryImpl) GetInRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Punch, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + punchColumns + `
		FROM attendance_punches
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`
	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query punches: %w", err)
	}
	defer rows.Close()

	var punches []attendance.Punch
	for rows.Next() {
		punch, err := scanPunch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, punch)
	}
	return punches, rows.Err()
}
