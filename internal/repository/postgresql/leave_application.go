package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.LeaveApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

const leaveApplicationColumns = `
	id, employee_id, leave_type, from_date, to_date, is_half_day, reason, status,
	admin_comment, paid_days, lop_days, decided_by, decided_at, created_at, updated_at`

func scanLeaveApplication(row pgx.Row) (leave.LeaveApplication, error) {
	var a leave.LeaveApplication
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.LeaveType, &a.FromDate, &a.ToDate, &a.IsHalfDay, &a.Reason, &a.Status,
		&a.AdminComment, &a.PaidDays, &a.LOPDays, &a.DecidedBy, &a.DecidedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *leaveApplicationRepositoryImpl) queryApplications(ctx context.Context, query string, args ...interface{}) ([]leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query leave applications: %w", err)
	}
	defer rows.Close()

	var applications []leave.LeaveApplication
	for rows.Next() {
		a, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		applications = append(applications, a)
	}
	return applications, rows.Err()
}

// Create implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, application leave.LeaveApplication) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_applications (
			id, employee_id, leave_type, from_date, to_date, is_half_day, reason, status,
			admin_comment, paid_days, lop_days, decided_by, decided_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING ` + leaveApplicationColumns

	created, err := scanLeaveApplication(q.QueryRow(ctx, query,
		application.ID, application.EmployeeID, application.LeaveType, application.FromDate, application.ToDate,
		application.IsHalfDay, application.Reason, application.Status,
		application.AdminComment, application.PaidDays, application.LOPDays, application.DecidedBy, application.DecidedAt,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return leave.LeaveApplication{}, leave.ErrEmployeeNotFound
		}
		return leave.LeaveApplication{}, fmt.Errorf("failed to insert leave application: %w", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveApplication, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *leaveApplicationRepositoryImpl) getByID(ctx context.Context, id, lock string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveApplicationColumns + ` FROM leave_applications WHERE id = $1 ` + lock
	a, err := scanLeaveApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return leave.LeaveApplication{}, leave.ErrApplicationNotFound
		}
		return leave.LeaveApplication{}, fmt.Errorf("failed to get leave application %s: %w", id, err)
	}
	return a, nil
}

// GetByEmployeeID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string, filter leave.ApplicationFilter) ([]leave.LeaveApplication, error) {
	whereClause := "WHERE employee_id = $1"
	args := []interface{}{employeeID}
	argIndex := 2

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if filter.From != nil {
		whereClause += fmt.Sprintf(" AND to_date >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		whereClause += fmt.Sprintf(" AND from_date <= $%d", argIndex)
		args = append(args, *filter.To)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_applications
		%s
		ORDER BY from_date DESC, created_at DESC
	`, leaveApplicationColumns, whereClause)

	return r.queryApplications(ctx, query, args...)
}

// GetInRange implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetInRange(ctx context.Context, employeeID string, from, to time.Time, statuses []leave.ApplicationStatus) ([]leave.LeaveApplication, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}

	query := `
		SELECT ` + leaveApplicationColumns + `
		FROM leave_applications
		WHERE employee_id = $1
		  AND from_date <= $3
		  AND to_date >= $2
		  AND status = ANY($4)
		ORDER BY from_date
	`
	return r.queryApplications(ctx, query, employeeID, from, to, names)
}

// Update implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Update(ctx context.Context, application leave.LeaveApplication) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications
		SET status = $1, admin_comment = $2, paid_days = $3, lop_days = $4,
			decided_by = $5, decided_at = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := q.Exec(ctx, query,
		application.Status, application.AdminComment, application.PaidDays, application.LOPDays,
		application.DecidedBy, application.DecidedAt, application.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave application %s: %w", application.ID, err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrApplicationNotFound
	}
	return nil
}

// CountActiveByLeaveType implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) CountActiveByLeaveType(ctx context.Context, leaveType string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	names := make([]string, 0, len(leave.ActiveStatuses))
	for _, s := range leave.ActiveStatuses {
		names = append(names, string(s))
	}

	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_applications WHERE leave_type = $1 AND status = ANY($2)`, leaveType, names).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active leave applications: %w", err)
	}
	return count, nil
}
