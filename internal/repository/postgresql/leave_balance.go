package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `employee_id, leave_type, current_balance, total_allocated, updated_at`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(&b.EmployeeID, &b.LeaveType, &b.CurrentBalance, &b.TotalAllocated, &b.UpdatedAt)
	return b, err
}

// Get implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, employeeID, leaveType string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveBalanceColumns + ` FROM leave_balances WHERE employee_id = $1 AND leave_type = $2`
	b, err := scanLeaveBalance(q.QueryRow(ctx, query, employeeID, leaveType))
	if err != nil {
		if isNotFound(err) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return b, nil
}

// GetForUpdate implements leave.LeaveBalanceRepository. It must run inside a transaction;
// the row lock is held until that transaction ends.
func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, employeeID, leaveType string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO leave_balances (employee_id, leave_type, current_balance, total_allocated, updated_at)
		VALUES ($1, $2, 0, 0, NOW())
		ON CONFLICT (employee_id, leave_type) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, employeeID, leaveType); err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return leave.LeaveBalance{}, leave.ErrEmployeeNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}

	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type = $2
		FOR UPDATE
	`
	b, err := scanLeaveBalance(q.QueryRow(ctx, query, employeeID, leaveType))
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return b, nil
}

// GetByEmployeeID implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1
		ORDER BY leave_type
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.LeaveBalance
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Upsert implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Upsert(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (employee_id, leave_type, current_balance, total_allocated, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (employee_id, leave_type) DO UPDATE SET
			current_balance = EXCLUDED.current_balance,
			total_allocated = EXCLUDED.total_allocated,
			updated_at = NOW()
		RETURNING ` + leaveBalanceColumns

	saved, err := scanLeaveBalance(q.QueryRow(ctx, query,
		balance.EmployeeID, balance.LeaveType, balance.CurrentBalance, balance.TotalAllocated,
	))
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to save leave balance: %w", err)
	}
	return saved, nil
}

// CountByLeaveType implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) CountByLeaveType(ctx context.Context, leaveType string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_balances WHERE leave_type = $1`, leaveType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leave balances: %w", err)
	}
	return count, nil
}

// DeleteByLeaveType implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) DeleteByLeaveType(ctx context.Context, leaveType string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_balances WHERE leave_type = $1`, leaveType)
	if err != nil {
		return 0, fmt.Errorf("failed to delete leave balances: %w", err)
	}
	return tag.RowsAffected(), nil
}
