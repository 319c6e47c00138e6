package leave

import (
	"context"
	"time"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByName(ctx context.Context, name string) (LeaveType, error)
	List(ctx context.Context) ([]LeaveType, error)
	Delete(ctx context.Context, name string) error
}

// LeaveBalanceRepository - interface for leave_balances table
type LeaveBalanceRepository interface {
	Get(ctx context.Context, employeeID, leaveType string) (LeaveBalance, error)
	// GetForUpdate creates a zero row when missing and locks it for the running transaction.
	GetForUpdate(ctx context.Context, employeeID, leaveType string) (LeaveBalance, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]LeaveBalance, error)
	Upsert(ctx context.Context, balance LeaveBalance) (LeaveBalance, error)
	CountByLeaveType(ctx context.Context, leaveType string) (int64, error)
	DeleteByLeaveType(ctx context.Context, leaveType string) (int64, error)
}

// LeaveApplicationRepository - interface for leave_applications table
type LeaveApplicationRepository interface {
	Create(ctx context.Context, application LeaveApplication) (LeaveApplication, error)
	GetByID(ctx context.Context, id string) (LeaveApplication, error)
	GetByIDForUpdate(ctx context.Context, id string) (LeaveApplication, error)
	GetByEmployeeID(ctx context.Context, employeeID string, filter ApplicationFilter) ([]LeaveApplication, error)
	// GetInRange returns applications of the employee in one of statuses that overlap [from, to].
	GetInRange(ctx context.Context, employeeID string, from, to time.Time, statuses []ApplicationStatus) ([]LeaveApplication, error)
	Update(ctx context.Context, application LeaveApplication) error
	CountActiveByLeaveType(ctx context.Context, leaveType string) (int64, error)
}

// EmployeeChecker is the slice of the employee store the leave workflow needs.
type EmployeeChecker interface {
	IsActive(ctx context.Context, employeeID string) (bool, error)
}
