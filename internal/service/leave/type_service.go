package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
)

type TypeService struct {
	transactor database.Transactor
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	leave.LeaveApplicationRepository
	cascadeDelete bool
}

func NewTypeService(
	transactor database.Transactor,
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveBalanceRepository leave.LeaveBalanceRepository,
	leaveApplicationRepository leave.LeaveApplicationRepository,
	cascadeDelete bool,
) *TypeService {
	return &TypeService{
		transactor:                 transactor,
		LeaveTypeRepository:        leaveTypeRepository,
		LeaveBalanceRepository:     leaveBalanceRepository,
		LeaveApplicationRepository: leaveApplicationRepository,
		cascadeDelete:              cascadeDelete,
	}
}

func (t *TypeService) Create(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveType, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveType{}, err
	}

	_, err := t.LeaveTypeRepository.GetByName(ctx, req.Name)
	if err == nil {
		return leave.LeaveType{}, leave.ErrLeaveTypeExists
	}
	if !errors.Is(err, leave.ErrLeaveTypeNotFound) {
		return leave.LeaveType{}, fmt.Errorf("failed to check leave type: %w", err)
	}

	now := time.Now()
	created, err := t.LeaveTypeRepository.Create(ctx, leave.LeaveType{
		Name:              req.Name,
		IsPaid:            req.IsPaid,
		DefaultAllocation: req.DefaultAllocation,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}

	slog.Info("Leave type created", "name", created.Name, "is_paid", created.IsPaid)
	return created, nil
}

// Delete removes a leave type. Active applications always block it. Balances block it
// unless cascading is enabled, in which case they go in the same transaction.
func (t *TypeService) Delete(ctx context.Context, name string) (int64, error) {
	var removed int64
	err := t.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := t.LeaveTypeRepository.GetByName(txCtx, name); err != nil {
			return err
		}

		active, err := t.LeaveApplicationRepository.CountActiveByLeaveType(txCtx, name)
		if err != nil {
			return fmt.Errorf("failed to count active applications: %w", err)
		}
		if active > 0 {
			return fmt.Errorf("%w: %d active applications", leave.ErrLeaveTypeInUse, active)
		}

		balances, err := t.LeaveBalanceRepository.CountByLeaveType(txCtx, name)
		if err != nil {
			return fmt.Errorf("failed to count leave balances: %w", err)
		}
		if balances > 0 {
			if !t.cascadeDelete {
				return fmt.Errorf("%w: %d balances", leave.ErrLeaveTypeInUse, balances)
			}
			removed, err = t.LeaveBalanceRepository.DeleteByLeaveType(txCtx, name)
			if err != nil {
				return fmt.Errorf("failed to delete leave balances: %w", err)
			}
		}

		if err := t.LeaveTypeRepository.Delete(txCtx, name); err != nil {
			return fmt.Errorf("failed to delete leave type: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Warn("Leave type deleted", "name", name, "balances_removed", removed, "cascade", t.cascadeDelete)
	return removed, nil
}
