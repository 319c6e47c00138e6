package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/keylock"
	"github.com/shopspring/decimal"
)

// LedgerService owns every mutation of leave_balances. Mutations on one
// (employee, leave type) key run one at a time and inside a row-locked transaction.
type LedgerService struct {
	transactor database.Transactor
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	locks *keylock.KeyLock
}

func NewLedgerService(transactor database.Transactor, leaveTypeRepository leave.LeaveTypeRepository, leaveBalanceRepository leave.LeaveBalanceRepository) *LedgerService {
	return &LedgerService{
		transactor:             transactor,
		LeaveTypeRepository:    leaveTypeRepository,
		LeaveBalanceRepository: leaveBalanceRepository,
		locks:                  keylock.New(),
	}
}

// withBalance runs fn against the locked balance of (employeeID, leaveType) and persists what it returns.
// fn receives the transaction context so it can update other rows atomically with the balance.
func (l *LedgerService) withBalance(
	ctx context.Context,
	employeeID, leaveType string,
	fn func(txCtx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error),
) (leave.LeaveBalance, error) {
	unlock := l.locks.Lock(leave.BalanceKey(employeeID, leaveType))
	defer unlock()

	var saved leave.LeaveBalance
	err := l.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := l.LeaveBalanceRepository.GetForUpdate(txCtx, employeeID, leaveType)
		if err != nil {
			return fmt.Errorf("failed to lock leave balance: %w", err)
		}

		next, err := fn(txCtx, current)
		if err != nil {
			return err
		}
		if next.CurrentBalance.IsNegative() {
			return fmt.Errorf("%w: %s would become %s", leave.ErrInsufficientBalance, next.Key(), next.CurrentBalance)
		}

		next.UpdatedAt = time.Now()
		saved, err = l.LeaveBalanceRepository.Upsert(txCtx, next)
		if err != nil {
			return fmt.Errorf("failed to save leave balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	return saved, nil
}

// Adjust applies an admin add, subtract or set.
func (l *LedgerService) Adjust(ctx context.Context, employeeID, leaveType string, op leave.AdjustOp, amount decimal.Decimal) (leave.LeaveBalance, error) {
	if _, err := l.LeaveTypeRepository.GetByName(ctx, leaveType); err != nil {
		return leave.LeaveBalance{}, err
	}

	balance, err := l.withBalance(ctx, employeeID, leaveType, func(_ context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
		return ApplyAdjustment(b, op, amount)
	})
	if err != nil {
		return leave.LeaveBalance{}, err
	}

	slog.Info("Leave balance adjusted",
		"employee_id", employeeID,
		"leave_type", leaveType,
		"op", op,
		"amount", amount.String(),
		"current_balance", balance.CurrentBalance.String(),
		"total_allocated", balance.TotalAllocated.String(),
	)
	return balance, nil
}

// Project previews the impact of duration days without mutating anything.
func (l *LedgerService) Project(ctx context.Context, employeeID, leaveType string, duration decimal.Decimal) (leave.Impact, error) {
	lt, err := l.LeaveTypeRepository.GetByName(ctx, leaveType)
	if err != nil {
		return leave.Impact{}, err
	}

	balance := decimal.Zero
	existing, err := l.LeaveBalanceRepository.Get(ctx, employeeID, leaveType)
	switch {
	case err == nil:
		balance = existing.CurrentBalance
	case !errors.Is(err, leave.ErrBalanceNotFound):
		return leave.Impact{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return Project(balance, duration, lt.IsPaid), nil
}

// GrantDefaults gives the employee each type's default allocation where no balance exists yet.
// Existing balances are left alone so repeated calls are harmless.
func (l *LedgerService) GrantDefaults(ctx context.Context, employeeID string) ([]leave.LeaveBalance, error) {
	types, err := l.LeaveTypeRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}

	granted := make([]leave.LeaveBalance, 0)
	for _, lt := range types {
		if lt.DefaultAllocation == nil {
			continue
		}

		_, err := l.LeaveBalanceRepository.Get(ctx, employeeID, lt.Name)
		if err == nil {
			slog.Debug("Leave balance already exists", "employee_id", employeeID, "leave_type", lt.Name)
			continue
		}
		if !errors.Is(err, leave.ErrBalanceNotFound) {
			return nil, fmt.Errorf("failed to get leave balance: %w", err)
		}

		allocation := *lt.DefaultAllocation
		balance, err := l.withBalance(ctx, employeeID, lt.Name, func(_ context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
			if b.TotalAllocated.IsPositive() || b.CurrentBalance.IsPositive() {
				return b, nil
			}
			return ApplyAdjustment(b, leave.AdjustSet, allocation)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to grant %s allocation: %w", lt.Name, err)
		}
		granted = append(granted, balance)
	}

	slog.Info("Default leave allocations granted", "employee_id", employeeID, "count", len(granted))
	return granted, nil
}
