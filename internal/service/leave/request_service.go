package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	calendarsvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestService drives leave applications through their state machine.
// Every transition that touches a paid balance goes through LedgerService.withBalance.
type RequestService struct {
	transactor database.Transactor
	leave.LeaveTypeRepository
	leave.LeaveApplicationRepository
	leave.EmployeeChecker
	ledger *LedgerService
	// locks serializes submissions per employee so the overlap check and the insert see the same state.
	locks *keylock.KeyLock
}

func NewRequestService(
	transactor database.Transactor,
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveApplicationRepository leave.LeaveApplicationRepository,
	employeeChecker leave.EmployeeChecker,
	ledger *LedgerService,
) *RequestService {
	return &RequestService{
		transactor:                 transactor,
		LeaveTypeRepository:        leaveTypeRepository,
		LeaveApplicationRepository: leaveApplicationRepository,
		EmployeeChecker:            employeeChecker,
		ledger:                     ledger,
		locks:                      keylock.New(),
	}
}

// Submit creates a pending application and returns an advisory projection alongside it.
func (r *RequestService) Submit(ctx context.Context, req leave.SubmitApplicationRequest) (leave.LeaveApplication, leave.Impact, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplication{}, leave.Impact{}, err
	}

	fromDate, _ := validator.IsValidDate(req.FromDate)
	toDate, _ := validator.IsValidDate(req.ToDate)
	duration, err := calendarsvc.Duration(fromDate, toDate, req.IsHalfDay)
	if err != nil {
		return leave.LeaveApplication{}, leave.Impact{}, err
	}

	active, err := r.EmployeeChecker.IsActive(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveApplication{}, leave.Impact{}, fmt.Errorf("failed to check employee: %w", err)
	}
	if !active {
		return leave.LeaveApplication{}, leave.Impact{}, leave.ErrEmployeeNotFound
	}

	if _, err := r.LeaveTypeRepository.GetByName(ctx, req.LeaveType); err != nil {
		return leave.LeaveApplication{}, leave.Impact{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveApplication{}, leave.Impact{}, fmt.Errorf("failed to generate application id: %w", err)
	}

	now := time.Now()
	application := leave.LeaveApplication{
		ID:         id.String(),
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		FromDate:   calendar.Truncate(fromDate),
		ToDate:     calendar.Truncate(toDate),
		IsHalfDay:  req.IsHalfDay,
		Reason:     req.Reason,
		Status:     leave.StatusPending,
		PaidDays:   decimal.Zero,
		LOPDays:    decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	unlock := r.locks.Lock(application.EmployeeID)
	defer unlock()

	var created leave.LeaveApplication
	err = r.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		overlapping, err := r.LeaveApplicationRepository.GetInRange(txCtx, application.EmployeeID, application.FromDate, application.ToDate, leave.ActiveStatuses)
		if err != nil {
			return fmt.Errorf("failed to check overlapping applications: %w", err)
		}
		if len(overlapping) > 0 {
			return fmt.Errorf("%w: %s", leave.ErrOverlappingApplication, overlapping[0].ID)
		}

		created, err = r.LeaveApplicationRepository.Create(txCtx, application)
		if err != nil {
			return fmt.Errorf("failed to create leave application: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveApplication{}, leave.Impact{}, err
	}

	impact, err := r.ledger.Project(ctx, created.EmployeeID, created.LeaveType, duration)
	if err != nil {
		return leave.LeaveApplication{}, leave.Impact{}, fmt.Errorf("failed to project leave impact: %w", err)
	}

	slog.Info("Leave application submitted",
		"application_id", created.ID,
		"employee_id", created.EmployeeID,
		"leave_type", created.LeaveType,
		"duration", duration.String(),
	)
	return created, impact, nil
}

// Approve debits the ledger by a projection taken under the balance lock, never by the submission snapshot.
func (r *RequestService) Approve(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplication, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplication{}, err
	}

	app, err := r.LeaveApplicationRepository.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	var approved leave.LeaveApplication
	var impact leave.Impact
	err = r.withLedger(ctx, app, func(txCtx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
		current, err := r.LeaveApplicationRepository.GetByIDForUpdate(txCtx, req.ApplicationID)
		if err != nil {
			return balance, err
		}
		if err := leave.Transition(current.Status, leave.StatusApproved); err != nil {
			return balance, err
		}

		lt, err := r.LeaveTypeRepository.GetByName(txCtx, current.LeaveType)
		if err != nil {
			return balance, err
		}
		duration, err := calendarsvc.Duration(current.FromDate, current.ToDate, current.IsHalfDay)
		if err != nil {
			return balance, err
		}

		impact = Project(balance.CurrentBalance, duration, lt.IsPaid)
		balance.CurrentBalance = impact.BalanceAfter

		current.PaidDays = impact.PaidDays
		current.LOPDays = impact.LOPDays
		decide(&current, leave.StatusApproved, req)
		if err := r.LeaveApplicationRepository.Update(txCtx, current); err != nil {
			return balance, fmt.Errorf("failed to update leave application: %w", err)
		}
		approved = current
		return balance, nil
	})
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	slog.Info("Leave application approved",
		"application_id", approved.ID,
		"employee_id", approved.EmployeeID,
		"paid_days", impact.PaidDays.String(),
		"lop_days", impact.LOPDays.String(),
		"approved_by", req.ActorID,
	)
	return approved, nil
}

func (r *RequestService) Reject(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplication, error) {
	return r.transitionWithoutLedger(ctx, req, leave.StatusRejected)
}

// RequestCancellation moves an approved application to cancellation_pending. The debit stays until an admin decides.
func (r *RequestService) RequestCancellation(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplication, error) {
	return r.transitionWithoutLedger(ctx, req, leave.StatusCancellationPending)
}

// RejectCancellation reinstates approved and requires the admin's rationale.
func (r *RequestService) RejectCancellation(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplication, error) {
	if req.Comment == nil || validator.IsEmpty(*req.Comment) {
		return leave.LeaveApplication{}, validator.ValidationErrors{{
			Field:   "comment",
			Message: "comment is required when rejecting a cancellation",
		}}
	}
	app, err := r.transitionFrom(ctx, req, leave.StatusCancellationPending, leave.StatusApproved)
	if err != nil {
		return leave.LeaveApplication{}, err
	}
	return app, nil
}

// ApproveCancellation credits back exactly the paid days debited at approval.
func (r *RequestService) ApproveCancellation(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplication, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplication{}, err
	}

	app, err := r.LeaveApplicationRepository.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	var cancelled leave.LeaveApplication
	err = r.withLedger(ctx, app, func(txCtx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
		current, err := r.LeaveApplicationRepository.GetByIDForUpdate(txCtx, req.ApplicationID)
		if err != nil {
			return balance, err
		}
		if current.Status != leave.StatusCancellationPending {
			return balance, fmt.Errorf("%w: %s -> %s", leave.ErrInvalidTransition, current.Status, leave.StatusCancelled)
		}

		balance = credit(balance, current.PaidDays)
		decide(&current, leave.StatusCancelled, req)
		if err := r.LeaveApplicationRepository.Update(txCtx, current); err != nil {
			return balance, fmt.Errorf("failed to update leave application: %w", err)
		}
		cancelled = current
		return balance, nil
	})
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	slog.Info("Leave cancellation approved",
		"application_id", cancelled.ID,
		"employee_id", cancelled.EmployeeID,
		"credited_days", cancelled.PaidDays.String(),
	)
	return cancelled, nil
}

// OverrideByCorrection supersedes every active application covering date. Applications that
// hold a ledger debit have it credited back in the same transaction as the status change.
func (r *RequestService) OverrideByCorrection(ctx context.Context, employeeID string, date time.Time, actorID string) error {
	date = calendar.Truncate(date)
	apps, err := r.LeaveApplicationRepository.GetInRange(ctx, employeeID, date, date, leave.ActiveStatuses)
	if err != nil {
		return fmt.Errorf("failed to get applications covering %s: %w", date.Format(calendar.DateLayout), err)
	}

	comment := "superseded by attendance correction on " + date.Format(calendar.DateLayout)
	req := leave.DecideApplicationRequest{ActorID: actorID, Comment: &comment}

	for _, app := range apps {
		req.ApplicationID = app.ID
		err := r.withLedger(ctx, app, func(txCtx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
			current, err := r.LeaveApplicationRepository.GetByIDForUpdate(txCtx, app.ID)
			if err != nil {
				return balance, err
			}
			if err := leave.Transition(current.Status, leave.StatusOverriddenByCorrection); err != nil {
				return balance, err
			}

			if current.Status.HoldsDebit() {
				balance = credit(balance, current.PaidDays)
			}
			decide(&current, leave.StatusOverriddenByCorrection, req)
			return balance, r.LeaveApplicationRepository.Update(txCtx, current)
		})
		if err != nil {
			return fmt.Errorf("failed to override application %s: %w", app.ID, err)
		}
		slog.Warn("Leave application overridden by attendance correction",
			"application_id", app.ID,
			"employee_id", employeeID,
			"date", date.Format(calendar.DateLayout),
		)
	}
	return nil
}

// CoverageInRange maps each date in [from, to] covered by an approved or cancellation-pending
// application to its coverage. Paid days are allocated to the application's dates chronologically.
func (r *RequestService) CoverageInRange(ctx context.Context, employeeID string, from, to time.Time) (map[time.Time]attendance.LeaveCoverage, error) {
	from, to = calendar.Truncate(from), calendar.Truncate(to)
	apps, err := r.LeaveApplicationRepository.GetInRange(ctx, employeeID, from, to,
		[]leave.ApplicationStatus{leave.StatusApproved, leave.StatusCancellationPending})
	if err != nil {
		return nil, fmt.Errorf("failed to get leave coverage: %w", err)
	}

	coverage := make(map[time.Time]attendance.LeaveCoverage)
	for _, app := range apps {
		for date, paid := range AllocatePaid(app) {
			if date.Before(from) || date.After(to) {
				continue
			}
			coverage[date] = attendance.LeaveCoverage{
				ApplicationID:       app.ID,
				LeaveType:           app.LeaveType,
				HalfDay:             app.IsHalfDay,
				CancellationPending: app.Status == leave.StatusCancellationPending,
				Paid:                paid,
			}
		}
	}
	return coverage, nil
}

// withLedger runs fn under the balance lock of a paid application. Unpaid types hold no
// balance, so fn runs in a plain transaction against a zero balance that is never stored.
func (r *RequestService) withLedger(
	ctx context.Context,
	app leave.LeaveApplication,
	fn func(txCtx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error),
) error {
	lt, err := r.LeaveTypeRepository.GetByName(ctx, app.LeaveType)
	if err != nil {
		return err
	}
	if lt.IsPaid {
		_, err := r.ledger.withBalance(ctx, app.EmployeeID, app.LeaveType, fn)
		return err
	}

	return r.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		_, err := fn(txCtx, leave.LeaveBalance{
			EmployeeID:     app.EmployeeID,
			LeaveType:      app.LeaveType,
			CurrentBalance: decimal.Zero,
			TotalAllocated: decimal.Zero,
		})
		return err
	})
}

// transitionWithoutLedger handles the edges that never touch a balance.
func (r *RequestService) transitionWithoutLedger(ctx context.Context, req leave.DecideApplicationRequest, to leave.ApplicationStatus) (leave.LeaveApplication, error) {
	return r.transitionFrom(ctx, req, "", to)
}

// transitionFrom moves the application to `to`. A non-empty from pins the expected source state.
func (r *RequestService) transitionFrom(ctx context.Context, req leave.DecideApplicationRequest, from, to leave.ApplicationStatus) (leave.LeaveApplication, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplication{}, err
	}

	var updated leave.LeaveApplication
	err := r.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := r.LeaveApplicationRepository.GetByIDForUpdate(txCtx, req.ApplicationID)
		if err != nil {
			return err
		}
		if from != "" && current.Status != from {
			return fmt.Errorf("%w: %s -> %s", leave.ErrInvalidTransition, current.Status, to)
		}
		if err := leave.Transition(current.Status, to); err != nil {
			return err
		}

		decide(&current, to, req)
		if err := r.LeaveApplicationRepository.Update(txCtx, current); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	slog.Info("Leave application status changed", "application_id", updated.ID, "status", updated.Status, "actor_id", req.ActorID)
	return updated, nil
}

func decide(app *leave.LeaveApplication, status leave.ApplicationStatus, req leave.DecideApplicationRequest) {
	now := time.Now()
	app.Status = status
	app.UpdatedAt = now
	if req.Comment != nil {
		app.AdminComment = req.Comment
	}
	if !validator.IsEmpty(req.ActorID) {
		actor := req.ActorID
		app.DecidedBy = &actor
		app.DecidedAt = &now
	}
}
