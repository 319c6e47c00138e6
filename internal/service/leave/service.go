package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	calendarsvc "github.com/cmlabs-hris/hris-payroll-engine/internal/service/calendar"
	"github.com/shopspring/decimal"
)

type LeaveServiceImpl struct {
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	leave.LeaveApplicationRepository
	typeService    *TypeService
	ledgerService  *LedgerService
	requestService *RequestService
}

func NewLeaveService(
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveBalanceRepository leave.LeaveBalanceRepository,
	leaveApplicationRepository leave.LeaveApplicationRepository,
	typeService *TypeService,
	ledgerService *LedgerService,
	requestService *RequestService,
) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveTypeRepository:        leaveTypeRepository,
		LeaveBalanceRepository:     leaveBalanceRepository,
		LeaveApplicationRepository: leaveApplicationRepository,
		typeService:                typeService,
		ledgerService:              ledgerService,
		requestService:             requestService,
	}
}

// CreateLeaveType implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	created, err := l.typeService.Create(ctx, req)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	return leave.NewLeaveTypeResponse(created), nil
}

// ListLeaveTypes implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveTypes(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
	types, err := l.LeaveTypeRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}

	resp := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, leave.NewLeaveTypeResponse(t))
	}
	return resp, nil
}

// DeleteLeaveType implements leave.LeaveService.
func (l *LeaveServiceImpl) DeleteLeaveType(ctx context.Context, name string) (leave.DeleteLeaveTypeResponse, error) {
	if validator.IsEmpty(name) {
		return leave.DeleteLeaveTypeResponse{}, validator.ValidationErrors{{Field: "name", Message: "name is required"}}
	}

	removed, err := l.typeService.Delete(ctx, name)
	if err != nil {
		return leave.DeleteLeaveTypeResponse{}, err
	}
	return leave.DeleteLeaveTypeResponse{Name: name, BalancesRemoved: removed}, nil
}

// GetBalances implements leave.LeaveService.
func (l *LeaveServiceImpl) GetBalances(ctx context.Context, employeeID string) ([]leave.LeaveBalanceResponse, error) {
	balances, err := l.LeaveBalanceRepository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave balances: %w", err)
	}
	return toBalanceResponses(balances), nil
}

// AdjustBalance implements leave.LeaveService.
func (l *LeaveServiceImpl) AdjustBalance(ctx context.Context, req leave.AdjustBalanceRequest) (leave.LeaveBalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	balance, err := l.ledgerService.Adjust(ctx, req.EmployeeID, req.LeaveType, req.Op, req.Amount)
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}
	return leave.NewLeaveBalanceResponse(balance), nil
}

// GrantDefaultAllocations implements leave.LeaveService.
func (l *LeaveServiceImpl) GrantDefaultAllocations(ctx context.Context, employeeID string) ([]leave.LeaveBalanceResponse, error) {
	if validator.IsEmpty(employeeID) {
		return nil, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}

	granted, err := l.ledgerService.GrantDefaults(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toBalanceResponses(granted), nil
}

// Project implements leave.LeaveService.
func (l *LeaveServiceImpl) Project(ctx context.Context, req leave.ProjectionRequest) (leave.ImpactResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ImpactResponse{}, err
	}

	from, _ := validator.IsValidDate(req.FromDate)
	to, _ := validator.IsValidDate(req.ToDate)
	duration, err := calendarsvc.Duration(from, to, req.IsHalfDay)
	if err != nil {
		return leave.ImpactResponse{}, err
	}

	impact, err := l.ledgerService.Project(ctx, req.EmployeeID, req.LeaveType, duration)
	if err != nil {
		return leave.ImpactResponse{}, err
	}
	return leave.NewImpactResponse(impact), nil
}

// SubmitApplication implements leave.LeaveService.
func (l *LeaveServiceImpl) SubmitApplication(ctx context.Context, req leave.SubmitApplicationRequest) (leave.LeaveApplicationResponse, error) {
	created, impact, err := l.requestService.Submit(ctx, req)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	resp := leave.NewLeaveApplicationResponse(created, impact.Duration)
	projection := leave.NewImpactResponse(impact)
	resp.Projection = &projection
	return resp, nil
}

// GetApplication implements leave.LeaveService.
func (l *LeaveServiceImpl) GetApplication(ctx context.Context, id string) (leave.LeaveApplicationResponse, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveApplicationResponse{}, validator.ValidationErrors{{Field: "application_id", Message: "application_id must be a valid UUID"}}
	}

	app, err := l.LeaveApplicationRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	return toApplicationResponse(app), nil
}

// ListApplications implements leave.LeaveService.
func (l *LeaveServiceImpl) ListApplications(ctx context.Context, employeeID string, filter leave.ApplicationFilter) ([]leave.LeaveApplicationResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, validator.ValidationErrors{{Field: "status", Message: "status is not a valid application status"}}
	}

	apps, err := l.LeaveApplicationRepository.GetByEmployeeID(ctx, employeeID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}

	resp := make([]leave.LeaveApplicationResponse, 0, len(apps))
	for _, app := range apps {
		resp = append(resp, toApplicationResponse(app))
	}
	return resp, nil
}

// ApproveApplication implements leave.LeaveService.
func (l *LeaveServiceImpl) ApproveApplication(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplicationResponse, error) {
	return respond(l.requestService.Approve(ctx, req))
}

// RejectApplication implements leave.LeaveService.
func (l *LeaveServiceImpl) RejectApplication(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplicationResponse, error) {
	return respond(l.requestService.Reject(ctx, req))
}

// RequestCancellation implements leave.LeaveService.
func (l *LeaveServiceImpl) RequestCancellation(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplicationResponse, error) {
	return respond(l.requestService.RequestCancellation(ctx, req))
}

// ApproveCancellation implements leave.LeaveService.
func (l *LeaveServiceImpl) ApproveCancellation(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplicationResponse, error) {
	return respond(l.requestService.ApproveCancellation(ctx, req))
}

// RejectCancellation implements leave.LeaveService.
func (l *LeaveServiceImpl) RejectCancellation(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplicationResponse, error) {
	return respond(l.requestService.RejectCancellation(ctx, req))
}

func respond(app leave.LeaveApplication, err error) (leave.LeaveApplicationResponse, error) {
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	return toApplicationResponse(app), nil
}

// toApplicationResponse recomputes duration from the stored dates.
func toApplicationResponse(app leave.LeaveApplication) leave.LeaveApplicationResponse {
	duration, err := calendarsvc.Duration(app.FromDate, app.ToDate, app.IsHalfDay)
	if err != nil {
		duration = decimal.Zero
	}
	return leave.NewLeaveApplicationResponse(app, duration)
}

func toBalanceResponses(balances []leave.LeaveBalance) []leave.LeaveBalanceResponse {
	resp := make([]leave.LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		resp = append(resp, leave.NewLeaveBalanceResponse(b))
	}
	return resp
}
