package leave

import "context"

type LeaveService interface {
	// Leave types
	CreateLeaveType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	ListLeaveTypes(ctx context.Context) ([]LeaveTypeResponse, error)
	DeleteLeaveType(ctx context.Context, name string) (DeleteLeaveTypeResponse, error)

	// Ledger
	GetBalances(ctx context.Context, employeeID string) ([]LeaveBalanceResponse, error)
	AdjustBalance(ctx context.Context, req AdjustBalanceRequest) (LeaveBalanceResponse, error)
	GrantDefaultAllocations(ctx context.Context, employeeID string) ([]LeaveBalanceResponse, error)
	Project(ctx context.Context, req ProjectionRequest) (ImpactResponse, error)

	// Applications
	SubmitApplication(ctx context.Context, req SubmitApplicationRequest) (LeaveApplicationResponse, error)
	GetApplication(ctx context.Context, id string) (LeaveApplicationResponse, error)
	ListApplications(ctx context.Context, employeeID string, filter ApplicationFilter) ([]LeaveApplicationResponse, error)
	ApproveApplication(ctx context.Context, req DecideApplicationRequest) (LeaveApplicationResponse, error)
	RejectApplication(ctx context.Context, req DecideApplicationRequest) (LeaveApplicationResponse, error)
	RequestCancellation(ctx context.Context, req DecideApplicationRequest) (LeaveApplicationResponse, error)
	ApproveCancellation(ctx context.Context, req DecideApplicationRequest) (LeaveApplicationResponse, error)
	RejectCancellation(ctx context.Context, req DecideApplicationRequest) (LeaveApplicationResponse, error)
}
