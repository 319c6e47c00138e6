package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLeaveTypeRequest struct {
	Name              string           `json:"name"`
	IsPaid            bool             `json:"is_paid"`
	DefaultAllocation *decimal.Decimal `json:"default_allocation,omitempty"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	// Name
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	// Default allocation
	if r.DefaultAllocation != nil && !validator.IsNonNegative(*r.DefaultAllocation) {
		errs = append(errs, validator.ValidationError{
			Field:   "default_allocation",
			Message: "default_allocation must not be negative",
		})
	}
	if r.DefaultAllocation != nil && !validator.HasMaxScale(*r.DefaultAllocation, DayScale) {
		errs = append(errs, validator.ValidationError{
			Field:   "default_allocation",
			Message: "default_allocation must have at most 2 decimal places",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveTypeResponse struct {
	Name              string           `json:"name"`
	IsPaid            bool             `json:"is_paid"`
	DefaultAllocation *decimal.Decimal `json:"default_allocation,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

func NewLeaveTypeResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		Name:              t.Name,
		IsPaid:            t.IsPaid,
		DefaultAllocation: t.DefaultAllocation,
		CreatedAt:         t.CreatedAt,
	}
}

type DeleteLeaveTypeResponse struct {
	Name            string `json:"name"`
	BalancesRemoved int64  `json:"balances_removed"`
}

type AdjustBalanceRequest struct {
	EmployeeID string          `json:"employee_id"`
	LeaveType  string          `json:"leave_type"`
	Op         AdjustOp        `json:"op"`
	Amount     decimal.Decimal `json:"amount"`
}

func (r *AdjustBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.LeaveType) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is required",
		})
	}
	if !r.Op.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "op",
			Message: "op must be one of: add, subtract, set",
		})
	}
	if !validator.IsNonNegative(r.Amount) {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must not be negative",
		})
	}
	if !validator.HasMaxScale(r.Amount, DayScale) {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must have at most 2 decimal places",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveBalanceResponse struct {
	EmployeeID     string          `json:"employee_id"`
	LeaveType      string          `json:"leave_type"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewLeaveBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		EmployeeID:     b.EmployeeID,
		LeaveType:      b.LeaveType,
		CurrentBalance: b.CurrentBalance,
		TotalAllocated: b.TotalAllocated,
		UpdatedAt:      b.UpdatedAt,
	}
}

type SubmitApplicationRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	FromDate   string `json:"from_date"`
	ToDate     string `json:"to_date"`
	IsHalfDay  bool   `json:"is_half_day"`
	Reason     string `json:"reason"`
}

func (r *SubmitApplicationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.LeaveType) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is required",
		})
	}
	if _, ok := validator.IsValidDate(r.FromDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "from_date",
			Message: "from_date must be in YYYY-MM-DD format",
		})
	}
	if _, ok := validator.IsValidDate(r.ToDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "to_date",
			Message: "to_date must be in YYYY-MM-DD format",
		})
	}
	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ProjectionRequest previews the balance impact of a prospective application.
type ProjectionRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	FromDate   string `json:"from_date"`
	ToDate     string `json:"to_date"`
	IsHalfDay  bool   `json:"is_half_day"`
}

func (r *ProjectionRequest) Validate() error {
	s := SubmitApplicationRequest{
		EmployeeID: r.EmployeeID,
		LeaveType:  r.LeaveType,
		FromDate:   r.FromDate,
		ToDate:     r.ToDate,
		IsHalfDay:  r.IsHalfDay,
	}
	return s.Validate()
}

// DecideApplicationRequest carries an admin decision. ActorID comes from the auth context.
type DecideApplicationRequest struct {
	ApplicationID string  `json:"-"`
	ActorID       string  `json:"-"`
	Comment       *string `json:"comment,omitempty"`
}

func (r *DecideApplicationRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ApplicationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "application_id",
			Message: "application_id must be a valid UUID",
		})
	}
	if r.Comment != nil && len(*r.Comment) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "comment",
			Message: "comment must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApplicationFilter struct {
	Status *ApplicationStatus
	From   *time.Time
	To     *time.Time
}

type ImpactResponse struct {
	Duration      decimal.Decimal `json:"duration"`
	PaidDays      decimal.Decimal `json:"paid_days"`
	LOPDays       decimal.Decimal `json:"lop_days"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

func NewImpactResponse(i Impact) ImpactResponse {
	return ImpactResponse{
		Duration:      i.Duration,
		PaidDays:      i.PaidDays,
		LOPDays:       i.LOPDays,
		BalanceBefore: i.BalanceBefore,
		BalanceAfter:  i.BalanceAfter,
	}
}

type LeaveApplicationResponse struct {
	ID           string            `json:"id"`
	EmployeeID   string            `json:"employee_id"`
	LeaveType    string            `json:"leave_type"`
	FromDate     string            `json:"from_date"`
	ToDate       string            `json:"to_date"`
	IsHalfDay    bool              `json:"is_half_day"`
	Duration     decimal.Decimal   `json:"duration"`
	Reason       string            `json:"reason,omitempty"`
	Status       ApplicationStatus `json:"status"`
	AdminComment *string           `json:"admin_comment,omitempty"`
	PaidDays     decimal.Decimal   `json:"paid_days"`
	LOPDays      decimal.Decimal   `json:"lop_days"`
	DecidedBy    *string           `json:"decided_by,omitempty"`
	DecidedAt    *time.Time        `json:"decided_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	// Projection is advisory and only set on submission.
	Projection *ImpactResponse `json:"projection,omitempty"`
}

func NewLeaveApplicationResponse(a LeaveApplication, duration decimal.Decimal) LeaveApplicationResponse {
	return LeaveApplicationResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		LeaveType:    a.LeaveType,
		FromDate:     a.FromDate.Format("2006-01-02"),
		ToDate:       a.ToDate.Format("2006-01-02"),
		IsHalfDay:    a.IsHalfDay,
		Duration:     duration,
		Reason:       a.Reason,
		Status:       a.Status,
		AdminComment: a.AdminComment,
		PaidDays:     a.PaidDays,
		LOPDays:      a.LOPDays,
		DecidedBy:    a.DecidedBy,
		DecidedAt:    a.DecidedAt,
		CreatedAt:    a.CreatedAt,
	}
}
