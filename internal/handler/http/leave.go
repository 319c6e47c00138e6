package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateType(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)
	DeleteType(w http.ResponseWriter, r *http.Request)

	GetBalances(w http.ResponseWriter, r *http.Request)
	AdjustBalance(w http.ResponseWriter, r *http.Request)
	GrantDefaults(w http.ResponseWriter, r *http.Request)
	Preview(w http.ResponseWriter, r *http.Request)

	SubmitApplication(w http.ResponseWriter, r *http.Request)
	ListApplications(w http.ResponseWriter, r *http.Request)
	GetApplication(w http.ResponseWriter, r *http.Request)
	ApproveApplication(w http.ResponseWriter, r *http.Request)
	RejectApplication(w http.ResponseWriter, r *http.Request)
	RequestCancellation(w http.ResponseWriter, r *http.Request)
	ApproveCancellation(w http.ResponseWriter, r *http.Request)
	RejectCancellation(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}

// ========== LEAVE TYPES ==========

// CreateType implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveTypeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateType decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	leaveType, err := l.leaveService.CreateLeaveType(r.Context(), req)
	if err != nil {
		slog.Error("CreateType service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave type created successfully", leaveType)
}

// ListTypes implements LeaveHandler.
func (l *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := l.leaveService.ListLeaveTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, types)
}

// DeleteType implements LeaveHandler.
func (l *LeaveHandlerImpl) DeleteType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, "Leave type name is required", nil)
		return
	}

	deleted, err := l.leaveService.DeleteLeaveType(r.Context(), name)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type deleted successfully", deleted)
}

// ========== LEDGER ==========

// GetBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !canAccessEmployee(w, r, employeeID) {
		return
	}

	balances, err := l.leaveService.GetBalances(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}

// AdjustBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req leave.AdjustBalanceRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AdjustBalance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	balance, err := l.leaveService.AdjustBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance adjusted successfully", balance)
}

// GrantDefaults implements LeaveHandler.
func (l *LeaveHandlerImpl) GrantDefaults(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	balances, err := l.leaveService.GrantDefaultAllocations(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Default allocations granted successfully", balances)
}

// Preview implements LeaveHandler. It returns the duration and projected ledger impact without saving.
func (l *LeaveHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	var req leave.ProjectionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Preview decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	employeeID, ok := ownEmployeeID(w, r, req.EmployeeID)
	if !ok {
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	impact, err := l.leaveService.Project(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, impact)
}

// ========== APPLICATIONS ==========

// SubmitApplication implements LeaveHandler. Non-admin callers always apply for themselves.
func (l *LeaveHandlerImpl) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req leave.SubmitApplicationRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SubmitApplication decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	employeeID, ok := ownEmployeeID(w, r, req.EmployeeID)
	if !ok {
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	application, err := l.leaveService.SubmitApplication(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave application submitted successfully", application)
}

// ListApplications implements LeaveHandler. Requires ?employee_id=, accepts status, from and to.
func (l *LeaveHandlerImpl) ListApplications(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}
	if !canAccessEmployee(w, r, employeeID) {
		return
	}

	var filter leave.ApplicationFilter
	var errs validator.ValidationErrors
	if s := r.URL.Query().Get("status"); s != "" {
		status := leave.ApplicationStatus(s)
		if !status.IsValid() {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status is not a known application status"})
		}
		filter.Status = &status
	}
	if s := r.URL.Query().Get("from"); s != "" {
		from, ok := validator.IsValidDate(s)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		}
		filter.From = &from
	}
	if s := r.URL.Query().Get("to"); s != "" {
		to, ok := validator.IsValidDate(s)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		}
		filter.To = &to
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	applications, err := l.leaveService.ListApplications(r.Context(), employeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, applications)
}

// GetApplication implements LeaveHandler.
func (l *LeaveHandlerImpl) GetApplication(w http.ResponseWriter, r *http.Request) {
	application, err := l.leaveService.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !canAccessEmployee(w, r, application.EmployeeID) {
		return
	}

	response.Success(w, application)
}

// ApproveApplication implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.leaveService.ApproveApplication, "Leave application approved successfully")
}

// RejectApplication implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectApplication(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.leaveService.RejectApplication, "Leave application rejected successfully")
}

// RequestCancellation implements LeaveHandler. Owners may cancel their own applications.
func (l *LeaveHandlerImpl) RequestCancellation(w http.ResponseWriter, r *http.Request) {
	application, err := l.leaveService.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !canAccessEmployee(w, r, application.EmployeeID) {
		return
	}

	l.decide(w, r, l.leaveService.RequestCancellation, "Leave cancellation requested successfully")
}

// ApproveCancellation implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveCancellation(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.leaveService.ApproveCancellation, "Leave cancellation approved successfully")
}

// RejectCancellation implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectCancellation(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.leaveService.RejectCancellation, "Leave cancellation rejected successfully")
}

type decision func(ctx context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplicationResponse, error)

func (l *LeaveHandlerImpl) decide(w http.ResponseWriter, r *http.Request, fn decision, message string) {
	var req leave.DecideApplicationRequest

	// The body is optional; it only carries the comment.
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			slog.Error("Decision decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.ApplicationID = chi.URLParam(r, "id")
	req.ActorID = middleware.ActorID(r.Context())

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	application, err := fn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, application)
}
