package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type AttendanceHandler interface {
	RecordPunch(w http.ResponseWriter, r *http.Request)
	ApplyCorrection(w http.ResponseWriter, r *http.Request)
	DailyStatus(w http.ResponseWriter, r *http.Request)
	MonthlySummary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// RecordPunch implements AttendanceHandler. Non-admin callers always punch for themselves.
func (h *attendanceHandlerImpl) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecordPunch decode error", "error", err)
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

	punch, err := h.attendanceService.RecordPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance recorded successfully", punch)
}

// ApplyCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApplyCorrection(w http.ResponseWriter, r *http.Request) {
	var req attendance.ApplyCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ApplyCorrection decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ActorID = middleware.ActorID(r.Context())

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	punch, err := h.attendanceService.ApplyCorrection(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance corrected successfully", punch)
}

// DailyStatus implements AttendanceHandler. Requires ?employee_id=&from=&to=.
func (h *attendanceHandlerImpl) DailyStatus(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}
	if !canAccessEmployee(w, r, employeeID) {
		return
	}

	from, to, err := queryDateRange(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.DailyStatus(r.Context(), employeeID, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewDayRecordResponses(records))
}

// MonthlySummary implements AttendanceHandler. Requires ?employee_id=&month=&year=.
func (h *attendanceHandlerImpl) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}
	if !canAccessEmployee(w, r, employeeID) {
		return
	}

	month, err := queryInt(r, "month")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if month == nil || year == nil || !validator.IsValidPeriod(*month, *year) {
		response.HandleError(w, validator.ValidationErrors{{Field: "month", Message: "month must be 1-12 and year 1970-9999"}})
		return
	}

	summary, err := h.attendanceService.MonthlySummary(r.Context(), employeeID, *year, time.Month(*month))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewMonthlySummaryResponse(summary))
}
