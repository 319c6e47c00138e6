package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Engine failures carry structured details and are never reported as client errors
	var configErr *payroll.ConfigurationError
	if errors.As(err, &configErr) {
		slog.Error("Payroll configuration error", "setting", configErr.Setting, "reason", configErr.Reason)
		InternalServerErrorWithDetails(w, "CONFIGURATION_ERROR", configErr.Error(), map[string]string{
			"setting": configErr.Setting,
			"reason":  configErr.Reason,
		})
		return
	}
	var consistencyErr *attendance.ConsistencyError
	if errors.As(err, &consistencyErr) {
		slog.Error("Attendance consistency error", "error", consistencyErr)
		InternalServerErrorWithDetails(w, "CONSISTENCY_ERROR", consistencyErr.Error(), map[string]string{
			"employee_id": consistencyErr.EmployeeID,
			"month":       strconv.Itoa(int(consistencyErr.Month)),
			"year":        strconv.Itoa(consistencyErr.Year),
			"field":       consistencyErr.Field,
			"expected":    strconv.Itoa(consistencyErr.Expected),
			"actual":      strconv.Itoa(consistencyErr.Actual),
		})
		return
	}
	var negativeErr *payroll.NegativeNetPayError
	if errors.As(err, &negativeErr) {
		slog.Error("Negative net pay", "error", negativeErr)
		InternalServerErrorWithDetails(w, "NEGATIVE_NET_PAY", negativeErr.Error(), map[string]string{
			"employee_id": negativeErr.EmployeeID,
			"month":       strconv.Itoa(negativeErr.Month),
			"year":        strconv.Itoa(negativeErr.Year),
			"net_pay":     negativeErr.NetPay.StringFixed(2),
		})
		return
	}

	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, leave.ErrEmployeeNotFound),
		errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmployeeAlreadyActive),
		errors.Is(err, employee.ErrEmployeeAlreadyInactive):
		Conflict(w, err.Error())

	// Calendar domain errors
	case errors.Is(err, calendar.ErrOverlappingAssignment),
		errors.Is(err, calendar.ErrHolidayExists):
		Conflict(w, err.Error())
	case errors.Is(err, calendar.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrPunchNotFound):
		NotFound(w, "Attendance punch not found")
	case errors.Is(err, attendance.ErrDayFinalized),
		errors.Is(err, attendance.ErrDayCorrected):
		Conflict(w, err.Error())

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrApplicationNotFound):
		NotFound(w, "Leave application not found")
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrLeaveTypeExists),
		errors.Is(err, leave.ErrLeaveTypeInUse),
		errors.Is(err, leave.ErrInvalidTransition),
		errors.Is(err, leave.ErrOverlappingApplication),
		errors.Is(err, leave.ErrInsufficientBalance):
		Conflict(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrSalaryStructureNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, payroll.ErrPayslipAlreadyExists),
		errors.Is(err, payroll.ErrSalaryStructureExists):
		Conflict(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
