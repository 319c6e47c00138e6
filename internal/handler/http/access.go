package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

// canAccessEmployee allows admins and the employee the token is linked to.
func canAccessEmployee(w http.ResponseWriter, r *http.Request, employeeID string) bool {
	if middleware.IsAdmin(r.Context()) {
		return true
	}
	if own, ok := middleware.EmployeeID(r.Context()); ok && own == employeeID {
		return true
	}
	response.Forbidden(w, "Access to this employee is not allowed")
	return false
}

// ownEmployeeID returns requested for admins, and the caller's own employee id otherwise.
func ownEmployeeID(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	if middleware.IsAdmin(r.Context()) {
		return requested, true
	}
	own, ok := middleware.EmployeeID(r.Context())
	if !ok {
		response.Forbidden(w, "Employee ID not found in token")
		return "", false
	}
	return own, true
}

// queryDateRange reads the from/to query parameters as YYYY-MM-DD dates.
func queryDateRange(r *http.Request) (time.Time, time.Time, error) {
	var errs validator.ValidationErrors

	from, fromOK := validator.IsValidDate(r.URL.Query().Get("from"))
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
	}
	to, toOK := validator.IsValidDate(r.URL.Query().Get("to"))
	if !toOK {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
	}
	if fromOK && toOK && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be before from"})
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return from, to, nil
}

// queryInt returns nil when the parameter is absent.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, validator.ValidationErrors{{Field: name, Message: name + " must be a number"}}
	}
	return &n, nil
}
