package calendar

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type CreateWeeklyOffAssignmentRequest struct {
	EmployeeID    string  `json:"employee_id"`
	Days          []int   `json:"days"`
	EffectiveDate string  `json:"effective_date"`
	EndDate       *string `json:"end_date,omitempty"`
}

func (r *CreateWeeklyOffAssignmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	for _, d := range r.Days {
		if d < 0 || d > 6 {
			errs = append(errs, validator.ValidationError{
				Field:   "days",
				Message: "days must be week-day numbers between 0 (Sunday) and 6 (Saturday)",
			})
			break
		}
	}

	effective, ok := validator.IsValidDate(r.EffectiveDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "effective_date",
			Message: "effective_date must be in YYYY-MM-DD format",
		})
	}

	if r.EndDate != nil {
		end, endOK := validator.IsValidDate(*r.EndDate)
		if !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		} else if ok && !end.After(effective) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be after effective_date",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToEntity assumes Validate passed. Duplicate days are dropped.
func (r *CreateWeeklyOffAssignmentRequest) ToEntity() WeeklyOffAssignment {
	seen := make(map[int]bool)
	days := make([]time.Weekday, 0, len(r.Days))
	for _, d := range r.Days {
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, time.Weekday(d))
	}

	effective, _ := validator.IsValidDate(r.EffectiveDate)
	assignment := WeeklyOffAssignment{
		EmployeeID:    r.EmployeeID,
		Days:          days,
		EffectiveDate: effective,
	}
	if r.EndDate != nil {
		end, _ := validator.IsValidDate(*r.EndDate)
		assignment.EndDate = &end
	}
	return assignment
}

type WeeklyOffAssignmentResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	Days          []int   `json:"days"`
	EffectiveDate string  `json:"effective_date"`
	EndDate       *string `json:"end_date,omitempty"`
}

func NewWeeklyOffAssignmentResponse(a WeeklyOffAssignment) WeeklyOffAssignmentResponse {
	days := make([]int, len(a.Days))
	for i, d := range a.Days {
		days[i] = int(d)
	}
	resp := WeeklyOffAssignmentResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		Days:          days,
		EffectiveDate: a.EffectiveDate.Format(DateLayout),
	}
	if a.EndDate != nil {
		end := a.EndDate.Format(DateLayout)
		resp.EndDate = &end
	}
	return resp
}

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type HolidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}
