package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

type RecordPunchRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	CheckIn    *string `json:"check_in,omitempty"`
	CheckOut   *string `json:"check_out,omitempty"`
}

// Validate allows a check-out alone; it is merged with the check-in already recorded for the date.
func (r *RecordPunchRequest) Validate() error {
	errs := validatePunchFields(r.EmployeeID, r.Date, r.CheckIn, r.CheckOut)
	if r.CheckIn == nil && r.CheckOut == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in",
			Message: "check_in or check_out is required",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApplyCorrectionRequest struct {
	EmployeeID     string  `json:"employee_id"`
	Date           string  `json:"date"`
	CheckIn        *string `json:"check_in,omitempty"`
	CheckOut       *string `json:"check_out,omitempty"`
	OverrideStatus *string `json:"override_status,omitempty"`
	Reason         string  `json:"reason"`
	ActorID        string  `json:"-"`
}

func (r *ApplyCorrectionRequest) Validate() error {
	errs := validatePunchFields(r.EmployeeID, r.Date, r.CheckIn, r.CheckOut)

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if r.OverrideStatus != nil && !DayStatus(*r.OverrideStatus).IsOverridable() {
		errs = append(errs, validator.ValidationError{
			Field:   "override_status",
			Message: ErrInvalidOverrideStatus.Error(),
		})
	}

	if r.CheckOut != nil && r.CheckIn == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: "check_out requires check_in",
		})
	}

	if r.OverrideStatus == nil && r.CheckIn == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in",
			Message: "check_in or override_status is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validatePunchFields(employeeID, date string, checkIn, checkOut *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDate(date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	var in, out time.Time
	inOK, outOK := false, false
	if checkIn != nil {
		if in, inOK = validator.IsValidDateTime(*checkIn); !inOK {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in",
				Message: "check_in must be an RFC3339 timestamp with zone",
			})
		}
	}
	if checkOut != nil {
		if out, outOK = validator.IsValidDateTime(*checkOut); !outOK {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: "check_out must be an RFC3339 timestamp with zone",
			})
		}
	}
	if inOK && outOK && !out.After(in) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: ErrCheckOutBeforeCheckIn.Error(),
		})
	}

	return errs
}

type PunchResponse struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employee_id"`
	Date           string     `json:"date"`
	CheckIn        *time.Time `json:"check_in,omitempty"`
	CheckOut       *time.Time `json:"check_out,omitempty"`
	FromCorrection bool       `json:"from_correction"`
	OverrideStatus *DayStatus `json:"override_status,omitempty"`
}

func NewPunchResponse(p Punch) PunchResponse {
	return PunchResponse{
		ID:             p.ID,
		EmployeeID:     p.EmployeeID,
		Date:           p.Date.Format("2006-01-02"),
		CheckIn:        p.CheckIn,
		CheckOut:       p.CheckOut,
		FromCorrection: p.FromCorrection,
		OverrideStatus: p.OverrideStatus,
	}
}

type DayRecordResponse struct {
	Date               string    `json:"date"`
	Status             DayStatus `json:"status"`
	WorkingDay         bool      `json:"working_day"`
	PaidFraction       string    `json:"paid_fraction"`
	WorkedHours        string    `json:"worked_hours"`
	LeaveApplicationID *string   `json:"leave_application_id,omitempty"`
}

func NewDayRecordResponses(records []DayRecord) []DayRecordResponse {
	resp := make([]DayRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, DayRecordResponse{
			Date:               r.Date.Format("2006-01-02"),
			Status:             r.Status,
			WorkingDay:         r.WorkingDay,
			PaidFraction:       r.PaidFraction.String(),
			WorkedHours:        r.WorkedHours.StringFixed(2),
			LeaveApplicationID: r.LeaveApplicationID,
		})
	}
	return resp
}

type MonthlySummaryResponse struct {
	EmployeeID          string `json:"employee_id"`
	Month               int    `json:"month"`
	Year                int    `json:"year"`
	TotalDays           int    `json:"total_days"`
	TotalWorkingDays    int    `json:"total_working_days"`
	Present             int    `json:"present"`
	PresentByCorrection int    `json:"present_by_correction"`
	Late                int    `json:"late"`
	OnLeave             int    `json:"on_leave"`
	HalfDayLeave        int    `json:"half_day_leave"`
	CancellationPending int    `json:"leave_cancellation_pending"`
	LOP                 int    `json:"lop"`
	Holiday             int    `json:"holiday"`
	WeeklyOff           int    `json:"weekly_off"`
	UnaccountedAbsent   int    `json:"unaccounted_absent"`
	WorkingHours        string `json:"working_hours"`
	PaidDays            string `json:"paid_days"`
	UnpaidDays          string `json:"unpaid_days"`
}

func NewMonthlySummaryResponse(s MonthlySummary) MonthlySummaryResponse {
	return MonthlySummaryResponse{
		EmployeeID:          s.EmployeeID,
		Month:               int(s.Month),
		Year:                s.Year,
		TotalDays:           s.TotalDays,
		TotalWorkingDays:    s.TotalWorkingDays,
		Present:             s.Present,
		PresentByCorrection: s.PresentByCorrection,
		Late:                s.Late,
		OnLeave:             s.OnLeave,
		HalfDayLeave:        s.HalfDayLeave,
		CancellationPending: s.CancellationPending,
		LOP:                 s.LOP,
		Holiday:             s.Holiday,
		WeeklyOff:           s.WeeklyOff,
		UnaccountedAbsent:   s.UnaccountedAbsent,
		WorkingHours:        s.WorkingHours.StringFixed(2),
		PaidDays:            s.PaidDays.String(),
		UnpaidDays:          s.UnpaidDays.String(),
	}
}
