package payroll

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== SETTINGS DTOs ==========

type UpsertSettingRequest struct {
	Name        string  `json:"-"`
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
}

func (r *UpsertSettingRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "must not exceed 100 characters"})
	}
	if validator.IsEmpty(r.Value) {
		errs = append(errs, validator.ValidationError{Field: "value", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SettingResponse struct {
	Name        string      `json:"name"`
	Value       string      `json:"value"`
	Kind        SettingKind `json:"kind"`
	Required    bool        `json:"required"`
	Description *string     `json:"description,omitempty"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

// ========== SALARY STRUCTURE DTOs ==========

type CreateSalaryStructureRequest struct {
	EmployeeID    string                     `json:"employee_id"`
	EffectiveDate string                     `json:"effective_date"`
	Basic         *decimal.Decimal           `json:"basic"`
	HRA           *decimal.Decimal           `json:"hra"`
	Conveyance    decimal.Decimal            `json:"conveyance"`
	Medical       decimal.Decimal            `json:"medical"`
	Special       decimal.Decimal            `json:"special"`
	LTA           decimal.Decimal            `json:"lta"`
	OtherEarnings map[string]decimal.Decimal `json:"other_earnings,omitempty"`
	// Gross sent by a client is ignored; it is always recomputed.
	Gross *decimal.Decimal `json:"gross,omitempty"`
}

func (r *CreateSalaryStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "must be in YYYY-MM-DD format"})
	}
	if r.Basic == nil {
		errs = append(errs, validator.ValidationError{Field: "basic", Message: "is required"})
	} else if !validator.IsNonNegative(*r.Basic) {
		errs = append(errs, validator.ValidationError{Field: "basic", Message: "must be non-negative"})
	}
	if r.HRA == nil {
		errs = append(errs, validator.ValidationError{Field: "hra", Message: "is required"})
	} else if !validator.IsNonNegative(*r.HRA) {
		errs = append(errs, validator.ValidationError{Field: "hra", Message: "must be non-negative"})
	}

	fixed := map[string]decimal.Decimal{
		"conveyance": r.Conveyance,
		"medical":    r.Medical,
		"special":    r.Special,
		"lta":        r.LTA,
	}
	for _, field := range sortedKeys(fixed) {
		if !validator.IsNonNegative(fixed[field]) {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	for _, label := range sortedKeys(r.OtherEarnings) {
		if validator.IsEmpty(label) {
			errs = append(errs, validator.ValidationError{Field: "other_earnings", Message: "labels must not be empty"})
		}
		if !validator.IsNonNegative(r.OtherEarnings[label]) {
			errs = append(errs, validator.ValidationError{Field: "other_earnings." + label, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryStructureResponse struct {
	ID            string                     `json:"id"`
	EmployeeID    string                     `json:"employee_id"`
	EffectiveDate string                     `json:"effective_date"`
	Basic         decimal.Decimal            `json:"basic"`
	HRA           decimal.Decimal            `json:"hra"`
	Conveyance    decimal.Decimal            `json:"conveyance"`
	Medical       decimal.Decimal            `json:"medical"`
	Special       decimal.Decimal            `json:"special"`
	LTA           decimal.Decimal            `json:"lta"`
	OtherEarnings map[string]decimal.Decimal `json:"other_earnings"`
	Gross         decimal.Decimal            `json:"gross"`
	CreatedAt     time.Time                  `json:"created_at"`
}

func NewSalaryStructureResponse(s SalaryStructure) SalaryStructureResponse {
	other := s.OtherEarnings
	if other == nil {
		other = map[string]decimal.Decimal{}
	}
	return SalaryStructureResponse{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		EffectiveDate: s.EffectiveDate.Format("2006-01-02"),
		Basic:         s.Basic,
		HRA:           s.HRA,
		Conveyance:    s.Conveyance,
		Medical:       s.Medical,
		Special:       s.Special,
		LTA:           s.LTA,
		OtherEarnings: other,
		Gross:         s.Gross(),
		CreatedAt:     s.CreatedAt,
	}
}

// ========== PERIOD INPUT DTOs ==========

type UpsertPeriodInputsRequest struct {
	EmployeeID      string                     `json:"employee_id"`
	Month           int                        `json:"month"`
	Year            int                        `json:"year"`
	TDS             decimal.Decimal            `json:"tds"`
	Loan            decimal.Decimal            `json:"loan"`
	OtherDeductions map[string]decimal.Decimal `json:"other_deductions,omitempty"`
}

func (r *UpsertPeriodInputsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be 1-12 and year 1970-9999"})
	}
	if !validator.IsNonNegative(r.TDS) {
		errs = append(errs, validator.ValidationError{Field: "tds", Message: "must be non-negative"})
	}
	if !validator.IsNonNegative(r.Loan) {
		errs = append(errs, validator.ValidationError{Field: "loan", Message: "must be non-negative"})
	}
	for _, label := range sortedKeys(r.OtherDeductions) {
		if !validator.IsNonNegative(r.OtherDeductions[label]) {
			errs = append(errs, validator.ValidationError{Field: "other_deductions." + label, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodInputsResponse struct {
	EmployeeID      string                     `json:"employee_id"`
	Month           int                        `json:"month"`
	Year            int                        `json:"year"`
	TDS             decimal.Decimal            `json:"tds"`
	Loan            decimal.Decimal            `json:"loan"`
	OtherDeductions map[string]decimal.Decimal `json:"other_deductions"`
}

// ========== PAYSLIP DTOs ==========

type PeriodRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be 1-12 and year 1970-9999"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunPayrollRequest struct {
	Month       int      `json:"month"`
	Year        int      `json:"year"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
	Overwrite   bool     `json:"overwrite"`
}

func (r *RunPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be 1-12 and year 1970-9999"})
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must not contain empty ids"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayslipFilter struct {
	Month      *int
	Year       *int
	EmployeeID *string
}

type EarningsResponse struct {
	Basic      decimal.Decimal            `json:"basic"`
	HRA        decimal.Decimal            `json:"hra"`
	Conveyance decimal.Decimal            `json:"conveyance"`
	Medical    decimal.Decimal            `json:"medical"`
	Special    decimal.Decimal            `json:"special"`
	LTA        decimal.Decimal            `json:"lta"`
	Other      map[string]decimal.Decimal `json:"other"`
	Total      decimal.Decimal            `json:"total"`
}

type DeductionsResponse struct {
	PF    decimal.Decimal            `json:"pf"`
	ESI   decimal.Decimal            `json:"esi"`
	PT    decimal.Decimal            `json:"pt"`
	TDS   decimal.Decimal            `json:"tds"`
	Loan  decimal.Decimal            `json:"loan"`
	Other map[string]decimal.Decimal `json:"other"`
	Total decimal.Decimal            `json:"total"`
}

type PayslipResponse struct {
	ID               string             `json:"id,omitempty"`
	EmployeeID       string             `json:"employee_id"`
	EmployeeName     *string            `json:"employee_name,omitempty"`
	EmployeeCode     *string            `json:"employee_code,omitempty"`
	Month            int                `json:"month"`
	Year             int                `json:"year"`
	TotalWorkingDays int                `json:"total_working_days"`
	PaidDays         decimal.Decimal    `json:"paid_days"`
	UnpaidDays       decimal.Decimal    `json:"unpaid_days"`
	Prorated         bool               `json:"prorated"`
	FullGross        decimal.Decimal    `json:"full_gross"`
	Earnings         EarningsResponse   `json:"earnings"`
	Deductions       DeductionsResponse `json:"deductions"`
	NetPay           decimal.Decimal    `json:"net_pay"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

func NewPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:               p.ID,
		EmployeeID:       p.EmployeeID,
		EmployeeName:     p.EmployeeName,
		EmployeeCode:     p.EmployeeCode,
		Month:            p.Month,
		Year:             p.Year,
		TotalWorkingDays: p.TotalWorkingDays,
		PaidDays:         p.PaidDays,
		UnpaidDays:       p.UnpaidDays,
		Prorated:         p.Prorated,
		FullGross:        p.FullGross,
		Earnings: EarningsResponse{
			Basic:      p.Earnings.Basic,
			HRA:        p.Earnings.HRA,
			Conveyance: p.Earnings.Conveyance,
			Medical:    p.Earnings.Medical,
			Special:    p.Earnings.Special,
			LTA:        p.Earnings.LTA,
			Other:      nonNil(p.Earnings.Other),
			Total:      p.Earnings.Total,
		},
		Deductions: DeductionsResponse{
			PF:    p.Deductions.PF,
			ESI:   p.Deductions.ESI,
			PT:    p.Deductions.PT,
			TDS:   p.Deductions.TDS,
			Loan:  p.Deductions.Loan,
			Other: nonNil(p.Deductions.Other),
			Total: p.Deductions.Total,
		},
		NetPay:      p.NetPay,
		GeneratedAt: p.GeneratedAt,
	}
}

type RunFailureResponse struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Field      string `json:"field,omitempty"`
	Error      string `json:"error"`
}

type RunPayrollResponse struct {
	Month       int                  `json:"month"`
	Year        int                  `json:"year"`
	Generated   []PayslipResponse    `json:"generated"`
	Overwritten []string             `json:"overwritten"`
	Failures    []RunFailureResponse `json:"failures"`
}

func NewRunPayrollResponse(r RunResult) RunPayrollResponse {
	resp := RunPayrollResponse{
		Month:       r.Month,
		Year:        r.Year,
		Generated:   make([]PayslipResponse, 0, len(r.Generated)),
		Overwritten: r.Overwritten,
		Failures:    make([]RunFailureResponse, 0, len(r.Failures)),
	}
	if resp.Overwritten == nil {
		resp.Overwritten = []string{}
	}
	for _, p := range r.Generated {
		resp.Generated = append(resp.Generated, NewPayslipResponse(p))
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, RunFailureResponse{
			EmployeeID: f.EmployeeID,
			Month:      f.Month,
			Year:       f.Year,
			Field:      f.Field,
			Error:      f.Error.Error(),
		})
	}
	return resp
}

func nonNil(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	return m
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
