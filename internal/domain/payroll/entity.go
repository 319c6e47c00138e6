package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryStructure - versioned by (EmployeeID, EffectiveDate)
type SalaryStructure struct {
	ID            string
	EmployeeID    string
	EffectiveDate time.Time
	Basic         decimal.Decimal
	HRA           decimal.Decimal
	Conveyance    decimal.Decimal
	Medical       decimal.Decimal
	Special       decimal.Decimal
	LTA           decimal.Decimal
	OtherEarnings map[string]decimal.Decimal // {"Night shift": 1500}
	CreatedAt     time.Time
}

// Gross is always derived from the components.
func (s SalaryStructure) Gross() decimal.Decimal {
	gross := s.Basic.Add(s.HRA).Add(s.Conveyance).Add(s.Medical).Add(s.Special).Add(s.LTA)
	for _, v := range s.OtherEarnings {
		gross = gross.Add(v)
	}
	return gross
}

// PeriodInputs - per employee and period fixed deductions
type PeriodInputs struct {
	EmployeeID      string
	Month           int
	Year            int
	TDS             decimal.Decimal
	Loan            decimal.Decimal
	OtherDeductions map[string]decimal.Decimal
	UpdatedAt       time.Time
}

// Earnings after pro-ration.
type Earnings struct {
	Basic      decimal.Decimal
	HRA        decimal.Decimal
	Conveyance decimal.Decimal
	Medical    decimal.Decimal
	Special    decimal.Decimal
	LTA        decimal.Decimal
	Other      map[string]decimal.Decimal
	Total      decimal.Decimal
}

type Deductions struct {
	PF    decimal.Decimal
	ESI   decimal.Decimal
	PT    decimal.Decimal
	TDS   decimal.Decimal
	Loan  decimal.Decimal
	Other map[string]decimal.Decimal
	Total decimal.Decimal
}

// Payslip - one per (EmployeeID, Month, Year)
//
// Every component and both breakdown totals are rounded to 2 places for display.
// NetPay is the unrounded earnings total minus the unrounded deductions total, rounded once,
// so Earnings.Total - Deductions.Total may differ from NetPay by 0.01.
type Payslip struct {
	ID                string
	EmployeeID        string
	Month             int
	Year              int
	SalaryStructureID string
	TotalWorkingDays  int
	PaidDays          decimal.Decimal
	UnpaidDays        decimal.Decimal
	Prorated          bool
	FullGross         decimal.Decimal
	Earnings          Earnings
	Deductions        Deductions
	NetPay            decimal.Decimal
	GeneratedAt       time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// RunFailure is one employee whose payslip could not be produced in a payroll run.
type RunFailure struct {
	EmployeeID string
	Month      int
	Year       int
	Field      string
	Error      error
}

type RunResult struct {
	Month       int
	Year        int
	Generated   []Payslip
	Overwritten []string
	Failures    []RunFailure
}
