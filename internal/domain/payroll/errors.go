package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrSalaryStructureNotFound = errors.New("no salary structure effective for this period")
	ErrSalaryStructureExists   = errors.New("salary structure already exists for this effective date")
	ErrPayslipNotFound         = errors.New("payslip not found")
	ErrPayslipAlreadyExists    = errors.New("payslip already exists for this period")
	ErrPeriodInputsNotFound    = errors.New("payroll inputs not found for this period")
	ErrEmployeeNotFound        = errors.New("employee not found")
)

// ConfigurationError is a payroll setting that is missing or cannot be read as its declared kind.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("payroll setting %q: %s", e.Setting, e.Reason)
}

// NegativeNetPayError is raised instead of clamping a negative net pay to zero.
type NegativeNetPayError struct {
	EmployeeID string
	Month      int
	Year       int
	NetPay     decimal.Decimal
}

func (e *NegativeNetPayError) Error() string {
	return fmt.Sprintf("net pay for employee %s in %04d-%02d is negative: %s", e.EmployeeID, e.Year, e.Month, e.NetPay.StringFixed(2))
}
