package payroll

import (
	"context"
	"time"
)

// SalaryStructureRepository - interface for salary_structures table
type SalaryStructureRepository interface {
	Create(ctx context.Context, structure SalaryStructure) (SalaryStructure, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]SalaryStructure, error)
	// GetEffective returns the structure with the latest effective date on or before asOf.
	GetEffective(ctx context.Context, employeeID string, asOf time.Time) (SalaryStructure, error)
}

// SettingRepository - interface for payroll_settings table
type SettingRepository interface {
	List(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, setting Setting) (Setting, error)
}

// PeriodInputRepository - interface for payroll_inputs table
type PeriodInputRepository interface {
	Upsert(ctx context.Context, inputs PeriodInputs) (PeriodInputs, error)
	Get(ctx context.Context, employeeID string, month, year int) (PeriodInputs, error)
}

// PayslipRepository - interface for payslips table
type PayslipRepository interface {
	Create(ctx context.Context, payslip Payslip) (Payslip, error)
	// Replace overwrites the payslip of the same (employee, month, year) and keeps its id.
	Replace(ctx context.Context, payslip Payslip) (Payslip, error)
	GetByID(ctx context.Context, id string) (Payslip, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Payslip, error)
	List(ctx context.Context, filter PayslipFilter) ([]Payslip, error)
	IsPeriodFinalized(ctx context.Context, employeeID string, month, year int) (bool, error)
}
