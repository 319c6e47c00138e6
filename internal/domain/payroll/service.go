package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
)

type PayrollService interface {
	// Settings
	ListSettings(ctx context.Context) ([]SettingResponse, error)
	UpsertSetting(ctx context.Context, req UpsertSettingRequest) (SettingResponse, error)

	// Salary structures
	CreateSalaryStructure(ctx context.Context, req CreateSalaryStructureRequest) (SalaryStructureResponse, error)
	ListSalaryStructures(ctx context.Context, employeeID string) ([]SalaryStructureResponse, error)

	// Period inputs
	UpsertPeriodInputs(ctx context.Context, req UpsertPeriodInputsRequest) (PeriodInputsResponse, error)

	// Payslips
	Preview(ctx context.Context, req PeriodRequest) (PayslipResponse, error)
	RunPayroll(ctx context.Context, req RunPayrollRequest) (RunPayrollResponse, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) ([]PayslipResponse, error)
	RenderPayslipPDF(ctx context.Context, id string) ([]byte, error)
}

// SummaryProvider supplies the attendance summary a payslip is computed from.
type SummaryProvider interface {
	MonthlySummary(ctx context.Context, employeeID string, year int, month time.Month) (attendance.MonthlySummary, error)
}
