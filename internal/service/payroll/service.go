package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Workers bounds how many employees a payroll run computes at once.
	Workers  int
	Currency string
}

type PayrollServiceImpl struct {
	transactor   database.Transactor
	salaryRepo   payroll.SalaryStructureRepository
	settingRepo  payroll.SettingRepository
	inputRepo    payroll.PeriodInputRepository
	payslipRepo  payroll.PayslipRepository
	employeeRepo employee.EmployeeRepository
	summaries    payroll.SummaryProvider
	locks        *keylock.KeyLock
	opts         Options
	now          func() time.Time
}

func NewPayrollService(
	transactor database.Transactor,
	salaryRepo payroll.SalaryStructureRepository,
	settingRepo payroll.SettingRepository,
	inputRepo payroll.PeriodInputRepository,
	payslipRepo payroll.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	summaries payroll.SummaryProvider,
	opts Options,
) payroll.PayrollService {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &PayrollServiceImpl{
		transactor:   transactor,
		salaryRepo:   salaryRepo,
		settingRepo:  settingRepo,
		inputRepo:    inputRepo,
		payslipRepo:  payslipRepo,
		employeeRepo: employeeRepo,
		summaries:    summaries,
		locks:        keylock.New(),
		opts:         opts,
		now:          time.Now,
	}
}

// ========== SETTINGS ==========

func (s *PayrollServiceImpl) ListSettings(ctx context.Context) ([]payroll.SettingResponse, error) {
	stored, err := s.settingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll settings: %w", err)
	}

	byName := make(map[string]payroll.Setting, len(stored))
	for _, st := range stored {
		byName[st.Name] = st
	}

	responses := make([]payroll.SettingResponse, 0, len(payroll.SettingSpecs)+len(stored))
	for name, spec := range payroll.SettingSpecs {
		resp := payroll.SettingResponse{Name: name, Kind: spec.Kind, Required: spec.Required}
		if st, ok := byName[name]; ok {
			resp.Value = st.Value
			resp.UpdatedAt = &st.UpdatedAt
			resp.Description = st.Description
		}
		if resp.Description == nil {
			desc := spec.Description
			resp.Description = &desc
		}
		responses = append(responses, resp)
	}
	for _, st := range stored {
		if _, known := payroll.SettingSpecs[st.Name]; known {
			continue
		}
		updatedAt := st.UpdatedAt
		responses = append(responses, payroll.SettingResponse{
			Name:        st.Name,
			Value:       st.Value,
			Kind:        payroll.KindString,
			Description: st.Description,
			UpdatedAt:   &updatedAt,
		})
	}

	sort.Slice(responses, func(i, j int) bool { return responses[i].Name < responses[j].Name })
	return responses, nil
}

func (s *PayrollServiceImpl) UpsertSetting(ctx context.Context, req payroll.UpsertSettingRequest) (payroll.SettingResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SettingResponse{}, err
	}

	kind := KindOf(req.Name)
	if _, err := ParseSettingValue(req.Name, kind, req.Value); err != nil {
		var cfgErr *payroll.ConfigurationError
		if errors.As(err, &cfgErr) {
			return payroll.SettingResponse{}, validator.ValidationErrors{{Field: "value", Message: cfgErr.Reason}}
		}
		return payroll.SettingResponse{}, err
	}

	saved, err := s.settingRepo.Upsert(ctx, payroll.Setting{
		Name:        req.Name,
		Value:       req.Value,
		Description: req.Description,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return payroll.SettingResponse{}, fmt.Errorf("failed to save payroll setting: %w", err)
	}

	slog.Info("Payroll setting updated", "name", saved.Name, "kind", kind)
	return payroll.SettingResponse{
		Name:        saved.Name,
		Value:       saved.Value,
		Kind:        kind,
		Required:    payroll.SettingSpecs[saved.Name].Required,
		Description: saved.Description,
		UpdatedAt:   &saved.UpdatedAt,
	}, nil
}

func (s *PayrollServiceImpl) loadSettings(ctx context.Context) (payroll.Settings, error) {
	stored, err := s.settingRepo.List(ctx)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to load payroll settings: %w", err)
	}
	return ParseSettings(stored)
}

// ========== SALARY STRUCTURES ==========

func (s *PayrollServiceImpl) CreateSalaryStructure(ctx context.Context, req payroll.CreateSalaryStructureRequest) (payroll.SalaryStructureResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryStructureResponse{}, err
	}
	effective, _ := validator.IsValidDate(req.EffectiveDate)

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.SalaryStructureResponse{}, payroll.ErrEmployeeNotFound
		}
		return payroll.SalaryStructureResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.SalaryStructureResponse{}, fmt.Errorf("failed to generate salary structure id: %w", err)
	}

	var created payroll.SalaryStructure
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.salaryRepo.GetByEmployeeID(txCtx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to list salary structures: %w", err)
		}
		for _, st := range existing {
			if st.EffectiveDate.Equal(effective) {
				return payroll.ErrSalaryStructureExists
			}
		}

		created, err = s.salaryRepo.Create(txCtx, payroll.SalaryStructure{
			ID:            id.String(),
			EmployeeID:    req.EmployeeID,
			EffectiveDate: effective,
			Basic:         *req.Basic,
			HRA:           *req.HRA,
			Conveyance:    req.Conveyance,
			Medical:       req.Medical,
			Special:       req.Special,
			LTA:           req.LTA,
			OtherEarnings: req.OtherEarnings,
			CreatedAt:     s.now(),
		})
		return err
	})
	if err != nil {
		return payroll.SalaryStructureResponse{}, err
	}

	if req.Gross != nil && !req.Gross.Equal(created.Gross()) {
		slog.Warn("Client gross ignored", "employee_id", created.EmployeeID, "client_gross", req.Gross.String(), "gross", created.Gross().String())
	}
	slog.Info("Salary structure created", "employee_id", created.EmployeeID, "effective_date", req.EffectiveDate, "gross", created.Gross().String())
	return payroll.NewSalaryStructureResponse(created), nil
}

func (s *PayrollServiceImpl) ListSalaryStructures(ctx context.Context, employeeID string) ([]payroll.SalaryStructureResponse, error) {
	structures, err := s.salaryRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary structures: %w", err)
	}

	responses := make([]payroll.SalaryStructureResponse, 0, len(structures))
	for _, st := range structures {
		responses = append(responses, payroll.NewSalaryStructureResponse(st))
	}
	return responses, nil
}

// ========== PERIOD INPUTS ==========

func (s *PayrollServiceImpl) UpsertPeriodInputs(ctx context.Context, req payroll.UpsertPeriodInputsRequest) (payroll.PeriodInputsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodInputsResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.PeriodInputsResponse{}, payroll.ErrEmployeeNotFound
		}
		return payroll.PeriodInputsResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	saved, err := s.inputRepo.Upsert(ctx, payroll.PeriodInputs{
		EmployeeID:      req.EmployeeID,
		Month:           req.Month,
		Year:            req.Year,
		TDS:             req.TDS,
		Loan:            req.Loan,
		OtherDeductions: req.OtherDeductions,
		UpdatedAt:       s.now(),
	})
	if err != nil {
		return payroll.PeriodInputsResponse{}, fmt.Errorf("failed to save payroll inputs: %w", err)
	}

	resp := payroll.PeriodInputsResponse{
		EmployeeID:      saved.EmployeeID,
		Month:           saved.Month,
		Year:            saved.Year,
		TDS:             saved.TDS,
		Loan:            saved.Loan,
		OtherDeductions: saved.OtherDeductions,
	}
	if resp.OtherDeductions == nil {
		resp.OtherDeductions = map[string]decimal.Decimal{}
	}
	return resp, nil
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.PeriodRequest) (payroll.PayslipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayslipResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.PayslipResponse{}, payroll.ErrEmployeeNotFound
		}
		return payroll.PayslipResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	slip, err := s.compute(ctx, settings, emp, req.Month, req.Year)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return payroll.NewPayslipResponse(slip), nil
}

// compute assembles the calculator inputs for one employee and period. It persists nothing.
func (s *PayrollServiceImpl) compute(ctx context.Context, settings payroll.Settings, emp employee.Employee, month, year int) (payroll.Payslip, error) {
	periodEnd := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)

	structure, err := s.salaryRepo.GetEffective(ctx, emp.ID, periodEnd)
	if err != nil {
		return payroll.Payslip{}, err
	}

	summary, err := s.summaries.MonthlySummary(ctx, emp.ID, year, time.Month(month))
	if err != nil {
		return payroll.Payslip{}, err
	}

	inputs, err := s.inputRepo.Get(ctx, emp.ID, month, year)
	if err != nil {
		if !errors.Is(err, payroll.ErrPeriodInputsNotFound) {
			return payroll.Payslip{}, fmt.Errorf("failed to get payroll inputs: %w", err)
		}
		inputs = payroll.PeriodInputs{EmployeeID: emp.ID, Month: month, Year: year}
	}

	slip, err := Calculate(structure, summary, settings, inputs)
	if err != nil {
		return payroll.Payslip{}, err
	}

	slip.GeneratedAt = s.now()
	name, code := emp.FullName, emp.EmployeeCode
	slip.EmployeeName = &name
	slip.EmployeeCode = &code
	return slip, nil
}

func (s *PayrollServiceImpl) RunPayroll(ctx context.Context, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunPayrollResponse{}, err
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		slog.Error("Payroll run aborted", "month", req.Month, "year", req.Year, "error", err)
		return payroll.RunPayrollResponse{}, err
	}

	result := payroll.RunResult{Month: req.Month, Year: req.Year}
	employees, failures, err := s.runPopulation(ctx, req)
	if err != nil {
		return payroll.RunPayrollResponse{}, err
	}
	result.Failures = append(result.Failures, failures...)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			slip, overwritten, err := s.generate(gctx, settings, emp, req.Month, req.Year, req.Overwrite)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, s.failure(emp.ID, req.Month, req.Year, err))
				return nil
			}
			result.Generated = append(result.Generated, slip)
			if overwritten {
				result.Overwritten = append(result.Overwritten, emp.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.RunPayrollResponse{}, err
	}
	if err := ctx.Err(); err != nil {
		return payroll.RunPayrollResponse{}, err
	}

	sort.Slice(result.Generated, func(i, j int) bool { return result.Generated[i].EmployeeID < result.Generated[j].EmployeeID })
	sort.Strings(result.Overwritten)
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].EmployeeID < result.Failures[j].EmployeeID })

	slog.Info("Payroll run completed",
		"month", req.Month,
		"year", req.Year,
		"generated", len(result.Generated),
		"overwritten", len(result.Overwritten),
		"failed", len(result.Failures),
	)
	return payroll.NewRunPayrollResponse(result), nil
}

// runPopulation resolves the employees of a run. An explicit id list is honored as given;
// unknown ids become failures instead of aborting the run.
func (s *PayrollServiceImpl) runPopulation(ctx context.Context, req payroll.RunPayrollRequest) ([]employee.Employee, []payroll.RunFailure, error) {
	if len(req.EmployeeIDs) == 0 {
		employees, err := s.employeeRepo.List(ctx, true)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get employees: %w", err)
		}
		return employees, nil, nil
	}

	seen := make(map[string]bool, len(req.EmployeeIDs))
	var employees []employee.Employee
	var failures []payroll.RunFailure
	for _, id := range req.EmployeeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		emp, err := s.employeeRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				failures = append(failures, payroll.RunFailure{
					EmployeeID: id, Month: req.Month, Year: req.Year, Field: "employee_id", Error: payroll.ErrEmployeeNotFound,
				})
				continue
			}
			return nil, nil, fmt.Errorf("failed to get employee %s: %w", id, err)
		}
		employees = append(employees, emp)
	}
	return employees, failures, nil
}

// generate computes and stores one payslip. An existing payslip for the period is a conflict
// unless overwrite is set, in which case it is replaced under its previous id.
func (s *PayrollServiceImpl) generate(ctx context.Context, settings payroll.Settings, emp employee.Employee, month, year int, overwrite bool) (payroll.Payslip, bool, error) {
	slip, err := s.compute(ctx, settings, emp, month, year)
	if err != nil {
		return payroll.Payslip{}, false, err
	}

	unlock := s.locks.Lock(fmt.Sprintf("%s|%04d-%02d", emp.ID, year, month))
	defer unlock()

	var saved payroll.Payslip
	var overwritten bool
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.payslipRepo.GetByEmployeePeriod(txCtx, emp.ID, month, year)
		switch {
		case err == nil:
			if !overwrite {
				return fmt.Errorf("%w: payslip %s", payroll.ErrPayslipAlreadyExists, existing.ID)
			}
			slip.ID = existing.ID
			slip.CreatedAt = existing.CreatedAt
			slip.UpdatedAt = s.now()
			saved, err = s.payslipRepo.Replace(txCtx, slip)
			if err != nil {
				return fmt.Errorf("failed to replace payslip: %w", err)
			}
			overwritten = true
			slog.Warn("Payslip overwritten",
				"employee_id", emp.ID,
				"month", month,
				"year", year,
				"previous_payslip_id", existing.ID,
				"previous_net_pay", existing.NetPay.StringFixed(2),
				"net_pay", saved.NetPay.StringFixed(2),
			)
			return nil

		case errors.Is(err, payroll.ErrPayslipNotFound):
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate payslip id: %w", err)
			}
			slip.ID = id.String()
			slip.CreatedAt = s.now()
			slip.UpdatedAt = slip.CreatedAt
			saved, err = s.payslipRepo.Create(txCtx, slip)
			if err != nil {
				return fmt.Errorf("failed to create payslip: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("failed to check existing payslip: %w", err)
		}
	})
	if err != nil {
		return payroll.Payslip{}, false, err
	}

	saved.EmployeeName = slip.EmployeeName
	saved.EmployeeCode = slip.EmployeeCode
	slog.Info("Payslip generated", "employee_id", emp.ID, "month", month, "year", year, "payslip_id", saved.ID, "net_pay", saved.NetPay.StringFixed(2))
	return saved, overwritten, nil
}

// failure classifies a per-employee error for the run report and logs it at the matching level.
func (s *PayrollServiceImpl) failure(employeeID string, month, year int, err error) payroll.RunFailure {
	f := payroll.RunFailure{EmployeeID: employeeID, Month: month, Year: year, Error: err}

	var cfgErr *payroll.ConfigurationError
	var negErr *payroll.NegativeNetPayError
	var consErr *attendance.ConsistencyError
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &cfgErr):
		f.Field = cfgErr.Setting
	case errors.As(err, &negErr):
		f.Field = "net_pay"
	case errors.As(err, &consErr):
		f.Field = consErr.Field
	case errors.As(err, &verrs) && len(verrs) > 0:
		f.Field = verrs[0].Field
	case errors.Is(err, payroll.ErrSalaryStructureNotFound):
		f.Field = "salary_structure"
	case errors.Is(err, payroll.ErrPayslipAlreadyExists):
		f.Field = "overwrite"
	}

	if cfgErr != nil || negErr != nil || consErr != nil {
		slog.Error("Payslip calculation failed", "employee_id", employeeID, "month", month, "year", year, "field", f.Field, "error", err)
	} else {
		slog.Warn("Payslip not generated", "employee_id", employeeID, "month", month, "year", year, "field", f.Field, "error", err)
	}
	return f
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	slip, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return payroll.NewPayslipResponse(slip), nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.PayslipResponse, error) {
	slips, err := s.payslipRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}

	responses := make([]payroll.PayslipResponse, 0, len(slips))
	for _, p := range slips {
		responses = append(responses, payroll.NewPayslipResponse(p))
	}
	return responses, nil
}

func (s *PayrollServiceImpl) RenderPayslipPDF(ctx context.Context, id string) ([]byte, error) {
	slip, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderPayslip(slip, s.opts.Currency)
}
