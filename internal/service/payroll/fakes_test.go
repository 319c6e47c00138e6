package payroll

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSalaryRepo struct {
	mu         sync.Mutex
	structures []payroll.SalaryStructure
}

func (r *fakeSalaryRepo) Create(ctx context.Context, s payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.structures = append(r.structures, s)
	return s, nil
}

func (r *fakeSalaryRepo) GetByEmployeeID(ctx context.Context, employeeID string) ([]payroll.SalaryStructure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.SalaryStructure
	for _, s := range r.structures {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveDate.After(out[j].EffectiveDate) })
	return out, nil
}

func (r *fakeSalaryRepo) GetEffective(ctx context.Context, employeeID string, asOf time.Time) (payroll.SalaryStructure, error) {
	all, _ := r.GetByEmployeeID(ctx, employeeID)
	for _, s := range all {
		if !s.EffectiveDate.After(asOf) {
			return s, nil
		}
	}
	return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
}

type fakeSettingRepo struct {
	mu       sync.Mutex
	settings map[string]payroll.Setting
}

func newFakeSettingRepo(stored []payroll.Setting) *fakeSettingRepo {
	r := &fakeSettingRepo{settings: make(map[string]payroll.Setting)}
	for _, s := range stored {
		r.settings[s.Name] = s
	}
	return r
}

func (r *fakeSettingRepo) List(ctx context.Context) ([]payroll.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]payroll.Setting, 0, len(r.settings))
	for _, s := range r.settings {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSettingRepo) Upsert(ctx context.Context, s payroll.Setting) (payroll.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[s.Name] = s
	return s, nil
}

type fakeInputRepo struct {
	mu     sync.Mutex
	inputs map[string]payroll.PeriodInputs
}

func inputKey(employeeID string, month, year int) string {
	return fmt.Sprintf("%s|%04d-%02d", employeeID, year, month)
}

func (r *fakeInputRepo) Upsert(ctx context.Context, in payroll.PeriodInputs) (payroll.PeriodInputs, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs[inputKey(in.EmployeeID, in.Month, in.Year)] = in
	return in, nil
}

func (r *fakeInputRepo) Get(ctx context.Context, employeeID string, month, year int) (payroll.PeriodInputs, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.inputs[inputKey(employeeID, month, year)]
	if !ok {
		return payroll.PeriodInputs{}, payroll.ErrPeriodInputsNotFound
	}
	return in, nil
}

type fakePayslipRepo struct {
	mu       sync.Mutex
	payslips map[string]payroll.Payslip
	replaced int
}

func (r *fakePayslipRepo) Create(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payslips {
		if existing.EmployeeID == p.EmployeeID && existing.Month == p.Month && existing.Year == p.Year {
			return payroll.Payslip{}, payroll.ErrPayslipAlreadyExists
		}
	}
	r.payslips[p.ID] = p
	return p, nil
}

func (r *fakePayslipRepo) Replace(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payslips[p.ID]; !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	r.payslips[p.ID] = p
	r.replaced++
	return p, nil
}

func (r *fakePayslipRepo) GetByID(ctx context.Context, id string) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (r *fakePayslipRepo) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payslips {
		if p.EmployeeID == employeeID && p.Month == month && p.Year == year {
			return p, nil
		}
	}
	return payroll.Payslip{}, payroll.ErrPayslipNotFound
}

func (r *fakePayslipRepo) List(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payslip
	for _, p := range r.payslips {
		if filter.Month != nil && p.Month != *filter.Month {
			continue
		}
		if filter.Year != nil && p.Year != *filter.Year {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r *fakePayslipRepo) IsPeriodFinalized(ctx context.Context, employeeID string, month, year int) (bool, error) {
	_, err := r.GetByEmployeePeriod(ctx, employeeID, month, year)
	return err == nil, nil
}

func (r *fakePayslipRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payslips)
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *fakeEmployeeRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, e := range r.employees {
		if e.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.employees[e.ID] = e
	return e, nil
}

func (r *fakeEmployeeRepo) List(ctx context.Context, activeOnly bool) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.employees {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEmployeeRepo) SetActive(ctx context.Context, id string, active bool) (employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	e.IsActive = active
	r.employees[id] = e
	return e, nil
}

func (r *fakeEmployeeRepo) IsActive(ctx context.Context, id string) (bool, error) {
	e, ok := r.employees[id]
	return ok && e.IsActive, nil
}

// fakeSummaries reports 22 working days per month and the configured paid days per employee.
type fakeSummaries struct {
	paid map[string]decimal.Decimal
}

func (f fakeSummaries) MonthlySummary(ctx context.Context, employeeID string, year int, month time.Month) (attendance.MonthlySummary, error) {
	paid, ok := f.paid[employeeID]
	if !ok {
		paid = decimal.NewFromInt(22)
	}
	return attendance.MonthlySummary{
		EmployeeID:       employeeID,
		Month:            month,
		Year:             year,
		TotalWorkingDays: 22,
		PaidDays:         paid,
		UnpaidDays:       decimal.NewFromInt(22).Sub(paid),
	}, nil
}

type testEnv struct {
	service   *PayrollServiceImpl
	salaries  *fakeSalaryRepo
	settings  *fakeSettingRepo
	inputs    *fakeInputRepo
	payslips  *fakePayslipRepo
	employees *fakeEmployeeRepo
	summaries fakeSummaries
}

func newTestEnv(stored []payroll.Setting) *testEnv {
	env := &testEnv{
		salaries:  &fakeSalaryRepo{},
		settings:  newFakeSettingRepo(stored),
		inputs:    &fakeInputRepo{inputs: make(map[string]payroll.PeriodInputs)},
		payslips:  &fakePayslipRepo{payslips: make(map[string]payroll.Payslip)},
		employees: &fakeEmployeeRepo{employees: map[string]employee.Employee{
			"emp-1": {ID: "emp-1", EmployeeCode: "E001", FullName: "Ayu Lestari", IsActive: true},
			"emp-2": {ID: "emp-2", EmployeeCode: "E002", FullName: "Budi Santoso", IsActive: true},
			"emp-3": {ID: "emp-3", EmployeeCode: "E003", FullName: "Citra Dewi", IsActive: false},
		}},
		summaries: fakeSummaries{paid: map[string]decimal.Decimal{}},
	}
	svc := NewPayrollService(fakeTransactor{}, env.salaries, env.settings, env.inputs, env.payslips, env.employees, env.summaries, Options{Workers: 2})
	env.service = svc.(*PayrollServiceImpl)
	return env
}

func (e *testEnv) structure(employeeID, effective string, basic, hra string) {
	date, _ := time.Parse("2006-01-02", effective)
	e.salaries.structures = append(e.salaries.structures, payroll.SalaryStructure{
		ID:            "ss-" + employeeID + "-" + effective,
		EmployeeID:    employeeID,
		EffectiveDate: date,
		Basic:         dec(basic),
		HRA:           dec(hra),
	})
}
