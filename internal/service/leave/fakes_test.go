package leave

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTypeRepo struct {
	mu    sync.Mutex
	types map[string]leave.LeaveType
}

func newFakeTypeRepo(types ...leave.LeaveType) *fakeTypeRepo {
	r := &fakeTypeRepo{types: make(map[string]leave.LeaveType)}
	for _, t := range types {
		r.types[t.Name] = t
	}
	return r
}

func (r *fakeTypeRepo) Create(ctx context.Context, t leave.LeaveType) (leave.LeaveType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.Name]; ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeExists
	}
	r.types[t.Name] = t
	return t, nil
}

func (r *fakeTypeRepo) GetByName(ctx context.Context, name string) (leave.LeaveType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[name]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return t, nil
}

func (r *fakeTypeRepo) List(ctx context.Context) ([]leave.LeaveType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]leave.LeaveType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTypeRepo) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; !ok {
		return leave.ErrLeaveTypeNotFound
	}
	delete(r.types, name)
	return nil
}

type fakeBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]leave.LeaveBalance
}

func newFakeBalanceRepo(balances ...leave.LeaveBalance) *fakeBalanceRepo {
	r := &fakeBalanceRepo{balances: make(map[string]leave.LeaveBalance)}
	for _, b := range balances {
		r.balances[b.Key()] = b
	}
	return r
}

func (r *fakeBalanceRepo) Get(ctx context.Context, employeeID, leaveType string) (leave.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[leave.BalanceKey(employeeID, leaveType)]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (r *fakeBalanceRepo) GetForUpdate(ctx context.Context, employeeID, leaveType string) (leave.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := leave.BalanceKey(employeeID, leaveType)
	b, ok := r.balances[key]
	if !ok {
		b = leave.LeaveBalance{EmployeeID: employeeID, LeaveType: leaveType, CurrentBalance: decimal.Zero, TotalAllocated: decimal.Zero}
		r.balances[key] = b
	}
	return b, nil
}

func (r *fakeBalanceRepo) GetByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveBalance
	for _, b := range r.balances {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBalanceRepo) Upsert(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[b.Key()] = b
	return b, nil
}

func (r *fakeBalanceRepo) CountByLeaveType(ctx context.Context, leaveType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.balances {
		if b.LeaveType == leaveType {
			n++
		}
	}
	return n, nil
}

func (r *fakeBalanceRepo) DeleteByLeaveType(ctx context.Context, leaveType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, b := range r.balances {
		if b.LeaveType == leaveType {
			delete(r.balances, k)
			n++
		}
	}
	return n, nil
}

func (r *fakeBalanceRepo) balance(employeeID, leaveType string) leave.LeaveBalance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[leave.BalanceKey(employeeID, leaveType)]
}

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[string]leave.LeaveApplication
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[string]leave.LeaveApplication)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, a leave.LeaveApplication) (leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[a.ID] = a
	return a, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return leave.LeaveApplication{}, leave.ErrApplicationNotFound
	}
	return a, nil
}

func (r *fakeApplicationRepo) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveApplication, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeApplicationRepo) GetByEmployeeID(ctx context.Context, employeeID string, filter leave.ApplicationFilter) ([]leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveApplication
	for _, a := range r.apps {
		if a.EmployeeID != employeeID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeApplicationRepo) GetInRange(ctx context.Context, employeeID string, from, to time.Time, statuses []leave.ApplicationStatus) ([]leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveApplication
	for _, a := range r.apps {
		if a.EmployeeID != employeeID || a.ToDate.Before(from) || a.FromDate.After(to) {
			continue
		}
		for _, s := range statuses {
			if a.Status == s {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) Update(ctx context.Context, a leave.LeaveApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[a.ID]; !ok {
		return leave.ErrApplicationNotFound
	}
	r.apps[a.ID] = a
	return nil
}

func (r *fakeApplicationRepo) CountActiveByLeaveType(ctx context.Context, leaveType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.apps {
		if a.LeaveType == leaveType && !a.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

type fakeEmployees map[string]bool

func (f fakeEmployees) IsActive(ctx context.Context, employeeID string) (bool, error) {
	return f[employeeID], nil
}

type testEnv struct {
	types    *fakeTypeRepo
	balances *fakeBalanceRepo
	apps     *fakeApplicationRepo
	ledger   *LedgerService
	requests *RequestService
	typesSvc *TypeService
	service  leave.LeaveService
}

const testEmployee = "0192b7a8-3c4d-7e5f-8a9b-0c1d2e3f4a5b"

func newTestEnv(cascade bool, balances ...leave.LeaveBalance) *testEnv {
	annual := decimal.NewFromInt(12)
	env := &testEnv{
		types: newFakeTypeRepo(
			leave.LeaveType{Name: "Annual", IsPaid: true, DefaultAllocation: &annual},
			leave.LeaveType{Name: "Unpaid", IsPaid: false},
		),
		balances: newFakeBalanceRepo(balances...),
		apps:     newFakeApplicationRepo(),
	}
	env.ledger = NewLedgerService(fakeTransactor{}, env.types, env.balances)
	env.requests = NewRequestService(fakeTransactor{}, env.types, env.apps, fakeEmployees{testEmployee: true}, env.ledger)
	env.typesSvc = NewTypeService(fakeTransactor{}, env.types, env.balances, env.apps, cascade)
	env.service = NewLeaveService(env.types, env.balances, env.apps, env.typesSvc, env.ledger, env.requests)
	return env
}

func annualBalance(current, total int64) leave.LeaveBalance {
	return leave.LeaveBalance{
		EmployeeID:     testEmployee,
		LeaveType:      "Annual",
		CurrentBalance: decimal.NewFromInt(current),
		TotalAllocated: decimal.NewFromInt(total),
	}
}
