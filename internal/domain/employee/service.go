package employee

import (
	"context"
)

// EmployeeService defines business logic for the employee roster
type EmployeeService interface {
	// CreateEmployee registers an employee and grants the default leave allocations
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, activeOnly bool) ([]EmployeeResponse, error)

	// SetActive activates or deactivates an employee. Inactive employees cannot apply for leave
	// and are left out of payroll runs.
	SetActive(ctx context.Context, req SetActiveRequest) (EmployeeResponse, error)
}
