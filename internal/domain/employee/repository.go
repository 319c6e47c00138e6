package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ExistsByCode(ctx context.Context, employeeCode string) (bool, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	List(ctx context.Context, activeOnly bool) ([]Employee, error)
	SetActive(ctx context.Context, id string, active bool) (Employee, error)
	// IsActive reports false for unknown ids.
	IsActive(ctx context.Context, id string) (bool, error)
}
