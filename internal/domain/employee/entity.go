package employee

import "time"

// Employee is the roster entry the leave and payroll engine works against.
type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
