package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
)

// AllocationGranter seeds a new employee's leave balances.
type AllocationGranter interface {
	GrantDefaults(ctx context.Context, employeeID string) ([]leave.LeaveBalance, error)
}

type EmployeeServiceImpl struct {
	transactor database.Transactor
	employee.EmployeeRepository
	granter AllocationGranter
}

func NewEmployeeService(
	transactor database.Transactor,
	employeeRepository employee.EmployeeRepository,
	granter AllocationGranter,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		transactor:         transactor,
		EmployeeRepository: employeeRepository,
		granter:            granter,
	}
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to generate employee id: %w", err)
	}

	var created employee.Employee
	var granted []leave.LeaveBalance
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		exists, err := s.EmployeeRepository.ExistsByCode(txCtx, req.EmployeeCode)
		if err != nil {
			return fmt.Errorf("failed to check employee code existence: %w", err)
		}
		if exists {
			return employee.ErrEmployeeCodeExists
		}

		now := time.Now()
		created, err = s.EmployeeRepository.Create(txCtx, employee.Employee{
			ID:           id.String(),
			EmployeeCode: req.EmployeeCode,
			FullName:     req.FullName,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}

		granted, err = s.granter.GrantDefaults(txCtx, created.ID)
		if err != nil {
			return fmt.Errorf("failed to grant default leave allocations: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "employee_code", created.EmployeeCode, "leave_types_granted", len(granted))
	return employee.NewEmployeeResponse(created), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, activeOnly bool) ([]employee.EmployeeResponse, error) {
	employees, err := s.EmployeeRepository.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}
	return responses, nil
}

func (s *EmployeeServiceImpl) SetActive(ctx context.Context, req employee.SetActiveRequest) (employee.EmployeeResponse, error) {
	current, err := s.EmployeeRepository.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if current.IsActive == req.Active {
		if req.Active {
			return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyActive
		}
		return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyInactive
	}

	updated, err := s.EmployeeRepository.SetActive(ctx, req.ID, req.Active)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee status: %w", err)
	}

	slog.Info("Employee status changed", "employee_id", updated.ID, "active", updated.IsActive)
	return employee.NewEmployeeResponse(updated), nil
}
