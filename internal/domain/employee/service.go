package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// CreateEmployee creates an employee and, when a password is given, its login (HR only)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// GetEmployee returns one employee; employees may only read themselves
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// ListEmployees lists employees with filters (HR only)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// UpdateEmployee patches salary, schedule, balance or override (HR only)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// UpdateStatus activates or deactivates an employee and its login (HR only)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (EmployeeResponse, error)

	// DeleteEmployee purges the employee and its attendance rows (HR only)
	DeleteEmployee(ctx context.Context, id string) error
}
