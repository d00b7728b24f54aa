package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	GetActive(ctx context.Context) ([]Employee, error)
	// AdjustLeaveBalance adds delta to the balance and returns the new value.
	AdjustLeaveBalance(ctx context.Context, id string, delta int) (int, error)
	UpdateStatus(ctx context.Context, employee Employee) error
	Delete(ctx context.Context, id string) error
}
