package payroll

import "context"

type PayrollRepository interface {
	// GetByEmployeeMonthForUpdate locks the existing row, returning nil when none exists.
	GetByEmployeeMonthForUpdate(ctx context.Context, employeeID, month string) (*Payroll, error)

	// Upsert inserts or overwrites the computed figures for (employee, month).
	// Status, notes and payment reference of an existing row are kept, and a
	// Paid row is never touched (ErrPayrollAlreadyPaid).
	Upsert(ctx context.Context, record Payroll) (Payroll, error)

	GetByID(ctx context.Context, id string) (Payroll, error)
	List(ctx context.Context, filter PayrollFilter) ([]Payroll, int64, error)

	// Update writes HR adjustments. Paid rows yield ErrPayrollAlreadyPaid.
	Update(ctx context.Context, record Payroll) error

	// MarkPaid moves an Approved row to Paid.
	MarkPaid(ctx context.Context, record Payroll) error

	Summary(ctx context.Context, month string) ([]StatusSummary, error)
}
