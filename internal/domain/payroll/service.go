package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// GeneratePayroll computes and upserts the month's rows (HR only).
	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error)

	ListPayroll(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	GetPayroll(ctx context.Context, id string) (PayrollResponse, error)

	// UpdatePayroll applies HR adjustments and recomputes net pay (HR only).
	UpdatePayroll(ctx context.Context, req UpdatePayrollRequest) (PayrollResponse, error)

	// DisbursePayroll marks an approved row as paid (HR only).
	DisbursePayroll(ctx context.Context, req DisburseRequest) (PayrollResponse, error)

	GetSummary(ctx context.Context, month string) (PayrollSummaryResponse, error)

	// ExportRegister writes the month's payroll register as a spreadsheet.
	ExportRegister(ctx context.Context, month string, w io.Writer) error
}
