package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrPayrollNotFound      = fmt.Errorf("%w: payroll record not found", apperror.ErrNotFound)
	ErrPayrollAlreadyPaid   = fmt.Errorf("%w: payroll record already paid, cannot modify", apperror.ErrConflict)
	ErrPayrollNotApproved   = fmt.Errorf("%w: payroll record must be approved before disbursement", apperror.ErrConflict)
	ErrInvalidStatusChange  = fmt.Errorf("%w: status can only be set to Pending or Approved", apperror.ErrValidation)
	ErrNegativeDeduction    = fmt.Errorf("%w: deductions must not be negative", apperror.ErrValidation)
	ErrEmployeeInactive     = fmt.Errorf("%w: employee is inactive", apperror.ErrConflict)
	ErrNoEmployeesToProcess = fmt.Errorf("%w: no active employees to process", apperror.ErrNotFound)
)
