package employee

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrEmployeeNotFound        = fmt.Errorf("%w: employee not found", apperror.ErrNotFound)
	ErrEmployeeCodeExists      = fmt.Errorf("%w: employee code already exists", apperror.ErrConflict)
	ErrEmailExists             = fmt.Errorf("%w: email already registered", apperror.ErrConflict)
	ErrEmployeeAlreadyActive   = fmt.Errorf("%w: employee is already active", apperror.ErrConflict)
	ErrEmployeeAlreadyInactive = fmt.Errorf("%w: employee is already inactive", apperror.ErrConflict)
	ErrCannotDeleteSelf        = fmt.Errorf("%w: cannot delete your own employee record", apperror.ErrForbidden)
)
