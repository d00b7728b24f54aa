package leave

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrLeaveRequestNotFound  = fmt.Errorf("%w: leave request not found", apperror.ErrNotFound)
	ErrInsufficientBalance   = fmt.Errorf("%w: insufficient leave balance", apperror.ErrValidation)
	ErrLeaveAlreadyReviewed  = fmt.Errorf("%w: leave request already reviewed", apperror.ErrConflict)
	ErrLeaveDayAlreadyExists = fmt.Errorf("%w: an attendance or leave record already exists in the requested range", apperror.ErrConflict)
	ErrNotALeaveRecord       = fmt.Errorf("%w: attendance record is not a leave request", apperror.ErrNotFound)
)
