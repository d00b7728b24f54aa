package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	// Punch errors
	ErrAlreadyPunchedIn  = fmt.Errorf("%w: already punched in today", apperror.ErrConflict)
	ErrNotPunchedIn      = fmt.Errorf("%w: no punch-in recorded for today", apperror.ErrNotFound)
	ErrAlreadyPunchedOut = fmt.Errorf("%w: already punched out today", apperror.ErrConflict)
	ErrDayOnLeave        = fmt.Errorf("%w: the day is recorded as leave", apperror.ErrConflict)

	// General errors
	ErrAttendanceNotFound = fmt.Errorf("%w: attendance record not found", apperror.ErrNotFound)
	ErrFutureDate         = fmt.Errorf("%w: date must not be in the future", apperror.ErrValidation)
	ErrPunchOutBeforeIn   = fmt.Errorf("%w: punch_out must be after punch_in", apperror.ErrValidation)
)
