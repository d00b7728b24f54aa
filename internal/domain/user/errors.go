package user

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrUserNotFound      = fmt.Errorf("%w: user not found", apperror.ErrNotFound)
	ErrEmailTaken        = fmt.Errorf("%w: a login with this email already exists", apperror.ErrConflict)
	ErrUnauthenticated   = fmt.Errorf("%w: caller is not authenticated", apperror.ErrUnauthorized)
	ErrHRAccessRequired  = fmt.Errorf("%w: admin or hr role required", apperror.ErrForbidden)
	ErrNoEmployeeProfile = fmt.Errorf("%w: caller has no employee profile", apperror.ErrForbidden)
)
