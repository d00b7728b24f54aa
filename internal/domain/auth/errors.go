package auth

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperror.ErrUnauthorized)
	ErrAccountInactive    = fmt.Errorf("%w: account is inactive", apperror.ErrForbidden)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", apperror.ErrUnauthorized)
)
