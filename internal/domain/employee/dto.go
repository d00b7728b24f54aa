package employee

import (
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	EmployeeCode    string           `json:"employee_code"`
	FullName        string           `json:"full_name"`
	Email           string           `json:"email"`
	Password        *string          `json:"password,omitempty"`
	Role            *string          `json:"role,omitempty"`
	BaseSalary      decimal.Decimal  `json:"base_salary"`
	WorkingHours    string           `json:"working_hours"`
	WorkingDays     string           `json:"working_days"`
	LeaveBalance    int              `json:"leave_balance"`
	DeductionType   *string          `json:"deduction_type,omitempty"`
	DeductionAmount *decimal.Decimal `json:"deduction_amount,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code is required",
		})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}
	if !validator.IsValidEmail(strings.TrimSpace(r.Email)) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if r.Password != nil && len(*r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}
	if r.Role != nil && !validator.IsInSlice(*r.Role, []string{"admin", "hr", "employee"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: admin, hr, employee",
		})
	}
	if r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "base_salary",
			Message: "base_salary must not be negative",
		})
	}
	if r.LeaveBalance < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_balance",
			Message: "leave_balance must not be negative",
		})
	}
	if r.DeductionAmount != nil && r.DeductionAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "deduction_amount",
			Message: "deduction_amount must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest is a patch; nil fields are left unchanged.
type UpdateEmployeeRequest struct {
	ID              string           `json:"-"`
	FullName        *string          `json:"full_name,omitempty"`
	Email           *string          `json:"email,omitempty"`
	BaseSalary      *decimal.Decimal `json:"base_salary,omitempty"`
	WorkingHours    *string          `json:"working_hours,omitempty"`
	WorkingDays     *string          `json:"working_days,omitempty"`
	LeaveBalance    *int             `json:"leave_balance,omitempty"`
	DeductionType   *string          `json:"deduction_type,omitempty"`
	DeductionAmount *decimal.Decimal `json:"deduction_amount,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name must not be empty",
		})
	}
	if r.Email != nil && !validator.IsValidEmail(strings.TrimSpace(*r.Email)) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "base_salary",
			Message: "base_salary must not be negative",
		})
	}
	if r.LeaveBalance != nil && *r.LeaveBalance < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_balance",
			Message: "leave_balance must not be negative",
		})
	}
	if r.DeductionAmount != nil && r.DeductionAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "deduction_amount",
			Message: "deduction_amount must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateStatusRequest struct {
	ID       string `json:"-"`
	IsActive *bool  `json:"is_active"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.IsActive == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "is_active",
			Message: "is_active is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeFilter struct {
	Search   *string `json:"search,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID              string  `json:"id"`
	EmployeeCode    string  `json:"employee_code"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	BaseSalary      string  `json:"base_salary"`
	WorkingHours    string  `json:"working_hours"`
	WorkingDays     string  `json:"working_days"`
	LeaveBalance    int     `json:"leave_balance"`
	DeductionType   *string `json:"deduction_type,omitempty"`
	DeductionAmount string  `json:"deduction_amount"`
	IsActive        bool    `json:"is_active"`
	ActivatedAt     *string `json:"activated_at,omitempty"`
	DeactivatedAt   *string `json:"deactivated_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}
