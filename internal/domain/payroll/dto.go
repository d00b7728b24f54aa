package payroll

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GeneratePayrollRequest struct {
	Month      string  `json:"month"` // YYYY-MM
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month is required"})
	} else if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
	}
	if r.EmployeeID != nil && validator.IsEmpty(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// GenerationFailure reports one employee whose row could not be produced.
type GenerationFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type GeneratePayrollResponse struct {
	Month     string              `json:"month"`
	Generated []PayrollResponse   `json:"generated"`
	Failed    []GenerationFailure `json:"failed,omitempty"`
}

// DeductionsPatch overrides individual buckets; nil buckets are kept.
type DeductionsPatch struct {
	Absence *decimal.Decimal `json:"absence,omitempty"`
	HalfDay *decimal.Decimal `json:"halfDay,omitempty"`
	Leave   *decimal.Decimal `json:"leave,omitempty"`
	Late    *decimal.Decimal `json:"late,omitempty"`
	Other   *decimal.Decimal `json:"other,omitempty"`
}

func (p DeductionsPatch) Apply(d Deductions) Deductions {
	set := func(dst *decimal.Decimal, v *decimal.Decimal) {
		if v != nil {
			*dst = v.Round(2)
		}
	}
	set(&d.Absence, p.Absence)
	set(&d.HalfDay, p.HalfDay)
	set(&d.Leave, p.Leave)
	set(&d.Late, p.Late)
	set(&d.Other, p.Other)
	return d
}

func (p DeductionsPatch) anyNegative() bool {
	for _, v := range []*decimal.Decimal{p.Absence, p.HalfDay, p.Leave, p.Late, p.Other} {
		if v != nil && v.IsNegative() {
			return true
		}
	}
	return false
}

type UpdatePayrollRequest struct {
	ID            string           `json:"-"`
	Deductions    *DeductionsPatch `json:"deductions,omitempty"`
	GrossEarnings *decimal.Decimal `json:"gross_earnings,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	Status        *string          `json:"status,omitempty"`
}

func (r *UpdatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.Deductions != nil && r.Deductions.anyNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions", Message: "deductions must not be negative"})
	}
	if r.GrossEarnings != nil && r.GrossEarnings.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "gross_earnings", Message: "gross_earnings must not be negative"})
	}
	if r.Status != nil {
		if _, ok := ParseStatus(*r.Status); !ok {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Pending, Approved"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DisburseRequest struct {
	ID         string `json:"-"`
	PaymentRef string `json:"payment_ref"`
}

func (r *DisburseRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if validator.IsEmpty(r.PaymentRef) {
		errs = append(errs, validator.ValidationError{Field: "payment_ref", Message: "payment_ref is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollFilter struct {
	Month      *string `json:"month,omitempty"`
	Status     *string `json:"status,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Month != nil && *f.Month != "" {
		if _, ok := validator.IsValidMonth(*f.Month); !ok {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
		}
	}
	if f.Status != nil && *f.Status != "" {
		if st, ok := ParseStatus(*f.Status); ok {
			s := string(st)
			f.Status = &s
		} else {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: Pending, Approved, Paid"})
		}
	}
	if f.SortBy == "" {
		f.SortBy = "month"
	} else if !validator.IsInSlice(f.SortBy, []string{"month", "net_pay", "employee_name", "created_at"}) {
		errs = append(errs, validator.ValidationError{Field: "sort_by", Message: "sort_by must be one of: month, net_pay, employee_name, created_at"})
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{Field: "sort_order", Message: "sort_order must be one of: asc, desc"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeductionsResponse struct {
	Absence decimal.Decimal `json:"absence"`
	HalfDay decimal.Decimal `json:"halfDay"`
	Leave   decimal.Decimal `json:"leave"`
	Late    decimal.Decimal `json:"late"`
	Other   decimal.Decimal `json:"other"`
	Total   decimal.Decimal `json:"total"`
}

type PayrollResponse struct {
	ID                  string             `json:"id"`
	EmployeeID          string             `json:"employee_id"`
	EmployeeName        *string            `json:"employee_name,omitempty"`
	EmployeeCode        *string            `json:"employee_code,omitempty"`
	Month               string             `json:"month"`
	BaseSalary          decimal.Decimal    `json:"base_salary"`
	ExpectedWorkingDays int                `json:"expected_working_days"`
	PresentDays         int                `json:"present_days"`
	HalfDays            int                `json:"half_days"`
	Absences            int                `json:"absences"`
	NonDeductibleLeaves int                `json:"non_deductible_leaves"`
	DeductibleLeaves    int                `json:"deductible_leaves"`
	LateWarnings        int                `json:"late_warnings"`
	OvertimeMinutes     int                `json:"overtime_minutes"`
	PerDayRate          decimal.Decimal    `json:"per_day_rate"`
	Deductions          DeductionsResponse `json:"deductions"`
	GrossEarnings       decimal.Decimal    `json:"gross_earnings"`
	OvertimePay         decimal.Decimal    `json:"overtime_pay"`
	NetPay              decimal.Decimal    `json:"net_pay"`
	Status              string             `json:"status"`
	Notes               *string            `json:"notes,omitempty"`
	PaymentRef          *string            `json:"payment_ref,omitempty"`
	PaidAt              *string            `json:"paid_at,omitempty"`
	DataQuality         []string           `json:"data_quality,omitempty"`
	CreatedAt           string             `json:"created_at"`
	UpdatedAt           string             `json:"updated_at"`
}

// ToResponse renders a payroll row for the API.
func ToResponse(p Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:                  p.ID,
		EmployeeID:          p.EmployeeID,
		EmployeeName:        p.EmployeeName,
		EmployeeCode:        p.EmployeeCode,
		Month:               p.Month,
		BaseSalary:          p.BaseSalary,
		ExpectedWorkingDays: p.ExpectedWorkingDays,
		PresentDays:         p.PresentDays,
		HalfDays:            p.HalfDays,
		Absences:            p.Absences,
		NonDeductibleLeaves: p.NonDeductibleLeaves,
		DeductibleLeaves:    p.DeductibleLeaves,
		LateWarnings:        p.LateWarnings,
		OvertimeMinutes:     p.OvertimeMinutes,
		PerDayRate:          p.PerDayRate,
		Deductions: DeductionsResponse{
			Absence: p.Deductions.Absence,
			HalfDay: p.Deductions.HalfDay,
			Leave:   p.Deductions.Leave,
			Late:    p.Deductions.Late,
			Other:   p.Deductions.Other,
			Total:   p.Deductions.Total(),
		},
		GrossEarnings: p.GrossEarnings,
		OvertimePay:   p.OvertimePay,
		NetPay:        p.NetPay,
		Status:        string(p.Status),
		Notes:         p.Notes,
		PaymentRef:    p.PaymentRef,
		DataQuality:   p.DataQuality,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
	if p.PaidAt != nil {
		s := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}

type ListPayrollResponse struct {
	Data       []PayrollResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type StatusTotals struct {
	Count           int             `json:"count"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
}

type PayrollSummaryResponse struct {
	Month           string                  `json:"month"`
	TotalEmployees  int                     `json:"total_employees"`
	TotalGross      decimal.Decimal         `json:"total_gross"`
	TotalDeductions decimal.Decimal         `json:"total_deductions"`
	TotalNet        decimal.Decimal         `json:"total_net"`
	ByStatus        map[string]StatusTotals `json:"by_status"`
}
