package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// PunchRequest carries an optional opaque proof reference, such as a stored
// selfie URL. The employee comes from the caller.
type PunchRequest struct {
	Proof *string `json:"proof,omitempty"`
}

// CorrectionRequest rewrites one day's punches for an employee.
type CorrectionRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`      // YYYY-MM-DD
	PunchIn    string  `json:"punch_in"`  // RFC3339
	PunchOut   *string `json:"punch_out"` // RFC3339
	Remarks    *string `json:"remarks,omitempty"`

	date     time.Time
	punchIn  time.Time
	punchOut *time.Time
}

func (r *CorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if d, ok := validator.IsValidDate(r.Date); ok {
		r.date = d
	} else {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if t, ok := validator.IsValidDateTime(r.PunchIn); ok {
		r.punchIn = t
	} else {
		errs = append(errs, validator.ValidationError{
			Field:   "punch_in",
			Message: "punch_in must be an RFC3339 timestamp",
		})
	}

	if r.PunchOut != nil && *r.PunchOut != "" {
		if t, ok := validator.IsValidDateTime(*r.PunchOut); ok {
			r.punchOut = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "punch_out",
				Message: "punch_out must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Parsed returns the values checked by Validate.
func (r *CorrectionRequest) Parsed() (date, punchIn time.Time, punchOut *time.Time) {
	return r.date, r.punchIn, r.punchOut
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	Date            string  `json:"date"`
	PunchIn         *string `json:"punch_in,omitempty"`
	PunchOut        *string `json:"punch_out,omitempty"`
	PunchInProof    *string `json:"punch_in_proof,omitempty"`
	PunchOutProof   *string `json:"punch_out_proof,omitempty"`
	Status          *string `json:"status,omitempty"`
	Warnings        int     `json:"warnings"`
	WorkedMinutes   int     `json:"worked_minutes"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	LeaveType       *string `json:"leave_type,omitempty"`
	LeaveStatus     *string `json:"leave_status,omitempty"`
	LeaveReason     *string `json:"leave_reason,omitempty"`
	LeaveRequestID  *string `json:"leave_request_id,omitempty"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	Remarks         *string `json:"remarks,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *string `json:"month,omitempty"` // YYYY-MM

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
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

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Month != nil && *f.Month != "" {
		if _, valid := validator.IsValidMonth(*f.Month); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}
