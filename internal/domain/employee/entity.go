package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID              string
	EmployeeCode    string
	FullName        string
	Email           string
	BaseSalary      decimal.Decimal
	WorkingHours    string // e.g. "09:00-18:00" or "9 am - 6 pm"
	WorkingDays     string // e.g. "Mon-Fri" or "Mon,Wed,Fri"
	LeaveBalance    int
	DeductionType   *string
	DeductionAmount decimal.Decimal
	IsActive        bool
	ActivatedAt     *time.Time
	DeactivatedAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Override returns the flat deduction configured for the employee, if any.
func (e Employee) Override() (bucket string, amount decimal.Decimal, ok bool) {
	if e.DeductionType == nil || !e.DeductionAmount.IsPositive() {
		return "", decimal.Zero, false
	}
	return *e.DeductionType, e.DeductionAmount, true
}
