package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusPending  PayrollStatus = "Pending"
	PayrollStatusApproved PayrollStatus = "Approved"
	PayrollStatusPaid     PayrollStatus = "Paid"
)

// ParseStatus matches a status case-insensitively.
func ParseStatus(s string) (PayrollStatus, bool) {
	for _, st := range []PayrollStatus{PayrollStatusPending, PayrollStatusApproved, PayrollStatusPaid} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// Deduction bucket names, also used for the employee flat override.
const (
	BucketAbsence = "absence"
	BucketHalfDay = "halfDay"
	BucketLeave   = "leave"
	BucketLate    = "late"
	BucketOther   = "other"
)

type Deductions struct {
	Absence decimal.Decimal
	HalfDay decimal.Decimal
	Leave   decimal.Decimal
	Late    decimal.Decimal
	Other   decimal.Decimal
}

func (d Deductions) Total() decimal.Decimal {
	return d.Absence.Add(d.HalfDay).Add(d.Leave).Add(d.Late).Add(d.Other)
}

// Tallies are the per-month day counts an employee's attendance produced.
type Tallies struct {
	ExpectedWorkingDays int
	PresentDays         int
	HalfDays            int
	Absences            int
	NonDeductibleLeaves int
	DeductibleLeaves    int
	LateWarnings        int
	OvertimeMinutes     int
}

// Payroll is the one row kept per employee per month.
type Payroll struct {
	ID         string
	EmployeeID string
	Month      string // YYYY-MM
	BaseSalary decimal.Decimal
	Tallies
	PerDayRate    decimal.Decimal
	Deductions    Deductions
	GrossEarnings decimal.Decimal
	OvertimePay   decimal.Decimal
	NetPay        decimal.Decimal
	Status        PayrollStatus
	Notes         *string
	PaymentRef    *string
	PaidAt        *time.Time
	DataQuality   []string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// StatusSummary totals one status within a month.
type StatusSummary struct {
	Status          PayrollStatus
	Count           int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
}
