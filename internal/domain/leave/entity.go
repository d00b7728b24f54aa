package leave

import (
	"strings"
	"time"
)

// Type is a leave-type code.
type Type string

const (
	TypeCasual  Type = "CL"
	TypeSick    Type = "SL"
	TypePaid    Type = "PL"
	TypeUnpaid  Type = "UL"
	TypeHalfDay Type = "HL"
)

var TypeValues = []string{
	string(TypeCasual),
	string(TypeSick),
	string(TypePaid),
	string(TypeUnpaid),
	string(TypeHalfDay),
}

// ParseType accepts codes in any case.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TypeCasual, TypeSick, TypePaid, TypeUnpaid, TypeHalfDay:
		return t, true
	}
	return "", false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseDecision accepts "approved" or "rejected" in any case.
func ParseDecision(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == StatusApproved || st == StatusRejected {
		return st, true
	}
	return "", false
}

type LeaveRequest struct {
	ID         string
	EmployeeID string
	Type       Type
	FromDate   time.Time
	ToDate     time.Time
	Days       int
	Reason     string
	Status     Status
	ReviewedBy *string
	ReviewedAt *time.Time
	Remarks    *string
	AppliedAt  time.Time
	UpdatedAt  time.Time

	// DTO / Join
	EmployeeName *string
}

// DayCount is the inclusive number of calendar days between from and to.
func DayCount(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours()/24) + 1
}

// Dates lists every civil date of the request, inclusive.
func (r LeaveRequest) Dates() []time.Time {
	var dates []time.Time
	for d := r.FromDate; !d.After(r.ToDate); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
