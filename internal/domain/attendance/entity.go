package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
)

// DayStatus is the derived classification of a worked day.
type DayStatus string

const (
	StatusPresent DayStatus = "P"
	StatusHalfDay DayStatus = "HD"
	StatusAbsent  DayStatus = "A"
)

func (s DayStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusHalfDay, StatusAbsent:
		return true
	}
	return false
}

// Attendance is the single row kept per employee per civil date. A row either
// carries punches or represents a day of leave.
type Attendance struct {
	ID              string
	EmployeeID      string
	Date            time.Time // civil date at UTC midnight
	PunchIn         *time.Time
	PunchOut        *time.Time
	PunchInProof    *string
	PunchOutProof   *string
	Status          *DayStatus
	Warnings        int
	WorkedMinutes   int
	OvertimeMinutes int
	LeaveType       *leave.Type
	LeaveStatus     *leave.Status
	LeaveReason     *string
	LeaveRequestID  *string
	ReviewedBy      *string
	ReviewedAt      *time.Time
	Remarks         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	EmployeeName *string
}

// IsLeave reports whether the row stands for a day of leave.
func (a Attendance) IsLeave() bool {
	return a.LeaveType != nil
}

// CivilDate truncates t to its calendar date in loc, returned at UTC midnight.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
