package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
)

// AttendanceRepository defines data access for attendance rows.
type AttendanceRepository interface {
	// Create inserts a row. A row that already exists for the employee and
	// date yields ErrAlreadyPunchedIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns nil when no row exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	Update(ctx context.Context, attendance Attendance) error

	// ListByEmployeeRange returns every row of the employee within [from, to].
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ExistsInRange reports whether any row exists for the employee within [from, to].
	ExistsInRange(ctx context.Context, employeeID string, from, to time.Time) (bool, error)

	// CreateLeaveDays inserts one leave-flagged row per day of the request.
	CreateLeaveDays(ctx context.Context, request leave.LeaveRequest) ([]Attendance, error)

	// SyncLeaveStatus copies the request's review onto its attendance rows.
	SyncLeaveStatus(ctx context.Context, request leave.LeaveRequest) ([]Attendance, error)

	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
}
