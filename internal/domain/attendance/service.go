package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// PunchIn opens today's row for the calling employee.
	PunchIn(ctx context.Context, req PunchRequest) (AttendanceResponse, error)

	// PunchOut completes today's row and classifies the day.
	PunchOut(ctx context.Context, req PunchRequest) (AttendanceResponse, error)

	// Correct creates or rewrites a past day's punches (HR only).
	Correct(ctx context.Context, req CorrectionRequest) (AttendanceResponse, error)

	GetMyAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance lists rows across employees (HR only).
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
}
