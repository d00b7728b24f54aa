package leave

import (
	"context"
)

type LeaveService interface {
	// ApplyLeave files a pending request over an inclusive date range.
	ApplyLeave(ctx context.Context, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	// ReviewLeave approves or rejects a pending request (HR only).
	ReviewLeave(ctx context.Context, req ReviewLeaveRequest) (LeaveRequestResponse, error)
	// RequestDayLeave files a single-day request carried by that day's attendance row.
	RequestDayLeave(ctx context.Context, req DayLeaveRequest) (LeaveRequestResponse, error)
	// ReviewDayLeave reviews the request that owns an attendance leave row (HR only).
	ReviewDayLeave(ctx context.Context, attendanceID string, req ReviewLeaveRequest) (LeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	ListLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListMyLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
}
