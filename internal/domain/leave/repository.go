package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	// MarkReviewed moves a pending request to status. A request that is no
	// longer pending yields ErrLeaveAlreadyReviewed.
	MarkReviewed(ctx context.Context, id string, status Status, reviewedBy string, reviewedAt time.Time, remarks *string) error
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
}
