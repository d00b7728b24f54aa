package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
)

type LeaveRequestRepository struct {
	s *Store
}

func (s *Store) LeaveRequests() *LeaveRequestRepository {
	return &LeaveRequestRepository{s: s}
}

func (r *LeaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if request.ID == "" {
		request.ID = newID()
	}
	now := time.Now().UTC()
	request.AppliedAt, request.UpdatedAt = now, now
	r.s.leaveRequests[request.ID] = request
	return request, nil
}

func (r *LeaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.leaveRequests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (r *LeaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *LeaveRequestRepository) MarkReviewed(ctx context.Context, id string, status leave.Status, reviewedBy string, reviewedAt time.Time, remarks *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.leaveRequests[id]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	if req.Status != leave.StatusPending {
		return leave.ErrLeaveAlreadyReviewed
	}
	req.Status = status
	req.ReviewedBy = &reviewedBy
	req.ReviewedAt = &reviewedAt
	req.Remarks = remarks
	req.UpdatedAt = time.Now().UTC()
	r.s.leaveRequests[id] = req
	return nil
}

func (r *LeaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []leave.LeaveRequest
	for _, req := range r.s.leaveRequests {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(req.Status) != *filter.Status {
			continue
		}
		out = append(out, req)
	}
	slices.SortFunc(out, func(a, b leave.LeaveRequest) int { return b.FromDate.Compare(a.FromDate) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}
