package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	tx             database.Transactor
	requestRepo    leave.LeaveRequestRepository
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	publisher      events.Publisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	requestRepo leave.LeaveRequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:             tx,
		requestRepo:    requestRepo,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		publisher:      publisher,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
	}
}

// ApplyLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) ApplyLeave(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	employeeID, err := resolveEmployee(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	req.EmployeeID = employeeID
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leaveType, _ := leave.ParseType(req.LeaveType)
	from, _ := validator.IsValidDate(req.FromDate)
	to, _ := validator.IsValidDate(req.ToDate)

	return l.file(ctx, leave.LeaveRequest{
		EmployeeID: req.EmployeeID,
		Type:       leaveType,
		FromDate:   from,
		ToDate:     to,
		Reason:     strings.TrimSpace(req.Reason),
	})
}

// RequestDayLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) RequestDayLeave(ctx context.Context, req leave.DayLeaveRequest) (leave.LeaveRequestResponse, error) {
	employeeID, err := resolveEmployee(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	req.EmployeeID = employeeID
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leaveType, _ := leave.ParseType(req.LeaveType)
	date, _ := validator.IsValidDate(req.Date)

	return l.file(ctx, leave.LeaveRequest{
		EmployeeID: req.EmployeeID,
		Type:       leaveType,
		FromDate:   date,
		ToDate:     date,
		Reason:     strings.TrimSpace(req.Reason),
	})
}

// file is the only path that writes leave: the request and one pending
// attendance row per day are created together or not at all.
func (l *LeaveServiceImpl) file(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequestResponse, error) {
	request.Days = leave.DayCount(request.FromDate, request.ToDate)
	request.Status = leave.StatusPending

	var (
		created leave.LeaveRequest
		rows    []attendance.Attendance
	)
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		emp, err := l.employeeRepo.GetByID(txCtx, request.EmployeeID)
		if err != nil {
			return err
		}
		if request.Days > emp.LeaveBalance {
			return fmt.Errorf("%w: requested %d day(s), balance is %d", leave.ErrInsufficientBalance, request.Days, emp.LeaveBalance)
		}

		taken, err := l.attendanceRepo.ExistsInRange(txCtx, request.EmployeeID, request.FromDate, request.ToDate)
		if err != nil {
			return fmt.Errorf("failed to check existing attendance: %w", err)
		}
		if taken {
			return leave.ErrLeaveDayAlreadyExists
		}

		created, err = l.requestRepo.Create(txCtx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}

		rows, err = l.attendanceRepo.CreateLeaveDays(txCtx, created)
		if err != nil {
			return fmt.Errorf("failed to create leave days: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.logger.Info("leave request filed",
		"request_id", created.ID,
		"employee_id", created.EmployeeID,
		"type", created.Type,
		"days", created.Days,
	)
	return mapRequestToResponse(created, rows), nil
}

// ReviewLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) ReviewLeave(ctx context.Context, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	actor, err := user.RequireHR(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	decision, _ := leave.ParseDecision(req.Decision)

	var remarks *string
	if r := strings.TrimSpace(req.Remarks); r != "" {
		remarks = &r
	}
	reviewedAt := l.now().UTC()

	var (
		reviewed leave.LeaveRequest
		rows     []attendance.Attendance
	)
	err = l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := l.requestRepo.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			return err
		}
		if request.Status != leave.StatusPending {
			return leave.ErrLeaveAlreadyReviewed
		}

		// The pending guard in MarkReviewed makes the balance deduction below
		// happen at most once per request.
		if err := l.requestRepo.MarkReviewed(txCtx, request.ID, decision, actor.UserID, reviewedAt, remarks); err != nil {
			return err
		}

		if decision == leave.StatusApproved {
			balance, err := l.employeeRepo.AdjustLeaveBalance(txCtx, request.EmployeeID, -request.Days)
			if err != nil {
				return fmt.Errorf("failed to deduct leave balance: %w", err)
			}
			if balance < 0 {
				return fmt.Errorf("%w: approving %d day(s) leaves a balance of %d", leave.ErrInsufficientBalance, request.Days, balance)
			}
		}

		request.Status = decision
		request.ReviewedBy = &actor.UserID
		request.ReviewedAt = &reviewedAt
		request.Remarks = remarks

		rows, err = l.attendanceRepo.SyncLeaveStatus(txCtx, request)
		if err != nil {
			return fmt.Errorf("failed to sync leave days: %w", err)
		}
		reviewed = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.metrics.LeaveReviews.WithLabelValues(string(decision)).Inc()
	l.publisher.Publish(ctx, events.SubjectLeaveReviewed, events.LeaveReviewed{
		RequestID:  reviewed.ID,
		EmployeeID: reviewed.EmployeeID,
		LeaveType:  string(reviewed.Type),
		Status:     string(reviewed.Status),
		Days:       reviewed.Days,
		ReviewedBy: actor.UserID,
	})
	l.logger.Info("leave request reviewed",
		"request_id", reviewed.ID,
		"status", reviewed.Status,
		"reviewed_by", actor.UserID,
	)
	return mapRequestToResponse(reviewed, rows), nil
}

// ReviewDayLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) ReviewDayLeave(ctx context.Context, attendanceID string, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	row, err := l.attendanceRepo.GetByID(ctx, attendanceID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if row.LeaveRequestID == nil {
		return leave.LeaveRequestResponse{}, leave.ErrNotALeaveRecord
	}

	req.ID = *row.LeaveRequestID
	return l.ReviewLeave(ctx, req)
}

// GetLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	actor, ok := user.ActorFromContext(ctx)
	if !ok {
		return leave.LeaveRequestResponse{}, user.ErrUnauthenticated
	}

	request, err := l.requestRepo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !actor.Role.IsHR() && request.EmployeeID != actor.EmployeeID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	return mapRequestToResponse(request, nil), nil
}

// ListLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	return l.list(ctx, filter)
}

// ListMyLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMyLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	actor, err := user.RequireEmployee(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	filter.EmployeeID = &actor.EmployeeID
	return l.list(ctx, filter)
}

func (l *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := l.requestRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, mapRequestToResponse(r, nil))
	}

	return leave.ListLeaveRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}

// resolveEmployee picks whose leave is being filed. HR may file for anyone;
// everybody else files for themselves.
func resolveEmployee(ctx context.Context, requested string) (string, error) {
	actor, ok := user.ActorFromContext(ctx)
	if !ok {
		return "", user.ErrUnauthenticated
	}
	if actor.Role.IsHR() && requested != "" {
		return requested, nil
	}
	if actor.EmployeeID == "" {
		return "", user.ErrNoEmployeeProfile
	}
	return actor.EmployeeID, nil
}

func mapRequestToResponse(r leave.LeaveRequest, rows []attendance.Attendance) leave.LeaveRequestResponse {
	resp := leave.LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		LeaveType:    string(r.Type),
		FromDate:     r.FromDate.Format(validator.DateLayout),
		ToDate:       r.ToDate.Format(validator.DateLayout),
		Days:         r.Days,
		Reason:       r.Reason,
		Status:       string(r.Status),
		ReviewedBy:   r.ReviewedBy,
		Remarks:      r.Remarks,
		AppliedAt:    r.AppliedAt.Format(time.RFC3339),
	}
	if r.ReviewedAt != nil {
		v := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	for _, row := range rows {
		resp.AttendanceIDs = append(resp.AttendanceIDs, row.ID)
	}
	return resp
}
