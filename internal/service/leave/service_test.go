package leave

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, event)
}

type leaveEnv struct {
	store     *memory.Store
	svc       leave.LeaveService
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	emp       employee.Employee
}

func newLeaveEnv(t *testing.T, balance int) *leaveEnv {
	t.Helper()

	store := memory.NewStore()
	emp, err := store.Employees().Create(context.Background(), employee.Employee{
		EmployeeCode: "EMP-010",
		FullName:     "Ravi Kumar",
		Email:        "ravi@example.com",
		BaseSalary:   decimal.NewFromInt(30000),
		WorkingHours: "09:00-18:00",
		WorkingDays:  "Mon-Fri",
		LeaveBalance: balance,
		IsActive:     true,
	})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	m := metrics.NewNop()
	svc := NewLeaveService(
		store.Transactor(),
		store.LeaveRequests(),
		store.Attendances(),
		store.Employees(),
		pub,
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &leaveEnv{store: store, svc: svc, publisher: pub, metrics: m, emp: emp}
}

func (e *leaveEnv) employeeCtx() context.Context {
	return user.WithActor(context.Background(), user.Actor{UserID: "u-emp", EmployeeID: e.emp.ID, Role: user.RoleEmployee})
}

func hrCtx() context.Context {
	return user.WithActor(context.Background(), user.Actor{UserID: "u-hr", Role: user.RoleHR})
}

func (e *leaveEnv) balance(t *testing.T) int {
	t.Helper()
	emp, err := e.store.Employees().GetByID(context.Background(), e.emp.ID)
	require.NoError(t, err)
	return emp.LeaveBalance
}

func TestApplyLeave_CreatesPendingDays(t *testing.T) {
	env := newLeaveEnv(t, 10)

	resp, err := env.svc.ApplyLeave(env.employeeCtx(), leave.ApplyLeaveRequest{
		LeaveType: "cl",
		FromDate:  "2025-08-11",
		ToDate:    "2025-08-13",
		Reason:    "family function",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Days)
	assert.Equal(t, "CL", resp.LeaveType)
	assert.Equal(t, "pending", resp.Status)
	assert.Len(t, resp.AttendanceIDs, 3)
	assert.Equal(t, 10, env.balance(t), "balance is untouched until approval")

	rows, err := env.store.Attendances().ListByEmployeeRange(context.Background(), env.emp.ID,
		time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.NotNil(t, row.LeaveStatus)
		assert.Equal(t, leave.StatusPending, *row.LeaveStatus)
		assert.Equal(t, resp.ID, *row.LeaveRequestID)
	}
}

func TestApplyLeave_Rejections(t *testing.T) {
	env := newLeaveEnv(t, 2)
	ctx := env.employeeCtx()

	_, err := env.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{LeaveType: "CL", FromDate: "2025-08-13", ToDate: "2025-08-11"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{LeaveType: "XX", FromDate: "2025-08-11", ToDate: "2025-08-11"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{LeaveType: "CL", FromDate: "2025-08-11", ToDate: "2025-08-13"})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	_, err = env.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{LeaveType: "CL", FromDate: "2025-08-11", ToDate: "2025-08-12"})
	require.NoError(t, err)

	// Any day already holding a row makes the whole range conflict.
	_, err = env.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{LeaveType: "SL", FromDate: "2025-08-12", ToDate: "2025-08-12"})
	assert.ErrorIs(t, err, leave.ErrLeaveDayAlreadyExists)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	requests, total, err := env.store.LeaveRequests().List(context.Background(), leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, requests, 1)
}

func TestReviewLeave_ApproveDeductsOnce(t *testing.T) {
	env := newLeaveEnv(t, 10)

	filed, err := env.svc.ApplyLeave(env.employeeCtx(), leave.ApplyLeaveRequest{
		LeaveType: "PL", FromDate: "2025-08-11", ToDate: "2025-08-13",
	})
	require.NoError(t, err)

	reviewed, err := env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: filed.ID, Decision: "Approved", Remarks: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "approved", reviewed.Status)
	assert.Equal(t, "u-hr", *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)
	assert.Len(t, reviewed.AttendanceIDs, 3)
	assert.Equal(t, 7, env.balance(t))

	_, err = env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: filed.ID, Decision: "approved"})
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyReviewed)
	_, err = env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: filed.ID, Decision: "rejected"})
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyReviewed)
	assert.Equal(t, 7, env.balance(t))

	for _, id := range reviewed.AttendanceIDs {
		row, err := env.store.Attendances().GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, *row.LeaveStatus)
	}

	require.Len(t, env.publisher.subjects, 1)
	assert.Equal(t, events.SubjectLeaveReviewed, env.publisher.subjects[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.LeaveReviews.WithLabelValues("approved")))
}

func TestReviewLeave_ConcurrentApprovalsDeductOnce(t *testing.T) {
	env := newLeaveEnv(t, 10)

	filed, err := env.svc.ApplyLeave(env.employeeCtx(), leave.ApplyLeaveRequest{
		LeaveType: "CL", FromDate: "2025-08-18", ToDate: "2025-08-19",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: filed.ID, Decision: "approved"})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, leave.ErrLeaveAlreadyReviewed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 8, env.balance(t))
}

func TestReviewLeave_RejectKeepsBalance(t *testing.T) {
	env := newLeaveEnv(t, 5)

	filed, err := env.svc.ApplyLeave(env.employeeCtx(), leave.ApplyLeaveRequest{
		LeaveType: "SL", FromDate: "2025-08-04", ToDate: "2025-08-04",
	})
	require.NoError(t, err)

	reviewed, err := env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: filed.ID, Decision: "REJECTED", Remarks: "no cover"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", reviewed.Status)
	assert.Equal(t, "no cover", *reviewed.Remarks)
	assert.Equal(t, 5, env.balance(t))
}

func TestReviewLeave_Rejections(t *testing.T) {
	env := newLeaveEnv(t, 5)

	filed, err := env.svc.ApplyLeave(env.employeeCtx(), leave.ApplyLeaveRequest{
		LeaveType: "CL", FromDate: "2025-08-04", ToDate: "2025-08-04",
	})
	require.NoError(t, err)

	_, err = env.svc.ReviewLeave(env.employeeCtx(), leave.ReviewLeaveRequest{ID: filed.ID, Decision: "approved"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: filed.ID, Decision: "maybe"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: "missing", Decision: "approved"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	assert.Equal(t, 5, env.balance(t))
}

func TestReviewLeave_BalanceSpentElsewhereRollsBack(t *testing.T) {
	env := newLeaveEnv(t, 3)
	ctx := env.employeeCtx()

	first, err := env.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{LeaveType: "CL", FromDate: "2025-08-04", ToDate: "2025-08-05"})
	require.NoError(t, err)
	second, err := env.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{LeaveType: "CL", FromDate: "2025-08-06", ToDate: "2025-08-07"})
	require.NoError(t, err)

	_, err = env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: first.ID, Decision: "approved"})
	require.NoError(t, err)

	_, err = env.svc.ReviewLeave(hrCtx(), leave.ReviewLeaveRequest{ID: second.ID, Decision: "approved"})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	// The failed approval left no trace.
	assert.Equal(t, 1, env.balance(t))
	got, err := env.svc.GetLeaveRequest(hrCtx(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
}

func TestDayLeave_RequestAndReviewThroughAttendance(t *testing.T) {
	env := newLeaveEnv(t, 4)

	filed, err := env.svc.RequestDayLeave(env.employeeCtx(), leave.DayLeaveRequest{
		LeaveType: "SL", Date: "2025-08-20", Reason: "fever",
	})
	require.NoError(t, err)
	require.Len(t, filed.AttendanceIDs, 1)
	assert.Equal(t, 1, filed.Days)

	_, err = env.svc.RequestDayLeave(env.employeeCtx(), leave.DayLeaveRequest{LeaveType: "SL", Date: "2025-08-20"})
	assert.ErrorIs(t, err, apperror.ErrValidation, "reason is required")

	reviewed, err := env.svc.ReviewDayLeave(hrCtx(), filed.AttendanceIDs[0], leave.ReviewLeaveRequest{Decision: "approved"})
	require.NoError(t, err)
	assert.Equal(t, filed.ID, reviewed.ID)
	assert.Equal(t, 3, env.balance(t))

	_, err = env.svc.ReviewDayLeave(hrCtx(), "missing", leave.ReviewLeaveRequest{Decision: "approved"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func attendanceRow(employeeID string, punchIn time.Time) attendance.Attendance {
	return attendance.Attendance{
		EmployeeID: employeeID,
		Date:       attendance.CivilDate(punchIn, time.UTC),
		PunchIn:    &punchIn,
	}
}

func TestDayLeave_PunchedDayIsNotALeaveRecord(t *testing.T) {
	env := newLeaveEnv(t, 4)
	punchIn := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	row, err := env.store.Attendances().Create(context.Background(), attendanceRow(env.emp.ID, punchIn))
	require.NoError(t, err)

	_, err = env.svc.ReviewDayLeave(hrCtx(), row.ID, leave.ReviewLeaveRequest{Decision: "approved"})
	assert.ErrorIs(t, err, leave.ErrNotALeaveRecord)
}

func TestHRFilesOnBehalfAndLists(t *testing.T) {
	env := newLeaveEnv(t, 10)

	_, err := env.svc.ApplyLeave(hrCtx(), leave.ApplyLeaveRequest{
		EmployeeID: env.emp.ID, LeaveType: "UL", FromDate: "2025-09-01", ToDate: "2025-09-01",
	})
	require.NoError(t, err)

	_, err = env.svc.ApplyLeave(hrCtx(), leave.ApplyLeaveRequest{LeaveType: "UL", FromDate: "2025-09-02", ToDate: "2025-09-02"})
	assert.ErrorIs(t, err, user.ErrNoEmployeeProfile)

	pending := "PENDING"
	list, err := env.svc.ListLeaveRequests(hrCtx(), leave.LeaveRequestFilter{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, 20, list.Limit)

	bogus := "cancelled"
	_, err = env.svc.ListLeaveRequests(hrCtx(), leave.LeaveRequestFilter{Status: &bogus})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.ListLeaveRequests(env.employeeCtx(), leave.LeaveRequestFilter{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	mine, err := env.svc.ListMyLeaveRequests(env.employeeCtx(), leave.LeaveRequestFilter{})
	require.NoError(t, err)
	require.Len(t, mine.Requests, 1)

	other := user.WithActor(context.Background(), user.Actor{UserID: "u9", EmployeeID: "someone-else", Role: user.RoleEmployee})
	_, err = env.svc.GetLeaveRequest(other, mine.Requests[0].ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}
