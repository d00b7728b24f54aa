package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type AttendanceRepository struct {
	s *Store
}

func (s *Store) Attendances() *AttendanceRepository {
	return &AttendanceRepository{s: s}
}

func (r *AttendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insertLocked(a)
}

func (r *AttendanceRepository) insertLocked(a attendance.Attendance) (attendance.Attendance, error) {
	for _, existing := range r.s.attendances {
		if existing.EmployeeID == a.EmployeeID && existing.Date.Equal(a.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyPunchedIn
		}
	}
	if a.ID == "" {
		a.ID = newID()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.attendances[a.ID] = a
	return a, nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *AttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attendances {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *AttendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.attendances[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	r.s.attendances[a.ID] = a
	return nil
}

func (r *AttendanceRepository) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.s.attendances {
		if a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	sortByDate(out)
	return out, nil
}

func (r *AttendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.s.attendances {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Month != nil && *filter.Month != "" && a.Date.Format(validator.MonthLayout) != *filter.Month {
			continue
		}
		out = append(out, a)
	}
	sortByDate(out)
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *AttendanceRepository) ExistsInRange(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	rows, _ := r.ListByEmployeeRange(ctx, employeeID, from, to)
	return len(rows) > 0, nil
}

func (r *AttendanceRepository) CreateLeaveDays(ctx context.Context, request leave.LeaveRequest) ([]attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var created []attendance.Attendance
	for _, day := range request.Dates() {
		a, err := r.insertLocked(leaveRow(request, day))
		if err != nil {
			return nil, leave.ErrLeaveDayAlreadyExists
		}
		created = append(created, a)
	}
	return created, nil
}

func (r *AttendanceRepository) SyncLeaveStatus(ctx context.Context, request leave.LeaveRequest) ([]attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated []attendance.Attendance
	for id, a := range r.s.attendances {
		if a.LeaveRequestID == nil || *a.LeaveRequestID != request.ID {
			continue
		}
		status := request.Status
		a.LeaveStatus = &status
		a.ReviewedBy = request.ReviewedBy
		a.ReviewedAt = request.ReviewedAt
		a.Remarks = request.Remarks
		a.UpdatedAt = time.Now().UTC()
		r.s.attendances[id] = a
		updated = append(updated, a)
	}
	sortByDate(updated)
	return updated, nil
}

func (r *AttendanceRepository) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.attendances {
		if a.EmployeeID == employeeID {
			delete(r.s.attendances, id)
			n++
		}
	}
	return n, nil
}

func leaveRow(request leave.LeaveRequest, day time.Time) attendance.Attendance {
	leaveType := request.Type
	status := request.Status
	reason := request.Reason
	requestID := request.ID
	return attendance.Attendance{
		EmployeeID:     request.EmployeeID,
		Date:           day,
		LeaveType:      &leaveType,
		LeaveStatus:    &status,
		LeaveReason:    &reason,
		LeaveRequestID: &requestID,
	}
}

func sortByDate(rows []attendance.Attendance) {
	slices.SortFunc(rows, func(a, b attendance.Attendance) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.EmployeeID, b.EmployeeID)
	})
}
