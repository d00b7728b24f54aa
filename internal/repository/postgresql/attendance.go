package postgresql

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `a.id, a.employee_id, a.date, a.punch_in, a.punch_out, a.punch_in_proof,
	a.punch_out_proof, a.status, a.warnings, a.worked_minutes, a.overtime_minutes, a.leave_type,
	a.leave_status, a.leave_reason, a.leave_request_id, a.reviewed_by, a.reviewed_at, a.remarks,
	a.created_at, a.updated_at`

func attendanceDest(a *attendance.Attendance) []interface{} {
	return []interface{}{
		&a.ID, &a.EmployeeID, &a.Date, &a.PunchIn, &a.PunchOut, &a.PunchInProof,
		&a.PunchOutProof, &a.Status, &a.Warnings, &a.WorkedMinutes, &a.OvertimeMinutes, &a.LeaveType,
		&a.LeaveStatus, &a.LeaveReason, &a.LeaveRequestID, &a.ReviewedBy, &a.ReviewedAt, &a.Remarks,
		&a.CreatedAt, &a.UpdatedAt,
	}
}

func collectAttendances(rows pgx.Rows, withEmployee bool) ([]attendance.Attendance, error) {
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		var a attendance.Attendance
		dest := attendanceDest(&a)
		if withEmployee {
			dest = append(dest, &a.EmployeeName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	created, err := r.insert(ctx, a)
	if err != nil {
		if isUniqueViolation(err, "uk_attendance_employee_date") {
			return attendance.Attendance{}, attendance.ErrAlreadyPunchedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

func (r *attendanceRepositoryImpl) insert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances AS a (
			employee_id, date, punch_in, punch_out, punch_in_proof, punch_out_proof, status,
			warnings, worked_minutes, overtime_minutes, leave_type, leave_status, leave_reason,
			leave_request_id, reviewed_by, reviewed_at, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + attendanceColumns

	var created attendance.Attendance
	err := q.QueryRow(ctx, query,
		a.EmployeeID, a.Date, a.PunchIn, a.PunchOut, a.PunchInProof, a.PunchOutProof, a.Status,
		a.Warnings, a.WorkedMinutes, a.OvertimeMinutes, a.LeaveType, a.LeaveStatus, a.LeaveReason,
		a.LeaveRequestID, a.ReviewedBy, a.ReviewedAt, a.Remarks,
	).Scan(attendanceDest(&created)...)
	return created, err
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `, e.full_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1
	`

	var a attendance.Attendance
	err := q.QueryRow(ctx, query, id).Scan(append(attendanceDest(&a), &a.EmployeeName)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances a WHERE a.employee_id = $1 AND a.date = $2`

	var a attendance.Attendance
	err := q.QueryRow(ctx, query, employeeID, date).Scan(attendanceDest(&a)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance for date: %w", err)
	}
	return &a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET punch_in = $2, punch_out = $3, punch_in_proof = $4, punch_out_proof = $5, status = $6,
			warnings = $7, worked_minutes = $8, overtime_minutes = $9, leave_type = $10,
			leave_status = $11, leave_reason = $12, leave_request_id = $13, reviewed_by = $14,
			reviewed_at = $15, remarks = $16, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		a.ID, a.PunchIn, a.PunchOut, a.PunchInProof, a.PunchOutProof, a.Status,
		a.Warnings, a.WorkedMinutes, a.OvertimeMinutes, a.LeaveType,
		a.LeaveStatus, a.LeaveReason, a.LeaveRequestID, a.ReviewedBy,
		a.ReviewedAt, a.Remarks,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByEmployeeRange implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date BETWEEN $2 AND $3
		ORDER BY a.date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return collectAttendances(rows, false)
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Month != nil && *filter.Month != "" {
		month, err := time.Parse(validator.MonthLayout, *filter.Month)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid month filter: %w", err)
		}
		baseQuery += fmt.Sprintf(" AND a.date >= $%d AND a.date < $%d", argIdx, argIdx+1)
		args = append(args, month, month.AddDate(0, 1, 0))
		argIdx += 2
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name
		%s
		ORDER BY a.date, a.employee_id
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	records, err := collectAttendances(rows, true)
	if err != nil {
		return nil, 0, err
	}
	return records, totalCount, nil
}

// ExistsInRange implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ExistsInRange(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS(SELECT 1 FROM attendances WHERE employee_id = $1 AND date BETWEEN $2 AND $3)`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check attendance range: %w", err)
	}
	return exists, nil
}

// CreateLeaveDays implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CreateLeaveDays(ctx context.Context, request leave.LeaveRequest) ([]attendance.Attendance, error) {
	var created []attendance.Attendance
	for _, day := range request.Dates() {
		leaveType := request.Type
		status := request.Status
		reason := request.Reason
		requestID := request.ID

		a, err := r.insert(ctx, attendance.Attendance{
			EmployeeID:     request.EmployeeID,
			Date:           day,
			LeaveType:      &leaveType,
			LeaveStatus:    &status,
			LeaveReason:    &reason,
			LeaveRequestID: &requestID,
		})
		if err != nil {
			if isUniqueViolation(err, "uk_attendance_employee_date") {
				return nil, leave.ErrLeaveDayAlreadyExists
			}
			return nil, fmt.Errorf("failed to create leave day: %w", err)
		}
		created = append(created, a)
	}
	return created, nil
}

// SyncLeaveStatus implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SyncLeaveStatus(ctx context.Context, request leave.LeaveRequest) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances AS a
		SET leave_status = $2, reviewed_by = $3, reviewed_at = $4, remarks = $5, updated_at = NOW()
		WHERE a.leave_request_id = $1
		RETURNING ` + attendanceColumns

	rows, err := q.Query(ctx, query, request.ID, request.Status, request.ReviewedBy, request.ReviewedAt, request.Remarks)
	if err != nil {
		return nil, fmt.Errorf("failed to sync leave status: %w", err)
	}
	updated, err := collectAttendances(rows, false)
	if err != nil {
		return nil, err
	}
	sortAttendanceByDate(updated)
	return updated, nil
}

// DeleteByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance: %w", err)
	}
	return tag.RowsAffected(), nil
}

func sortAttendanceByDate(rows []attendance.Attendance) {
	slices.SortFunc(rows, func(a, b attendance.Attendance) int { return a.Date.Compare(b.Date) })
}
