package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/schedule"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	parser         *schedule.Parser
	classifier     *Classifier
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	parser *schedule.Parser,
	classifier *Classifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		parser:         parser,
		classifier:     classifier,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
	}
}

// PunchIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchRequest) (attendance.AttendanceResponse, error) {
	actor, err := user.RequireEmployee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	date := attendance.CivilDate(now, s.classifier.Location())

	emp, err := s.employeeRepo.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		if existing.IsLeave() {
			return attendance.AttendanceResponse{}, attendance.ErrDayOnLeave
		}
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyPunchedIn
	}

	sched := s.parser.Parse(emp.WorkingHours, emp.WorkingDays)
	s.logScheduleNotes(emp.ID, sched.Notes)
	c := s.classifier.Classify(&now, nil, sched.Hours)

	record := attendance.Attendance{
		EmployeeID:   emp.ID,
		Date:         date,
		PunchIn:      &now,
		PunchInProof: req.Proof,
		Status:       &c.Status,
		Warnings:     c.Warnings,
	}

	// A concurrent punch-in that wins the unique constraint surfaces as
	// ErrAlreadyPunchedIn from Create.
	created, err := s.attendanceRepo.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyPunchedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	s.metrics.Punches.WithLabelValues("in", string(c.Status)).Inc()
	return mapAttendanceToResponse(created), nil
}

// PunchOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchRequest) (attendance.AttendanceResponse, error) {
	actor, err := user.RequireEmployee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	date := attendance.CivilDate(now, s.classifier.Location())

	emp, err := s.employeeRepo.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil || record.PunchIn == nil {
		if record != nil && record.IsLeave() {
			return attendance.AttendanceResponse{}, attendance.ErrDayOnLeave
		}
		return attendance.AttendanceResponse{}, attendance.ErrNotPunchedIn
	}
	if record.PunchOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyPunchedOut
	}

	sched := s.parser.Parse(emp.WorkingHours, emp.WorkingDays)
	s.logScheduleNotes(emp.ID, sched.Notes)
	c := s.classifier.Classify(record.PunchIn, &now, sched.Hours)

	record.PunchOut = &now
	record.PunchOutProof = req.Proof
	applyClassification(record, c)

	if err := s.attendanceRepo.Update(ctx, *record); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	s.metrics.Punches.WithLabelValues("out", string(c.Status)).Inc()
	return mapAttendanceToResponse(*record), nil
}

// Correct implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Correct(ctx context.Context, req attendance.CorrectionRequest) (attendance.AttendanceResponse, error) {
	actor, err := user.RequireHR(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, punchIn, punchOut := req.Parsed()
	loc := s.classifier.Location()
	today := attendance.CivilDate(s.now(), loc)
	if date.After(today) {
		return attendance.AttendanceResponse{}, attendance.ErrFutureDate
	}
	if !attendance.CivilDate(punchIn, loc).Equal(date) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{
			Field:   "punch_in",
			Message: "punch_in must fall on date in the business timezone",
		}}
	}
	if punchOut != nil && punchOut.Before(punchIn) {
		return attendance.AttendanceResponse{}, attendance.ErrPunchOutBeforeIn
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	sched := s.parser.Parse(emp.WorkingHours, emp.WorkingDays)
	s.logScheduleNotes(emp.ID, sched.Notes)
	c := s.classifier.Classify(&punchIn, punchOut, sched.Hours)

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	in := punchIn.UTC()
	var out *time.Time
	if punchOut != nil {
		v := punchOut.UTC()
		out = &v
	}
	reviewer := actor.UserID

	if existing == nil {
		record := attendance.Attendance{
			EmployeeID: emp.ID,
			Date:       date,
			PunchIn:    &in,
			PunchOut:   out,
			ReviewedBy: &reviewer,
			Remarks:    req.Remarks,
		}
		applyClassification(&record, c)
		created, err := s.attendanceRepo.Create(ctx, record)
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to create corrected attendance: %w", err)
		}
		s.metrics.Punches.WithLabelValues("correction", string(c.Status)).Inc()
		return mapAttendanceToResponse(created), nil
	}

	// Leave days belong to their request. Only a refused one may be overwritten.
	if existing.LeaveRequestID != nil &&
		(existing.LeaveStatus == nil || *existing.LeaveStatus != leave.StatusRejected) {
		return attendance.AttendanceResponse{}, attendance.ErrDayOnLeave
	}

	record := *existing
	record.PunchIn = &in
	record.PunchOut = out
	record.LeaveType = nil
	record.LeaveStatus = nil
	record.LeaveReason = nil
	record.LeaveRequestID = nil
	record.ReviewedBy = &reviewer
	if req.Remarks != nil {
		record.Remarks = req.Remarks
	}
	applyClassification(&record, c)

	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update corrected attendance: %w", err)
	}
	s.metrics.Punches.WithLabelValues("correction", string(c.Status)).Inc()
	return mapAttendanceToResponse(record), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	actor, err := user.RequireEmployee(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.EmployeeID = &actor.EmployeeID
	return s.list(ctx, filter)
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, mapAttendanceToResponse(att))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: responses,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	actor, ok := user.ActorFromContext(ctx)
	if !ok {
		return attendance.AttendanceResponse{}, user.ErrUnauthenticated
	}

	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	// Employees only see their own rows; a foreign row is reported as missing.
	if !actor.Role.IsHR() && record.EmployeeID != actor.EmployeeID {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}
	return mapAttendanceToResponse(record), nil
}

func (s *AttendanceServiceImpl) logScheduleNotes(employeeID string, notes []string) {
	for _, note := range notes {
		s.logger.Warn("schedule data quality", "employee_id", employeeID, "note", note)
	}
}

func applyClassification(record *attendance.Attendance, c Classification) {
	status := c.Status
	record.Status = &status
	record.Warnings = c.Warnings
	record.WorkedMinutes = c.WorkedMinutes
	record.OvertimeMinutes = c.OvertimeMinutes
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:              att.ID,
		EmployeeID:      att.EmployeeID,
		EmployeeName:    att.EmployeeName,
		Date:            att.Date.Format(validator.DateLayout),
		PunchIn:         timePtrToString(att.PunchIn),
		PunchOut:        timePtrToString(att.PunchOut),
		PunchInProof:    att.PunchInProof,
		PunchOutProof:   att.PunchOutProof,
		Warnings:        att.Warnings,
		WorkedMinutes:   att.WorkedMinutes,
		OvertimeMinutes: att.OvertimeMinutes,
		LeaveReason:     att.LeaveReason,
		LeaveRequestID:  att.LeaveRequestID,
		ReviewedBy:      att.ReviewedBy,
		Remarks:         att.Remarks,
		CreatedAt:       att.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       att.UpdatedAt.Format(time.RFC3339),
	}
	if att.Status != nil {
		v := string(*att.Status)
		resp.Status = &v
	}
	if att.LeaveType != nil {
		v := string(*att.LeaveType)
		resp.LeaveType = &v
	}
	if att.LeaveStatus != nil {
		v := string(*att.LeaveStatus)
		resp.LeaveStatus = &v
	}
	return resp
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}
