package employee

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	authservice "github.com/cmlabs-hris/hris-payroll-go/internal/service/auth"
	"github.com/shopspring/decimal"
)

type EmployeeServiceImpl struct {
	tx             database.Transactor
	employeeRepo   employee.EmployeeRepository
	userRepo       user.UserRepository
	attendanceRepo attendance.AttendanceRepository
	logger         *slog.Logger
	now            func() time.Time
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	attendanceRepo attendance.AttendanceRepository,
	logger *slog.Logger,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:             tx,
		employeeRepo:   employeeRepo,
		userRepo:       userRepo,
		attendanceRepo: attendanceRepo,
		logger:         logger,
		now:            time.Now,
	}
}

func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	resp := employee.EmployeeResponse{
		ID:              emp.ID,
		EmployeeCode:    emp.EmployeeCode,
		FullName:        emp.FullName,
		Email:           emp.Email,
		BaseSalary:      emp.BaseSalary.StringFixed(2),
		WorkingHours:    emp.WorkingHours,
		WorkingDays:     emp.WorkingDays,
		LeaveBalance:    emp.LeaveBalance,
		DeductionType:   emp.DeductionType,
		DeductionAmount: emp.DeductionAmount.StringFixed(2),
		IsActive:        emp.IsActive,
		CreatedAt:       emp.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       emp.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if emp.ActivatedAt != nil {
		s := emp.ActivatedAt.Format(time.RFC3339)
		resp.ActivatedAt = &s
	}
	if emp.DeactivatedAt != nil {
		s := emp.DeactivatedAt.Format(time.RFC3339)
		resp.DeactivatedAt = &s
	}
	return resp
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	now := s.now().UTC()
	newEmployee := employee.Employee{
		EmployeeCode:    strings.TrimSpace(req.EmployeeCode),
		FullName:        strings.TrimSpace(req.FullName),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		BaseSalary:      req.BaseSalary,
		WorkingHours:    req.WorkingHours,
		WorkingDays:     req.WorkingDays,
		LeaveBalance:    req.LeaveBalance,
		DeductionType:   req.DeductionType,
		DeductionAmount: decimal.Zero,
		IsActive:        true,
		ActivatedAt:     &now,
	}
	if req.DeductionAmount != nil {
		newEmployee.DeductionAmount = *req.DeductionAmount
	}

	var created employee.Employee
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.employeeRepo.Create(txCtx, newEmployee)
		if err != nil {
			return err
		}

		if req.Password == nil {
			return nil
		}
		hash, err := authservice.HashPassword(*req.Password)
		if err != nil {
			return err
		}
		role := user.RoleEmployee
		if req.Role != nil {
			role = user.ParseRole(*req.Role)
		}
		_, err = s.userRepo.Create(txCtx, user.User{
			Email:        created.Email,
			PasswordHash: hash,
			Role:         role,
			EmployeeID:   &created.ID,
			IsActive:     true,
		})
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.logger.InfoContext(ctx, "employee created", "employee_id", created.ID, "with_login", req.Password != nil)
	return mapEmployeeToResponse(created), nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	actor, ok := user.ActorFromContext(ctx)
	if !ok {
		return employee.EmployeeResponse{}, user.ErrUnauthenticated
	}

	// Employees can only view their own record.
	if !actor.Role.IsHR() && actor.EmployeeID != id {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return mapEmployeeToResponse(emp), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, mapEmployeeToResponse(emp))
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Employees:  responses,
	}, nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}

	var updated employee.Employee
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.employeeRepo.GetByID(txCtx, req.ID); err != nil {
			return err
		}
		if err := s.employeeRepo.Update(txCtx, req.ID, req); err != nil {
			return err
		}
		var err error
		updated, err = s.employeeRepo.GetByID(txCtx, req.ID)
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return mapEmployeeToResponse(updated), nil
}

// UpdateStatus implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateStatus(ctx context.Context, req employee.UpdateStatusRequest) (employee.EmployeeResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var emp employee.Employee
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		emp, err = s.employeeRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		switch {
		case *req.IsActive && emp.IsActive:
			return employee.ErrEmployeeAlreadyActive
		case !*req.IsActive && !emp.IsActive:
			return employee.ErrEmployeeAlreadyInactive
		case *req.IsActive:
			emp.ActivatedAt = &now
		default:
			emp.DeactivatedAt = &now
		}
		emp.IsActive = *req.IsActive

		if err := s.employeeRepo.UpdateStatus(txCtx, emp); err != nil {
			return err
		}
		return s.userRepo.SetActiveByEmployeeID(txCtx, emp.ID, emp.IsActive)
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	s.logger.InfoContext(ctx, "employee status changed", "employee_id", emp.ID, "is_active", emp.IsActive)
	return mapEmployeeToResponse(emp), nil
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	actor, err := user.RequireHR(ctx)
	if err != nil {
		return err
	}
	if actor.EmployeeID != "" && actor.EmployeeID == id {
		return employee.ErrCannotDeleteSelf
	}

	var purged int64
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.employeeRepo.GetByID(txCtx, id); err != nil {
			return err
		}
		var err error
		purged, err = s.attendanceRepo.DeleteByEmployee(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to delete attendance: %w", err)
		}
		if err := s.userRepo.SetActiveByEmployeeID(txCtx, id, false); err != nil {
			return err
		}
		return s.employeeRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "employee deleted", "employee_id", id, "attendance_rows", purged)
	return nil
}
