package employee

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

func newEmployeeTestService(t *testing.T) (*EmployeeServiceImpl, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewEmployeeService(
		store.Transactor(),
		store.Employees(),
		store.Users(),
		store.Attendances(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	).(*EmployeeServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func hrContext() context.Context {
	return user.WithActor(context.Background(), user.Actor{UserID: "hr-user", EmployeeID: "hr-emp", Role: user.RoleHR})
}

func ptr[T any](v T) *T { return &v }

func validCreateRequest(code, email string) employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		EmployeeCode: code,
		FullName:     "Ravi Kumar",
		Email:        email,
		BaseSalary:   decimal.NewFromInt(30000),
		WorkingHours: "09:00-18:00",
		WorkingDays:  "Mon-Fri",
		LeaveBalance: 12,
	}
}

func TestCreateEmployee_WithLogin(t *testing.T) {
	svc, store := newEmployeeTestService(t)
	req := validCreateRequest("EMP-100", " Ravi@Example.com ")
	req.Password = ptr("password123")
	req.Role = ptr("hr")

	resp, err := svc.CreateEmployee(hrContext(), req)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "ravi@example.com", resp.Email)
	assert.Equal(t, "30000.00", resp.BaseSalary)
	assert.True(t, resp.IsActive)
	require.NotNil(t, resp.ActivatedAt)
	assert.Equal(t, "2025-09-01T08:00:00Z", *resp.ActivatedAt)

	login, err := store.Users().GetByEmail(context.Background(), "ravi@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleHR, login.Role)
	require.NotNil(t, login.EmployeeID)
	assert.Equal(t, resp.ID, *login.EmployeeID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(login.PasswordHash), []byte("password123")))
}

func TestCreateEmployee_WithoutLogin(t *testing.T) {
	svc, store := newEmployeeTestService(t)

	_, err := svc.CreateEmployee(hrContext(), validCreateRequest("EMP-101", "plain@example.com"))
	require.NoError(t, err)

	_, err = store.Users().GetByEmail(context.Background(), "plain@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestCreateEmployee_Rejections(t *testing.T) {
	svc, _ := newEmployeeTestService(t)
	_, err := svc.CreateEmployee(hrContext(), validCreateRequest("EMP-200", "first@example.com"))
	require.NoError(t, err)

	t.Run("employee role", func(t *testing.T) {
		ctx := user.WithActor(context.Background(), user.Actor{UserID: "u", EmployeeID: "e", Role: user.RoleEmployee})
		_, err := svc.CreateEmployee(ctx, validCreateRequest("EMP-201", "x@example.com"))
		assert.ErrorIs(t, err, user.ErrHRAccessRequired)
	})

	t.Run("invalid request", func(t *testing.T) {
		req := validCreateRequest("", "bad")
		_, err := svc.CreateEmployee(hrContext(), req)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("duplicate code", func(t *testing.T) {
		_, err := svc.CreateEmployee(hrContext(), validCreateRequest("EMP-200", "other@example.com"))
		assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)
	})
}

// A login that cannot be created takes the employee row with it.
func TestCreateEmployee_LoginConflictRollsBack(t *testing.T) {
	svc, store := newEmployeeTestService(t)
	_, err := store.Users().Create(context.Background(), user.User{Email: "taken@example.com", Role: user.RoleAdmin, IsActive: true})
	require.NoError(t, err)

	req := validCreateRequest("EMP-300", "taken@example.com")
	req.Password = ptr("password123")
	_, err = svc.CreateEmployee(hrContext(), req)

	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	employees, err := store.Employees().GetActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func TestGetEmployee_Ownership(t *testing.T) {
	svc, _ := newEmployeeTestService(t)
	own, err := svc.CreateEmployee(hrContext(), validCreateRequest("EMP-400", "own@example.com"))
	require.NoError(t, err)
	other, err := svc.CreateEmployee(hrContext(), validCreateRequest("EMP-401", "other@example.com"))
	require.NoError(t, err)

	ctx := user.WithActor(context.Background(), user.Actor{UserID: "u", EmployeeID: own.ID, Role: user.RoleEmployee})

	got, err := svc.GetEmployee(ctx, own.ID)
	require.NoError(t, err)
	assert.Equal(t, "EMP-400", got.EmployeeCode)

	_, err = svc.GetEmployee(ctx, other.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = svc.GetEmployee(context.Background(), own.ID)
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestListEmployees(t *testing.T) {
	svc, _ := newEmployeeTestService(t)
	for _, code := range []string{"EMP-503", "EMP-501", "EMP-502"} {
		_, err := svc.CreateEmployee(hrContext(), validCreateRequest(code, code+"@example.com"))
		require.NoError(t, err)
	}

	resp, err := svc.ListEmployees(hrContext(), employee.EmployeeFilter{Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 1, resp.Page)
	require.Len(t, resp.Employees, 2)
	assert.Equal(t, "EMP-501", resp.Employees[0].EmployeeCode)
	assert.Equal(t, "EMP-502", resp.Employees[1].EmployeeCode)

	_, err = svc.ListEmployees(hrContext(), employee.EmployeeFilter{Limit: 500})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateEmployee_Patch(t *testing.T) {
	svc, _ := newEmployeeTestService(t)
	created, err := svc.CreateEmployee(hrContext(), validCreateRequest("EMP-600", "patch@example.com"))
	require.NoError(t, err)

	resp, err := svc.UpdateEmployee(hrContext(), employee.UpdateEmployeeRequest{
		ID:              created.ID,
		BaseSalary:      ptr(decimal.NewFromInt(42000)),
		WorkingDays:     ptr("Mon-Sat"),
		DeductionType:   ptr("late"),
		DeductionAmount: ptr(decimal.NewFromInt(150)),
	})

	require.NoError(t, err)
	assert.Equal(t, "42000.00", resp.BaseSalary)
	assert.Equal(t, "Mon-Sat", resp.WorkingDays)
	assert.Equal(t, "09:00-18:00", resp.WorkingHours)
	assert.Equal(t, "150.00", resp.DeductionAmount)
	assert.Equal(t, 12, resp.LeaveBalance)

	_, err = svc.UpdateEmployee(hrContext(), employee.UpdateEmployeeRequest{ID: "missing", FullName: ptr("x")})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpdateStatus_TogglesEmployeeAndLogin(t *testing.T) {
	svc, store := newEmployeeTestService(t)
	req := validCreateRequest("EMP-700", "status@example.com")
	req.Password = ptr("password123")
	created, err := svc.CreateEmployee(hrContext(), req)
	require.NoError(t, err)

	resp, err := svc.UpdateStatus(hrContext(), employee.UpdateStatusRequest{ID: created.ID, IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.NotNil(t, resp.DeactivatedAt)

	login, err := store.Users().GetByEmail(context.Background(), "status@example.com")
	require.NoError(t, err)
	assert.False(t, login.IsActive)

	_, err = svc.UpdateStatus(hrContext(), employee.UpdateStatusRequest{ID: created.ID, IsActive: ptr(false)})
	assert.ErrorIs(t, err, employee.ErrEmployeeAlreadyInactive)

	resp, err = svc.UpdateStatus(hrContext(), employee.UpdateStatusRequest{ID: created.ID, IsActive: ptr(true)})
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	_, err = svc.UpdateStatus(hrContext(), employee.UpdateStatusRequest{ID: created.ID, IsActive: ptr(true)})
	assert.ErrorIs(t, err, employee.ErrEmployeeAlreadyActive)

	_, err = svc.UpdateStatus(hrContext(), employee.UpdateStatusRequest{ID: created.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDeleteEmployee_PurgesAttendance(t *testing.T) {
	ctx := context.Background()
	svc, store := newEmployeeTestService(t)
	created, err := svc.CreateEmployee(hrContext(), validCreateRequest("EMP-800", "purge@example.com"))
	require.NoError(t, err)

	present := attendance.StatusPresent
	for _, day := range []int{4, 5} {
		_, err := store.Attendances().Create(ctx, attendance.Attendance{
			EmployeeID: created.ID,
			Date:       time.Date(2025, 8, day, 0, 0, 0, 0, time.UTC),
			Status:     &present,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteEmployee(hrContext(), created.ID))

	_, err = store.Employees().GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	rows, err := store.Attendances().ListByEmployeeRange(ctx, created.ID,
		time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, svc.DeleteEmployee(hrContext(), created.ID), employee.ErrEmployeeNotFound)
}

func TestDeleteEmployee_RefusesSelf(t *testing.T) {
	svc, _ := newEmployeeTestService(t)
	created, err := svc.CreateEmployee(hrContext(), validCreateRequest("EMP-900", "self@example.com"))
	require.NoError(t, err)

	ctx := user.WithActor(context.Background(), user.Actor{UserID: "hr-2", EmployeeID: created.ID, Role: user.RoleAdmin})
	err = svc.DeleteEmployee(ctx, created.ID)

	assert.ErrorIs(t, err, employee.ErrCannotDeleteSelf)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
