package payroll

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/schedule"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type capturePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *capturePublisher) Publish(_ context.Context, subject string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
}

func (p *capturePublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type payrollEnv struct {
	store     *memory.Store
	svc       *PayrollServiceImpl
	metrics   *metrics.Metrics
	publisher *capturePublisher
}

func newPayrollEnv(t *testing.T) *payrollEnv {
	t.Helper()

	rules := config.DefaultRules()
	store := memory.NewStore()
	m := metrics.NewNop()
	pub := &capturePublisher{}

	svc := NewPayrollService(Deps{
		Transactor:     store.Transactor(),
		PayrollRepo:    store.Payrolls(),
		EmployeeRepo:   store.Employees(),
		AttendanceRepo: store.Attendances(),
		Parser:         schedule.NewParser(rules.WorkingDaysDefault()),
		Aggregator:     NewAggregator(rules),
		Calculator:     NewCalculator(rules),
		Publisher:      pub,
		Metrics:        m,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Workers:        3,
	}).(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 9, 5, 10, 0, 0, 0, time.UTC) }

	return &payrollEnv{store: store, svc: svc, metrics: m, publisher: pub}
}

func (e *payrollEnv) addEmployee(t *testing.T, code, salary, hours string) employee.Employee {
	t.Helper()
	emp, err := e.store.Employees().Create(context.Background(), employee.Employee{
		EmployeeCode: code,
		FullName:     "Employee " + code,
		Email:        code + "@example.com",
		BaseSalary:   decimal.RequireFromString(salary),
		WorkingHours: hours,
		WorkingDays:  "Mon-Fri",
		IsActive:     true,
	})
	require.NoError(t, err)
	return emp
}

// fillAugust marks every August 2025 weekday present except the given
// exceptions: absent days get no row, half days get HD, late days carry a warning.
func (e *payrollEnv) fillAugust(t *testing.T, employeeID string, absent, half, late []int) {
	t.Helper()
	contains := func(list []int, d int) bool {
		for _, v := range list {
			if v == d {
				return true
			}
		}
		return false
	}

	for _, date := range MonthDates(time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)) {
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		d := date.Day()
		if contains(absent, d) {
			continue
		}
		status := attendance.StatusPresent
		if contains(half, d) {
			status = attendance.StatusHalfDay
		}
		warnings := 0
		if contains(late, d) {
			warnings = 1
		}
		_, err := e.store.Attendances().Create(context.Background(), attendance.Attendance{
			EmployeeID: employeeID,
			Date:       date,
			Status:     &status,
			Warnings:   warnings,
		})
		require.NoError(t, err)
	}
}

func hrCtx() context.Context {
	return user.WithActor(context.Background(), user.Actor{UserID: "u-hr", Role: user.RoleHR})
}

func ptr[T any](v T) *T {
	return &v
}

func TestGeneratePayroll_ComputesMonth(t *testing.T) {
	env := newPayrollEnv(t)
	emp := env.addEmployee(t, "EMP-001", "21000", "09:00-18:00")
	env.fillAugust(t, emp.ID, []int{6, 7}, []int{5}, []int{4, 12})

	resp, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)
	require.Len(t, resp.Generated, 1)
	assert.Empty(t, resp.Failed)

	got := resp.Generated[0]
	assert.Equal(t, emp.ID, got.EmployeeID)
	assert.Equal(t, "EMP-001", *got.EmployeeCode)
	assert.Equal(t, 21, got.ExpectedWorkingDays)
	assert.Equal(t, 18, got.PresentDays)
	assert.Equal(t, 1, got.HalfDays)
	assert.Equal(t, 2, got.Absences)
	assert.Equal(t, 2, got.LateWarnings)
	assert.Equal(t, "1000.00", got.PerDayRate.StringFixed(2))
	assert.Equal(t, "2000.00", got.Deductions.Absence.StringFixed(2))
	assert.Equal(t, "500.00", got.Deductions.HalfDay.StringFixed(2))
	assert.Equal(t, "250.00", got.Deductions.Late.StringFixed(2))
	assert.Equal(t, "18250.00", got.NetPay.StringFixed(2))
	assert.Equal(t, "Pending", got.Status)
	assert.Empty(t, got.DataQuality)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PayrollGenerated.WithLabelValues("success")))
	assert.Equal(t, 1, env.publisher.count(events.SubjectPayrollGenerated))
}

func TestGeneratePayroll_IsIdempotent(t *testing.T) {
	env := newPayrollEnv(t)
	a := env.addEmployee(t, "EMP-001", "21000", "09:00-18:00")
	b := env.addEmployee(t, "EMP-002", "25000", "9am - 6pm")
	env.fillAugust(t, a.ID, []int{6}, nil, []int{4, 5, 12})
	env.fillAugust(t, b.ID, nil, []int{8, 19}, nil)

	first, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)
	second, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)

	require.Len(t, first.Generated, 2)
	require.Len(t, second.Generated, 2)
	for i := range first.Generated {
		x, y := first.Generated[i], second.Generated[i]
		assert.Equal(t, x.ID, y.ID, "regeneration updates in place")
		assert.Equal(t, x.PerDayRate.String(), y.PerDayRate.String())
		assert.Equal(t, x.Deductions.Total.String(), y.Deductions.Total.String())
		assert.Equal(t, x.NetPay.String(), y.NetPay.String())
	}

	month := "2025-08"
	list, err := env.svc.ListPayroll(hrCtx(), payroll.PayrollFilter{Month: &month})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
}

func TestGeneratePayroll_KeepsReviewFieldsAndSkipsPaid(t *testing.T) {
	env := newPayrollEnv(t)
	a := env.addEmployee(t, "EMP-001", "21000", "09:00-18:00")
	b := env.addEmployee(t, "EMP-002", "21000", "09:00-18:00")
	env.fillAugust(t, a.ID, nil, nil, nil)
	env.fillAugust(t, b.ID, nil, nil, nil)

	resp, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)
	rowA, rowB := resp.Generated[0], resp.Generated[1]

	_, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{ID: rowA.ID, Status: ptr("approved"), Notes: ptr("checked")})
	require.NoError(t, err)
	_, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{ID: rowB.ID, Status: ptr("Approved")})
	require.NoError(t, err)
	_, err = env.svc.DisbursePayroll(hrCtx(), payroll.DisburseRequest{ID: rowB.ID, PaymentRef: "NEFT-42"})
	require.NoError(t, err)

	again, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)
	require.Len(t, again.Generated, 1)
	assert.Equal(t, rowA.ID, again.Generated[0].ID)
	assert.Equal(t, "Approved", again.Generated[0].Status)
	assert.Equal(t, "checked", *again.Generated[0].Notes)

	require.Len(t, again.Failed, 1)
	assert.Equal(t, b.ID, again.Failed[0].EmployeeID)

	paid, err := env.svc.GetPayroll(hrCtx(), rowB.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paid", paid.Status)
	assert.Equal(t, "NEFT-42", *paid.PaymentRef)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PayrollGenerated.WithLabelValues("failure")))
}

func TestGeneratePayroll_UnreadableScheduleStillGenerates(t *testing.T) {
	env := newPayrollEnv(t)
	emp := env.addEmployee(t, "EMP-003", "21000", "flexible")

	resp, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08", EmployeeID: &emp.ID})
	require.NoError(t, err)
	require.Len(t, resp.Generated, 1)
	assert.NotEmpty(t, resp.Generated[0].DataQuality)
	assert.Equal(t, 21, resp.Generated[0].Absences)
	assert.Equal(t, "0.00", resp.Generated[0].NetPay.StringFixed(2))
}

func TestGeneratePayroll_Rejections(t *testing.T) {
	env := newPayrollEnv(t)

	_, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-8"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	emp := user.WithActor(context.Background(), user.Actor{UserID: "u1", EmployeeID: "e1", Role: user.RoleEmployee})
	_, err = env.svc.GeneratePayroll(emp, payroll.GeneratePayrollRequest{Month: "2025-08"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	assert.ErrorIs(t, err, payroll.ErrNoEmployeesToProcess)

	inactive := env.addEmployee(t, "EMP-009", "10000", "09:00-18:00")
	inactive.IsActive = false
	require.NoError(t, env.store.Employees().UpdateStatus(context.Background(), inactive))
	_, err = env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08", EmployeeID: &inactive.ID})
	assert.ErrorIs(t, err, payroll.ErrEmployeeInactive)

	_, err = env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08", EmployeeID: ptr("missing")})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpdatePayroll_RecomputesNet(t *testing.T) {
	env := newPayrollEnv(t)
	emp := env.addEmployee(t, "EMP-001", "21000", "09:00-18:00")
	env.fillAugust(t, emp.ID, []int{6}, nil, nil)

	resp, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)
	id := resp.Generated[0].ID
	assert.Equal(t, "20000.00", resp.Generated[0].NetPay.StringFixed(2))

	other := decimal.RequireFromString("1234.567")
	updated, err := env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{
		ID:         id,
		Deductions: &payroll.DeductionsPatch{Other: &other},
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", updated.Deductions.Absence.StringFixed(2), "untouched buckets are kept")
	assert.Equal(t, "1234.57", updated.Deductions.Other.StringFixed(2))
	assert.Equal(t, "18765.43", updated.NetPay.StringFixed(2))

	huge := decimal.RequireFromString("50000")
	updated, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{
		ID:         id,
		Deductions: &payroll.DeductionsPatch{Absence: &huge},
	})
	require.NoError(t, err)
	assert.True(t, updated.NetPay.IsZero())

	negative := decimal.RequireFromString("-1")
	_, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{ID: id, Deductions: &payroll.DeductionsPatch{Late: &negative}})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{ID: id, Status: ptr("Paid")})
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusChange)

	_, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{ID: "missing", Notes: ptr("x")})
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}

func TestDisbursePayroll_Lifecycle(t *testing.T) {
	env := newPayrollEnv(t)
	emp := env.addEmployee(t, "EMP-001", "21000", "09:00-18:00")
	env.fillAugust(t, emp.ID, nil, nil, nil)

	resp, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)
	id := resp.Generated[0].ID

	_, err = env.svc.DisbursePayroll(hrCtx(), payroll.DisburseRequest{ID: id, PaymentRef: "NEFT-1"})
	assert.ErrorIs(t, err, payroll.ErrPayrollNotApproved)

	_, err = env.svc.DisbursePayroll(hrCtx(), payroll.DisburseRequest{ID: id})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{ID: id, Status: ptr("Approved")})
	require.NoError(t, err)

	paid, err := env.svc.DisbursePayroll(hrCtx(), payroll.DisburseRequest{ID: id, PaymentRef: "NEFT-1"})
	require.NoError(t, err)
	assert.Equal(t, "Paid", paid.Status)
	assert.Equal(t, "2025-09-05T10:00:00Z", *paid.PaidAt)
	assert.Equal(t, 1, env.publisher.count(events.SubjectPayrollDisbursed))

	_, err = env.svc.DisbursePayroll(hrCtx(), payroll.DisburseRequest{ID: id, PaymentRef: "NEFT-2"})
	assert.ErrorIs(t, err, payroll.ErrPayrollAlreadyPaid)

	_, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{ID: id, Notes: ptr("late edit")})
	assert.ErrorIs(t, err, payroll.ErrPayrollAlreadyPaid)

	got, err := env.svc.GetPayroll(hrCtx(), id)
	require.NoError(t, err)
	assert.Equal(t, "NEFT-1", *got.PaymentRef)
}

func TestListAndGetPayroll_EmployeeSeesOwnRows(t *testing.T) {
	env := newPayrollEnv(t)
	a := env.addEmployee(t, "EMP-001", "21000", "09:00-18:00")
	b := env.addEmployee(t, "EMP-002", "21000", "09:00-18:00")

	resp, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)
	require.Len(t, resp.Generated, 2)

	ctxA := user.WithActor(context.Background(), user.Actor{UserID: "ua", EmployeeID: a.ID, Role: user.RoleEmployee})
	list, err := env.svc.ListPayroll(ctxA, payroll.PayrollFilter{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, a.ID, list.Data[0].EmployeeID)

	var rowB string
	for _, g := range resp.Generated {
		if g.EmployeeID == b.ID {
			rowB = g.ID
		}
	}
	_, err = env.svc.GetPayroll(ctxA, rowB)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)

	_, err = env.svc.ListPayroll(hrCtx(), payroll.PayrollFilter{Status: ptr("Cancelled")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGetSummary(t *testing.T) {
	env := newPayrollEnv(t)
	a := env.addEmployee(t, "EMP-001", "21000", "09:00-18:00")
	b := env.addEmployee(t, "EMP-002", "42000", "09:00-18:00")
	env.fillAugust(t, a.ID, nil, nil, nil)
	env.fillAugust(t, b.ID, []int{4}, nil, nil)

	resp, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)
	_, err = env.svc.UpdatePayroll(hrCtx(), payroll.UpdatePayrollRequest{ID: resp.Generated[0].ID, Status: ptr("Approved")})
	require.NoError(t, err)

	sum, err := env.svc.GetSummary(hrCtx(), "2025-08")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalEmployees)
	assert.Equal(t, "63000.00", sum.TotalGross.StringFixed(2))
	assert.Equal(t, "2000.00", sum.TotalDeductions.StringFixed(2))
	assert.Equal(t, "61000.00", sum.TotalNet.StringFixed(2))
	assert.Equal(t, 1, sum.ByStatus["Approved"].Count)
	assert.Equal(t, 1, sum.ByStatus["Pending"].Count)

	_, err = env.svc.GetSummary(hrCtx(), "August")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestExportRegister(t *testing.T) {
	env := newPayrollEnv(t)
	a := env.addEmployee(t, "EMP-001", "21000", "09:00-18:00")
	env.fillAugust(t, a.ID, []int{6, 7}, []int{5}, []int{4, 12})

	_, err := env.svc.GeneratePayroll(hrCtx(), payroll.GeneratePayrollRequest{Month: "2025-08"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.svc.ExportRegister(hrCtx(), "2025-08", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("2025-08")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, registerHeader, rows[0])
	assert.Equal(t, "EMP-001", rows[1][0])
	assert.Equal(t, "Employee EMP-001", rows[1][1])
	assert.Equal(t, "18250.00", rows[1][20])

	emp := user.WithActor(context.Background(), user.Actor{UserID: "u1", EmployeeID: a.ID, Role: user.RoleEmployee})
	assert.ErrorIs(t, env.svc.ExportRegister(emp, "2025-08", &buf), apperror.ErrForbidden)
}
