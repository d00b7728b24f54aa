package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/schedule"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	tx             database.Transactor
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	parser         *schedule.Parser
	aggregator     *Aggregator
	calculator     *Calculator
	publisher      events.Publisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	workers        int
	now            func() time.Time
}

// Deps groups the collaborators of the payroll service.
type Deps struct {
	Transactor     database.Transactor
	PayrollRepo    payroll.PayrollRepository
	EmployeeRepo   employee.EmployeeRepository
	AttendanceRepo attendance.AttendanceRepository
	Parser         *schedule.Parser
	Aggregator     *Aggregator
	Calculator     *Calculator
	Publisher      events.Publisher
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	// Workers bounds how many employees are generated at once.
	Workers int
}

func NewPayrollService(d Deps) payroll.PayrollService {
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}
	return &PayrollServiceImpl{
		tx:             d.Transactor,
		payrollRepo:    d.PayrollRepo,
		employeeRepo:   d.EmployeeRepo,
		attendanceRepo: d.AttendanceRepo,
		parser:         d.Parser,
		aggregator:     d.Aggregator,
		calculator:     d.Calculator,
		publisher:      d.Publisher,
		metrics:        d.Metrics,
		logger:         d.Logger,
		workers:        workers,
		now:            time.Now,
	}
}

// GeneratePayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}
	monthStart, _ := validator.IsValidMonth(req.Month)

	employees, err := s.employeesToProcess(ctx, req.EmployeeID)
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	started := time.Now()
	rows := make([]payroll.Payroll, len(employees))
	errs := make([]error, len(employees))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, emp := range employees {
		g.Go(func() error {
			// A failing employee is recorded and never cancels the others.
			rows[i], errs[i] = s.generateOne(ctx, emp, monthStart)
			return nil
		})
	}
	_ = g.Wait()

	resp := payroll.GeneratePayrollResponse{
		Month:     req.Month,
		Generated: []payroll.PayrollResponse{},
	}
	for i, emp := range employees {
		if errs[i] != nil {
			s.metrics.PayrollGenerated.WithLabelValues("failure").Inc()
			s.logger.Warn("payroll generation failed",
				"employee_id", emp.ID,
				"month", req.Month,
				"error", errs[i],
			)
			resp.Failed = append(resp.Failed, payroll.GenerationFailure{
				EmployeeID: emp.ID,
				Error:      errs[i].Error(),
			})
			continue
		}

		row := rows[i]
		s.metrics.PayrollGenerated.WithLabelValues("success").Inc()
		s.publisher.Publish(ctx, events.SubjectPayrollGenerated, events.PayrollGenerated{
			PayrollID:  row.ID,
			EmployeeID: row.EmployeeID,
			Month:      row.Month,
			NetPay:     row.NetPay.StringFixed(2),
			Status:     string(row.Status),
		})
		resp.Generated = append(resp.Generated, payroll.ToResponse(row))
	}
	s.metrics.GenerationDuration.Observe(time.Since(started).Seconds())

	s.logger.Info("payroll generated",
		"month", req.Month,
		"generated", len(resp.Generated),
		"failed", len(resp.Failed),
		"duration", time.Since(started),
	)
	return resp, nil
}

func (s *PayrollServiceImpl) employeesToProcess(ctx context.Context, employeeID *string) ([]employee.Employee, error) {
	if employeeID != nil {
		emp, err := s.employeeRepo.GetByID(ctx, *employeeID)
		if err != nil {
			return nil, err
		}
		if !emp.IsActive {
			return nil, payroll.ErrEmployeeInactive
		}
		return []employee.Employee{emp}, nil
	}

	employees, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active employees: %w", err)
	}
	if len(employees) == 0 {
		return nil, payroll.ErrNoEmployeesToProcess
	}
	return employees, nil
}

// generateOne recomputes a single employee-month inside its own transaction.
func (s *PayrollServiceImpl) generateOne(ctx context.Context, emp employee.Employee, monthStart time.Time) (payroll.Payroll, error) {
	month := monthStart.Format(validator.MonthLayout)
	dates := MonthDates(monthStart)

	var saved payroll.Payroll
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.payrollRepo.GetByEmployeeMonthForUpdate(txCtx, emp.ID, month)
		if err != nil {
			return fmt.Errorf("failed to lock payroll row: %w", err)
		}
		if existing != nil && existing.Status == payroll.PayrollStatusPaid {
			return payroll.ErrPayrollAlreadyPaid
		}

		sched := s.parser.Parse(emp.WorkingHours, emp.WorkingDays)
		records, err := s.attendanceRepo.ListByEmployeeRange(txCtx, emp.ID, dates[0], dates[len(dates)-1])
		if err != nil {
			return fmt.Errorf("failed to read attendance: %w", err)
		}

		tallies := s.aggregator.Aggregate(sched, monthStart, records)
		bucket, amount, _ := emp.Override()
		calc := s.calculator.Calculate(CalculationInput{
			BaseSalary:      emp.BaseSalary,
			Tallies:         tallies,
			RequiredMinutes: sched.RequiredMinutes,
			OverrideBucket:  bucket,
			OverrideAmount:  amount,
		})

		saved, err = s.payrollRepo.Upsert(txCtx, payroll.Payroll{
			EmployeeID:    emp.ID,
			Month:         month,
			BaseSalary:    emp.BaseSalary,
			Tallies:       tallies,
			PerDayRate:    calc.PerDayRate,
			Deductions:    calc.Deductions,
			GrossEarnings: calc.GrossEarnings,
			OvertimePay:   calc.OvertimePay,
			NetPay:        calc.NetPay,
			Status:        payroll.PayrollStatusPending,
			DataQuality:   sched.Notes,
		})
		if err != nil {
			return fmt.Errorf("failed to save payroll: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.Payroll{}, err
	}

	saved.EmployeeName = &emp.FullName
	saved.EmployeeCode = &emp.EmployeeCode
	return saved, nil
}

// ListPayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPayroll(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	actor, ok := user.ActorFromContext(ctx)
	if !ok {
		return payroll.ListPayrollResponse{}, user.ErrUnauthenticated
	}
	if !actor.Role.IsHR() {
		if actor.EmployeeID == "" {
			return payroll.ListPayrollResponse{}, user.ErrNoEmployeeProfile
		}
		filter.EmployeeID = &actor.EmployeeID
	}
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	rows, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list payroll: %w", err)
	}

	data := make([]payroll.PayrollResponse, 0, len(rows))
	for _, row := range rows {
		data = append(data, payroll.ToResponse(row))
	}

	return payroll.ListPayrollResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// GetPayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	actor, ok := user.ActorFromContext(ctx)
	if !ok {
		return payroll.PayrollResponse{}, user.ErrUnauthenticated
	}

	row, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	if !actor.Role.IsHR() && row.EmployeeID != actor.EmployeeID {
		return payroll.PayrollResponse{}, payroll.ErrPayrollNotFound
	}
	return payroll.ToResponse(row), nil
}

// UpdatePayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) UpdatePayroll(ctx context.Context, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error) {
	actor, err := user.RequireHR(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	var status *payroll.PayrollStatus
	if req.Status != nil {
		st, _ := payroll.ParseStatus(*req.Status)
		if st == payroll.PayrollStatusPaid {
			return payroll.PayrollResponse{}, payroll.ErrInvalidStatusChange
		}
		status = &st
	}

	var updated payroll.Payroll
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		row, err := s.payrollRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if row.Status == payroll.PayrollStatusPaid {
			return payroll.ErrPayrollAlreadyPaid
		}

		if req.Deductions != nil {
			row.Deductions = req.Deductions.Apply(row.Deductions)
		}
		if req.GrossEarnings != nil {
			row.GrossEarnings = req.GrossEarnings.Round(2)
		}
		if req.Notes != nil {
			notes := strings.TrimSpace(*req.Notes)
			row.Notes = &notes
		}
		if status != nil {
			row.Status = *status
		}
		row.NetPay = NetPay(row.GrossEarnings, row.Deductions)

		if err := s.payrollRepo.Update(txCtx, row); err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	s.logger.Info("payroll adjusted",
		"payroll_id", updated.ID,
		"status", updated.Status,
		"net_pay", updated.NetPay.StringFixed(2),
		"updated_by", actor.UserID,
	)
	return payroll.ToResponse(updated), nil
}

// DisbursePayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) DisbursePayroll(ctx context.Context, req payroll.DisburseRequest) (payroll.PayrollResponse, error) {
	actor, err := user.RequireHR(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	var paid payroll.Payroll
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		row, err := s.payrollRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		switch row.Status {
		case payroll.PayrollStatusPaid:
			return payroll.ErrPayrollAlreadyPaid
		case payroll.PayrollStatusApproved:
		default:
			return payroll.ErrPayrollNotApproved
		}

		paidAt := s.now().UTC()
		ref := strings.TrimSpace(req.PaymentRef)
		row.Status = payroll.PayrollStatusPaid
		row.PaymentRef = &ref
		row.PaidAt = &paidAt
		if err := s.payrollRepo.MarkPaid(txCtx, row); err != nil {
			return err
		}
		paid = row
		return nil
	})
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	s.publisher.Publish(ctx, events.SubjectPayrollDisbursed, events.PayrollDisbursed{
		PayrollID:  paid.ID,
		EmployeeID: paid.EmployeeID,
		Month:      paid.Month,
		NetPay:     paid.NetPay.StringFixed(2),
		PaymentRef: *paid.PaymentRef,
		PaidAt:     *paid.PaidAt,
	})
	s.logger.Info("payroll disbursed",
		"payroll_id", paid.ID,
		"payment_ref", *paid.PaymentRef,
		"disbursed_by", actor.UserID,
	)
	return payroll.ToResponse(paid), nil
}

// GetSummary implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetSummary(ctx context.Context, month string) (payroll.PayrollSummaryResponse, error) {
	if _, err := user.RequireHR(ctx); err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}
	if err := validateMonth(month); err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	sums, err := s.payrollRepo.Summary(ctx, month)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to summarise payroll: %w", err)
	}

	resp := payroll.PayrollSummaryResponse{
		Month:           month,
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
		ByStatus:        make(map[string]payroll.StatusTotals, len(sums)),
	}
	for _, sum := range sums {
		resp.TotalEmployees += sum.Count
		resp.TotalGross = resp.TotalGross.Add(sum.TotalGross)
		resp.TotalDeductions = resp.TotalDeductions.Add(sum.TotalDeductions)
		resp.TotalNet = resp.TotalNet.Add(sum.TotalNet)
		resp.ByStatus[string(sum.Status)] = payroll.StatusTotals{
			Count:           sum.Count,
			TotalGross:      sum.TotalGross,
			TotalDeductions: sum.TotalDeductions,
			TotalNet:        sum.TotalNet,
		}
	}
	return resp, nil
}

var registerHeader = []string{
	"Employee Code", "Employee Name", "Month", "Status",
	"Base Salary", "Expected Days", "Present", "Half Days", "Absences",
	"Paid Leave", "Unpaid Leave", "Late Warnings", "Per Day Rate",
	"Absence Ded.", "Half Day Ded.", "Leave Ded.", "Late Ded.", "Other Ded.",
	"Total Ded.", "Gross", "Net Pay", "Payment Ref",
}

// ExportRegister implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportRegister(ctx context.Context, month string, w io.Writer) error {
	if _, err := user.RequireHR(ctx); err != nil {
		return err
	}
	if err := validateMonth(month); err != nil {
		return err
	}

	var rows []payroll.Payroll
	for page := 1; ; page++ {
		filter := payroll.PayrollFilter{Month: &month, Page: page, Limit: 100, SortBy: "employee_name", SortOrder: "asc"}
		batch, total, err := s.payrollRepo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list payroll: %w", err)
		}
		rows = append(rows, batch...)
		if len(batch) == 0 || int64(len(rows)) >= total {
			break
		}
	}

	table := export.Table{Sheet: month, Header: registerHeader}
	totalNet := decimal.Zero
	for _, p := range rows {
		totalNet = totalNet.Add(p.NetPay)
		table.Rows = append(table.Rows, []any{
			deref(p.EmployeeCode), deref(p.EmployeeName), p.Month, string(p.Status),
			money(p.BaseSalary), p.ExpectedWorkingDays, p.PresentDays, p.HalfDays, p.Absences,
			p.NonDeductibleLeaves, p.DeductibleLeaves, p.LateWarnings, money(p.PerDayRate),
			money(p.Deductions.Absence), money(p.Deductions.HalfDay), money(p.Deductions.Leave),
			money(p.Deductions.Late), money(p.Deductions.Other), money(p.Deductions.Total()),
			money(p.GrossEarnings), money(p.NetPay), deref(p.PaymentRef),
		})
	}
	table.Footer = []any{"Total", fmt.Sprintf("%d employees", len(rows))}
	for len(table.Footer) < len(registerHeader)-2 {
		table.Footer = append(table.Footer, nil)
	}
	table.Footer = append(table.Footer, money(totalNet))

	return export.WriteXLSX(w, table)
}

func validateMonth(month string) error {
	if _, ok := validator.IsValidMonth(month); !ok {
		return validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}
	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
