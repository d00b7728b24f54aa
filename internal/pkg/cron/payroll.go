package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
)

// PayrollJobs keeps the current month's payroll rows in step with attendance.
type PayrollJobs struct {
	payrollSvc payroll.PayrollService
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

func NewPayrollJobs(payrollSvc payroll.PayrollService, loc *time.Location, logger *slog.Logger) *PayrollJobs {
	return &PayrollJobs{
		payrollSvc: payrollSvc,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(Job{
		Name:           "refresh_current_month_payroll",
		Interval:       interval,
		Fn:             j.RefreshCurrentMonth,
		SkipInitialRun: true,
	})
}

// RefreshCurrentMonth regenerates every active employee's row for the month
// that is current in the business timezone. Paid rows are left alone.
func (j *PayrollJobs) RefreshCurrentMonth(ctx context.Context) error {
	month := j.now().In(j.loc).Format("2006-01")
	ctx = user.WithActor(ctx, user.SystemActor())

	result, err := j.payrollSvc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{Month: month})
	if err != nil {
		if errors.Is(err, payroll.ErrNoEmployeesToProcess) {
			j.logger.DebugContext(ctx, "payroll refresh skipped, no active employees", "month", month)
			return nil
		}
		return fmt.Errorf("failed to refresh payroll for %s: %w", month, err)
	}

	j.logger.InfoContext(ctx, "payroll refreshed",
		"month", month,
		"generated", len(result.Generated),
		"failed", len(result.Failed),
	)
	return nil
}
