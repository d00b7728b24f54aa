package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePayrollService struct {
	payroll.PayrollService

	err   error
	month string
	actor user.Actor
}

func (f *fakePayrollService) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	f.month = req.Month
	f.actor, _ = user.ActorFromContext(ctx)
	if f.err != nil {
		return payroll.GeneratePayrollResponse{}, f.err
	}
	return payroll.GeneratePayrollResponse{Month: req.Month}, nil
}

func TestRefreshCurrentMonth_UsesBusinessTimezone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	svc := &fakePayrollService{}
	jobs := NewPayrollJobs(svc, loc, discardLogger())
	// 20:00 UTC on the last day of August is already September in IST.
	jobs.now = func() time.Time { return time.Date(2025, 8, 31, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, jobs.RefreshCurrentMonth(context.Background()))

	assert.Equal(t, "2025-09", svc.month)
	assert.True(t, svc.actor.Role.IsHR())
	assert.Equal(t, user.SystemActor(), svc.actor)
}

func TestRefreshCurrentMonth_Errors(t *testing.T) {
	jobs := NewPayrollJobs(&fakePayrollService{err: payroll.ErrNoEmployeesToProcess}, time.UTC, discardLogger())
	assert.NoError(t, jobs.RefreshCurrentMonth(context.Background()))

	boom := errors.New("boom")
	jobs = NewPayrollJobs(&fakePayrollService{err: boom}, time.UTC, discardLogger())
	assert.ErrorIs(t, jobs.RefreshCurrentMonth(context.Background()), boom)
}

func TestScheduler_RunsAndStops(t *testing.T) {
	s := NewScheduler(discardLogger())
	var runs atomic.Int32
	s.AddJob(Job{Name: "tick", Interval: 10 * time.Millisecond, Fn: func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestScheduler_IgnoresDisabledJobs(t *testing.T) {
	s := NewScheduler(discardLogger())
	var runs atomic.Int32
	s.AddJob(Job{Name: "off", Interval: 0, Fn: func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}})

	s.RunOnce(context.Background())
	assert.Zero(t, runs.Load())
	s.Stop()
}

func TestPayrollJobs_RegisterJobs(t *testing.T) {
	svc := &fakePayrollService{}
	s := NewScheduler(discardLogger())
	NewPayrollJobs(svc, time.UTC, discardLogger()).RegisterJobs(s, time.Hour)

	s.RunOnce(context.Background())

	assert.NotEmpty(t, svc.month)
}
