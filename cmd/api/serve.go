package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(logLevel *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the payroll refresh job",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *logLevel, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply the database schema before serving")

	return cmd
}

func serve(ctx context.Context, logLevel string, migrate bool) error {
	a, err := bootstrap(ctx, logLevel)
	if err != nil {
		return err
	}
	defer a.Close()

	if migrate {
		if err := postgresql.Migrate(ctx, a.db); err != nil {
			return err
		}
		a.logger.Info("database schema applied")
	}

	router := appHTTP.NewRouter(a.jwt, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(a.authSvc),
		Employee:   appHTTP.NewEmployeeHandler(a.employeeSvc),
		Attendance: appHTTP.NewAttendanceHandler(a.attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(a.leaveSvc),
		Payroll:    appHTTP.NewPayrollHandler(a.payrollSvc),
	}, appHTTP.RouterOptions{
		AllowedOrigins: a.cfg.App.AllowedOrigins,
		Version:        Version,
		Env:            a.cfg.App.Env,
		LogLevel:       a.level,
		Metrics:        promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler := cron.NewScheduler(a.logger)
	cron.NewPayrollJobs(a.payrollSvc, a.loc, a.logger).RegisterJobs(scheduler, a.cfg.Payroll.CronInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", "addr", server.Addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
