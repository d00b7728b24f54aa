package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hris-payroll-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hris-payroll-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hris-payroll-go/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/schedule"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app holds everything the commands share once configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	level    slog.Level
	loc      *time.Location
	db       *database.DB
	registry *prometheus.Registry
	jwt      *jwt.JWTService

	userRepo user.UserRepository

	authSvc       auth.AuthService
	employeeSvc   employee.EmployeeService
	attendanceSvc attendance.AttendanceService
	leaveSvc      leave.LeaveService
	payrollSvc    payroll.PayrollService

	closers []func()
}

// bootstrap loads configuration, connects to PostgreSQL and NATS, and wires
// the services. The caller must call Close.
func bootstrap(ctx context.Context, logLevel string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel == "" {
		logLevel = cfg.App.LogLevel
	}
	level := parseLevel(logLevel)
	logger := newLogger(level)

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		level:    level,
		loc:      loc,
		db:       db,
		registry: prometheus.NewRegistry(),
		jwt:      jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration),
	}
	a.closers = append(a.closers, db.Close)

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.Connect(cfg.NATS.URL, logger, m)
		if err != nil {
			a.Close()
			return nil, err
		}
		publisher = natsPublisher
		a.closers = append(a.closers, func() {
			if err := natsPublisher.Close(); err != nil {
				logger.Warn("failed to drain NATS connection", "error", err)
			}
		})
	}

	tx := postgresql.NewTransactor(db)
	a.userRepo = postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	parser := schedule.NewParser(cfg.Rules.WorkingDaysDefault())

	a.authSvc = serviceAuth.NewAuthService(a.userRepo, a.jwt, logger)
	a.employeeSvc = employeeService.NewEmployeeService(tx, employeeRepo, a.userRepo, attendanceRepo, logger)
	a.attendanceSvc = attendanceService.NewAttendanceService(
		attendanceRepo,
		employeeRepo,
		parser,
		attendanceService.NewClassifier(loc, cfg.Rules.LateGraceMinutes),
		m,
		logger,
	)
	a.leaveSvc = leaveService.NewLeaveService(tx, leaveRequestRepo, attendanceRepo, employeeRepo, publisher, m, logger)
	a.payrollSvc = payrollService.NewPayrollService(payrollService.Deps{
		Transactor:     tx,
		PayrollRepo:    payrollRepo,
		EmployeeRepo:   employeeRepo,
		AttendanceRepo: attendanceRepo,
		Parser:         parser,
		Aggregator:     payrollService.NewAggregator(cfg.Rules),
		Calculator:     payrollService.NewCalculator(cfg.Rules),
		Publisher:      publisher,
		Metrics:        m,
		Logger:         logger,
		Workers:        cfg.Payroll.Workers,
	})

	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
