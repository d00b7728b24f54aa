package http

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups the API handlers mounted by NewRouter.
type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Payroll    PayrollHandler
}

type RouterOptions struct {
	AllowedOrigins []string
	Version        string
	Env            string
	LogLevel       slog.Level
	// LogOutput receives the access log. Defaults to stdout.
	LogOutput io.Writer
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(jwtService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(jwtService.JWTAuth(), jwtauth.TokenFromHeader))
			r.Use(middleware.AuthRequired(jwtService))

			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/{id}", h.Employee.GetEmployee)

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Get("/", h.Employee.ListEmployees)
					r.Post("/", h.Employee.CreateEmployee)
					r.Patch("/{id}", h.Employee.UpdateEmployee)
					r.Put("/{id}/status", h.Employee.UpdateStatus)
					r.Delete("/{id}", h.Employee.DeleteEmployee)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployeeProfile)
					r.Post("/punch-in", h.Attendance.PunchIn)
					r.Post("/punch-out", h.Attendance.PunchOut)
					r.Get("/my", h.Attendance.GetMyAttendance)
				})
				r.Get("/{id}", h.Attendance.Get)

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Get("/", h.Attendance.List)
					r.Put("/corrections", h.Attendance.Correct)
					r.Post("/{id}/leave-review", h.Leave.ReviewDayLeave)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Post("/requests", h.Leave.Apply)
				r.Post("/days", h.Leave.RequestDayLeave)
				r.Get("/requests/my", h.Leave.GetMyRequests)
				r.Get("/requests/{id}", h.Leave.Get)

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Get("/requests", h.Leave.List)
					r.Post("/requests/{id}/review", h.Leave.Review)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/", h.Payroll.ListPayroll)
				r.Get("/{id}", h.Payroll.GetPayroll)

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Post("/generate", h.Payroll.GeneratePayroll)
					r.Get("/summary", h.Payroll.GetPayrollSummary)
					r.Get("/export", h.Payroll.ExportRegister)
					r.Patch("/{id}", h.Payroll.UpdatePayroll)
					r.Post("/{id}/disburse", h.Payroll.DisbursePayroll)
				})
			})
		})
	})
	return r
}
