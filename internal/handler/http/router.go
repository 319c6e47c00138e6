package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the process-level settings the router needs.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	employeeHandler EmployeeHandler,
	calendarHandler CalendarHandler,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll-engine"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
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

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListEmployees)
				r.Get("/{id}", employeeHandler.GetEmployee)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", employeeHandler.CreateEmployee)
					r.Put("/{id}/active", employeeHandler.SetActive)
				})
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/weekly-offs", calendarHandler.ListWeeklyOffs)
				r.Get("/holidays", calendarHandler.ListHolidays)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/weekly-offs", calendarHandler.CreateWeeklyOff)
					r.Post("/holidays", calendarHandler.CreateHoliday)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/punches", attendanceHandler.RecordPunch)
				r.Get("/daily", attendanceHandler.DailyStatus)
				r.Get("/summary", attendanceHandler.MonthlySummary)

				// Admin only
				r.With(middleware.AdminOnly).Post("/corrections", attendanceHandler.ApplyCorrection)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Post("/preview", leaveHandler.Preview)

				r.Route("/types", func(r chi.Router) {
					r.Get("/", leaveHandler.ListTypes)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/", leaveHandler.CreateType)
						r.Delete("/{name}", leaveHandler.DeleteType)
					})
				})

				r.Route("/balances", func(r chi.Router) {
					r.Get("/{employeeID}", leaveHandler.GetBalances)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/adjust", leaveHandler.AdjustBalance)
						r.Post("/{employeeID}/defaults", leaveHandler.GrantDefaults)
					})
				})

				r.Route("/applications", func(r chi.Router) {
					r.Post("/", leaveHandler.SubmitApplication)
					r.Get("/", leaveHandler.ListApplications)
					r.Get("/{id}", leaveHandler.GetApplication)
					r.Post("/{id}/cancel", leaveHandler.RequestCancellation)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/{id}/approve", leaveHandler.ApproveApplication)
						r.Post("/{id}/reject", leaveHandler.RejectApplication)
						r.Post("/{id}/cancellation/approve", leaveHandler.ApproveCancellation)
						r.Post("/{id}/cancellation/reject", leaveHandler.RejectCancellation)
					})
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/settings", payrollHandler.ListSettings)
				r.Get("/salary-structures", payrollHandler.ListSalaryStructures)
				r.Post("/preview", payrollHandler.Preview)
				r.Get("/payslips", payrollHandler.ListPayslips)
				r.Get("/payslips/{id}", payrollHandler.GetPayslip)
				r.Get("/payslips/{id}/pdf", payrollHandler.DownloadPayslipPDF)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Put("/settings/{name}", payrollHandler.UpsertSetting)
					r.Post("/salary-structures", payrollHandler.CreateSalaryStructure)
					r.Put("/inputs", payrollHandler.UpsertPeriodInputs)
					r.Post("/run", payrollHandler.RunPayroll)
				})
			})
		})
	})
	return r
}
