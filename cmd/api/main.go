package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/postgresql/schema"
	attendanceService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/calendar"
	employeeService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid timezone:", err)
	}
	shiftStart, err := cfg.ShiftStart()
	if err != nil {
		log.Fatal("Invalid shift start:", err)
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	if cfg.App.AutoMigrate {
		if _, err := db.Exec(ctx, schema.SQL); err != nil {
			log.Fatal("Failed to apply schema:", err)
		}
	}

	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	weeklyOffRepo := postgresql.NewWeeklyOffRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	punchRepo := postgresql.NewPunchRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveApplicationRepo := postgresql.NewLeaveApplicationRepository(db)
	salaryRepo := postgresql.NewSalaryStructureRepository(db)
	settingRepo := postgresql.NewSettingRepository(db)
	periodInputRepo := postgresql.NewPeriodInputRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	calendarSvc := calendarService.NewCalendarService(transactor, weeklyOffRepo, holidayRepo)
	ledgerService := leave.NewLedgerService(transactor, leaveTypeRepo, leaveBalanceRepo)
	requestService := leave.NewRequestService(transactor, leaveTypeRepo, leaveApplicationRepo, employeeRepo, ledgerService)
	typeService := leave.NewTypeService(transactor, leaveTypeRepo, leaveBalanceRepo, leaveApplicationRepo, cfg.Leave.TypeDeleteCascade)
	leaveService := leave.NewLeaveService(leaveTypeRepo, leaveBalanceRepo, leaveApplicationRepo, typeService, ledgerService, requestService)
	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		punchRepo,
		payslipRepo,
		calendarSvc,
		requestService,
		attendance.ShiftPolicy{
			Start:    shiftStart,
			Grace:    cfg.Grace(),
			Location: location,
		},
	)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		salaryRepo,
		settingRepo,
		periodInputRepo,
		payslipRepo,
		employeeRepo,
		attendanceSvc,
		payrollService.Options{
			Workers:  cfg.Payroll.Workers,
			Currency: cfg.Payroll.Currency,
		},
	)
	employeeSvc := employeeService.NewEmployeeService(transactor, employeeRepo, ledgerService)

	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	calendarHandler := appHTTP.NewCalendarHandler(calendarSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveService)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			Version:        cfg.App.Version,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		employeeHandler,
		calendarHandler,
		attendanceHandler,
		leaveHandler,
		payrollHandler,
	)

	scheduler := cron.NewScheduler(location)
	if cfg.Payroll.CronEnabled {
		cron.NewPayrollJobs(payrollSvc, cfg.Payroll.RunDay).RegisterJobs(scheduler)
	}
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{
		Addr:              port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Println("Server shutdown error:", err)
		}
	}()

	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Println("Server error:", err)
	}
}
