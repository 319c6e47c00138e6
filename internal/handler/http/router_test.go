package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestAccessExp = "1h"
)

// Unimplemented methods panic through the nil embedded interface.
type stubPayrollService struct {
	payroll.PayrollService
	preview  func(req payroll.PeriodRequest) (payroll.PayslipResponse, error)
	run      func(req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error)
	payslips map[string]payroll.PayslipResponse
}

func (s *stubPayrollService) Preview(_ context.Context, req payroll.PeriodRequest) (payroll.PayslipResponse, error) {
	return s.preview(req)
}

func (s *stubPayrollService) RunPayroll(_ context.Context, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error) {
	return s.run(req)
}

func (s *stubPayrollService) GetPayslip(_ context.Context, id string) (payroll.PayslipResponse, error) {
	slip, ok := s.payslips[id]
	if !ok {
		return payroll.PayslipResponse{}, payroll.ErrPayslipNotFound
	}
	return slip, nil
}

func (s *stubPayrollService) RenderPayslipPDF(_ context.Context, id string) ([]byte, error) {
	return []byte("%PDF-1.3 " + id), nil
}

type stubLeaveService struct {
	leave.LeaveService
	submitted []leave.SubmitApplicationRequest
	decideErr error
}

func (s *stubLeaveService) SubmitApplication(_ context.Context, req leave.SubmitApplicationRequest) (leave.LeaveApplicationResponse, error) {
	s.submitted = append(s.submitted, req)
	return leave.LeaveApplicationResponse{ID: "app-1", EmployeeID: req.EmployeeID, Status: leave.StatusPending}, nil
}

func (s *stubLeaveService) ApproveApplication(_ context.Context, req leave.DecideApplicationRequest) (leave.LeaveApplicationResponse, error) {
	if s.decideErr != nil {
		return leave.LeaveApplicationResponse{}, s.decideErr
	}
	return leave.LeaveApplicationResponse{ID: req.ApplicationID, Status: leave.StatusApproved, DecidedBy: &req.ActorID}, nil
}

type stubEmployeeService struct {
	employee.EmployeeService
}

func (s *stubEmployeeService) ListEmployees(_ context.Context, activeOnly bool) ([]employee.EmployeeResponse, error) {
	return []employee.EmployeeResponse{{ID: "emp-1", EmployeeCode: "E001", IsActive: true}}, nil
}

type testServer struct {
	router  *chi.Mux
	jwt     *jwt.JWTService
	payroll *stubPayrollService
	leave   *stubLeaveService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtSvc := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	payrollSvc := &stubPayrollService{payslips: map[string]payroll.PayslipResponse{}}
	leaveSvc := &stubLeaveService{}

	router := NewRouter(
		RouterOptions{Env: "test", Version: "test", LogLevel: slog.LevelError},
		jwtSvc,
		NewEmployeeHandler(&stubEmployeeService{}),
		NewCalendarHandler(calendar.CalendarService(nil)),
		NewAttendanceHandler(attendance.AttendanceService(nil)),
		NewLeaveHandler(leaveSvc),
		NewPayrollHandler(payrollSvc),
	)
	return &testServer{router: router, jwt: jwtSvc, payroll: payrollSvc, leave: leaveSvc}
}

func (s *testServer) token(t *testing.T, employeeID *string, isAdmin bool) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken("user-1", employeeID, isAdmin)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func strPtr(s string) *string { return &s }

func TestRouter_MissingToken_Unauthorized(t *testing.T) {
	// Setup
	srv := newTestServer(t)

	// Act
	rec := srv.do(t, http.MethodGet, "/api/v1/employees", "", nil)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ListEmployees_Authenticated(t *testing.T) {
	// Setup
	srv := newTestServer(t)

	// Act
	rec := srv.do(t, http.MethodGet, "/api/v1/employees", srv.token(t, strPtr("emp-1"), false), nil)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestPayrollHandler_RunPayroll_AdminOnly(t *testing.T) {
	// Setup
	srv := newTestServer(t)

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/run", srv.token(t, strPtr("emp-1"), false),
		payroll.RunPayrollRequest{Month: 3, Year: 2024})

	// Assert
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPayrollHandler_RunPayroll_Success(t *testing.T) {
	// Setup
	srv := newTestServer(t)
	var got payroll.RunPayrollRequest
	srv.payroll.run = func(req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error) {
		got = req
		return payroll.RunPayrollResponse{
			Month: req.Month, Year: req.Year,
			Generated:   []payroll.PayslipResponse{{EmployeeID: "emp-1"}},
			Overwritten: []string{},
			Failures:    []payroll.RunFailureResponse{{EmployeeID: "emp-2", Field: "salary_structure", Error: "no salary structure"}},
		}, nil
	}

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/run", srv.token(t, nil, true),
		payroll.RunPayrollRequest{Month: 3, Year: 2024, Overwrite: true})

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.Overwrite)
	assert.Contains(t, decodeResponse(t, rec).Message, "1 generated, 1 failed")
}

func TestPayrollHandler_RunPayroll_InvalidPeriod(t *testing.T) {
	// Setup
	srv := newTestServer(t)

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/run", srv.token(t, nil, true),
		payroll.RunPayrollRequest{Month: 13, Year: 2024})

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "month")
}

func TestPayrollHandler_Preview_ConfigurationError(t *testing.T) {
	// Setup
	srv := newTestServer(t)
	srv.payroll.preview = func(req payroll.PeriodRequest) (payroll.PayslipResponse, error) {
		return payroll.PayslipResponse{}, &payroll.ConfigurationError{Setting: payroll.SettingPFRate, Reason: "setting is missing"}
	}

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/preview", srv.token(t, nil, true),
		payroll.PeriodRequest{EmployeeID: "emp-1", Month: 3, Year: 2024})

	// Assert
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFIGURATION_ERROR", resp.Error.Code)
	assert.Equal(t, payroll.SettingPFRate, resp.Error.Details["setting"])
}

func TestPayrollHandler_Preview_NegativeNetPay(t *testing.T) {
	// Setup
	srv := newTestServer(t)
	srv.payroll.preview = func(req payroll.PeriodRequest) (payroll.PayslipResponse, error) {
		return payroll.PayslipResponse{}, &payroll.NegativeNetPayError{EmployeeID: req.EmployeeID, Month: 3, Year: 2024, NetPay: decimal.NewFromInt(-500)}
	}

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/preview", srv.token(t, nil, true),
		payroll.PeriodRequest{EmployeeID: "emp-1", Month: 3, Year: 2024})

	// Assert
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "NEGATIVE_NET_PAY", resp.Error.Code)
	assert.Equal(t, "-500.00", resp.Error.Details["net_pay"])
}

func TestPayrollHandler_Preview_EmployeeUsesOwnID(t *testing.T) {
	// Setup
	srv := newTestServer(t)
	var got payroll.PeriodRequest
	srv.payroll.preview = func(req payroll.PeriodRequest) (payroll.PayslipResponse, error) {
		got = req
		return payroll.PayslipResponse{EmployeeID: req.EmployeeID}, nil
	}

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/payroll/preview", srv.token(t, strPtr("emp-1"), false),
		payroll.PeriodRequest{EmployeeID: "emp-2", Month: 3, Year: 2024})

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "emp-1", got.EmployeeID)
}

func TestPayrollHandler_GetPayslip_OtherEmployeeForbidden(t *testing.T) {
	// Setup
	srv := newTestServer(t)
	srv.payroll.payslips["slip-1"] = payroll.PayslipResponse{ID: "slip-1", EmployeeID: "emp-2"}

	// Act
	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/payslips/slip-1", srv.token(t, strPtr("emp-1"), false), nil)

	// Assert
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPayrollHandler_GetPayslip_NotFound(t *testing.T) {
	// Setup
	srv := newTestServer(t)

	// Act
	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/payslips/missing", srv.token(t, nil, true), nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayrollHandler_DownloadPayslipPDF(t *testing.T) {
	// Setup
	srv := newTestServer(t)
	srv.payroll.payslips["slip-1"] = payroll.PayslipResponse{ID: "slip-1", EmployeeID: "emp-1", EmployeeCode: strPtr("E001"), Month: 3, Year: 2024}

	// Act
	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/payslips/slip-1/pdf", srv.token(t, strPtr("emp-1"), false), nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip-E001-2024-03.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestLeaveHandler_SubmitApplication_OverridesEmployeeID(t *testing.T) {
	// Setup
	srv := newTestServer(t)

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/leave/applications", srv.token(t, strPtr("emp-1"), false),
		leave.SubmitApplicationRequest{EmployeeID: "emp-9", LeaveType: "Annual", FromDate: "2024-03-04", ToDate: "2024-03-05"})

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, srv.leave.submitted, 1)
	assert.Equal(t, "emp-1", srv.leave.submitted[0].EmployeeID)
}

func TestLeaveHandler_Approve_InvalidTransitionConflict(t *testing.T) {
	// Setup
	srv := newTestServer(t)
	srv.leave.decideErr = leave.ErrInvalidTransition

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/leave/applications/0190a6e2-7c1b-7d3e-8f00-000000000001/approve",
		srv.token(t, nil, true), nil)

	// Assert
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLeaveHandler_Approve_RecordsActor(t *testing.T) {
	// Setup
	srv := newTestServer(t)

	// Act
	rec := srv.do(t, http.MethodPost, "/api/v1/leave/applications/0190a6e2-7c1b-7d3e-8f00-000000000001/approve",
		srv.token(t, nil, true), map[string]string{"comment": "ok"})

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data leave.LeaveApplicationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data.DecidedBy)
	assert.Equal(t, "user-1", *body.Data.DecidedBy)
}
