/*
handlers.go - HTTP handlers for the timeclock API

PURPOSE:
  Exposes the punch engine and payroll records over REST. Handles HTTP
  request/response and JSON; delegates everything else to the domain
  packages.

ENDPOINTS:
  Auth:
    POST   /api/login                     Exchange credentials for a token

  Clock (per user):
    POST   /api/users/{id}/punches        Submit a punch
    GET    /api/users/{id}/punches?date=  One day's punches
    GET    /api/users/{id}/clock          State + live accrual
    POST   /api/users/{id}/reconcile      Recompute one day's durations
    DELETE /api/users/{id}/session        Drop the server-side session

  Punch edits:
    PUT    /api/punches/{id}              Move a punch (reconciles the day)

  Employees / payroll:
    GET    /api/employees                 List
    POST   /api/employees                 Create
    GET    /api/employees/{id}            Detail
    GET    /api/employees/{id}/team       Direct reports
    GET    /api/employees/{id}/orgchart   Recursive reporting tree
    GET    /api/employees/{id}/pay        Pay summary for ?period_id=
    GET    /api/periods                   List payroll periods
    POST   /api/periods                   Create payroll period

ERROR HANDLING:
  - 400: malformed input (bad date/time/action strings)
  - 401: missing/invalid token
  - 404: unknown punch, employee or period
  - 422: punch rejected by the clock state machine (reason included)
  - 500: persistence failures
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/timeclock-engine/payroll"
	"github.com/warp/timeclock-engine/store/sqlite"
	"github.com/warp/timeclock-engine/timeclock"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Ledger     *timeclock.Ledger
	Reconciler *timeclock.Reconciler
	Sessions   *SessionRegistry
	Auth       *Auth

	// Clock source, swappable in tests.
	Now func() time.Time
}

func NewHandler(store *sqlite.Store, ledger *timeclock.Ledger, auth *Auth) *Handler {
	return &Handler{
		Store:      store,
		Ledger:     ledger,
		Reconciler: timeclock.NewReconciler(ledger),
		Sessions:   NewSessionRegistry(ledger),
		Auth:       auth,
		Now:        time.Now,
	}
}

// =============================================================================
// AUTH
// =============================================================================

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, hash, err := h.Store.EmployeeByUsername(r.Context(), req.Username)
	if err != nil || !CheckPassword(hash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := h.Auth.GenerateToken(emp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Employee: employeeDTO(emp)})
}

// =============================================================================
// CLOCK
// =============================================================================

func (h *Handler) SubmitPunch(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req SubmitPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, err := timeclock.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	now := h.Now()
	var punch timeclock.Punch
	err = h.Sessions.Do(r.Context(), userID, now, func(s *timeclock.Session) error {
		var submitErr error
		punch, submitErr = s.SubmitPunch(r.Context(), action, now)
		return submitErr
	})
	if err != nil {
		var ve *timeclock.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error:  "punch rejected",
				Reason: ve.Reason,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, punchDTO(punch))
}

func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	dateStr := r.URL.Query().Get("date")
	date := timeclock.DateOf(h.Now())
	if dateStr != "" {
		var err error
		date, err = timeclock.ParseDate(dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want MM/DD/YYYY", dateStr))
			return
		}
	}

	punches, err := h.Ledger.PunchesByUserAndDate(r.Context(), userID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]PunchDTO, 0, len(punches))
	for _, p := range punches {
		dtos = append(dtos, punchDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ClockStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	now := h.Now()
	var status ClockStatusDTO
	err := h.Sessions.Do(r.Context(), userID, now, func(s *timeclock.Session) error {
		s.Tick(now)
		accrual := s.CurrentAccrualMinutes(now)
		status = ClockStatusDTO{
			State:             string(s.CurrentState()),
			AccrualMinutes:    accrual,
			TodayTotalMinutes: s.TodayTotalWorkMinutes(),
			TodayDisplay:      "Today: " + timeclock.FormatMinutes(accrual),
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) ReconcileDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := timeclock.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want MM/DD/YYYY", req.Date))
		return
	}

	updated, err := h.Reconciler.ReconcileDay(r.Context(), userID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Session totals may now be stale; drop so the next touch reseeds.
	h.Sessions.Drop(userID)

	writeJSON(w, http.StatusOK, ReconcileResponse{Updated: updated})
}

func (h *Handler) EditPunch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid punch id")
		return
	}

	var req EditPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := timeclock.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want MM/DD/YYYY", req.Date))
		return
	}
	if _, err := timeclock.ParseTimeOfDay(req.Time); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid time %q, want hh:mm AM/PM", req.Time))
		return
	}

	punch, err := h.Ledger.Punch(r.Context(), timeclock.PunchID(id))
	if err != nil {
		if errors.Is(err, timeclock.ErrPunchNotFound) {
			writeError(w, http.StatusNotFound, "punch not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The edit blocks until the whole affected day (both days, when the
	// punch moves across dates) is reconciled and persisted.
	if err := h.Reconciler.EditPunch(r.Context(), timeclock.PunchID(id), date, req.Time); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Sessions.Drop(punch.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	h.Sessions.Drop(userID)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Store.Employees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]EmployeeDTO, 0, len(emps))
	for _, emp := range emps {
		dtos = append(dtos, employeeDTO(emp))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comp, err := compensationFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	emp := payroll.Employee{
		Name:         req.Name,
		Role:         payroll.Role(req.Role),
		Compensation: comp,
		Username:     req.Username,
	}
	if req.ManagerID != nil {
		mid := payroll.EmployeeID(*req.ManagerID)
		emp.ManagerID = &mid
	}

	var hash string
	if req.Password != "" {
		hash, err = HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
	}

	id, err := h.Store.SaveEmployee(r.Context(), emp, hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	emp.ID = id

	writeJSON(w, http.StatusCreated, employeeDTO(emp))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, employeeDTO(emp))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeParam(w, r)
	if !ok {
		return
	}

	team, err := payroll.Team(r.Context(), h.Store, emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]EmployeeDTO, 0, len(team))
	for _, member := range team {
		dtos = append(dtos, employeeDTO(member))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetOrgChart(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeParam(w, r)
	if !ok {
		return
	}

	chart, err := payroll.OrgChart(r.Context(), h.Store, emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, OrgChartDTO{Root: int64(emp.ID), Chart: chart})
}

func (h *Handler) GetPaySummary(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeParam(w, r)
	if !ok {
		return
	}

	periodID, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "period_id is required")
		return
	}

	period, err := h.Store.PayrollPeriod(r.Context(), periodID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payroll period not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary, err := payroll.SummarizePeriod(r.Context(), h.Ledger, emp, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PaySummaryDTO{
		Employee:      employeeDTO(summary.Employee),
		Period:        periodDTO(summary.Period),
		WorkedMinutes: summary.WorkedMinutes,
		WorkedDisplay: timeclock.FormatMinutes(summary.WorkedMinutes),
		GrossPay:      summary.GrossPay.StringFixed(2),
	})
}

// =============================================================================
// PAYROLL PERIODS
// =============================================================================

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.PayrollPeriods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]PayrollPeriodDTO, 0, len(periods))
	for _, p := range periods {
		dtos = append(dtos, periodDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := timeclock.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid start date %q", req.Start))
		return
	}
	end, err := timeclock.ParseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid end date %q", req.End))
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "period end before start")
		return
	}

	period := payroll.PayrollPeriod{CompanyID: req.CompanyID, Start: start, End: end}
	id, err := h.Store.SavePayrollPeriod(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	period.ID = id

	writeJSON(w, http.StatusCreated, periodDTO(period))
}

// =============================================================================
// HELPERS
// =============================================================================

func userIDParam(w http.ResponseWriter, r *http.Request) (timeclock.UserID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return timeclock.UserID(id), true
}

func (h *Handler) employeeParam(w http.ResponseWriter, r *http.Request) (payroll.Employee, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid employee id")
		return payroll.Employee{}, false
	}

	emp, err := h.Store.Employee(r.Context(), payroll.EmployeeID(id))
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return payroll.Employee{}, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return payroll.Employee{}, false
	}
	return emp, true
}

func compensationFromRequest(req CreateEmployeeRequest) (payroll.Compensation, error) {
	switch payroll.CompensationKind(req.CompKind) {
	case payroll.CompHourly:
		rate, err := decimal.NewFromString(req.HourlyRate)
		if err != nil {
			return payroll.Compensation{}, fmt.Errorf("invalid hourly rate %q", req.HourlyRate)
		}
		return payroll.Hourly(rate), nil
	case payroll.CompSalaried:
		salary, err := decimal.NewFromString(req.MonthlySalary)
		if err != nil {
			return payroll.Compensation{}, fmt.Errorf("invalid monthly salary %q", req.MonthlySalary)
		}
		return payroll.Salaried(salary), nil
	default:
		return payroll.Compensation{}, fmt.Errorf("unknown compensation kind %q", req.CompKind)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
