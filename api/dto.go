/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the external contract. Dates and times cross this boundary in
  their wire forms (MM/DD/YYYY, hh:mm AM/PM); durations as
  "<H>h <M>m" or "-".
*/
package api

import (
	"github.com/warp/timeclock-engine/payroll"
	"github.com/warp/timeclock-engine/timeclock"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string      `json:"token"`
	Employee EmployeeDTO `json:"employee"`
}

// =============================================================================
// PUNCHES / CLOCK
// =============================================================================

type SubmitPunchRequest struct {
	Action string `json:"action"`
}

type PunchDTO struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Date     string `json:"date"`
	Action   string `json:"action"`
	Time     string `json:"time"`
	Duration string `json:"duration"`
}

func punchDTO(p timeclock.Punch) PunchDTO {
	return PunchDTO{
		ID:       int64(p.ID),
		UserID:   int64(p.UserID),
		Date:     p.Date.String(),
		Action:   string(p.Action),
		Time:     p.Time,
		Duration: p.Duration,
	}
}

type ClockStatusDTO struct {
	State             string `json:"state"`
	AccrualMinutes    int    `json:"accrual_minutes"`
	TodayTotalMinutes int    `json:"today_total_minutes"`
	TodayDisplay      string `json:"today_display"`
}

type EditPunchRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type ReconcileRequest struct {
	Date string `json:"date"`
}

type ReconcileResponse struct {
	Updated int `json:"updated"`
}

// =============================================================================
// EMPLOYEES / PAYROLL
// =============================================================================

type EmployeeDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	ManagerID     *int64 `json:"manager_id,omitempty"`
	CompKind      string `json:"comp_kind"`
	HourlyRate    string `json:"hourly_rate,omitempty"`
	MonthlySalary string `json:"monthly_salary,omitempty"`
	MonthlyCost   string `json:"monthly_cost"`
	Username      string `json:"username,omitempty"`
}

func employeeDTO(emp payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:          int64(emp.ID),
		Name:        emp.Name,
		Role:        string(emp.Role),
		CompKind:    string(emp.Compensation.Kind),
		MonthlyCost: emp.Compensation.MonthlyCost().StringFixed(2),
		Username:    emp.Username,
	}
	switch emp.Compensation.Kind {
	case payroll.CompHourly:
		dto.HourlyRate = emp.Compensation.HourlyRate.String()
	case payroll.CompSalaried:
		dto.MonthlySalary = emp.Compensation.MonthlySalary.String()
	}
	if emp.ManagerID != nil {
		id := int64(*emp.ManagerID)
		dto.ManagerID = &id
	}
	return dto
}

type CreateEmployeeRequest struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	ManagerID     *int64 `json:"manager_id,omitempty"`
	CompKind      string `json:"comp_kind"`
	HourlyRate    string `json:"hourly_rate,omitempty"`
	MonthlySalary string `json:"monthly_salary,omitempty"`
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
}

type OrgChartDTO struct {
	Root  int64  `json:"root"`
	Chart string `json:"chart"`
}

type PayrollPeriodDTO struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id,omitempty"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Closed    bool   `json:"closed"`
}

func periodDTO(p payroll.PayrollPeriod) PayrollPeriodDTO {
	return PayrollPeriodDTO{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Start:     p.Start.String(),
		End:       p.End.String(),
		Closed:    p.Closed,
	}
}

type CreatePeriodRequest struct {
	CompanyID int64  `json:"company_id,omitempty"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type PaySummaryDTO struct {
	Employee      EmployeeDTO      `json:"employee"`
	Period        PayrollPeriodDTO `json:"period"`
	WorkedMinutes int              `json:"worked_minutes"`
	WorkedDisplay string           `json:"worked_display"`
	GrossPay      string           `json:"gross_pay"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
