/*
Package payroll holds the identity and compensation records the punch
ledger's user ids reference: employees, compensation, payroll periods,
and companies.

Compensation is a tagged union rather than a type hierarchy: a Kind
discriminant selects between hourly and salaried fields. Cost and pay
math uses decimal.Decimal throughout - money never touches a float.
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/timeclock-engine/timeclock"
)

// =============================================================================
// IDENTIFIERS AND ROLES
// =============================================================================

type EmployeeID int64

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// =============================================================================
// COMPENSATION - Tagged union over hourly and salaried variants
// =============================================================================

type CompensationKind string

const (
	CompHourly   CompensationKind = "hourly"
	CompSalaried CompensationKind = "salaried"
)

// Compensation is either an hourly rate or a monthly salary, selected
// by Kind. Only the field matching Kind is meaningful.
type Compensation struct {
	Kind          CompensationKind
	HourlyRate    decimal.Decimal
	MonthlySalary decimal.Decimal
}

func Hourly(rate decimal.Decimal) Compensation {
	return Compensation{Kind: CompHourly, HourlyRate: rate}
}

func Salaried(monthly decimal.Decimal) Compensation {
	return Compensation{Kind: CompSalaried, MonthlySalary: monthly}
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is a plain identity/compensation record. UserID links the
// employee to their punch ledger partitions.
type Employee struct {
	ID           EmployeeID
	Name         string
	Role         Role
	ManagerID    *EmployeeID // nil for the org root
	Compensation Compensation
	Username     string
}

// UserID returns the punch-ledger user id for this employee.
func (e Employee) UserID() timeclock.UserID {
	return timeclock.UserID(e.ID)
}

// =============================================================================
// PAYROLL PERIOD / COMPANY
// =============================================================================

// PayrollPeriod is a pay-calculation window over calendar dates,
// inclusive on both ends.
type PayrollPeriod struct {
	ID        int64
	CompanyID int64
	Start     timeclock.Date
	End       timeclock.Date
	Closed    bool
}

// Contains reports whether d falls inside the period.
func (p PayrollPeriod) Contains(d timeclock.Date) bool {
	return !d.Before(p.Start) && !p.End.Before(d)
}

// Days returns every date in the period, in order.
func (p PayrollPeriod) Days() []timeclock.Date {
	var days []timeclock.Date
	for d := p.Start; !p.End.Before(d); d = nextDay(d) {
		days = append(days, d)
	}
	return days
}

type Company struct {
	ID   int64
	Name string
}

func nextDay(d timeclock.Date) timeclock.Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return timeclock.DateOf(t)
}
