package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/timeclock-engine/timeclock"
)

// Assumed full-time month for hourly cost estimates: 40 hours/week
// over 4 weeks.
var fullTimeMonthlyHours = decimal.NewFromInt(160)

var sixty = decimal.NewFromInt(60)

// MonthlyCost estimates what the employee costs per month: the salary
// for salaried staff, rate x 160 hours for hourly staff.
func (c Compensation) MonthlyCost() decimal.Decimal {
	switch c.Kind {
	case CompHourly:
		return c.HourlyRate.Mul(fullTimeMonthlyHours)
	case CompSalaried:
		return c.MonthlySalary
	default:
		return decimal.Zero
	}
}

// PayForMinutes computes gross pay for a span of worked minutes.
// Hourly staff earn rate x minutes/60; salaried staff earn the monthly
// salary regardless of minutes worked.
func (c Compensation) PayForMinutes(minutes int) decimal.Decimal {
	switch c.Kind {
	case CompHourly:
		return c.HourlyRate.Mul(decimal.NewFromInt(int64(minutes))).Div(sixty)
	case CompSalaried:
		return c.MonthlySalary
	default:
		return decimal.Zero
	}
}

// =============================================================================
// PERIOD PAY - Worked minutes and gross pay over a payroll period
// =============================================================================

// PeriodSummary is the pay calculation for one employee over one
// payroll period.
type PeriodSummary struct {
	Employee      Employee
	Period        PayrollPeriod
	WorkedMinutes int
	GrossPay      decimal.Decimal
}

// SummarizePeriod walks every day of the period, summing net worked
// minutes from the ledger (Clock Out durations minus Meal Break End
// durations per day, clamped at zero), then prices them.
func SummarizePeriod(ctx context.Context, ledger *timeclock.Ledger, emp Employee, period PayrollPeriod) (PeriodSummary, error) {
	total := 0
	for _, day := range period.Days() {
		minutes, err := WorkedMinutesOn(ctx, ledger, emp.UserID(), day)
		if err != nil {
			return PeriodSummary{}, fmt.Errorf("worked minutes for %s on %s: %w", emp.Name, day, err)
		}
		total += minutes
	}

	return PeriodSummary{
		Employee:      emp,
		Period:        period,
		WorkedMinutes: total,
		GrossPay:      emp.Compensation.PayForMinutes(total),
	}, nil
}

// WorkedMinutesOn sums one day's net worked minutes from closed ledger
// intervals: gross Clock Out durations minus Meal Break End durations,
// clamped at zero.
func WorkedMinutesOn(ctx context.Context, ledger *timeclock.Ledger, userID timeclock.UserID, day timeclock.Date) (int, error) {
	punches, err := ledger.PunchesByUserAndDate(ctx, userID, day)
	if err != nil {
		return 0, err
	}

	minutes := 0
	for _, p := range punches {
		switch p.Action {
		case timeclock.ActionClockOut:
			minutes += timeclock.ParseMinutes(p.Duration)
		case timeclock.ActionMealBreakEnd:
			minutes -= timeclock.ParseMinutes(p.Duration)
		}
	}
	if minutes < 0 {
		minutes = 0
	}
	return minutes, nil
}
