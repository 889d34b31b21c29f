package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timeclock-engine/payroll"
	"github.com/warp/timeclock-engine/store/sqlite"
	"github.com/warp/timeclock-engine/timeclock"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPunchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := timeclock.NewDate(2026, time.March, 16)

	// GIVEN two punches in one partition and one in another
	id1, err := store.Append(ctx, timeclock.Punch{
		UserID: 1, Date: day, Action: timeclock.ActionClockIn, Time: "09:00 AM", Duration: timeclock.NoDuration,
	})
	require.NoError(t, err)
	id2, err := store.Append(ctx, timeclock.Punch{
		UserID: 1, Date: day, Action: timeclock.ActionClockOut, Time: "05:00 PM", Duration: "8h 0m",
	})
	require.NoError(t, err)
	_, err = store.Append(ctx, timeclock.Punch{
		UserID: 2, Date: day, Action: timeclock.ActionClockIn, Time: "10:00 AM", Duration: timeclock.NoDuration,
	})
	require.NoError(t, err)

	// WHEN the first partition is loaded
	punches, err := store.PunchesByUserAndDate(ctx, 1, day)
	require.NoError(t, err)

	// THEN only that partition comes back, in insertion order
	require.Len(t, punches, 2)
	assert.Equal(t, id1, punches[0].ID)
	assert.Equal(t, id2, punches[1].ID)
	assert.Equal(t, timeclock.ActionClockIn, punches[0].Action)
	assert.Equal(t, "09:00 AM", punches[0].Time)
	assert.Equal(t, day, punches[0].Date)
	assert.Equal(t, "8h 0m", punches[1].Duration)
}

func TestUpdateDuration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := timeclock.NewDate(2026, time.March, 16)

	id, err := store.Append(ctx, timeclock.Punch{
		UserID: 1, Date: day, Action: timeclock.ActionClockOut, Time: "05:00 PM", Duration: timeclock.NoDuration,
	})
	require.NoError(t, err)

	require.NoError(t, store.UpdateDuration(ctx, id, "8h 0m"))

	p, err := store.Punch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "8h 0m", p.Duration)

	// Missing ids surface as ErrPunchNotFound.
	err = store.UpdateDuration(ctx, 9999, "1h 0m")
	assert.ErrorIs(t, err, timeclock.ErrPunchNotFound)
}

func TestUpdatePunch_MovesPartition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := timeclock.NewDate(2026, time.March, 16)
	nextDay := timeclock.NewDate(2026, time.March, 17)

	id, err := store.Append(ctx, timeclock.Punch{
		UserID: 1, Date: day, Action: timeclock.ActionClockOut, Time: "05:00 PM", Duration: "8h 0m",
	})
	require.NoError(t, err)

	p, err := store.Punch(ctx, id)
	require.NoError(t, err)
	p.Date = nextDay
	p.Time = "06:00 PM"
	require.NoError(t, store.UpdatePunch(ctx, p))

	old, err := store.PunchesByUserAndDate(ctx, 1, day)
	require.NoError(t, err)
	assert.Empty(t, old)

	moved, err := store.PunchesByUserAndDate(ctx, 1, nextDay)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "06:00 PM", moved[0].Time)

	_, err = store.Punch(ctx, 9999)
	assert.ErrorIs(t, err, timeclock.ErrPunchNotFound)
}

func TestEmployeeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN a manager and a report with different compensation kinds
	managerID, err := store.SaveEmployee(ctx, payroll.Employee{
		Name:         "Dana Ops",
		Role:         payroll.RoleManager,
		Compensation: payroll.Salaried(decimal.NewFromInt(6500)),
		Username:     "dana",
	}, "hash-dana")
	require.NoError(t, err)

	reportID, err := store.SaveEmployee(ctx, payroll.Employee{
		Name:         "Lee Field",
		Role:         payroll.RoleEmployee,
		ManagerID:    &managerID,
		Compensation: payroll.Hourly(decimal.NewFromFloat(25.50)),
	}, "")
	require.NoError(t, err)

	// THEN each record reads back with its compensation intact
	manager, err := store.Employee(ctx, managerID)
	require.NoError(t, err)
	assert.Equal(t, "Dana Ops", manager.Name)
	assert.Equal(t, payroll.CompSalaried, manager.Compensation.Kind)
	assert.True(t, manager.Compensation.MonthlySalary.Equal(decimal.NewFromInt(6500)))
	assert.Nil(t, manager.ManagerID)

	report, err := store.Employee(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, payroll.CompHourly, report.Compensation.Kind)
	assert.True(t, report.Compensation.HourlyRate.Equal(decimal.NewFromFloat(25.50)))
	require.NotNil(t, report.ManagerID)
	assert.Equal(t, managerID, *report.ManagerID)

	// AND the reporting index finds the report
	reports, err := store.ReportingTo(ctx, managerID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, reportID, reports[0].ID)

	all, err := store.Employees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = store.Employee(ctx, 9999)
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestEmployeeByUsername(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveEmployee(ctx, payroll.Employee{
		Name:         "Dana Ops",
		Role:         payroll.RoleAdmin,
		Compensation: payroll.Salaried(decimal.NewFromInt(6500)),
		Username:     "dana",
	}, "stored-hash")
	require.NoError(t, err)

	emp, hash, err := store.EmployeeByUsername(ctx, "dana")
	require.NoError(t, err)
	assert.Equal(t, id, emp.ID)
	assert.Equal(t, "stored-hash", hash)

	_, _, err = store.EmployeeByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestSaveEmployee_UpdateKeepsPasswordHash(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveEmployee(ctx, payroll.Employee{
		Name:         "Lee Field",
		Role:         payroll.RoleEmployee,
		Compensation: payroll.Hourly(decimal.NewFromInt(20)),
		Username:     "lee",
	}, "original-hash")
	require.NoError(t, err)

	// WHEN the record is updated with a new rate
	emp, err := store.Employee(ctx, id)
	require.NoError(t, err)
	emp.Compensation = payroll.Hourly(decimal.NewFromInt(22))
	_, err = store.SaveEmployee(ctx, emp, "")
	require.NoError(t, err)

	// THEN the rate changed and the stored hash survived
	updated, hash, err := store.EmployeeByUsername(ctx, "lee")
	require.NoError(t, err)
	assert.True(t, updated.Compensation.HourlyRate.Equal(decimal.NewFromInt(22)))
	assert.Equal(t, "original-hash", hash)
}

func TestPayrollPeriodRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	companyID, err := store.SaveCompany(ctx, payroll.Company{Name: "ClockWise Inc"})
	require.NoError(t, err)

	id, err := store.SavePayrollPeriod(ctx, payroll.PayrollPeriod{
		CompanyID: companyID,
		Start:     timeclock.NewDate(2026, time.March, 1),
		End:       timeclock.NewDate(2026, time.March, 15),
	})
	require.NoError(t, err)

	period, err := store.PayrollPeriod(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, companyID, period.CompanyID)
	assert.Equal(t, timeclock.NewDate(2026, time.March, 1), period.Start)
	assert.False(t, period.Closed)

	// Closing the period persists.
	period.Closed = true
	_, err = store.SavePayrollPeriod(ctx, period)
	require.NoError(t, err)

	period, err = store.PayrollPeriod(ctx, id)
	require.NoError(t, err)
	assert.True(t, period.Closed)

	_, err = store.PayrollPeriod(ctx, 9999)
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}
