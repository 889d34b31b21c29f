package timeclock_test

import (
	"context"
	"testing"

	"github.com/warp/timeclock-engine/timeclock"
	"github.com/warp/timeclock-engine/timeclock/store"
)

const testUser = timeclock.UserID(1)

var testDay = timeclock.NewDate(2026, 3, 16)

// newTestLedger returns a ledger over a fresh in-memory store, closed
// when the test finishes.
func newTestLedger(t *testing.T) *timeclock.Ledger {
	t.Helper()
	ledger := timeclock.NewLedger(store.NewMemory())
	t.Cleanup(ledger.Close)
	return ledger
}

func appendPunch(t *testing.T, ledger *timeclock.Ledger, action timeclock.Action, clock, duration string) timeclock.PunchID {
	t.Helper()
	id, err := ledger.Append(context.Background(), timeclock.Punch{
		UserID:   testUser,
		Date:     testDay,
		Action:   action,
		Time:     clock,
		Duration: duration,
	})
	if err != nil {
		t.Fatalf("append %s %s: %v", action, clock, err)
	}
	return id
}

func dayPunches(t *testing.T, ledger *timeclock.Ledger, date timeclock.Date) map[timeclock.PunchID]timeclock.Punch {
	t.Helper()
	punches, err := ledger.PunchesByUserAndDate(context.Background(), testUser, date)
	if err != nil {
		t.Fatalf("load partition: %v", err)
	}
	byID := make(map[timeclock.PunchID]timeclock.Punch, len(punches))
	for _, p := range punches {
		byID[p.ID] = p
	}
	return byID
}

func TestReconcileDay_PairsClosersWithOpeners(t *testing.T) {
	// GIVEN a full day written with sentinel durations
	ledger := newTestLedger(t)
	appendPunch(t, ledger, timeclock.ActionClockIn, "09:00 AM", timeclock.NoDuration)
	mealEnd := appendPunch(t, ledger, timeclock.ActionMealBreakEnd, "12:30 PM", timeclock.NoDuration)
	appendPunch(t, ledger, timeclock.ActionMealBreakStart, "12:00 PM", timeclock.NoDuration)
	clockOut := appendPunch(t, ledger, timeclock.ActionClockOut, "05:00 PM", timeclock.NoDuration)

	// WHEN the day is reconciled
	updated, err := timeclock.NewReconciler(ledger).ReconcileDay(context.Background(), testUser, testDay)
	if err != nil {
		t.Fatalf("ReconcileDay: %v", err)
	}

	// THEN both closers got durations, despite insertion order
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}
	byID := dayPunches(t, ledger, testDay)
	if got := byID[mealEnd].Duration; got != "0h 30m" {
		t.Errorf("meal break end duration = %q, want %q", got, "0h 30m")
	}
	// The clock out duration is the gross interval; the half-hour break
	// is not subtracted here.
	if got := byID[clockOut].Duration; got != "8h 0m" {
		t.Errorf("clock out duration = %q, want %q", got, "8h 0m")
	}
}

func TestReconcileDay_Idempotent(t *testing.T) {
	// GIVEN an already reconciled day
	ledger := newTestLedger(t)
	appendPunch(t, ledger, timeclock.ActionClockIn, "08:00 AM", timeclock.NoDuration)
	appendPunch(t, ledger, timeclock.ActionClockOut, "04:15 PM", timeclock.NoDuration)

	rec := timeclock.NewReconciler(ledger)
	if _, err := rec.ReconcileDay(context.Background(), testUser, testDay); err != nil {
		t.Fatalf("first ReconcileDay: %v", err)
	}

	// WHEN it is reconciled again without any edit in between
	updated, err := rec.ReconcileDay(context.Background(), testUser, testDay)
	if err != nil {
		t.Fatalf("second ReconcileDay: %v", err)
	}

	// THEN the second run performs zero writes
	if updated != 0 {
		t.Errorf("second run updated = %d, want 0", updated)
	}
}

func TestReconcileDay_UnmatchedCloserGetsSentinel(t *testing.T) {
	// GIVEN a closer with a stale duration and no opener before it
	ledger := newTestLedger(t)
	orphan := appendPunch(t, ledger, timeclock.ActionClockOut, "09:00 AM", "4h 0m")
	appendPunch(t, ledger, timeclock.ActionClockIn, "10:00 AM", timeclock.NoDuration)

	// WHEN the day is reconciled
	if _, err := timeclock.NewReconciler(ledger).ReconcileDay(context.Background(), testUser, testDay); err != nil {
		t.Fatalf("ReconcileDay: %v", err)
	}

	// THEN the orphaned closer is reset to the sentinel, not left stale
	byID := dayPunches(t, ledger, testDay)
	if got := byID[orphan].Duration; got != timeclock.NoDuration {
		t.Errorf("orphan duration = %q, want %q", got, timeclock.NoDuration)
	}
}

func TestReconcileDay_OpenerWithStaleDurationReset(t *testing.T) {
	ledger := newTestLedger(t)
	opener := appendPunch(t, ledger, timeclock.ActionClockIn, "09:00 AM", "2h 0m")

	if _, err := timeclock.NewReconciler(ledger).ReconcileDay(context.Background(), testUser, testDay); err != nil {
		t.Fatalf("ReconcileDay: %v", err)
	}

	byID := dayPunches(t, ledger, testDay)
	if got := byID[opener].Duration; got != timeclock.NoDuration {
		t.Errorf("opener duration = %q, want %q", got, timeclock.NoDuration)
	}
}

func TestReconcileDay_SkipsUnparseableTimes(t *testing.T) {
	// GIVEN a corrupt time string in the middle of a valid pair
	ledger := newTestLedger(t)
	appendPunch(t, ledger, timeclock.ActionClockIn, "09:00 AM", timeclock.NoDuration)
	appendPunch(t, ledger, timeclock.ActionClockOut, "25:99", timeclock.NoDuration)
	clockOut := appendPunch(t, ledger, timeclock.ActionClockOut, "05:00 PM", timeclock.NoDuration)

	// WHEN the day is reconciled
	_, err := timeclock.NewReconciler(ledger).ReconcileDay(context.Background(), testUser, testDay)

	// THEN the bad row is ignored and the rest of the day still pairs
	if err != nil {
		t.Fatalf("ReconcileDay: %v", err)
	}
	byID := dayPunches(t, ledger, testDay)
	if got := byID[clockOut].Duration; got != "8h 0m" {
		t.Errorf("clock out duration = %q, want %q", got, "8h 0m")
	}
}

func TestEditPunch_RepairsBothPartitions(t *testing.T) {
	// GIVEN a reconciled pair on one day
	ledger := newTestLedger(t)
	appendPunch(t, ledger, timeclock.ActionClockIn, "09:00 AM", timeclock.NoDuration)
	clockOut := appendPunch(t, ledger, timeclock.ActionClockOut, "05:00 PM", timeclock.NoDuration)

	rec := timeclock.NewReconciler(ledger)
	if _, err := rec.ReconcileDay(context.Background(), testUser, testDay); err != nil {
		t.Fatalf("ReconcileDay: %v", err)
	}

	// WHEN the closer is moved to the next day
	nextDay := timeclock.NewDate(2026, 3, 17)
	if err := rec.EditPunch(context.Background(), clockOut, nextDay, "05:00 PM"); err != nil {
		t.Fatalf("EditPunch: %v", err)
	}

	// THEN the moved closer has no opener on its new day and carries the
	// sentinel instead of its old duration
	moved := dayPunches(t, ledger, nextDay)
	if got := moved[clockOut].Duration; got != timeclock.NoDuration {
		t.Errorf("moved closer duration = %q, want %q", got, timeclock.NoDuration)
	}
	if remaining := dayPunches(t, ledger, testDay); len(remaining) != 1 {
		t.Errorf("old partition has %d punches, want 1", len(remaining))
	}
}

func TestEditPunch_TimeShiftRederivesDuration(t *testing.T) {
	// GIVEN a reconciled 8h pair
	ledger := newTestLedger(t)
	appendPunch(t, ledger, timeclock.ActionClockIn, "09:00 AM", timeclock.NoDuration)
	clockOut := appendPunch(t, ledger, timeclock.ActionClockOut, "05:00 PM", timeclock.NoDuration)

	rec := timeclock.NewReconciler(ledger)
	if _, err := rec.ReconcileDay(context.Background(), testUser, testDay); err != nil {
		t.Fatalf("ReconcileDay: %v", err)
	}

	// WHEN the clock out moves to 6:30 PM
	if err := rec.EditPunch(context.Background(), clockOut, testDay, "06:30 PM"); err != nil {
		t.Fatalf("EditPunch: %v", err)
	}

	// THEN its duration reflects the new interval
	byID := dayPunches(t, ledger, testDay)
	if got := byID[clockOut].Duration; got != "9h 30m" {
		t.Errorf("duration after edit = %q, want %q", got, "9h 30m")
	}
}

func TestEditPunch_UnknownID(t *testing.T) {
	ledger := newTestLedger(t)
	err := timeclock.NewReconciler(ledger).EditPunch(context.Background(), 42, testDay, "09:00 AM")
	if err != timeclock.ErrPunchNotFound {
		t.Errorf("err = %v, want ErrPunchNotFound", err)
	}
}
