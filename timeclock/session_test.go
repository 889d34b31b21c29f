package timeclock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warp/timeclock-engine/timeclock"
	"github.com/warp/timeclock-engine/timeclock/store"
)

// at returns a wall-clock instant on the test day.
func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 16, hour, minute, 0, 0, time.UTC)
}

func mustPunch(t *testing.T, s *timeclock.Session, action timeclock.Action, now time.Time) timeclock.Punch {
	t.Helper()
	p, err := s.SubmitPunch(context.Background(), action, now)
	if err != nil {
		t.Fatalf("SubmitPunch(%s at %s): %v", action, now.Format("03:04 PM"), err)
	}
	return p
}

func TestSession_FullDayAccrual(t *testing.T) {
	// GIVEN a fresh session on an empty ledger
	ledger := newTestLedger(t)
	s, err := timeclock.NewSession(context.Background(), ledger, testUser, at(8, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.CurrentState() != timeclock.StateOffClock {
		t.Fatalf("initial state = %s, want off_clock", s.CurrentState())
	}

	// WHEN a standard day is punched through
	mustPunch(t, s, timeclock.ActionClockIn, at(9, 0))
	mustPunch(t, s, timeclock.ActionMealBreakStart, at(12, 0))
	end := mustPunch(t, s, timeclock.ActionMealBreakEnd, at(12, 30))
	out := mustPunch(t, s, timeclock.ActionClockOut, at(17, 0))

	// THEN closers carry gross pair durations
	if end.Duration != "0h 30m" {
		t.Errorf("meal break end duration = %q, want %q", end.Duration, "0h 30m")
	}
	if out.Duration != "8h 0m" {
		t.Errorf("clock out duration = %q, want %q", out.Duration, "8h 0m")
	}

	// AND the accrued total excludes the break
	if got := s.CurrentAccrualMinutes(at(18, 0)); got != 450 {
		t.Errorf("accrual after clock out = %d, want 450", got)
	}
	if s.CurrentState() != timeclock.StateOffClock {
		t.Errorf("state after clock out = %s, want off_clock", s.CurrentState())
	}
}

func TestSession_LiveAccrualWhileClockedIn(t *testing.T) {
	ledger := newTestLedger(t)
	s, err := timeclock.NewSession(context.Background(), ledger, testUser, at(9, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	mustPunch(t, s, timeclock.ActionClockIn, at(9, 0))

	// The open interval accrues live and never decreases.
	prev := -1
	for _, minute := range []int{0, 1, 15, 60, 240} {
		got := s.CurrentAccrualMinutes(at(9, 0).Add(time.Duration(minute) * time.Minute))
		if got != minute {
			t.Errorf("accrual after %dm = %d, want %d", minute, got, minute)
		}
		if got < prev {
			t.Errorf("accrual decreased: %d -> %d", prev, got)
		}
		prev = got
	}

	// On break the open interval does not count; only closed intervals do.
	mustPunch(t, s, timeclock.ActionMealBreakStart, at(13, 0))
	if got := s.CurrentAccrualMinutes(at(13, 45)); got != 0 {
		t.Errorf("accrual while on break = %d, want 0 (no closed intervals)", got)
	}

	// After the break ends, the break minutes stay excluded.
	mustPunch(t, s, timeclock.ActionMealBreakEnd, at(13, 30))
	if got := s.CurrentAccrualMinutes(at(14, 0)); got != 270 {
		t.Errorf("accrual after break = %d, want 270", got)
	}
}

func TestSession_RejectedPunchLeavesStateUntouched(t *testing.T) {
	ledger := newTestLedger(t)
	s, err := timeclock.NewSession(context.Background(), ledger, testUser, at(9, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	// WHEN clocking out before clocking in
	_, err = s.SubmitPunch(context.Background(), timeclock.ActionClockOut, at(9, 0))

	// THEN the rejection surfaces and nothing was persisted
	if !errors.Is(err, timeclock.ErrNotClockedIn) {
		t.Fatalf("err = %v, want ErrNotClockedIn", err)
	}
	if s.CurrentState() != timeclock.StateOffClock {
		t.Errorf("state = %s, want off_clock", s.CurrentState())
	}
	punches, err := ledger.PunchesByUserAndDate(context.Background(), testUser, testDay)
	if err != nil {
		t.Fatalf("load partition: %v", err)
	}
	if len(punches) != 0 {
		t.Errorf("ledger has %d punches after rejected punch, want 0", len(punches))
	}
}

func TestSession_FailedWriteLeavesStateUntouched(t *testing.T) {
	// GIVEN a session whose ledger write queue has shut down
	ledger := timeclock.NewLedger(store.NewMemory())
	session, err := timeclock.NewSession(context.Background(), ledger, testUser, at(9, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	ledger.Close()

	// WHEN the persist fails
	_, err = session.SubmitPunch(context.Background(), timeclock.ActionClockIn, at(9, 0))

	// THEN the error surfaces and the session did not move to clocked_in
	if !errors.Is(err, timeclock.ErrLedgerClosed) {
		t.Fatalf("err = %v, want ErrLedgerClosed", err)
	}
	if session.CurrentState() != timeclock.StateOffClock {
		t.Errorf("state = %s, want off_clock", session.CurrentState())
	}
}

func TestSession_DayRolloverResetsTotal(t *testing.T) {
	// GIVEN a session with a closed 4h interval
	ledger := newTestLedger(t)
	s, err := timeclock.NewSession(context.Background(), ledger, testUser, at(8, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	mustPunch(t, s, timeclock.ActionClockIn, at(8, 0))
	mustPunch(t, s, timeclock.ActionClockOut, at(12, 0))
	if got := s.CurrentAccrualMinutes(at(13, 0)); got != 240 {
		t.Fatalf("accrual = %d, want 240", got)
	}

	// WHEN the clock ticks past midnight
	nextDay := time.Date(2026, 3, 17, 0, 5, 0, 0, time.UTC)
	s.Tick(nextDay)

	// THEN the daily total starts over
	if got := s.CurrentAccrualMinutes(nextDay); got != 0 {
		t.Errorf("accrual after rollover = %d, want 0", got)
	}
}

func TestNewSession_SeedsClosedTotalFromLedger(t *testing.T) {
	// GIVEN a ledger holding a finished day with a meal break
	ledger := newTestLedger(t)
	appendPunch(t, ledger, timeclock.ActionClockIn, "09:00 AM", timeclock.NoDuration)
	appendPunch(t, ledger, timeclock.ActionMealBreakStart, "12:00 PM", timeclock.NoDuration)
	appendPunch(t, ledger, timeclock.ActionMealBreakEnd, "12:30 PM", "0h 30m")
	appendPunch(t, ledger, timeclock.ActionClockOut, "05:00 PM", "8h 0m")

	// WHEN a session is created later the same day
	s, err := timeclock.NewSession(context.Background(), ledger, testUser, at(18, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	// THEN the closed total is net of the break and the state is off clock
	if s.CurrentState() != timeclock.StateOffClock {
		t.Errorf("state = %s, want off_clock", s.CurrentState())
	}
	if got := s.CurrentAccrualMinutes(at(18, 0)); got != 450 {
		t.Errorf("seeded accrual = %d, want 450", got)
	}
}

func TestNewSession_RestoresMidShiftState(t *testing.T) {
	// GIVEN a ledger with a closed morning shift and an open afternoon one
	ledger := newTestLedger(t)
	appendPunch(t, ledger, timeclock.ActionClockIn, "08:00 AM", timeclock.NoDuration)
	appendPunch(t, ledger, timeclock.ActionClockOut, "12:00 PM", "4h 0m")
	appendPunch(t, ledger, timeclock.ActionClockIn, "01:00 PM", timeclock.NoDuration)

	// WHEN a session is created mid-shift (a process restart)
	s, err := timeclock.NewSession(context.Background(), ledger, testUser, at(15, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	// THEN the open interval is live again on top of the closed total
	if s.CurrentState() != timeclock.StateClockedIn {
		t.Errorf("state = %s, want clocked_in", s.CurrentState())
	}
	if got := s.CurrentAccrualMinutes(at(15, 0)); got != 360 {
		t.Errorf("accrual = %d, want 360 (240 closed + 120 live)", got)
	}
}

func TestNewSession_SkipsOutOfSequencePunches(t *testing.T) {
	// GIVEN historical data with a stray closer before any opener
	ledger := newTestLedger(t)
	appendPunch(t, ledger, timeclock.ActionClockOut, "07:00 AM", "3h 0m")
	appendPunch(t, ledger, timeclock.ActionClockIn, "09:00 AM", timeclock.NoDuration)
	appendPunch(t, ledger, timeclock.ActionClockOut, "11:00 AM", "2h 0m")

	// WHEN the session seeds
	s, err := timeclock.NewSession(context.Background(), ledger, testUser, at(12, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	// THEN only the valid pair counts
	if got := s.CurrentAccrualMinutes(at(12, 0)); got != 120 {
		t.Errorf("accrual = %d, want 120", got)
	}
}
