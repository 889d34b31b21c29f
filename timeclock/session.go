/*
session.go - Per-user clock session and accrual tracking

PURPOSE:
  A Session is the ephemeral, process-local clock state for one user:
  whether they are clocked in or on break, when the open interval
  started, and the running "minutes worked today" total. It is created
  at login, updated by every punch, and discarded at logout - nothing
  derived is persisted, everything is recomputed from the ledger on the
  next load.

ACCRUAL MODEL:
  todayTotalWorkMinutes holds closed intervals only. While clocked in
  and not on break, CurrentAccrualMinutes adds the live open interval
  minus accumulated break minutes, clamped at zero. The caller drives
  time via Tick(now) on its own schedule (once per second is plenty for
  display, once per minute for correctness); the session never samples
  the wall clock itself, which keeps all of this testable with injected
  timestamps.

SEEDING (recovery after restart):
  The ledger is the single source of truth. On load the session replays
  today's partition through the state machine: closed Clock Out
  durations minus the breaks taken inside each closed interval rebuild
  the closed total, and a trailing unmatched Clock In restores the
  mid-shift state (clock-in time, break minutes since).

WRITE-THEN-REFLECT:
  SubmitPunch persists the punch before mutating any session state. A
  failed write leaves the session exactly as it was.
*/
package timeclock

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"
)

// Session tracks one user's clock state and daily accrual.
// A session is not safe for concurrent use; callers that share one
// across goroutines must serialize access.
type Session struct {
	UserID UserID

	ledger *Ledger

	state         ClockState
	date          Date
	clockInTime   TimeOfDay
	mealStartTime TimeOfDay

	totalMealBreakMinutes int
	todayTotalWorkMinutes int
}

// NewSession creates a session for userID, seeding state and today's
// closed total from the ledger.
func NewSession(ctx context.Context, ledger *Ledger, userID UserID, now time.Time) (*Session, error) {
	s := &Session{
		UserID: userID,
		ledger: ledger,
		state:  StateOffClock,
		date:   DateOf(now),
	}

	punches, err := ledger.PunchesByUserAndDate(ctx, userID, s.date)
	if err != nil {
		return nil, fmt.Errorf("seed session for user %d: %w", userID, err)
	}
	s.replay(punches)

	return s, nil
}

// replay rebuilds session state from one day's punches, in time order.
// Malformed rows (bad time, punch invalid for the replayed state) are
// skipped, matching the engine-wide tolerance for historical data.
func (s *Session) replay(punches []Punch) {
	type timed struct {
		punch Punch
		tod   TimeOfDay
	}
	ordered := make([]timed, 0, len(punches))
	for _, p := range punches {
		t, err := p.TimeOfDay()
		if err != nil {
			log.Printf("session: skipping punch %d with unparseable time %q", p.ID, p.Time)
			continue
		}
		ordered = append(ordered, timed{punch: p, tod: t})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].tod.MinutesSinceMidnight() < ordered[j].tod.MinutesSinceMidnight()
	})

	for _, t := range ordered {
		next, err := Transition(s.state, t.punch.Action)
		if err != nil {
			log.Printf("session: skipping out-of-sequence punch %d (%s)", t.punch.ID, t.punch.Action)
			continue
		}

		switch t.punch.Action {
		case ActionClockIn:
			s.clockInTime = t.tod
			s.totalMealBreakMinutes = 0
		case ActionMealBreakStart:
			s.mealStartTime = t.tod
		case ActionMealBreakEnd:
			s.totalMealBreakMinutes += ParseMinutes(t.punch.Duration)
		case ActionClockOut:
			worked := ParseMinutes(t.punch.Duration) - s.totalMealBreakMinutes
			if worked < 0 {
				worked = 0
			}
			s.todayTotalWorkMinutes += worked
		}
		s.state = next
	}
}

// CurrentState returns the session's clock state.
func (s *Session) CurrentState() ClockState {
	return s.state
}

// TodayTotalWorkMinutes returns the closed-interval total only.
func (s *Session) TodayTotalWorkMinutes() int {
	return s.todayTotalWorkMinutes
}

// Tick advances the session's notion of "now". Its only job is day
// rollover: the first tick on a new calendar date resets the daily
// total. A pure recomputation from cached state - nothing blocks.
func (s *Session) Tick(now time.Time) {
	today := DateOf(now)
	if !today.Equal(s.date) {
		log.Printf("session: new day %s for user %d, resetting daily total", today, s.UserID)
		s.date = today
		s.todayTotalWorkMinutes = 0
	}
}

// CurrentAccrualMinutes returns today's worked minutes: the closed
// total plus, while clocked in and not on break, the live open interval
// net of accumulated break minutes. Never negative.
func (s *Session) CurrentAccrualMinutes(now time.Time) int {
	total := s.todayTotalWorkMinutes
	if s.state == StateClockedIn {
		open := MinutesBetween(s.clockInTime, TimeOfDayOf(now)) - s.totalMealBreakMinutes
		if open > 0 {
			total += open
		}
	}
	if total < 0 {
		total = 0
	}
	return total
}

// SubmitPunch validates the action, persists the punch, then reflects
// it in session state. Validation failures and persistence failures
// both leave the session untouched.
func (s *Session) SubmitPunch(ctx context.Context, action Action, now time.Time) (Punch, error) {
	s.Tick(now)

	next, err := Transition(s.state, action)
	if err != nil {
		return Punch{}, err
	}

	tod := TimeOfDayOf(now)
	p := Punch{
		UserID:   s.UserID,
		Date:     DateOf(now),
		Action:   action,
		Time:     tod.String(),
		Duration: NoDuration,
	}

	// Closers carry the derived gross pair duration, identical to what
	// a later reconciliation of the day would produce.
	switch action {
	case ActionClockOut:
		p.Duration = FormatMinutes(clampMinutes(MinutesBetween(s.clockInTime, tod)))
	case ActionMealBreakEnd:
		p.Duration = FormatMinutes(clampMinutes(MinutesBetween(s.mealStartTime, tod)))
	}

	id, err := s.ledger.Append(ctx, p)
	if err != nil {
		return Punch{}, fmt.Errorf("persist %s: %w", action, err)
	}
	p.ID = id

	switch action {
	case ActionClockIn:
		s.clockInTime = tod
		s.totalMealBreakMinutes = 0
	case ActionClockOut:
		worked := MinutesBetween(s.clockInTime, tod) - s.totalMealBreakMinutes
		if worked < 0 {
			worked = 0
		}
		s.todayTotalWorkMinutes += worked
		s.clockInTime = TimeOfDay{}
	case ActionMealBreakStart:
		s.mealStartTime = tod
	case ActionMealBreakEnd:
		s.totalMealBreakMinutes += clampMinutes(MinutesBetween(s.mealStartTime, tod))
		s.mealStartTime = TimeOfDay{}
	}
	s.state = next

	return p, nil
}

func clampMinutes(m int) int {
	if m < 0 {
		return 0
	}
	return m
}
