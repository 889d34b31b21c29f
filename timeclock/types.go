/*
Package timeclock provides the core punch-clock engine.

PURPOSE:
  This package contains the domain types and algorithms for employee
  time tracking: the punch ledger, the per-session clock state machine,
  the daily duration reconciliation engine, and the live worked-minutes
  accrual tracker.

KEY CONCEPTS IN THIS FILE (types.go):
  - Punch: A single timestamped clock/meal event (the ledger record)
  - Action: Which of the four punch kinds a record represents
  - ClockState: The per-user clock state gating valid punch actions
  - UserID/PunchID: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Derived durations: A punch's duration is never authored by the
     user - it is always recomputed from its paired opening event.
  2. Opaque calendar dates: Date is a value type internally; the
     MM/DD/YYYY wire format only exists at the storage/API boundary.
  3. Tolerance: Malformed historical records are skipped, never fatal.

USAGE:
  store := store.NewMemory()
  ledger := timeclock.NewLedger(store)
  defer ledger.Close()

  session, _ := timeclock.NewSession(ctx, ledger, 1, time.Now())
  punch, err := session.SubmitPunch(ctx, timeclock.ActionClockIn, time.Now())

SEE ALSO:
  - state.go: Clock state machine and transition rules
  - reconcile.go: Whole-day duration reconciliation
  - session.go: Session lifecycle and accrual tracking
  - duration.go: The "<H>h <M>m" duration codec
*/
package timeclock

// =============================================================================
// IDENTIFIERS
// =============================================================================

// UserID identifies the owner of a punch. OrphanUser marks legacy
// records not tied to any user.
type UserID int64

// OrphanUser is the user id carried by legacy ledger rows recorded
// before per-user tracking existed.
const OrphanUser UserID = -1

// PunchID is a ledger-local sequence number assigned on persistence.
type PunchID int64

// =============================================================================
// ACTION - The four punch kinds
// =============================================================================

// Action names match the strings persisted by the ledger stores, so
// historical rows round-trip unchanged.
type Action string

const (
	ActionClockIn        Action = "Clock In"
	ActionClockOut       Action = "Clock Out"
	ActionMealBreakStart Action = "Meal Break Start"
	ActionMealBreakEnd   Action = "Meal Break End"
)

// IsOpener reports whether the action opens a paired interval.
func (a Action) IsOpener() bool {
	return a == ActionClockIn || a == ActionMealBreakStart
}

// IsCloser reports whether the action closes a paired interval.
func (a Action) IsCloser() bool {
	return a == ActionClockOut || a == ActionMealBreakEnd
}

// Opener returns the opening action a closer pairs against.
// Returns the zero Action for non-closers.
func (a Action) Opener() Action {
	switch a {
	case ActionClockOut:
		return ActionClockIn
	case ActionMealBreakEnd:
		return ActionMealBreakStart
	default:
		return ""
	}
}

// ParseAction converts a stored action string back to an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionClockIn, ActionClockOut, ActionMealBreakStart, ActionMealBreakEnd:
		return Action(s), nil
	default:
		return "", ErrUnknownAction
	}
}

// =============================================================================
// CLOCK STATE - Per-user punch gating
// =============================================================================

type ClockState string

const (
	StateOffClock  ClockState = "off_clock"
	StateClockedIn ClockState = "clocked_in"
	StateOnBreak   ClockState = "on_break"
)

// =============================================================================
// PUNCH - One ledger record
// =============================================================================

// Punch is a single timestamped clock/meal event. Records are immutable
// once written except through an explicit edit, which always triggers a
// whole-day reconciliation.
//
// Time is kept in its stored "hh:mm AM/PM" form rather than parsed
// eagerly: historical rows may carry unparseable times, and those must
// degrade to "skipped from pairing" rather than failing a load.
type Punch struct {
	ID       PunchID
	UserID   UserID
	Date     Date
	Action   Action
	Time     string
	Duration string
}

// TimeOfDay parses the punch's stored wall-clock time.
func (p Punch) TimeOfDay() (TimeOfDay, error) {
	return ParseTimeOfDay(p.Time)
}
