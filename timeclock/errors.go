/*
errors.go - Centralized error types for the timeclock engine

PURPOSE:
  All error types in one place. Callers branch with errors.Is/As;
  presentation layers map ValidationError to a rejected-with-reason
  result rather than a failure.

ERROR CATEGORIES:
  1. Validation errors - A punch submitted in a state that forbids it.
     Never fatal, never mutate state.
  2. Malformed historical data - Unparseable time/duration strings.
     Recovered locally (skipped or zeroed), processing continues.
  3. Persistence errors - Store unavailable. Surfaced to the caller;
     session state is only mutated after the write succeeds.
*/
package timeclock

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotClockedIn is returned when a punch requires an open work
	// interval and there is none.
	ErrNotClockedIn = errors.New("not clocked in")

	// ErrAlreadyClockedIn is returned for a Clock In while a work
	// interval is already open.
	ErrAlreadyClockedIn = errors.New("already clocked in")

	// ErrOnMealBreak is returned for a Clock Out submitted while a meal
	// break is still open. The break must be ended first.
	ErrOnMealBreak = errors.New("still on meal break")

	// ErrAlreadyOnBreak is returned for a Meal Break Start while a break
	// is already open.
	ErrAlreadyOnBreak = errors.New("already on meal break")

	// ErrNotOnMealBreak is returned for a Meal Break End with no open break.
	ErrNotOnMealBreak = errors.New("not on meal break")

	// ErrUnknownAction is returned for an action string outside the four
	// punch kinds.
	ErrUnknownAction = errors.New("unknown punch action")

	// ErrPunchNotFound is returned when an edit references a ledger id
	// that does not exist.
	ErrPunchNotFound = errors.New("punch not found")

	// ErrEditUnsupported is returned when the configured store cannot
	// look up or rewrite individual punches.
	ErrEditUnsupported = errors.New("store does not support punch edits")

	// ErrLedgerClosed is returned for writes submitted after the ledger's
	// writer has shut down.
	ErrLedgerClosed = errors.New("ledger closed")
)

// =============================================================================
// VALIDATION ERROR - Rejected punch, with a human-readable reason
// =============================================================================

// ValidationError reports a punch rejected by the clock state machine.
// It carries the state, the offending action, and a reason suitable for
// direct display. A rejected punch mutates nothing.
type ValidationError struct {
	State  ClockState
	Action Action
	Reason string
	err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s rejected in state %s: %s", e.Action, e.State, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// IsValidation reports whether err is a punch validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
