/*
state.go - Clock state machine

PURPOSE:
  Gates which punch actions are valid for a user's current clock state.
  The machine has three states and cycles daily; there is no terminal
  state.

TRANSITIONS:
  off_clock   --Clock In-->          clocked_in
  clocked_in  --Clock Out-->         off_clock
  clocked_in  --Meal Break Start-->  on_break
  on_break    --Meal Break End-->    clocked_in

  Everything else is rejected with a ValidationError. A rejection never
  mutates state - Transition is a pure function; callers only adopt the
  returned state on success.
*/
package timeclock

// Transition validates action against state and returns the next state.
// On rejection it returns the input state unchanged and a
// *ValidationError carrying a display-ready reason.
func Transition(state ClockState, action Action) (ClockState, error) {
	switch action {
	case ActionClockIn:
		if state != StateOffClock {
			return state, &ValidationError{
				State:  state,
				Action: action,
				Reason: "you are already clocked in",
				err:    ErrAlreadyClockedIn,
			}
		}
		return StateClockedIn, nil

	case ActionClockOut:
		switch state {
		case StateClockedIn:
			return StateOffClock, nil
		case StateOnBreak:
			return state, &ValidationError{
				State:  state,
				Action: action,
				Reason: "please end your meal break before clocking out",
				err:    ErrOnMealBreak,
			}
		default:
			return state, &ValidationError{
				State:  state,
				Action: action,
				Reason: "you must clock in first",
				err:    ErrNotClockedIn,
			}
		}

	case ActionMealBreakStart:
		switch state {
		case StateClockedIn:
			return StateOnBreak, nil
		case StateOnBreak:
			return state, &ValidationError{
				State:  state,
				Action: action,
				Reason: "you are already on a meal break",
				err:    ErrAlreadyOnBreak,
			}
		default:
			return state, &ValidationError{
				State:  state,
				Action: action,
				Reason: "you must clock in first",
				err:    ErrNotClockedIn,
			}
		}

	case ActionMealBreakEnd:
		if state != StateOnBreak {
			return state, &ValidationError{
				State:  state,
				Action: action,
				Reason: "you are not on a meal break",
				err:    ErrNotOnMealBreak,
			}
		}
		return StateClockedIn, nil

	default:
		return state, &ValidationError{
			State:  state,
			Action: action,
			Reason: "unknown punch action",
			err:    ErrUnknownAction,
		}
	}
}
