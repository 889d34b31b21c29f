/*
reconcile.go - Whole-day duration reconciliation

PURPOSE:
  Re-derives the duration attached to every closing punch (Clock Out,
  Meal Break End) in one (user, date) partition from its paired opening
  punch. Runs after any edit to a punch's time or date: an edit can
  shift pairing boundaries, so the whole day is recomputed rather than
  a single pair.

PAIRING RULE:
  Punches are walked in ascending time order (stable on insertion order
  for ties). A closer pairs against the nearest preceding unmatched
  opener of its pair type; the derived duration is the gross
  opener-to-closer interval, clamped at zero. Meal break minutes are
  never baked into a Clock Out duration - the accrual tracker subtracts
  them separately.

IDEMPOTENCE:
  Running reconciliation twice over an identical partition stores the
  same durations both times and performs zero writes on the second run.
  This protects against repeated-edit drift.

FAILURE SEMANTICS:
  A punch with an unparseable time is skipped from pairing (treated as
  absent). It never aborts the rest of the day.
*/
package timeclock

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// Reconciler recomputes derived durations for whole-day partitions.
type Reconciler struct {
	Ledger *Ledger
}

func NewReconciler(ledger *Ledger) *Reconciler {
	return &Reconciler{Ledger: ledger}
}

// ReconcileDay recomputes every derived duration in one partition and
// persists only the ones that changed. Returns the number of rewrites.
// Runs synchronously: the triggering edit is not complete until the
// whole day has been recomputed and persisted.
func (r *Reconciler) ReconcileDay(ctx context.Context, userID UserID, date Date) (int, error) {
	punches, err := r.Ledger.PunchesByUserAndDate(ctx, userID, date)
	if err != nil {
		return 0, fmt.Errorf("load partition %d/%s: %w", userID, date, err)
	}

	updates := reconcilePunches(punches)
	for _, u := range updates {
		if err := r.Ledger.UpdateDuration(ctx, u.id, u.duration); err != nil {
			return 0, fmt.Errorf("update duration for punch %d: %w", u.id, err)
		}
	}
	return len(updates), nil
}

// EditPunch rewrites a punch's date and/or time, then reconciles every
// partition the edit touched. When the edit moves the punch to another
// day both the old and new partitions are recomputed, because pairings
// on both sides may have shifted.
func (r *Reconciler) EditPunch(ctx context.Context, id PunchID, date Date, timeOfDay string) error {
	p, err := r.Ledger.Punch(ctx, id)
	if err != nil {
		return err
	}

	oldDate := p.Date
	p.Date = date
	p.Time = timeOfDay
	if err := r.Ledger.UpdatePunch(ctx, p); err != nil {
		return err
	}

	if _, err := r.ReconcileDay(ctx, p.UserID, date); err != nil {
		return err
	}
	if !oldDate.Equal(date) {
		if _, err := r.ReconcileDay(ctx, p.UserID, oldDate); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// PURE RECONCILIATION - The pairing walk
// =============================================================================

type durationUpdate struct {
	id       PunchID
	duration string
}

// reconcilePunches computes the duration rewrites a partition needs.
// Input order is the store's insertion order, which breaks time ties.
func reconcilePunches(punches []Punch) []durationUpdate {
	type timed struct {
		punch   Punch
		minutes int
	}

	paired := make([]timed, 0, len(punches))
	for _, p := range punches {
		t, err := p.TimeOfDay()
		if err != nil {
			log.Printf("reconcile: skipping punch %d with unparseable time %q", p.ID, p.Time)
			continue
		}
		paired = append(paired, timed{punch: p, minutes: t.MinutesSinceMidnight()})
	}

	sort.SliceStable(paired, func(i, j int) bool {
		return paired[i].minutes < paired[j].minutes
	})

	var updates []durationUpdate
	want := func(p Punch, duration string) {
		if p.Duration != duration {
			updates = append(updates, durationUpdate{id: p.ID, duration: duration})
		}
	}

	lastClockIn, lastMealStart := -1, -1
	for _, t := range paired {
		switch t.punch.Action {
		case ActionClockIn:
			lastClockIn = t.minutes
			want(t.punch, NoDuration)

		case ActionMealBreakStart:
			lastMealStart = t.minutes
			want(t.punch, NoDuration)

		case ActionClockOut:
			if lastClockIn < 0 {
				// No matching opener: tolerated, not an error.
				want(t.punch, NoDuration)
				continue
			}
			minutes := t.minutes - lastClockIn
			if minutes < 0 {
				minutes = 0
			}
			want(t.punch, FormatMinutes(minutes))
			lastClockIn = -1

		case ActionMealBreakEnd:
			if lastMealStart < 0 {
				want(t.punch, NoDuration)
				continue
			}
			minutes := t.minutes - lastMealStart
			if minutes < 0 {
				minutes = 0
			}
			want(t.punch, FormatMinutes(minutes))
			lastMealStart = -1
		}
	}

	return updates
}
