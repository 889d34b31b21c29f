/*
ledger.go - The punch ledger and its store contract

PURPOSE:
  The ledger is the source of truth for worked time. It is append-mostly:
  new punches are appended, and the only mutation is a derived-duration
  rewrite (from reconciliation) or an explicit punch edit, which itself
  triggers reconciliation.

WRITE ORDERING:
  All mutations flow through a single-writer queue (writer.go) and
  complete in submission order. Reads go straight to the store.

STORE IMPLEMENTATIONS:
  - store/memory.go: In-memory, for tests and dev
  - store/sqlite (top-level package): Production SQLite

SEE ALSO:
  - reconcile.go: Rewrites closer durations through this ledger
  - session.go: Appends punches and seeds accrual totals from it
*/
package timeclock

import "context"

// =============================================================================
// STORE - Persistence contract
// =============================================================================

// Store handles punch persistence. Implementations assign ids from a
// ledger-local sequence and must return partition queries ordered by id.
type Store interface {
	// Append persists a punch and returns its assigned id.
	Append(ctx context.Context, p Punch) (PunchID, error)

	// PunchesByUserAndDate returns one (user, date) partition, ordered
	// by id ascending (insertion order).
	PunchesByUserAndDate(ctx context.Context, userID UserID, date Date) ([]Punch, error)

	// UpdateDuration rewrites the derived duration of one punch.
	UpdateDuration(ctx context.Context, id PunchID, duration string) error
}

// EditStore extends Store with individual punch lookup and rewrite,
// required for the edit-then-reconcile flow. Stores that do not
// implement it simply cannot serve edits.
type EditStore interface {
	Store

	// Punch returns a single record by id.
	Punch(ctx context.Context, id PunchID) (Punch, error)

	// UpdatePunch rewrites a record's date, time and duration in place.
	UpdatePunch(ctx context.Context, p Punch) error
}

// =============================================================================
// LEDGER - Store wrapper with serialized writes
// =============================================================================

// Ledger wraps a Store with the single-writer queue. One Ledger exists
// per process; close it when the process shuts down.
type Ledger struct {
	store  Store
	writer *serialWriter
}

func NewLedger(store Store) *Ledger {
	return &Ledger{
		store:  store,
		writer: newSerialWriter(16),
	}
}

// Close shuts down the write queue. Pending writes finish first.
func (l *Ledger) Close() {
	l.writer.Close()
}

// Append persists a punch through the write queue.
func (l *Ledger) Append(ctx context.Context, p Punch) (PunchID, error) {
	var id PunchID
	err := l.writer.Do(ctx, func() error {
		var appendErr error
		id, appendErr = l.store.Append(ctx, p)
		return appendErr
	})
	return id, err
}

// UpdateDuration rewrites a derived duration through the write queue.
func (l *Ledger) UpdateDuration(ctx context.Context, id PunchID, duration string) error {
	return l.writer.Do(ctx, func() error {
		return l.store.UpdateDuration(ctx, id, duration)
	})
}

// UpdatePunch rewrites a record through the write queue. Returns
// ErrEditUnsupported when the store is not an EditStore.
func (l *Ledger) UpdatePunch(ctx context.Context, p Punch) error {
	es, ok := l.store.(EditStore)
	if !ok {
		return ErrEditUnsupported
	}
	return l.writer.Do(ctx, func() error {
		return es.UpdatePunch(ctx, p)
	})
}

// Punch returns one record by id. Returns ErrEditUnsupported when the
// store cannot look up individual punches.
func (l *Ledger) Punch(ctx context.Context, id PunchID) (Punch, error) {
	es, ok := l.store.(EditStore)
	if !ok {
		return Punch{}, ErrEditUnsupported
	}
	return es.Punch(ctx, id)
}

// PunchesByUserAndDate reads one partition directly from the store.
func (l *Ledger) PunchesByUserAndDate(ctx context.Context, userID UserID, date Date) ([]Punch, error) {
	return l.store.PunchesByUserAndDate(ctx, userID, date)
}
