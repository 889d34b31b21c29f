/*
sessions.go - Server-side clock session registry

PURPOSE:
  Holds one timeclock.Session per logged-in user and drives their day
  rollover from a free-running ticker. Sessions are created lazily on
  first use, seeded from the ledger, and dropped at logout.

CONCURRENCY:
  timeclock.Session is not safe for concurrent use, so every access
  goes through the registry's mutex: HTTP handlers via Do(), the
  rollover ticker via its own locked sweep.
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/timeclock-engine/timeclock"
)

// SessionRegistry owns the per-user clock sessions.
type SessionRegistry struct {
	ledger *timeclock.Ledger

	mu       sync.Mutex
	sessions map[timeclock.UserID]*timeclock.Session

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

func NewSessionRegistry(ledger *timeclock.Ledger) *SessionRegistry {
	return &SessionRegistry{
		ledger:   ledger,
		sessions: make(map[timeclock.UserID]*timeclock.Session),
		stop:     make(chan struct{}),
	}
}

// Do runs fn against the user's session, creating and seeding it on
// first use. Access is serialized across handlers and the ticker.
func (r *SessionRegistry) Do(ctx context.Context, userID timeclock.UserID, now time.Time, fn func(*timeclock.Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[userID]
	if !ok {
		var err error
		session, err = timeclock.NewSession(ctx, r.ledger, userID, now)
		if err != nil {
			return err
		}
		r.sessions[userID] = session
	}

	return fn(session)
}

// Drop discards a user's session (logout). Derived state is never
// persisted; the next login reseeds from the ledger.
func (r *SessionRegistry) Drop(userID timeclock.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Start launches the rollover ticker. Once per minute is enough for
// day-rollover correctness; the tick is a pure recomputation and never
// blocks on I/O.
func (r *SessionRegistry) Start(interval time.Duration) {
	r.ticker = time.NewTicker(interval)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case now := <-r.ticker.C:
				r.tickAll(now)
			case <-r.stop:
				return
			}
		}
	}()
	log.Printf("session registry: rollover ticker running every %s", interval)
}

// Stop halts the ticker and waits for the sweep goroutine.
func (r *SessionRegistry) Stop() {
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	close(r.stop)
	r.wg.Wait()
}

func (r *SessionRegistry) tickAll(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		session.Tick(now)
	}
}
