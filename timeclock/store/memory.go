// Package store provides in-memory Store implementations for tests and dev.
package store

import (
	"context"
	"sync"

	"github.com/warp/timeclock-engine/timeclock"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	punches []timeclock.Punch
	nextID  timeclock.PunchID
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// Append assigns the next sequence id and stores the punch.
func (m *Memory) Append(_ context.Context, p timeclock.Punch) (timeclock.PunchID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.nextID
	m.nextID++
	m.punches = append(m.punches, p)
	return p.ID, nil
}

// PunchesByUserAndDate returns one partition in insertion (id) order.
func (m *Memory) PunchesByUserAndDate(_ context.Context, userID timeclock.UserID, date timeclock.Date) ([]timeclock.Punch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []timeclock.Punch
	for _, p := range m.punches {
		if p.UserID == userID && p.Date.Equal(date) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) UpdateDuration(_ context.Context, id timeclock.PunchID, duration string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.punches {
		if m.punches[i].ID == id {
			m.punches[i].Duration = duration
			return nil
		}
	}
	return timeclock.ErrPunchNotFound
}

func (m *Memory) Punch(_ context.Context, id timeclock.PunchID) (timeclock.Punch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.punches {
		if p.ID == id {
			return p, nil
		}
	}
	return timeclock.Punch{}, timeclock.ErrPunchNotFound
}

func (m *Memory) UpdatePunch(_ context.Context, p timeclock.Punch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.punches {
		if m.punches[i].ID == p.ID {
			m.punches[i] = p
			return nil
		}
	}
	return timeclock.ErrPunchNotFound
}

// Compile-time checks that Memory satisfies the store contracts.
var (
	_ timeclock.Store     = (*Memory)(nil)
	_ timeclock.EditStore = (*Memory)(nil)
)
