package timeclock

import (
	"context"
	"sync"
)

// =============================================================================
// SERIAL WRITER - Single-writer queue for ledger mutations
// =============================================================================

// serialWriter funnels every ledger mutation through one goroutine so
// that reconciliation rewrites and new punches never interleave
// destructively. Jobs complete strictly in submission order. Callers
// block until their job has run, so state is only reflected after the
// write has actually persisted.
type serialWriter struct {
	mu     sync.Mutex
	closed bool

	jobs chan writeJob
	done chan struct{}
}

type writeJob struct {
	fn     func() error
	result chan error
}

func newSerialWriter(buffer int) *serialWriter {
	w := &serialWriter{
		jobs: make(chan writeJob, buffer),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *serialWriter) run() {
	for {
		select {
		case job := <-w.jobs:
			job.result <- job.fn()
		case <-w.done:
			// Every job accepted before Close is already buffered;
			// drain them all before exiting.
			for {
				select {
				case job := <-w.jobs:
					job.result <- job.fn()
				default:
					return
				}
			}
		}
	}
}

// Do submits fn and waits for it to complete. Returns ctx.Err() if the
// context expires before the job is accepted, and ErrLedgerClosed after
// Close.
func (w *serialWriter) Do(ctx context.Context, fn func() error) error {
	job := writeJob{fn: fn, result: make(chan error, 1)}

	// The send happens under the lock so that no job can slip into the
	// queue after Close has marked it closed.
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrLedgerClosed
	}
	select {
	case w.jobs <- job:
		w.mu.Unlock()
	case <-ctx.Done():
		w.mu.Unlock()
		return ctx.Err()
	}

	select {
	case err := <-job.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the queue closed and signals the run goroutine, which
// finishes the pending jobs before exiting. Safe to call twice.
func (w *serialWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.done)
	}
}
