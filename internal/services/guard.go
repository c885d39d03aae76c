package services

import (
	"context"
	"sync"
)

// RecurringGuard runs the recurring engine at most once per session. The
// owner decides what a session is: the HTTP server keeps one guard per
// browser session, a worker builds a fresh guard per tick.
type RecurringGuard struct {
	mu   sync.Mutex
	done bool
}

func NewRecurringGuard() *RecurringGuard {
	return &RecurringGuard{}
}

// RunOnce calls fn unless a previous call already succeeded. Concurrent
// callers wait for the one in flight. A failed fn leaves the guard open so
// the next load retries.
func (g *RecurringGuard) RunOnce(ctx context.Context, fn func(context.Context) error) (ran bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.done {
		return false, nil
	}
	if err := fn(ctx); err != nil {
		return true, err
	}
	g.done = true
	return true, nil
}

func (g *RecurringGuard) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

// Reset re-arms the guard, e.g. after an import replaced every transaction.
func (g *RecurringGuard) Reset() {
	g.mu.Lock()
	g.done = false
	g.mu.Unlock()
}
