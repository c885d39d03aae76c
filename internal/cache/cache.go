// Package cache provides the in-process TTL caches used for exchange rates
// and per-session recurring guards, plus a janitor that sweeps them.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps registered caches until its context is cancelled.
type Janitor struct {
	mu      sync.Mutex
	caches  map[string]Cleaner
	done    chan struct{}
	started bool
}

func NewJanitor() *Janitor {
	return &Janitor{caches: make(map[string]Cleaner), done: make(chan struct{})}
}

// Register adds a cache under a name used in log lines.
func (j *Janitor) Register(name string, c Cleaner) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.caches[name] = c
}

// Sweep runs one cleaning pass and returns the number of entries removed.
func (j *Janitor) Sweep(ctx context.Context) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	total := 0
	for name, c := range j.caches {
		if n := c.CleanExpired(); n > 0 {
			slog.DebugContext(ctx, "Expired cache entries removed", "cache", name, "removed", n)
			total += n
		}
	}
	return total
}

// Start sweeps every interval in a goroutine. Wait blocks until it has exited.
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		return
	}
	j.started = true
	j.mu.Unlock()

	go func() {
		defer close(j.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (j *Janitor) Wait() {
	j.mu.Lock()
	started := j.started
	j.mu.Unlock()
	if started {
		<-j.done
	}
}
