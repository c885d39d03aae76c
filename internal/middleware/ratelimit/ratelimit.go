// Package ratelimit caps requests per client in fixed one-minute windows.
package ratelimit

import (
	"net/http"
	"sync/atomic"
	"time"

	"portfel/internal/cache"
)

const window = time.Minute

type Config struct {
	RequestsPerMinute int
	MaxClients        int
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 120, MaxClients: 10000}
}

// Limiter counts requests in an LRU keyed by client. An entry expires one
// window after it was created, which resets the client's count.
type Limiter struct {
	counters *cache.LRU[*atomic.Int64]
	limit    int64
	rejected atomic.Int64
}

func NewLimiter(config Config, opts ...cache.Option) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	return &Limiter{
		counters: cache.NewLRU[*atomic.Int64](config.MaxClients, window, opts...),
		limit:    int64(config.RequestsPerMinute),
	}
}

// Cache exposes the counters so a janitor can sweep expired windows.
func (l *Limiter) Cache() *cache.LRU[*atomic.Int64] {
	return l.counters
}

func (l *Limiter) Allow(clientID string) bool {
	counter := l.counters.GetOrCreate(clientID, func() *atomic.Int64 { return new(atomic.Int64) })
	if counter.Add(1) > l.limit {
		l.rejected.Add(1)
		return false
	}
	return true
}

// Rejected is the number of requests refused since start.
func (l *Limiter) Rejected() int64 {
	return l.rejected.Load()
}

func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", "60")
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
