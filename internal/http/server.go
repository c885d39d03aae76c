// Package http exposes the ledger, dashboard and data-management operations
// as a JSON API.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"portfel/internal/cache"
	"portfel/internal/charts"
	applog "portfel/internal/log"
	"portfel/internal/middleware/ratelimit"
	"portfel/internal/middleware/security"
	"portfel/internal/middleware/trace"
	"portfel/internal/services"
)

const (
	maxSessions       = 10000
	maxBodyBytes      = 10 << 20
	janitorInterval   = 5 * time.Minute
	defaultSessionTTL = 30 * time.Minute
)

// Deps are the services the API is built on.
type Deps struct {
	Ledger    *services.LedgerService
	Dashboard *services.DashboardService
	Engine    *services.RecurringEngine
	Rates     *services.RateService
	Snapshots *services.SnapshotService
	Chart     charts.BalanceChart
	Logger    *applog.Logger
	// Location interprets date-only request fields.
	Location *time.Location

	// SessionTTL is how long an idle session keeps its recurring guard.
	SessionTTL time.Duration
	RateLimit  ratelimit.Config
}

type Server struct {
	http.Server
	deps     Deps
	sessions *cache.LRU[*services.RecurringGuard]
	limiter  *ratelimit.Limiter
	janitor  *cache.Janitor
	tracer   *trace.Middleware
	now      func() time.Time

	stopJanitor context.CancelFunc
}

// NewServer wires routes and middleware and starts the cache janitor.
// Call Shutdown to stop both.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	s := &Server{
		deps:     deps,
		sessions: cache.NewLRU[*services.RecurringGuard](maxSessions, ttl, cache.WithSlidingExpiry()),
		limiter:  ratelimit.NewLimiter(deps.RateLimit),
		janitor:  cache.NewJanitor(),
		now:      time.Now,
	}
	s.tracer = trace.NewMiddleware(deps.Logger, clientIP)

	s.janitor.Register("sessions", s.sessions)
	s.janitor.Register("rate_limit", s.limiter.Cache())
	if deps.Rates != nil {
		s.janitor.Register("exchange_rates", deps.Rates.Cache())
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopJanitor = cancel
	s.janitor.Start(ctx, janitorInterval)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.Handle("POST /api/recurring/process", s.limited(s.handleProcessRecurring))

	mux.HandleFunc("GET /api/wallets", s.handleListWallets)
	mux.Handle("POST /api/wallets", s.limited(s.handleCreateWallet))
	mux.Handle("PUT /api/wallets/{id}", s.limited(s.handleUpdateWallet))
	mux.Handle("DELETE /api/wallets/{id}", s.limited(s.handleDeleteWallet))
	mux.HandleFunc("GET /api/wallets/{id}/chart.png", s.handleWalletChart)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.Handle("POST /api/categories", s.limited(s.handleCreateCategory))
	mux.Handle("DELETE /api/categories/{id}", s.limited(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.Handle("POST /api/transactions", s.limited(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.Handle("PUT /api/transactions/{id}", s.limited(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.limited(s.handleDeleteTransaction))
	mux.Handle("POST /api/transactions/{id}/stop", s.limited(s.handleStopSubscription))

	mux.HandleFunc("GET /api/rates", s.handleGetRates)
	mux.Handle("POST /api/rates/sync", s.limited(s.handleSyncRates))

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.Handle("POST /api/import", s.limited(s.handleImport))
	mux.Handle("DELETE /api/data", s.limited(s.handleReset))
}

// limited applies the per-client rate limit to state-changing routes.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, clientIP(r), applog.FieldPath, r.URL.Path)
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})(h)
}

// Shutdown stops the janitor and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopJanitor()
	s.janitor.Wait()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// clientIP prefers proxy headers, then the connection's address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
