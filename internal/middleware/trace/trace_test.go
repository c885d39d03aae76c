package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "portfel/internal/log"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Output: &buf})
	m := NewMiddleware(logger, func(r *http.Request) string { return "10.0.0.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generated", incoming: ""},
		{name: "propagated", incoming: "abc-123", wantSame: true},
		{name: "oversized replaced", incoming: strings.Repeat("x", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/wallets?x=1", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got != seen {
				t.Errorf("header id %q != context id %q", got, seen)
			}
			if tt.wantSame && got != tt.incoming {
				t.Errorf("request id = %q, want %q", got, tt.incoming)
			}
			if !tt.wantSame && !strings.HasPrefix(got, "req_") {
				t.Errorf("request id = %q, want generated", got)
			}
		})
	}

	out := buf.String()
	if !strings.Contains(out, "status_code=404") || !strings.Contains(out, "level=WARN") {
		t.Errorf("unexpected log output: %s", out)
	}
	if m.Total() != 3 {
		t.Errorf("Total() = %d, want 3", m.Total())
	}
}
