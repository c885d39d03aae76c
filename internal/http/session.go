package http

import (
	"net/http"

	"github.com/google/uuid"

	"portfel/internal/services"
)

const sessionCookie = "portfel_session"

// sessionGuard returns the recurring guard of the caller's session, issuing a
// new session cookie when the request carries none. Each session runs the
// recurring engine once on its first dashboard load.
func (s *Server) sessionGuard(w http.ResponseWriter, r *http.Request) *services.RecurringGuard {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s.sessions.GetOrCreate(id, services.NewRecurringGuard)
}
