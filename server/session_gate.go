package server

import (
	"context"
	"net/http"

	"github.com/impactlens/dashboard-bff/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySessionStore carries the request's resolved token store
const ContextKeySessionStore ContextKey = "session_store"

// RequireSession gates HTML views: no session or no access token means a
// redirect to the login view before any protected content renders. The
// check runs once per navigation; a token removed mid-session is only
// noticed on the next navigation or the next backend 401.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			store, ok := s.sessionFromRequest(r)
			if !ok || store.AccessToken() == "" {
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}
			next(w, r.WithContext(withSessionStore(r.Context(), store)))
		}
	}
}

// RequireSessionAPI is the JSON variant: 401 instead of a redirect, since
// the front-end drives navigation itself on API failures.
func (s *Server) RequireSessionAPI() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			store, ok := s.sessionFromRequest(r)
			if !ok || store.AccessToken() == "" {
				s.writeError(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			next(w, r.WithContext(withSessionStore(r.Context(), store)))
		}
	}
}

func withSessionStore(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, ContextKeySessionStore, store)
}

func storeFromContext(ctx context.Context) *session.Store {
	store, _ := ctx.Value(ContextKeySessionStore).(*session.Store)
	return store
}

// sessionFromRequest resolves the cookie session, if any.
func (s *Server) sessionFromRequest(r *http.Request) (*session.Store, bool) {
	cookie, err := r.Cookie(s.config.GetSessionCookieName())
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return s.sessions.Get(cookie.Value)
}

// setSessionCookie sets the httpOnly session cookie
func (s *Server) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    sessionID,
		HttpOnly: true,
		Secure:   s.config.GetSessionCookieSecure(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
	})
}

// clearSessionCookie removes the session cookie
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.GetSessionCookieSecure(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1, // Delete cookie
	})
}
