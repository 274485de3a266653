package server

import (
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"
)

// LoginSubmissionHandler proxies credentials to the backend and, on
// success, creates a cookie session holding the returned tokens.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			s.writeError(w, "email and password are required", http.StatusBadRequest)
			return
		}

		sessionID, store := s.sessions.Create()
		result, err := s.client.Login(r.Context(), store, req.Email, req.Password)
		if err != nil {
			s.sessions.Delete(sessionID)
			s.writeBackendError(w, err)
			return
		}

		// Storage failures are recoverable on the next action; the login
		// itself succeeded.
		if err := store.SetAccessToken(result.AccessToken); err != nil {
			s.log.Debug().Err(err).Msg("failed to mirror access token")
		}
		if result.RefreshToken != "" {
			_ = store.SetRefreshToken(result.RefreshToken)
		}
		if businessID := gjson.GetBytes(result.Profile, "business_id").String(); businessID != "" {
			_ = store.SetBusinessID(businessID)
		}

		s.setSessionCookie(w, sessionID)
		s.writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"profile": result.Profile,
		})
	}
}

// MeHandler proxies the current-user lookup.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		profile, err := s.client.CurrentUser(r.Context(), store)
		if err != nil {
			s.writeBackendError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(profile)
	}
}

// LogoutHandler destroys the cookie session and every stored token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.GetSessionCookieName())
		if err == nil && cookie.Value != "" {
			if store, ok := s.sessions.Get(cookie.Value); ok {
				store.Clear()
			}
			s.sessions.Delete(cookie.Value)
		}
		s.clearSessionCookie(w)
		s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
