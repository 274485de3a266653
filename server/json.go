package server

import (
	"encoding/json"
	"net/http"

	"github.com/impactlens/dashboard-bff/backend"
	"github.com/pkg/errors"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Debug().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

// writeBackendError maps a backend client error onto the proxy response:
// backend HTTP errors keep their status and extracted message, network
// errors surface as 502.
func (s *Server) writeBackendError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.StatusCode)
		}
		s.writeError(w, message, apiErr.StatusCode)
		return
	}
	s.log.Warn().Err(err).Msg("backend request failed")
	s.writeError(w, "reporting backend unavailable", http.StatusBadGateway)
}
