package server

import (
	"encoding/json"
	"net/http"

	"github.com/impactlens/dashboard-bff/backend"
	"github.com/impactlens/dashboard-bff/internal/utils"
	"github.com/pkg/errors"
)

// ReportsListHandler fetches and normalizes the report history for the
// session's business.
func (s *Server) ReportsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		businessID := store.BusinessID()
		if businessID == "" {
			s.writeError(w, "no business selected", http.StatusBadRequest)
			return
		}

		raw, err := s.client.ListReports(r.Context(), store, businessID)
		if err != nil {
			s.writeBackendError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"reports": s.normalizer.Normalize(raw),
		})
	}
}

// GenerateReportHandler forwards a generation request. Callers re-fetch
// the list once this returns; there is no server-confirmed ordering
// between a refresh and a concurrent generation.
func (s *Server) GenerateReportHandler() http.HandlerFunc {
	type generateRequest struct {
		ReportType string         `json:"report_type"`
		Options    map[string]any `json:"options"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		businessID := store.BusinessID()
		if businessID == "" {
			s.writeError(w, "no business selected", http.StatusBadRequest)
			return
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		result, err := s.client.GenerateReport(r.Context(), store, backend.GenerateRequest{
			BusinessID: businessID,
			ReportType: utils.FirstNonEmpty(req.ReportType, "business-overview"),
			Options:    req.Options,
		})
		if err != nil {
			s.writeBackendError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

// ReportContentHandler fetches a single report's JSON content, for the
// social-card style preview. The optional json_url query parameter comes
// from a previously normalized list entry.
func (s *Server) ReportContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		reportID := r.PathValue("id")

		content, err := s.client.ReportContent(r.Context(), store, reportID, r.URL.Query().Get("json_url"))
		if errors.Is(err, backend.ErrNoContent) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			s.writeBackendError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}
