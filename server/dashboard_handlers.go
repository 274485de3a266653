package server

import (
	"net/http"

	"github.com/impactlens/dashboard-bff/backend"
	"github.com/impactlens/dashboard-bff/reports"
	"golang.org/x/sync/errgroup"
)

// CreditsHandler returns the credit balance. Backend failures keep the
// defaults; the balance is decoration, not a gate.
func (s *Server) CreditsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		s.writeJSON(w, http.StatusOK, s.client.Credits(r.Context(), store))
	}
}

// DashboardSummary aggregates what the dashboard renders on entry.
type DashboardSummary struct {
	Reports      []reports.Report       `json:"reports"`
	ReadyCount   int                    `json:"ready_count"`
	PendingCount int                    `json:"pending_count"`
	Credits      backend.CreditsBalance `json:"credits"`
}

// DashboardSummaryHandler fetches reports and credits concurrently. The
// fetches are independent; a failure listing reports fails the summary,
// a credits failure does not.
func (s *Server) DashboardSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		businessID := store.BusinessID()
		if businessID == "" {
			s.writeError(w, "no business selected", http.StatusBadRequest)
			return
		}

		summary := DashboardSummary{Credits: backend.DefaultCreditsBalance}

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			raw, err := s.client.ListReports(ctx, store, businessID)
			if err != nil {
				return err
			}
			summary.Reports = s.normalizer.Normalize(raw)
			return nil
		})
		g.Go(func() error {
			summary.Credits = s.client.Credits(ctx, store)
			return nil
		})
		if err := g.Wait(); err != nil {
			s.writeBackendError(w, err)
			return
		}

		for _, report := range summary.Reports {
			switch report.Status {
			case reports.StatusReady:
				summary.ReadyCount++
			case reports.StatusPending, reports.StatusProcessing:
				summary.PendingCount++
			}
		}
		s.writeJSON(w, http.StatusOK, summary)
	}
}
