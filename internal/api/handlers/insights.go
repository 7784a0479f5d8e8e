package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/api/middleware"
	"github.com/dvloznov/kitab-khata/internal/insight"
)

// InsightsHandler starts and reports AI insight requests.
type InsightsHandler struct {
	ledger  Ledger
	tracker InsightTracker
	log     zerolog.Logger
}

// NewInsightsHandler creates a new insights handler. tracker may be nil
// when no model is configured.
func NewInsightsHandler(l Ledger, tracker InsightTracker, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{ledger: l, tracker: tracker, log: log}
}

// StartInsight handles POST /api/insights. With ?wait=true the response
// carries the resolved text.
func (h *InsightsHandler) StartInsight(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "AI insights are not configured")
		return
	}

	done, err := h.tracker.Start(r.Context(), h.ledger.Records())
	if errors.Is(err, insight.ErrBusy) {
		middleware.WriteError(w, http.StatusConflict, "An insight request is already running")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to start insight request")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to start insight request")
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		select {
		case snap := <-done:
			middleware.WriteJSON(w, http.StatusOK, snap)
		case <-r.Context().Done():
			middleware.WriteJSON(w, http.StatusAccepted, h.tracker.Snapshot())
		}
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, h.tracker.Snapshot())
}

// GetInsight handles GET /api/insights
func (h *InsightsHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		middleware.WriteJSON(w, http.StatusOK, insight.Snapshot{Phase: insight.PhaseIdle})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.tracker.Snapshot())
}
