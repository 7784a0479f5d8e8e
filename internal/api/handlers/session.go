package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/api/middleware"
	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/identity"
)

// SessionHandler signs the shop operator in and out.
type SessionHandler struct {
	sessions SessionManager
	log      zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions SessionManager, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log}
}

// GetSession handles GET /api/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.Current(r.Context())
	if errors.Is(err, identity.ErrSignedOut) {
		middleware.WriteError(w, http.StatusNotFound, "Not signed in")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load session")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, user)
}

// Login handles POST /api/session with either {"name": "..."} for a shop
// login or {"credential": "<Google ID token>"}.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		user domain.User
		err  error
	)
	if req.Credential != "" {
		user, err = h.sessions.LoginGoogle(r.Context(), req.Credential)
	} else {
		user, err = h.sessions.LoginManual(r.Context(), req.Name)
	}

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, identity.ErrInvalidCredential):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to sign in")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to sign in")
	default:
		middleware.WriteJSON(w, http.StatusOK, user)
	}
}

// Logout handles DELETE /api/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Failed to sign out")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
