package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/services/sessions"
)

// resetRequest is the POST /api/sessions/reset payload
type resetRequest struct {
	SessionID string `json:"session_id"`
}

// SessionHandler handles session lifecycle requests
type SessionHandler struct {
	registry *sessions.Registry
	logger   arbor.ILogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *sessions.Registry, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   logger,
	}
}

// ResetHandler handles POST /api/sessions/reset requests. Resetting is
// idempotent; unknown sessions confirm success too.
func (h *SessionHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req resetRequest
	if r.Body != nil {
		// An empty or absent body resets the default session
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	h.registry.Reset(req.SessionID)

	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Conversation reset successfully.",
	})
}
