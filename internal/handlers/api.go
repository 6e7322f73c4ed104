package handlers

import (
	"net/http"

	"github.com/lexforge/counsel/internal/common"
)

// Capabilities reports which service capabilities survived initialization
type Capabilities struct {
	Chat          bool `json:"chat"`
	Ingestion     bool `json:"ingestion"`
	Vision        bool `json:"vision"`
	Transcription bool `json:"transcription"`
}

type APIHandler struct {
	capabilities Capabilities
}

func NewAPIHandler(capabilities Capabilities) *APIHandler {
	return &APIHandler{
		capabilities: capabilities,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler returns health check status with live capabilities
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := "ok"
	if !h.capabilities.Chat && !h.capabilities.Ingestion && !h.capabilities.Vision && !h.capabilities.Transcription {
		status = "degraded"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"capabilities": h.capabilities,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
