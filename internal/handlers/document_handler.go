package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/interfaces"
	"github.com/lexforge/counsel/internal/services/extract"
	"github.com/lexforge/counsel/internal/services/ingest"
	"github.com/lexforge/counsel/internal/services/sessions"
)

// DocumentHandler handles document upload requests
type DocumentHandler struct {
	ingestService  interfaces.IngestService
	maxUploadBytes int64
	logger         arbor.ILogger
}

// NewDocumentHandler creates a new document handler. The ingest service may
// be nil when the embedding provider failed to initialize.
func NewDocumentHandler(ingestService interfaces.IngestService, maxUploadBytes int64, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		ingestService:  ingestService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadHandler handles POST /api/documents/upload requests. The multipart
// form carries the document under "file" and an optional "session_id".
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.ingestService == nil {
		WriteError(w, http.StatusInternalServerError, "Embeddings model not initialized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		WriteError(w, http.StatusBadRequest, "No selected file")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = sessions.DefaultSessionID
	}

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.ingestService.IngestDocument(r.Context(), sessionID, header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedFormat):
			WriteError(w, http.StatusBadRequest, "File type not supported")
		case errors.Is(err, ingest.ErrEmptyDocument):
			WriteError(w, http.StatusBadRequest, "Document contains no extractable text")
		default:
			h.logger.Error().Err(err).
				Str("session_id", sessionID).
				Str("filename", header.Filename).
				Msg("Document ingestion failed")
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process file: %s", err.Error()))
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("File '%s' processed successfully.", result.Filename),
		"document_id": result.DocumentID,
		"chunks":      result.ChunkCount,
	})
}
