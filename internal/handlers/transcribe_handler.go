package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/interfaces"
)

// TranscribeHandler handles audio transcription requests
type TranscribeHandler struct {
	transcriptionService interfaces.TranscriptionService
	maxUploadBytes       int64
	logger               arbor.ILogger
}

// NewTranscribeHandler creates a new transcription handler. The service may
// be nil when its provider failed to initialize.
func NewTranscribeHandler(transcriptionService interfaces.TranscriptionService, maxUploadBytes int64, logger arbor.ILogger) *TranscribeHandler {
	return &TranscribeHandler{
		transcriptionService: transcriptionService,
		maxUploadBytes:       maxUploadBytes,
		logger:               logger,
	}
}

// TranscribeHandler handles POST /api/transcribe requests. The multipart
// form carries the recording under "audio".
func (h *TranscribeHandler) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.transcriptionService == nil {
		WriteError(w, http.StatusInternalServerError, "Transcription service not initialized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No audio file part")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read uploaded audio")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	text, err := h.transcriptionService.Transcribe(r.Context(), audio, mimeType)
	if err != nil {
		h.logger.Error().Err(err).Msg("Transcription request failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Could not transcribe audio: %s", err.Error()))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"transcription": text,
	})
}
