package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/interfaces"
)

// visionQuestionPrefix frames the image question for the vision model
const visionQuestionPrefix = "Carefully analyze this image and answer the following legal or document-related question: "

// VisionHandler handles image question answering requests
type VisionHandler struct {
	visionService  interfaces.VisionService
	maxUploadBytes int64
	logger         arbor.ILogger
}

// NewVisionHandler creates a new vision handler. The vision service may be
// nil when its provider failed to initialize.
func NewVisionHandler(visionService interfaces.VisionService, maxUploadBytes int64, logger arbor.ILogger) *VisionHandler {
	return &VisionHandler{
		visionService:  visionService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ChatVisionHandler handles POST /api/chat/vision requests. The multipart
// form carries the "question" field and the "image" file. Vision answers
// have no retrieval step and a fixed empty related-questions list.
func (h *VisionHandler) ChatVisionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.visionService == nil {
		WriteError(w, http.StatusInternalServerError, "Vision LLM not initialized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	question := r.FormValue("question")
	file, header, err := r.FormFile("image")
	if err != nil || question == "" {
		WriteError(w, http.StatusBadRequest, "Image and question are required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read uploaded image")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	answer, err := h.visionService.AnswerImage(r.Context(), visionQuestionPrefix+question, image, mimeType)
	if err != nil {
		h.logger.Error().Err(err).Msg("Vision request failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process image query: %s", err.Error()))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"answer":            answer,
		"related_questions": []string{},
	})
}
