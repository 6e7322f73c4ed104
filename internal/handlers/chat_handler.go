package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/interfaces"
	"github.com/lexforge/counsel/internal/services/chat"
)

var validate = validator.New()

// chatRequest is the POST /api/chat payload
type chatRequest struct {
	Question    string        `json:"question" validate:"required"`
	ChatHistory []chatMessage `json:"chat_history"`
	SessionID   string        `json:"session_id"`
}

// chatMessage carries one prior conversation turn. Role is not validated:
// anything other than "user" is treated as an assistant turn.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService interfaces.ChatService
	logger      arbor.ILogger
}

// NewChatHandler creates a new chat handler. The chat service may be nil
// when its providers failed to initialize.
func NewChatHandler(chatService interfaces.ChatService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// ChatHandler handles POST /api/chat requests
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.chatService == nil {
		WriteError(w, http.StatusInternalServerError, "LLM not initialized")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to decode chat request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Question field is required")
		return
	}

	history := make([]interfaces.Message, 0, len(req.ChatHistory))
	for _, msg := range req.ChatHistory {
		role := "assistant"
		if msg.Role == "user" {
			role = "user"
		}
		history = append(history, interfaces.Message{Role: role, Content: msg.Content})
	}

	response, err := h.chatService.Chat(r.Context(), &interfaces.ChatRequest{
		SessionID: req.SessionID,
		Question:  req.Question,
		History:   history,
	})
	if err != nil {
		if errors.Is(err, chat.ErrNotInitialized) {
			WriteError(w, http.StatusInternalServerError, "LLM not initialized")
			return
		}
		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("Chat request failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"answer":            response.Answer,
		"related_questions": response.FollowUps,
	})
}
