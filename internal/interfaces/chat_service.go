package interfaces

import (
	"context"
)

// ChatRequest represents a question asked within a session
type ChatRequest struct {
	// Session identifier; empty falls back to the shared default session
	SessionID string `json:"session_id"`

	// User's question
	Question string `json:"question"`

	// Prior conversation supplied by the caller, oldest first, with roles
	// "user" and "assistant". Only a recent window is used.
	History []Message `json:"chat_history"`
}

// ChatResponse represents the generated answer and suggested follow-ups
type ChatResponse struct {
	// Generated answer, markdown formatted
	Answer string `json:"answer"`

	// Suggested follow-up questions; empty when suggestion generation fails
	FollowUps []string `json:"follow_ups"`
}

// ChatService provides retrieval-augmented chat over the session's index
type ChatService interface {
	// Chat answers a question using the session's retrieved context and
	// recent conversation history, and suggests follow-up questions.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// HealthCheck verifies the chat service is operational
	HealthCheck(ctx context.Context) error
}
