// -----------------------------------------------------------------------
// Chat Service - Retrieval-augmented question answering
// -----------------------------------------------------------------------

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/interfaces"
	"github.com/lexforge/counsel/internal/services/sessions"
	"github.com/lexforge/counsel/internal/vectorindex"
)

// ErrNotInitialized is returned when the text LLM or embedding provider
// failed to initialize at startup. Raised before any retrieval happens.
var ErrNotInitialized = errors.New("LLM not initialized")

// Service implements retrieval-augmented chat over the session's index.
// Each request is stateless: retriever resolution, the history window, and
// the prompt are rebuilt from the request alone.
type Service struct {
	llm          interfaces.LLMService
	embedder     interfaces.EmbeddingService
	registry     *sessions.Registry
	topK         int
	memoryWindow int
	logger       arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ChatService = (*Service)(nil)

// NewService creates a new chat service. The llm and embedder handles may be
// nil when their providers failed to initialize; requests then fail fast.
func NewService(
	llm interfaces.LLMService,
	embedder interfaces.EmbeddingService,
	registry *sessions.Registry,
	topK, memoryWindow int,
	logger arbor.ILogger,
) *Service {
	return &Service{
		llm:          llm,
		embedder:     embedder,
		registry:     registry,
		topK:         topK,
		memoryWindow: memoryWindow,
		logger:       logger,
	}
}

// Chat answers a question using the session's retrieved context and recent
// conversation history, then suggests follow-up questions.
func (s *Service) Chat(ctx context.Context, req *interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	if s.llm == nil || s.embedder == nil {
		return nil, ErrNotInitialized
	}
	if req.Question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	start := time.Now()

	retrieved, err := s.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	messages := s.buildMessages(req, retrieved)
	answer, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	// Best-effort enrichment: a failure here never loses the answer
	followUps := s.suggestFollowUps(ctx, req.Question, answer)

	s.logger.Info().
		Str("session_id", req.SessionID).
		Int("retrieved", len(retrieved)).
		Int("history_messages", len(req.History)).
		Int("follow_ups", len(followUps)).
		Str("duration", time.Since(start).Round(time.Millisecond).String()).
		Msg("Chat request answered")

	return &interfaces.ChatResponse{
		Answer:    answer,
		FollowUps: followUps,
	}, nil
}

// HealthCheck verifies the chat service can serve requests
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.llm == nil || s.embedder == nil {
		return ErrNotInitialized
	}
	return s.llm.HealthCheck(ctx)
}

// retrieve embeds the question and queries the session's index. A session
// with no index at all yields empty context without error.
func (s *Service) retrieve(ctx context.Context, req *interfaces.ChatRequest) ([]vectorindex.Result, error) {
	idx := s.registry.Resolve(req.SessionID)
	if idx == nil || idx.Len() == 0 {
		s.logger.Debug().Str("session_id", req.SessionID).Msg("No index available, answering with empty context")
		return nil, nil
	}

	embedding, err := s.embedder.GenerateQueryEmbedding(ctx, req.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := idx.Query(embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	return results, nil
}

// buildMessages composes the deterministic prompt: system instructions with
// retrieved context, the windowed history, and the question.
func (s *Service) buildMessages(req *interfaces.ChatRequest, retrieved []vectorindex.Result) []interfaces.Message {
	window := windowHistory(req.History, s.memoryWindow)

	messages := make([]interfaces.Message, 0, len(window)+2)
	messages = append(messages, interfaces.Message{
		Role:    "system",
		Content: buildSystemPrompt(retrieved),
	})
	messages = append(messages, window...)
	messages = append(messages, interfaces.Message{
		Role:    "user",
		Content: req.Question,
	})
	return messages
}

// suggestFollowUps asks the LLM for related questions. Degrades to an empty
// list on any failure.
func (s *Service) suggestFollowUps(ctx context.Context, question, answer string) []string {
	raw, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: buildFollowUpPrompt(question, answer)},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Follow-up suggestion generation failed")
		return []string{}
	}
	return parseFollowUps(raw)
}
