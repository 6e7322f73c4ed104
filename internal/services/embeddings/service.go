// -----------------------------------------------------------------------
// Embedding Service - Text embeddings via Gemini
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/lexforge/counsel/internal/common"
	"github.com/lexforge/counsel/internal/interfaces"
)

// Task types distinguish corpus chunks from queries; Gemini tunes the
// embedding for the retrieval side it will sit on.
const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

// Service implements the EmbeddingService interface using the Gemini
// embedding models.
type Service struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.EmbeddingService = (*Service)(nil)

// NewService creates a new embedding service
func NewService(config *common.GeminiConfig, logger arbor.ILogger) (*Service, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required (set GOOGLE_API_KEY, COUNSEL_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit duration '%s': %w", config.RateLimit, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Info().
		Str("embed_model", config.EmbedModel).
		Int("dimension", config.EmbedDimension).
		Str("rate_limit", config.RateLimit).
		Msg("Embedding service initialized")

	return &Service{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
	}, nil
}

// GenerateEmbedding creates a vector embedding for corpus text
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text, taskTypeDocument)
}

// GenerateQueryEmbedding creates a vector embedding for a retrieval query
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.embed(ctx, query, taskTypeQuery)
}

// ModelName returns the configured embedding model identifier
func (s *Service) ModelName() string {
	return s.config.EmbedModel
}

// Dimension returns the configured output dimensionality
func (s *Service) Dimension() int {
	return s.config.EmbedDimension
}

// IsAvailable reports whether the service can produce embeddings
func (s *Service) IsAvailable(ctx context.Context) bool {
	embedding, err := s.embed(ctx, "availability probe", taskTypeQuery)
	return err == nil && len(embedding) > 0
}

func (s *Service) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outputDim := int32(s.config.EmbedDimension)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
		TaskType:             taskType,
	}

	start := time.Now()
	result, err := s.client.Models.EmbedContent(timeoutCtx, s.config.EmbedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, embeddingConfig)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("text_length", len(text)).
			Msg("Embedding generation failed")
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if embedding == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if len(embedding) != s.config.EmbedDimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d",
			s.config.EmbedDimension, len(embedding))
	}

	s.logger.Debug().
		Int("text_length", len(text)).
		Int("dimension", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Embedding generated")

	return embedding, nil
}
