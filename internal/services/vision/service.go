// -----------------------------------------------------------------------
// Vision Service - Image question answering via Gemini
// -----------------------------------------------------------------------

package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/lexforge/counsel/internal/common"
	"github.com/lexforge/counsel/internal/interfaces"
)

// Service implements the VisionService interface using a Gemini
// multimodal model. Vision answers are standalone; no retrieval or
// conversation history is involved.
type Service struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.VisionService = (*Service)(nil)

// NewService creates a new vision service
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
		Str("vision_model", config.VisionModel).
		Msg("Vision service initialized")

	return &Service{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
	}, nil
}

// AnswerImage generates a response to the prompt grounded in the image
func (s *Service) AnswerImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	if len(image) == 0 {
		return "", fmt.Errorf("image cannot be empty")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromBytes(image, mimeType),
			},
		},
	}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.VisionModel, contents, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("mime_type", mimeType).
			Int("image_bytes", len(image)).
			Msg("Vision completion failed")
		return "", fmt.Errorf("vision completion failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from vision model")
	}

	s.logger.Debug().
		Int("image_bytes", len(image)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(start)).
		Msg("Vision completion finished")

	return response.String(), nil
}

// ModelName returns the configured vision model identifier
func (s *Service) ModelName() string {
	return s.config.VisionModel
}
