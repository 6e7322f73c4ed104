// -----------------------------------------------------------------------
// Transcription Service - Speech to text via Gemini
// -----------------------------------------------------------------------

package transcribe

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

// transcribePrompt asks for a bare transcript with no commentary
const transcribePrompt = "Transcribe the spoken words in this audio recording. " +
	"Return only the transcript text with no preamble or commentary."

// Service implements the TranscriptionService interface by sending the
// recorded audio to a Gemini multimodal model.
type Service struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.TranscriptionService = (*Service)(nil)

// NewService creates a new transcription service
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
		Str("model", config.ChatModel).
		Msg("Transcription service initialized")

	return &Service{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
	}, nil
}

// Transcribe returns the spoken text contained in the audio bytes.
// Browser recordings arrive as audio/webm when the client doesn't say
// otherwise.
func (s *Service) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio cannot be empty")
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "audio/webm"
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
				genai.NewPartFromText(transcribePrompt),
				genai.NewPartFromBytes(audio, mimeType),
			},
		},
	}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.ChatModel, contents, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("mime_type", mimeType).
			Int("audio_bytes", len(audio)).
			Msg("Transcription failed")
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	var transcript strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					transcript.WriteString(part.Text)
				}
			}
			if transcript.Len() > 0 {
				break
			}
		}
	}

	text := strings.TrimSpace(transcript.String())
	if text == "" {
		return "", fmt.Errorf("no transcript generated from audio")
	}

	s.logger.Debug().
		Int("audio_bytes", len(audio)).
		Int("transcript_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Transcription finished")

	return text, nil
}
