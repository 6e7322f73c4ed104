package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/common"
	"github.com/lexforge/counsel/internal/interfaces"
)

// NewLLMService creates the text chat service for the configured provider
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	logger.Info().Str("provider", string(cfg.LLM.DefaultProvider)).Msg("Initializing LLM service")

	switch cfg.LLM.DefaultProvider {
	case common.LLMProviderGemini:
		return NewGeminiService(&cfg.Gemini, logger)

	case common.LLMProviderClaude:
		return NewClaudeService(&cfg.Claude, logger)

	default:
		return nil, fmt.Errorf("unsupported LLM provider '%s': must be '%s' or '%s'",
			cfg.LLM.DefaultProvider, common.LLMProviderGemini, common.LLMProviderClaude)
	}
}
