package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LLMProvider identifies which provider backs text chat completions.
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Index       IndexConfig     `toml:"index"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Ingest      IngestConfig    `toml:"ingest"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// IndexConfig locates the persisted base index artifact
type IndexConfig struct {
	Path string `toml:"path"` // BadgerHold directory holding the base index artifact
}

// RetrievalConfig controls the generation pipeline's retrieval behavior
type RetrievalConfig struct {
	TopK         int `toml:"top_k"`         // Chunks retrieved per question
	MemoryWindow int `toml:"memory_window"` // Recent user/assistant exchange pairs kept
}

// IngestConfig controls document chunking during ingestion
type IngestConfig struct {
	ChunkSize      int   `toml:"chunk_size"`       // Maximum chunk length in runes
	ChunkOverlap   int   `toml:"chunk_overlap"`    // Overlap between consecutive chunks in runes
	MaxUploadBytes int64 `toml:"max_upload_bytes"` // Upload size cap for multipart parsing
}

// GeminiConfig contains Google Gemini API settings. Gemini provides
// embeddings, vision completions, and transcription; it also serves text
// chat when selected as the default provider.
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // API key (GOOGLE_API_KEY or config)
	ChatModel      string  `toml:"chat_model"`      // Model for text completions
	VisionModel    string  `toml:"vision_model"`    // Model for image question answering
	EmbedModel     string  `toml:"embed_model"`     // Model for embeddings
	EmbedDimension int     `toml:"embed_dimension"` // Embedding output dimensionality
	Timeout        string  `toml:"timeout"`         // Per-call timeout, e.g. "2m"
	RateLimit      string  `toml:"rate_limit"`      // Minimum interval between calls, e.g. "4s"
	Temperature    float32 `toml:"temperature"`     // Temperature for chat completions
}

// ClaudeConfig contains Anthropic Claude API settings for text chat.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // API key (ANTHROPIC_API_KEY or config)
	Model       string  `toml:"model"`       // Model for text completions
	MaxTokens   int     `toml:"max_tokens"`  // Completion token cap
	Timeout     string  `toml:"timeout"`     // Per-call timeout
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between calls
	Temperature float32 `toml:"temperature"` // Temperature for chat completions
}

// LLMConfig selects the text chat provider.
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude"
}

// NewDefaultConfig returns the configuration defaults applied before any
// config file or environment override.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 5001,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Index: IndexConfig{
			Path: "./data/base-index",
		},
		Retrieval: RetrievalConfig{
			TopK:         4,
			MemoryWindow: 3,
		},
		Ingest: IngestConfig{
			ChunkSize:      1000,
			ChunkOverlap:   100,
			MaxUploadBytes: 32 << 20, // 32 MB
		},
		Gemini: GeminiConfig{
			APIKey:         "",
			ChatModel:      "gemini-2.0-flash",
			VisionModel:    "gemini-2.0-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Timeout:        "2m",
			RateLimit:      "4s", // 15 RPM free tier
			Temperature:    0.3,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   8192,
			Timeout:     "2m",
			RateLimit:   "1s",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks cross-field constraints that TOML decoding cannot express.
func (c *Config) Validate() error {
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive (got %d)", c.Retrieval.TopK)
	}
	if c.Retrieval.MemoryWindow < 0 {
		return fmt.Errorf("retrieval.memory_window must not be negative (got %d)", c.Retrieval.MemoryWindow)
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive (got %d)", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be in [0, chunk_size) (got %d, chunk_size %d)", c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	if c.Gemini.EmbedDimension <= 0 {
		return fmt.Errorf("gemini.embed_dimension must be positive (got %d)", c.Gemini.EmbedDimension)
	}
	switch c.LLM.DefaultProvider {
	case LLMProviderGemini, LLMProviderClaude:
	default:
		return fmt.Errorf("llm.default_provider must be %q or %q (got %q)", LLMProviderGemini, LLMProviderClaude, c.LLM.DefaultProvider)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("COUNSEL_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("COUNSEL_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("COUNSEL_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("COUNSEL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("COUNSEL_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if path := os.Getenv("COUNSEL_INDEX_PATH"); path != "" {
		config.Index.Path = path
	}

	// Service-prefixed keys win; provider-conventional names are accepted
	// as fallbacks when the config file left the key empty.
	if key := os.Getenv("COUNSEL_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("COUNSEL_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}

	if provider := os.Getenv("COUNSEL_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}
