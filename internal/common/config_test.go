package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, 3, cfg.Retrieval.MemoryWindow)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 100, cfg.Ingest.ChunkOverlap)
	assert.Equal(t, LLMProviderGemini, cfg.LLM.DefaultProvider)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "counsel.toml")
	require.NoError(t, os.WriteFile(base, []byte(`
[server]
port = 9000

[retrieval]
top_k = 6
`), 0644))

	override := filepath.Join(dir, "counsel.local.toml")
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 9100
`), 0644))

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	// Later file wins, untouched fields keep defaults
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/counsel.toml")
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("COUNSEL_SERVER_PORT", "7777")
	t.Setenv("COUNSEL_LOG_LEVEL", "debug")
	t.Setenv("COUNSEL_GEMINI_API_KEY", "test-key")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero top_k rejected",
			mutate:  func(c *Config) { c.Retrieval.TopK = 0 },
			wantErr: true,
		},
		{
			name:    "overlap must be below chunk size",
			mutate:  func(c *Config) { c.Ingest.ChunkOverlap = c.Ingest.ChunkSize },
			wantErr: true,
		},
		{
			name:    "negative memory window rejected",
			mutate:  func(c *Config) { c.Retrieval.MemoryWindow = -1 },
			wantErr: true,
		},
		{
			name:    "unknown provider rejected",
			mutate:  func(c *Config) { c.LLM.DefaultProvider = "groq" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 8080, "0.0.0.0")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}
