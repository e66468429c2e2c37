package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
llm:
  provider: openai
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
server:
  host: 0.0.0.0
  port: "9090"
assistant:
  stream_timeout: 15s
  replay_history: false
history:
  enabled: true
  db_path: /tmp/transcripts.db
log:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestLoad_FromConfigPath verifies that Load honours CONFIG_PATH and decodes every section.
func TestLoad_FromConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("API_KEY", "")
	t.Setenv("WORKSPACEHQ_LLM_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "openai", cfg.LLM.Provider)
	require.Equal(t, "https://api.example.com", cfg.LLM.BaseURL)
	require.Equal(t, "dummy", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	require.Equal(t, 15*time.Second, cfg.Assistant.StreamTimeout)
	require.False(t, cfg.Assistant.ReplayHistory)
	require.True(t, cfg.History.Enabled)
	require.Equal(t, "/tmp/transcripts.db", cfg.History.DBPath)
	require.Equal(t, "debug", cfg.Log.Level)

	// keys absent from the file keep their defaults
	require.Equal(t, DefaultSystemInstruction, cfg.Assistant.SystemInstruction)
	require.Equal(t, DefaultFallbackText, cfg.Assistant.FallbackText)
}

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("WORKSPACEHQ_LLM_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, err := LoadFile("")
	require.NoError(t, err)

	require.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	require.Equal(t, DefaultModel, cfg.LLM.Model)
	require.Equal(t, DefaultStreamTimeout, cfg.Assistant.StreamTimeout)
	require.True(t, cfg.Assistant.ReplayHistory)
	require.False(t, cfg.History.Enabled)
	require.ErrorIs(t, cfg.LLM.Check(), ErrMissingAPIKey)
}

func TestLoadFile_APIKeyFromEnv(t *testing.T) {
	t.Setenv("API_KEY", "from-env")
	t.Setenv("WORKSPACEHQ_LLM_API_KEY", "")

	cfg, err := LoadFile(writeConfig(t, "llm:\n  model: gemini-2.5-flash\n"))
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.LLM.APIKey)
	require.NoError(t, cfg.LLM.Check())
}

func TestLoadFile_PrefixedEnvOverrides(t *testing.T) {
	t.Setenv("WORKSPACEHQ_SERVER_PORT", "7000")
	t.Setenv("WORKSPACEHQ_LLM_API_KEY", "prefixed")
	t.Setenv("API_KEY", "plain")

	cfg, err := LoadFile(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.Equal(t, "7000", cfg.Server.Port)
	require.Equal(t, "prefixed", cfg.LLM.APIKey)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, "assistant:\n  stream_timeout: -1s\n"))
	require.Error(t, err)
}
