package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey reports that no credential was configured for the LLM
// provider. It is logged, never fatal: requests are still attempted.
var ErrMissingAPIKey = errors.New("config: llm api key is not set")

// Config holds the application configuration
type Config struct {
	LLM       LLMConfig
	Server    ServerConfig
	Assistant AssistantConfig
	History   HistoryConfig
	Log       LogConfig
}

// LLMConfig holds the LLM configuration
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// Check reports configuration problems that do not prevent startup.
func (c LLMConfig) Check() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// AssistantConfig controls the chat assistant behaviour.
type AssistantConfig struct {
	SystemInstruction string        `mapstructure:"system_instruction"`
	Greeting          string        `mapstructure:"greeting"`
	FallbackText      string        `mapstructure:"fallback_text"`
	StreamTimeout     time.Duration `mapstructure:"stream_timeout"`
	ReplayHistory     bool          `mapstructure:"replay_history"`
}

// HistoryConfig holds the transcript archive configuration
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	DefaultBaseURL           = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel             = "gemini-2.5-flash"
	DefaultSystemInstruction = "You are WorkspaceHQ Assistant, a helpful AI inside a project management tool. You help users organize tasks, write emails, and explain project concepts. Keep answers short and professional."
	DefaultGreeting          = "Hello! I'm your WorkspaceHQ Intelligence. How can I help you manage your projects today?"
	DefaultFallbackText      = "I'm having trouble connecting to Workspace Intelligence right now."
	DefaultStreamTimeout     = 60 * time.Second
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.base_url", DefaultBaseURL)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.temperature", 0)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("assistant.system_instruction", DefaultSystemInstruction)
	v.SetDefault("assistant.greeting", DefaultGreeting)
	v.SetDefault("assistant.fallback_text", DefaultFallbackText)
	v.SetDefault("assistant.stream_timeout", DefaultStreamTimeout)
	v.SetDefault("assistant.replay_history", true)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.db_path", "history.db")
	v.SetDefault("log.level", "info")
}

// Load loads the configuration from the file named by CONFIG_PATH, or from
// config.yaml in the working directory. A missing config.yaml is not an error.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_PATH"))
}

// LoadFile loads the configuration from path. An empty path searches for
// config.yaml in the working directory.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WORKSPACEHQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "WORKSPACEHQ_LLM_API_KEY", "API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read config.yaml: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if config.Assistant.StreamTimeout < 0 {
		return nil, fmt.Errorf("config: assistant.stream_timeout must not be negative, got %s", config.Assistant.StreamTimeout)
	}

	return &config, nil
}
