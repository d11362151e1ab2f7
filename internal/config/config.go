// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "vnfagent.toml"

// Tool-calling modes.
const (
	ToolsAuto = "auto"
	ToolsOn   = "on"
	ToolsOff  = "off"
)

// Environment variables read by ApplyEnv.
const (
	EnvProvider       = "PROVIDER"
	EnvModel          = "VNF_AGENT_MODEL"
	EnvTools          = "VNF_AGENT_TOOLS"
	EnvLogLevel       = "VNF_AGENT_LOG_LEVEL"
	EnvOllamaBaseURL  = "OLLAMA_BASE_URL"
	EnvAzureEndpoint  = "AZURE_OPENAI_ENDPOINT"
	DefaultOllamaURL  = "http://localhost:11434/v1"
	DefaultOllamaKey  = "ollama"
	DefaultModel      = "phi3"
	DefaultProvider   = "ollama"
	defaultMaxTokens  = 1024
	defaultOTLPTarget = "localhost:4317"
)

// ErrUnsupportedProvider is returned for a provider outside openai, azure and ollama.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// Config represents the agent configuration.
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// LLMConfig contains LLM provider settings.
type LLMConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	MaxTokens int    `toml:"max_tokens"`
	BaseURL   string `toml:"base_url"` // Ollama URL, Azure endpoint or OpenAI-compatible override
	Tools     string `toml:"tools"`    // auto|on|off
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text|json
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Enabled     bool              `toml:"enabled"`
	Endpoint    string            `toml:"endpoint"` // OTLP gRPC endpoint (e.g., localhost:4317)
	Insecure    bool              `toml:"insecure"` // Disable TLS
	Headers     map[string]string `toml:"headers"`
	ServiceName string            `toml:"service_name"`
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  DefaultProvider,
			Model:     DefaultModel,
			MaxTokens: defaultMaxTokens,
			Tools:     ToolsAuto,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Endpoint:    defaultOTLPTarget,
			ServiceName: "vnfagent",
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load reads path, or vnfagent.toml in the working directory when path is
// empty. A missing default file yields the defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	candidate := filepath.Join(cwd, DefaultFile)
	if _, err := os.Stat(candidate); err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", candidate, err)
	}
	return LoadFile(candidate)
}

// ApplyEnv overrides file settings with environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvProvider))); v != "" && v != c.LLM.Provider {
		c.LLM.Provider = v
		c.LLM.BaseURL = ""
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(EnvTools); v != "" {
		c.LLM.Tools = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	c.resolveBaseURL()
}

// Overrides holds command-line settings. Empty fields leave the config unchanged.
type Overrides struct {
	Provider string
	Model    string
	Tools    string
	LogLevel string
}

// ApplyOverrides applies command-line settings on top of file and environment.
// Switching provider drops a base URL that belonged to the previous one.
func (c *Config) ApplyOverrides(o Overrides) {
	if p := strings.ToLower(strings.TrimSpace(o.Provider)); p != "" && p != c.LLM.Provider {
		c.LLM.Provider = p
		c.LLM.BaseURL = ""
		c.resolveBaseURL()
	}
	if o.Model != "" {
		c.LLM.Model = o.Model
	}
	if o.Tools != "" {
		c.LLM.Tools = strings.ToLower(strings.TrimSpace(o.Tools))
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
}

func (c *Config) resolveBaseURL() {
	switch c.LLM.Provider {
	case "ollama":
		if v := os.Getenv(EnvOllamaBaseURL); v != "" {
			c.LLM.BaseURL = v
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = DefaultOllamaURL
		}
	case "azure":
		if v := os.Getenv(EnvAzureEndpoint); v != "" {
			c.LLM.BaseURL = v
		}
	}
}

// GetAPIKey returns the API key from the configured environment variable.
// If api_key_env is not set, uses the default env var for the provider.
// Ollama falls back to a placeholder key.
func (c *Config) GetAPIKey() string {
	envVar := c.LLM.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(c.LLM.Provider)
	}
	var key string
	if envVar != "" {
		key = os.Getenv(envVar)
	}
	if key == "" && c.LLM.Provider == "ollama" {
		key = DefaultOllamaKey
	}
	return key
}

// DefaultAPIKeyEnv returns the default environment variable name for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "azure":
		return "AZURE_OPENAI_API_KEY"
	case "ollama":
		return "OLLAMA_API_KEY"
	default:
		return ""
	}
}

// ToolsEnabled reports whether the backend is asked for structured tool calls.
func (c *Config) ToolsEnabled() bool {
	switch c.LLM.Tools {
	case ToolsOn:
		return true
	case ToolsOff:
		return false
	default:
		return c.LLM.Provider == "openai" || c.LLM.Provider == "azure"
	}
}

// Validate reports configuration errors that must stop startup.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.GetAPIKey() == "" {
			return fmt.Errorf("openai provider requires %s", c.apiKeyEnvName())
		}
	case "azure":
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("azure provider requires %s", EnvAzureEndpoint)
		}
		if c.GetAPIKey() == "" {
			return fmt.Errorf("azure provider requires %s", c.apiKeyEnvName())
		}
	case "ollama":
	default:
		return fmt.Errorf("%w: %q (valid: openai, azure, ollama)", ErrUnsupportedProvider, c.LLM.Provider)
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("model is required")
	}
	switch c.LLM.Tools {
	case ToolsAuto, ToolsOn, ToolsOff, "":
	default:
		return fmt.Errorf("invalid tools mode %q (valid: auto, on, off)", c.LLM.Tools)
	}
	switch c.Logging.Format {
	case "text", "json", "":
	default:
		return fmt.Errorf("invalid log format %q (valid: text, json)", c.Logging.Format)
	}
	return nil
}

func (c *Config) apiKeyEnvName() string {
	if c.LLM.APIKeyEnv != "" {
		return c.LLM.APIKeyEnv
	}
	return DefaultAPIKeyEnv(c.LLM.Provider)
}
