package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Provider type constants (duplicated from api package to avoid import cycle)
const (
	ProviderGroq        = "groq"
	ProviderHuggingFace = "huggingface"
	ProviderDeepSeek    = "deepseek"
)

type Config struct {
	Provider    string            `koanf:"provider"`
	Groq        GroqConfig        `koanf:"groq"`
	HuggingFace HuggingFaceConfig `koanf:"huggingface"`
	DeepSeek    DeepSeekConfig    `koanf:"deepseek"`
	Model       ModelConfig       `koanf:"model"`
	Context     ContextConfig     `koanf:"context"`
	Session     SessionConfig     `koanf:"session"`
	UI          UIConfig          `koanf:"ui"`
}

type GroqConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type HuggingFaceConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type DeepSeekConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type ModelConfig struct {
	Name          string  `koanf:"name"`
	MaxTokens     int     `koanf:"max_tokens"`
	Temperature   float64 `koanf:"temperature"`
	SystemPrompt  string  `koanf:"system_prompt"`
	ContextWindow int     `koanf:"context_window"` // Override default context window (0 = use model default)
}

// ContextConfig tunes the adaptive context manager.
type ContextConfig struct {
	ReservedTokens int           `koanf:"reserved_tokens"` // Safety margin for system overhead (0 = model default)
	Weights        WeightsConfig `koanf:"weights"`
}

// WeightsConfig overrides the importance-score multipliers. Zero values fall
// back to the built-in defaults.
type WeightsConfig struct {
	UserBonus     float64 `koanf:"user_bonus"`
	QuestionBonus float64 `koanf:"question_bonus"`
	ShortPenalty  float64 `koanf:"short_penalty"`
	LongPenalty   float64 `koanf:"long_penalty"`
	ShortTokens   int     `koanf:"short_tokens"`
	LongTokens    int     `koanf:"long_tokens"`
}

type SessionConfig struct {
	SaveHistory bool   `koanf:"save_history"`
	HistoryFile string `koanf:"history_file"`
}

type UIConfig struct {
	ShowTokenCount bool `koanf:"show_token_count"`
	ShowStats      bool `koanf:"show_stats"`
	ColoredOutput  bool `koanf:"colored_output"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("CHAT_", ".", func(s string) string {
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Well-known API key environment variables take precedence over files.
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		k.Set("groq.api_key", apiKey)
	}
	if apiKey := os.Getenv("HUGGINGFACE_API_KEY"); apiKey != "" {
		k.Set("huggingface.api_key", apiKey)
	} else if apiKey := os.Getenv("HF_TOKEN"); apiKey != "" {
		k.Set("huggingface.api_key", apiKey)
	}
	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" {
		k.Set("deepseek.api_key", apiKey)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Session.HistoryFile = expandPath(cfg.Session.HistoryFile)

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGroq:
		if c.Groq.APIKey == "" {
			return fmt.Errorf("Groq API key is required (set GROQ_API_KEY or add to config file)")
		}
	case ProviderHuggingFace:
		if c.HuggingFace.APIKey == "" {
			return fmt.Errorf("HuggingFace API key is required (set HUGGINGFACE_API_KEY or HF_TOKEN)")
		}
	case ProviderDeepSeek:
		if c.DeepSeek.APIKey == "" {
			return fmt.Errorf("DeepSeek API key is required (set DEEPSEEK_API_KEY or add to config file)")
		}
	default:
		return fmt.Errorf("unknown provider: %s (supported: %s, %s, %s)",
			c.Provider, ProviderGroq, ProviderHuggingFace, ProviderDeepSeek)
	}

	if c.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}

	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	return nil
}

// ProviderConfig contains provider-specific configuration for the API package.
type ProviderConfig struct {
	Type        string
	Groq        GroqConfig
	HuggingFace HuggingFaceConfig
	DeepSeek    DeepSeekConfig
	Model       ModelSettings
}

// ModelSettings contains model parameters used by all providers.
type ModelSettings struct {
	Name        string
	MaxTokens   int
	Temperature float64
}

// GetProviderConfig returns the provider configuration for the API package.
func (c *Config) GetProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		Type:        c.Provider,
		Groq:        c.Groq,
		HuggingFace: c.HuggingFace,
		DeepSeek:    c.DeepSeek,
		Model: ModelSettings{
			Name:        c.Model.Name,
			MaxTokens:   c.Model.MaxTokens,
			Temperature: c.Model.Temperature,
		},
	}
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
