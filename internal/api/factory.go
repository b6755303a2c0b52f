package api

import (
	"fmt"

	"github.com/notexe/adaptive-chat/internal/config"
)

// NewProvider creates a Provider based on the configuration.
func NewProvider(cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case config.ProviderGroq:
		return NewGroqProvider(cfg.Groq)

	case config.ProviderHuggingFace:
		return NewHuggingFaceProvider(cfg.HuggingFace)

	case config.ProviderDeepSeek:
		return NewDeepSeekProvider(cfg.DeepSeek)

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.Type, config.ProviderGroq, config.ProviderHuggingFace, config.ProviderDeepSeek)
	}
}
