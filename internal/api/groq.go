package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/notexe/adaptive-chat/internal/config"
)

const defaultGroqURL = "https://api.groq.com/openai/v1"

// GroqProvider implements Provider for the Groq API.
type GroqProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewGroqProvider creates a new Groq provider.
func NewGroqProvider(cfg config.GroqConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}

	return &GroqProvider{
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// SendMessage sends a message to the Groq API and returns the response.
func (p *GroqProvider) SendMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	resp, err := sendChatCompletions(ctx, p.client, p.baseURL, p.apiKey, req)
	if err != nil {
		return nil, fmt.Errorf("Groq API request failed: %w", err)
	}
	return resp, nil
}

// Name returns the provider name.
func (p *GroqProvider) Name() string {
	return "groq"
}

// Close releases resources (no-op for Groq).
func (p *GroqProvider) Close() error {
	return nil
}
