package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/notexe/adaptive-chat/internal/config"
)

const defaultHuggingFaceURL = "https://router.huggingface.co/v1"

// HuggingFaceProvider implements Provider for the HuggingFace Inference
// Providers router, which exposes hosted models behind an OpenAI-compatible
// endpoint.
type HuggingFaceProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHuggingFaceProvider creates a new HuggingFace provider.
func NewHuggingFaceProvider(cfg config.HuggingFaceConfig) (*HuggingFaceProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("HuggingFace API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}

	return &HuggingFaceProvider{
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// SendMessage sends a message to the HuggingFace router and returns the
// response.
func (p *HuggingFaceProvider) SendMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	resp, err := sendChatCompletions(ctx, p.client, p.baseURL, p.apiKey, req)
	if err != nil {
		return nil, fmt.Errorf("HuggingFace API request failed: %w", err)
	}
	return resp, nil
}

// Name returns the provider name.
func (p *HuggingFaceProvider) Name() string {
	return "huggingface"
}

// Close releases resources (no-op for HuggingFace).
func (p *HuggingFaceProvider) Close() error {
	return nil
}
