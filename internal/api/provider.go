package api

import "context"

// Provider defines the interface for LLM chat backends.
// Implementations include Groq, the HuggingFace router, and DeepSeek.
type Provider interface {
	// SendMessage sends a message request and returns the response.
	SendMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)

	// Name returns the provider name (e.g., "groq", "huggingface").
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}
