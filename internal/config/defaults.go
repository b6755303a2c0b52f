package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"provider": "groq",
		"groq": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://api.groq.com/openai/v1",
			"timeout":  120,
		},
		"huggingface": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://router.huggingface.co/v1",
			"timeout":  120,
		},
		"deepseek": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://api.deepseek.com",
			"timeout":  120,
		},
		"model": map[string]interface{}{
			"name":           "llama3-70b-8192",
			"max_tokens":     1000,
			"temperature":    0.7,
			"system_prompt":  "You are a helpful AI assistant. Provide clear, concise, and accurate responses.",
			"context_window": 0, // 0 means use the model's default profile
		},
		"context": map[string]interface{}{
			"reserved_tokens": 0, // 0 means use the model's default reservation
			"weights": map[string]interface{}{
				"user_bonus":     1.2,
				"question_bonus": 1.1,
				"short_penalty":  0.8,
				"long_penalty":   0.9,
				"short_tokens":   5,
				"long_tokens":    500,
			},
		},
		"session": map[string]interface{}{
			"save_history": false,
			"history_file": "~/.adaptive-chat/history.json",
		},
		"ui": map[string]interface{}{
			"show_token_count": true,
			"show_stats":       false,
			"colored_output":   true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.adaptive-chat/config.yaml"
}
