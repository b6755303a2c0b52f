package chat

import (
	"fmt"
)

const maxSystemPromptLength = 10000

func ValidateSystemPrompt(prompt string) error {
	if prompt == "" {
		return nil
	}

	if len(prompt) > maxSystemPromptLength {
		return fmt.Errorf("system prompt too long (max %d characters)", maxSystemPromptLength)
	}

	return nil
}
