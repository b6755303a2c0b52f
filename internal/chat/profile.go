package chat

// ContextProfile describes the token capacity of a model: how big its
// context window is, how much of it is reserved for the reply, and a safety
// margin for system/instruction overhead.
type ContextProfile struct {
	MaxContextTokens int
	MaxOutputTokens  int
	ReservedTokens   int
}

// AvailableTokens returns the budget left for conversation history after
// reserving space for the reply and the safety margin.
func (p ContextProfile) AvailableTokens() int {
	return p.MaxContextTokens - p.MaxOutputTokens - p.ReservedTokens
}

// defaultProfile is used for models missing from the table. Conservative on
// purpose: it is better to prune too much than to overflow an unknown model.
var defaultProfile = ContextProfile{
	MaxContextTokens: 4096,
	MaxOutputTokens:  1000,
	ReservedTokens:   200,
}

// DefaultProfiles returns the context profiles for known models.
func DefaultProfiles() map[string]ContextProfile {
	return map[string]ContextProfile{
		// Groq models
		"llama3-70b-8192": {8192, 1000, 200},
		"llama3-8b-8192":  {8192, 1000, 200},
		"gemma2-9b-it":    {8192, 1000, 200},

		// HuggingFace router models
		"google/gemma-2-2b-it":                      {8192, 1000, 200},
		"deepseek-ai/DeepSeek-R1-Distill-Qwen-1.5B": {32768, 2000, 500},
		"microsoft/phi-4":                           {16384, 1500, 300},
		"Qwen/Qwen2.5-Coder-32B-Instruct":           {32768, 2000, 500},
		"deepseek-ai/DeepSeek-R1":                   {131072, 4000, 1000},

		// DeepSeek API models
		"deepseek-chat":     {131072, 8000, 1000},
		"deepseek-reasoner": {131072, 8000, 1000},
	}
}
