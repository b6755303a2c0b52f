package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/notexe/adaptive-chat/internal/api"
	"github.com/notexe/adaptive-chat/internal/config"
)

// Session is the per-conversation wrapper the REPL talks to. It owns exactly
// one ContextStore plus the model settings used to build API requests.
type Session struct {
	store  *ContextStore
	config *config.ModelConfig
}

// SessionData is the on-disk transcript format. Only the session layer
// persists anything; the context store itself is memory-only.
type SessionData struct {
	ModelName    string    `json:"model_name"`
	SystemPrompt string    `json:"system_prompt"`
	Turns        []Turn    `json:"turns"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewSession(cfg *config.ModelConfig) *Session {
	return NewSessionWithContext(cfg, nil)
}

// NewSessionWithContext creates a session with custom context configuration.
func NewSessionWithContext(cfg *config.ModelConfig, contextCfg *config.ContextConfig) *Session {
	weights := DefaultScoreWeights()
	if contextCfg != nil {
		weights = weightsFromConfig(contextCfg.Weights)
	}

	store := NewContextStoreWithWeights(cfg.Name, weights)
	store.SetSystemPrompt(cfg.SystemPrompt)

	// Apply capacity overrides from config, if any.
	profile := store.Profile()
	override := false
	if cfg.ContextWindow > 0 {
		profile.MaxContextTokens = cfg.ContextWindow
		override = true
	}
	if contextCfg != nil && contextCfg.ReservedTokens > 0 {
		profile.ReservedTokens = contextCfg.ReservedTokens
		override = true
	}
	if override {
		store.SetProfile(cfg.Name, profile)
	}

	return &Session{
		store:  store,
		config: cfg,
	}
}

// weightsFromConfig merges config overrides over the default multipliers.
// Zero config values keep the defaults.
func weightsFromConfig(w config.WeightsConfig) ScoreWeights {
	weights := DefaultScoreWeights()
	if w.UserBonus > 0 {
		weights.UserBonus = w.UserBonus
	}
	if w.QuestionBonus > 0 {
		weights.QuestionBonus = w.QuestionBonus
	}
	if w.ShortPenalty > 0 {
		weights.ShortPenalty = w.ShortPenalty
	}
	if w.LongPenalty > 0 {
		weights.LongPenalty = w.LongPenalty
	}
	if w.ShortTokens > 0 {
		weights.ShortTokens = w.ShortTokens
	}
	if w.LongTokens > 0 {
		weights.LongTokens = w.LongTokens
	}
	return weights
}

func (s *Session) AddUserMessage(content string) {
	s.store.AddMessage(RoleUser, content, "")
}

// AddAssistantMessage records a model reply along with the provider that
// produced it.
func (s *Session) AddAssistantMessage(content, provider string) {
	s.store.AddMessage(RoleAssistant, content, provider)
}

func (s *Session) SetSystemPrompt(prompt string) error {
	if err := ValidateSystemPrompt(prompt); err != nil {
		return err
	}
	s.store.SetSystemPrompt(prompt)
	return nil
}

func (s *Session) GetSystemPrompt() string {
	return s.store.SystemPrompt()
}

// SwitchModel moves the session to a different model. The store recounts and
// re-prunes against the new budget.
func (s *Session) SwitchModel(modelName string) {
	s.config.Name = modelName
	s.store.SwitchModel(modelName)
}

func (s *Session) SetTemperature(temp float64) error {
	if temp < 0 || temp > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	s.config.Temperature = temp
	return nil
}

func (s *Session) GetTemperature() float64 {
	return s.config.Temperature
}

func (s *Session) GetModelName() string {
	return s.config.Name
}

func (s *Session) GetMaxTokens() int {
	return s.config.MaxTokens
}

func (s *Session) Clear() {
	s.store.Clear()
}

func (s *Session) IsEmpty() bool {
	return len(s.store.History()) == 0
}

func (s *Session) MessageCount() int {
	return len(s.store.History())
}

// Stats exposes the store's context usage snapshot.
func (s *Session) Stats() Stats {
	return s.store.Stats()
}

// Render exposes the store's flattened transcript.
func (s *Session) Render() string {
	return s.store.Render()
}

// BuildAPIRequest assembles the payload for the next model call from the
// retained context. The system prompt rides along as the first message.
func (s *Session) BuildAPIRequest() api.MessageRequest {
	return api.MessageRequest{
		Messages:    s.store.Messages(),
		Model:       s.config.Name,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}
}

func (s *Session) Save(filepath string) error {
	data := SessionData{
		ModelName:    s.store.ModelName(),
		SystemPrompt: s.store.SystemPrompt(),
		Turns:        s.store.History(),
		Timestamp:    time.Now(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load replays a saved transcript through the store so token counts and
// importance scores are recomputed with the active counter.
func (s *Session) Load(filepath string) error {
	jsonData, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.store.Clear()
	if data.SystemPrompt != "" {
		s.store.SetSystemPrompt(data.SystemPrompt)
	}
	for _, turn := range data.Turns {
		s.store.AddMessage(turn.Role, turn.Content, turn.Provider)
	}

	return nil
}
