package chat

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/notexe/adaptive-chat/internal/api"
	"github.com/notexe/adaptive-chat/internal/tokencount"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ProtectedTurns is how many of the most recent turns are exempt from
// pruning. Two covers the latest user/assistant exchange, which the next
// model call needs most.
const ProtectedTurns = 2

// Turn is one message in the conversation, with the metadata the pruning
// strategy needs. Role, Content and Timestamp never change after creation;
// TokenCount and Importance are recomputed on model switch.
type Turn struct {
	Timestamp  time.Time `json:"timestamp"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count"`
	Importance float64   `json:"importance_score"`
	Provider   string    `json:"provider,omitempty"`

	// seq is the insertion order, used as the ordering key. Timestamps can
	// collide when turns are added in the same clock tick.
	seq int
}

// Stats is a read-only snapshot of context usage. Utilization above 100%
// means the small-history overflow case (two or fewer oversized turns) is
// in effect.
type Stats struct {
	ModelName          string  `json:"model_name"`
	TotalTurns         int     `json:"total_turns"`
	TotalTokens        int     `json:"total_tokens"`
	AvailableTokens    int     `json:"available_tokens"`
	Utilization        float64 `json:"utilization_percentage"`
	SystemPromptTokens int     `json:"system_prompt_tokens"`
	MaxContextTokens   int     `json:"max_context_tokens"`
	MaxOutputTokens    int     `json:"max_output_tokens"`
	CountingMethod     string  `json:"counting_method"`
}

// ContextStore owns the conversation history for one session and keeps it
// within the active model's token budget. One store per session; it is not
// safe for concurrent use.
type ContextStore struct {
	modelName    string
	profiles     map[string]ContextProfile
	profile      ContextProfile
	counter      tokencount.Counter
	weights      ScoreWeights
	systemPrompt string
	history      []Turn
	nextSeq      int

	// newCounter builds the counter on model switch. A field rather than a
	// package global so each store stays an independent value.
	newCounter func(model string) tokencount.Counter
}

// NewContextStore creates a store budgeted for the given model, using the
// default importance weights.
func NewContextStore(modelName string) *ContextStore {
	return NewContextStoreWithWeights(modelName, DefaultScoreWeights())
}

// NewContextStoreWithWeights creates a store with custom importance weights.
func NewContextStoreWithWeights(modelName string, weights ScoreWeights) *ContextStore {
	s := &ContextStore{
		modelName:  modelName,
		profiles:   DefaultProfiles(),
		weights:    weights,
		newCounter: tokencount.ForModel,
	}
	s.profile = s.profileFor(modelName)
	s.counter = s.newCounter(modelName)
	return s
}

// profileFor resolves a model name to its profile. Total: unknown models get
// the conservative default so a budget always exists.
func (s *ContextStore) profileFor(modelName string) ContextProfile {
	if p, ok := s.profiles[modelName]; ok {
		return p
	}
	return defaultProfile
}

// SetProfile overrides the profile for a model. If the model is the active
// one, the new budget takes effect immediately and history is re-pruned.
func (s *ContextStore) SetProfile(modelName string, p ContextProfile) {
	s.profiles[modelName] = p
	if modelName == s.modelName {
		s.profile = p
		s.prune()
	}
}

// SetSystemPrompt sets the session's system prompt. The prompt's tokens
// count against the history budget.
func (s *ContextStore) SetSystemPrompt(prompt string) {
	s.systemPrompt = prompt
}

// SystemPrompt returns the session's system prompt.
func (s *ContextStore) SystemPrompt() string {
	return s.systemPrompt
}

// ModelName returns the active model.
func (s *ContextStore) ModelName() string {
	return s.modelName
}

// Profile returns the active context profile.
func (s *ContextStore) Profile() ContextProfile {
	return s.profile
}

// History returns the retained turns in chronological order. The returned
// slice is shared; callers must not mutate it.
func (s *ContextStore) History() []Turn {
	return s.history
}

// AddMessage appends a turn, counting its tokens and scoring its importance
// once at insertion, then re-optimizes the history against the budget.
// provider records which backend produced an assistant turn; pass "" for
// user turns.
func (s *ContextStore) AddMessage(role, content, provider string) {
	tokens := s.counter.Count(content)

	s.history = append(s.history, Turn{
		Timestamp:  time.Now(),
		Role:       role,
		Content:    content,
		TokenCount: tokens,
		Importance: s.weights.Score(role, content, tokens),
		Provider:   provider,
		seq:        s.nextSeq,
	})
	s.nextSeq++

	s.prune()
}

// SwitchModel changes the active model: new budget, new counter, every
// turn's token count and importance recomputed, then history re-pruned.
// Which turns survive can change.
func (s *ContextStore) SwitchModel(modelName string) {
	s.modelName = modelName
	s.profile = s.profileFor(modelName)
	s.counter = s.newCounter(modelName)

	for i := range s.history {
		tokens := s.counter.Count(s.history[i].Content)
		s.history[i].TokenCount = tokens
		s.history[i].Importance = s.weights.Score(s.history[i].Role, s.history[i].Content, tokens)
	}

	s.prune()
}

// Clear empties the history. The system prompt and model stay as they are.
func (s *ContextStore) Clear() {
	s.history = nil
}

// promptTokens is the system prompt's cost, zero when unset.
func (s *ContextStore) promptTokens() int {
	if s.systemPrompt == "" {
		return 0
	}
	return s.counter.Count(s.systemPrompt)
}

func (s *ContextStore) totalTokens() int {
	total := s.promptTokens()
	for _, t := range s.history {
		total += t.TokenCount
	}
	return total
}

// prune applies the hybrid retention strategy: protect the most recent
// turns, then greedily keep the highest-importance older turns that still
// fit. Knowingly greedy, not an optimal subset selection; the goal is to
// stay near budget while favoring importance and recency.
func (s *ContextStore) prune() {
	if s.totalTokens() <= s.profile.AvailableTokens() {
		return
	}
	// With this few turns there is nothing useful to evict. The overflow is
	// accepted and visible through Stats().
	if len(s.history) <= ProtectedTurns {
		return
	}

	split := len(s.history) - ProtectedTurns
	protected := s.history[split:]
	candidates := make([]Turn, split)
	copy(candidates, s.history[:split])

	// Highest importance first; on ties the more recent turn wins.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Importance != candidates[j].Importance {
			return candidates[i].Importance > candidates[j].Importance
		}
		return candidates[i].seq > candidates[j].seq
	})

	used := s.promptTokens()
	for _, t := range protected {
		used += t.TokenCount
	}

	// Greedy 0/1 selection: stop at the first candidate that would overflow.
	kept := make([]Turn, 0, len(candidates))
	for _, t := range candidates {
		if used+t.TokenCount > s.profile.AvailableTokens() {
			break
		}
		kept = append(kept, t)
		used += t.TokenCount
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].seq < kept[j].seq })

	// The protected turns are the newest, so appending them keeps the whole
	// history chronological.
	s.history = append(kept, protected...)
}

// Render returns the retained context as a flat labeled transcript, suitable
// for single-prompt completion APIs.
func (s *ContextStore) Render() string {
	var parts []string

	if s.systemPrompt != "" {
		parts = append(parts, "System: "+s.systemPrompt)
	}

	if len(s.history) > 0 {
		parts = append(parts, "\nConversation so far:")
		for _, t := range s.history {
			label := "User"
			if t.Role == RoleAssistant {
				label = "Assistant"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", label, t.Content))
		}
	}

	return strings.Join(parts, "\n")
}

// Messages returns the retained context as a structured message list for
// chat-completion APIs: the system prompt first (when set), then every turn
// in chronological order. No filtering happens here; the list mirrors the
// current history exactly.
func (s *ContextStore) Messages() []api.Message {
	messages := make([]api.Message, 0, len(s.history)+1)

	if s.systemPrompt != "" {
		messages = append(messages, api.Message{
			Role:    RoleSystem,
			Content: s.systemPrompt,
		})
	}

	for _, t := range s.history {
		messages = append(messages, api.Message{
			Role:    t.Role,
			Content: t.Content,
		})
	}

	return messages
}

// Stats reports current context usage. Read-only.
func (s *ContextStore) Stats() Stats {
	total := s.totalTokens()
	available := s.profile.AvailableTokens()

	utilization := 0.0
	if available > 0 {
		utilization = float64(total) / float64(available) * 100
	}

	return Stats{
		ModelName:          s.modelName,
		TotalTurns:         len(s.history),
		TotalTokens:        total,
		AvailableTokens:    available,
		Utilization:        utilization,
		SystemPromptTokens: s.promptTokens(),
		MaxContextTokens:   s.profile.MaxContextTokens,
		MaxOutputTokens:    s.profile.MaxOutputTokens,
		CountingMethod:     s.counter.Method(),
	}
}
