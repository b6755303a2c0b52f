package repl

import (
	"fmt"
	"os"
	"time"

	"github.com/notexe/adaptive-chat/internal/api"
	"github.com/notexe/adaptive-chat/internal/chat"
	"github.com/notexe/adaptive-chat/internal/ui"
)

func (r *REPL) displayResponse(response *api.MessageResponse, duration time.Duration) {
	r.status.Hide()

	displayContent := chat.FormatForTerminal(response.Content)

	fmt.Println()
	fmt.Println(r.formatter.FormatAssistantMessage(displayContent))

	if r.config.UI.ShowTokenCount {
		fmt.Println(r.formatter.FormatTokenUsage(response.Usage, ui.TokenUsageOptions{
			Duration: duration,
			Model:    r.config.Model.Name,
		}))
	}

	if r.config.UI.ShowStats {
		stats := r.session.Stats()
		fmt.Println(r.formatter.FormatStatus(fmt.Sprintf("(context: %d/%d tokens, %.1f%%)",
			stats.TotalTokens, stats.AvailableTokens, stats.Utilization)))
	}

	fmt.Println()
	os.Stdout.Sync()
}

func (r *REPL) displayStats(stats chat.Stats) {
	lines := fmt.Sprintf(`Context statistics:
  model:            %s
  turns retained:   %d
  tokens used:      %d / %d
  utilization:      %.1f%%
  system prompt:    %d tokens
  context window:   %d (reply reserve %d)
  counting method:  %s`,
		stats.ModelName,
		stats.TotalTurns,
		stats.TotalTokens, stats.AvailableTokens,
		stats.Utilization,
		stats.SystemPromptTokens,
		stats.MaxContextTokens, stats.MaxOutputTokens,
		stats.CountingMethod,
	)

	fmt.Println(r.formatter.FormatInfo(lines))

	// Over-budget is possible when one or two turns alone exceed the budget.
	if stats.Utilization > 100 {
		fmt.Println(r.formatter.FormatWarning("Context exceeds the model budget; the most recent turns are kept anyway."))
	}
	fmt.Println()
}

func (r *REPL) displayError(err error) {
	r.status.Hide()
	fmt.Println(r.formatter.FormatError(err))
	fmt.Println()
}

func (r *REPL) displayWelcome() {
	fmt.Print(r.formatter.FormatWelcome(r.config.Model.Name))
}

func (r *REPL) displayHelp() {
	fmt.Print(r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Println(r.formatter.FormatInfo(msg))
	fmt.Println()
}

func (r *REPL) displaySystem(msg string) {
	fmt.Println(r.formatter.FormatSystem(msg))
	fmt.Println()
}
