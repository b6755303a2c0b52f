package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/adaptive-chat/internal/api"
)

var (
	UserStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	AssistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")) // Soft green

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	TokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dim gray

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Yellow
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)
)

type Formatter struct {
	colored     bool
	provider    string // display name (e.g., "Groq", "Hugging Face")
	providerRaw string // raw name (e.g., "groq", "huggingface")
}

func NewFormatter(colored bool, provider ...string) *Formatter {
	displayName := "AI"
	rawName := ""
	if len(provider) > 0 && provider[0] != "" {
		rawName = provider[0]
		displayName = formatProviderName(provider[0])
	}
	return &Formatter{
		colored:     colored,
		provider:    displayName,
		providerRaw: rawName,
	}
}

// formatProviderName returns a display-friendly provider name.
func formatProviderName(provider string) string {
	switch provider {
	case "groq":
		return "Groq"
	case "huggingface":
		return "Hugging Face"
	case "deepseek":
		return "DeepSeek"
	default:
		// Capitalize first letter for unknown providers
		if len(provider) > 0 {
			return string(provider[0]-32) + provider[1:]
		}
		return provider
	}
}

func (f *Formatter) FormatUserMessage(msg string) string {
	prefix := "You: "
	if f.colored {
		prefix = UserStyle.Render("You: ")
	}
	return prefix + msg
}

func (f *Formatter) FormatAssistantMessage(msg string) string {
	prefix := f.provider + ": "
	if f.colored {
		prefix = AssistantStyle.Render(f.provider + ": ")
	}
	return prefix + msg
}

func (f *Formatter) FormatError(err error) string {
	prefix := "Error: "
	if f.colored {
		prefix = ErrorStyle.Render("Error: ")
	}
	return prefix + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	if f.colored {
		return InfoStyle.Render(info)
	}
	return info
}

func (f *Formatter) FormatSystem(msg string) string {
	if f.colored {
		return SystemStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatStatus(msg string) string {
	if f.colored {
		return StatusStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatWarning(msg string) string {
	if f.colored {
		return WarningStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatHeader(msg string) string {
	if f.colored {
		return HeaderStyle.Render(msg)
	}
	return msg
}

// TokenUsageOptions contains optional parameters for token usage display.
type TokenUsageOptions struct {
	Duration time.Duration
	Model    string
}

func (f *Formatter) FormatTokenUsage(usage api.Usage, opts ...TokenUsageOptions) string {
	var duration time.Duration

	if len(opts) > 0 {
		duration = opts[0].Duration
	}

	msg := fmt.Sprintf("(tokens: input=%d, output=%d", usage.InputTokens, usage.OutputTokens)
	if duration > 0 {
		msg += " | time: " + formatDuration(duration)
	}
	msg += ")"

	if f.colored {
		return TokenStyle.Render(msg)
	}
	return msg
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func (f *Formatter) FormatWelcome(model string) string {
	header := fmt.Sprintf("%s chat (model: %s)", f.provider, model)
	body := "Type a message to chat, or /help for commands.\n\n"
	if f.colored {
		return HeaderStyle.Render(header) + "\n" + body
	}
	return header + "\n" + body
}

func (f *Formatter) FormatHelp() string {
	help := `Commands:
  /help, /h            Show this help
  /clear, /c           Clear conversation history
  /system <prompt>     Set the system prompt
  /show                Show the current system prompt
  /model <name>, /m    Switch model (context is re-optimized)
  /stats               Show context usage statistics
  /context             Show the rendered conversation context
  /count               Show message count
  /quit, /exit, /q     Exit

`
	if f.colored {
		return InfoStyle.Render(help)
	}
	return help
}
