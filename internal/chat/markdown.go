package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// FormatForTerminal renders a model reply's markdown for terminal display.
// On any renderer failure the raw content is returned unchanged.
func FormatForTerminal(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimSpace(rendered)
}
