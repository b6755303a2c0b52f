package repl

import (
	"context"
	"fmt"
	"time"

	"github.com/notexe/adaptive-chat/internal/api"
	"github.com/notexe/adaptive-chat/internal/chat"
	"github.com/notexe/adaptive-chat/internal/config"
	"github.com/notexe/adaptive-chat/internal/ui"
)

type REPL struct {
	session   *chat.Session
	provider  api.Provider
	config    *config.Config
	rl        readlineCloser
	formatter *ui.Formatter
	status    *ui.StatusDisplay
}

func NewREPL(session *chat.Session, provider api.Provider, cfg *config.Config) (*REPL, error) {
	rl, err := setupReadline()
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	formatter := ui.NewFormatter(cfg.UI.ColoredOutput, provider.Name())
	status := ui.NewStatusDisplay(formatter, true)

	return &REPL{
		session:   session,
		provider:  provider,
		config:    cfg,
		rl:        rl,
		formatter: formatter,
		status:    status,
	}, nil
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if isCommand {
			if err := r.handleCommand(command, args); err != nil {
				r.displayError(err)
			}

			if command == "/quit" || command == "/exit" || command == "/q" {
				return nil
			}

			continue
		}

		if err := r.handleMessage(ctx, input); err != nil {
			r.displayError(err)
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

func (r *REPL) handleMessage(ctx context.Context, message string) error {
	r.session.AddUserMessage(message)
	r.status.Show("Waiting for response...")

	req := r.session.BuildAPIRequest()

	start := time.Now()
	response, err := r.provider.SendMessage(ctx, req)
	duration := time.Since(start)
	if err != nil {
		r.status.Hide()
		return fmt.Errorf("API request failed: %w", err)
	}

	r.session.AddAssistantMessage(response.Content, r.provider.Name())
	r.displayResponse(response, duration)

	return nil
}

func (r *REPL) handleCommand(command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/clear", "/c":
		r.session.Clear()
		r.displaySystem("Conversation history cleared.")
		return nil

	case "/system", "/s":
		if args == "" {
			return fmt.Errorf("usage: /system <prompt>")
		}
		if err := r.session.SetSystemPrompt(args); err != nil {
			return err
		}
		r.displaySystem("System prompt updated.")
		return nil

	case "/show":
		prompt := r.session.GetSystemPrompt()
		if prompt == "" {
			r.displayInfo("No system prompt set.")
		} else {
			r.displayInfo(fmt.Sprintf("Current system prompt:\n%s", prompt))
		}
		return nil

	case "/model", "/m":
		if args == "" {
			return fmt.Errorf("usage: /model <name>")
		}
		return r.handleModelSwitch(args)

	case "/stats":
		r.displayStats(r.session.Stats())
		return nil

	case "/context":
		rendered := r.session.Render()
		if rendered == "" {
			r.displayInfo("Context is empty.")
		} else {
			r.displayInfo(rendered)
		}
		return nil

	case "/count":
		count := r.session.MessageCount()
		r.displayInfo(fmt.Sprintf("Current conversation has %d messages.", count))
		return nil

	case "/quit", "/exit", "/q":
		fmt.Println("\nGoodbye!")
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

// handleModelSwitch moves the session to a new model and reports how the
// retained context changed under the new budget.
func (r *REPL) handleModelSwitch(modelName string) error {
	before := r.session.MessageCount()
	r.session.SwitchModel(modelName)
	r.config.Model.Name = modelName

	stats := r.session.Stats()
	msg := fmt.Sprintf("Switched to %s (%d/%d tokens, %.1f%% of budget)",
		modelName, stats.TotalTokens, stats.AvailableTokens, stats.Utilization)
	if dropped := before - stats.TotalTurns; dropped > 0 {
		msg += fmt.Sprintf("; %d older turns pruned to fit", dropped)
	}
	r.displaySystem(msg)
	return nil
}

func (r *REPL) SaveHistory() error {
	if !r.config.Session.SaveHistory {
		return nil
	}

	if r.session.IsEmpty() {
		return nil
	}

	return r.session.Save(r.config.Session.HistoryFile)
}
