package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/notexe/adaptive-chat/internal/api"
	"github.com/notexe/adaptive-chat/internal/chat"
	"github.com/notexe/adaptive-chat/internal/config"
	"github.com/notexe/adaptive-chat/internal/repl"
	"github.com/notexe/adaptive-chat/internal/tokencount"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	provider := flag.String("provider", "", "Provider to use (groq, huggingface, deepseek)")
	modelName := flag.String("model", "", "Model name (overrides config)")
	systemPrompt := flag.String("system-prompt", "", "System prompt (overrides config)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.WarnLevel)
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Apply CLI flag overrides
	if *provider != "" {
		cfg.Provider = *provider
	}
	if *modelName != "" {
		cfg.Model.Name = *modelName
	}
	if *systemPrompt != "" {
		cfg.Model.SystemPrompt = *systemPrompt
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	providerInstance, err := api.NewProvider(cfg.GetProviderConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create provider")
	}
	defer providerInstance.Close()

	session := chat.NewSessionWithContext(&cfg.Model, &cfg.Context)
	logger.Debug().
		Str("provider", providerInstance.Name()).
		Str("model", cfg.Model.Name).
		Int("available_tokens", session.Stats().AvailableTokens).
		Msg("session ready")

	// Counting degradation is worth a warning, not an error: the context
	// budget still works, just with coarser numbers.
	if stats := session.Stats(); stats.CountingMethod == tokencount.MethodApproximate {
		logger.Warn().
			Str("model", cfg.Model.Name).
			Msg("no tokenizer available for model, using approximate token counting")
	}

	// Load history from file if enabled
	if cfg.Session.SaveHistory {
		if err := session.Load(cfg.Session.HistoryFile); err != nil {
			// Not an error if file doesn't exist yet
			if !errors.Is(err, os.ErrNotExist) && !os.IsNotExist(err) {
				logger.Warn().Err(err).Msg("failed to load history")
			}
		} else {
			fmt.Printf("Loaded %d messages from history\n", session.MessageCount())
		}
	}

	replInstance, err := repl.NewREPL(session, providerInstance, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create REPL")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Saving session...")
		cancel()

		if err := replInstance.SaveHistory(); err != nil {
			logger.Warn().Err(err).Msg("failed to save history")
		}

		os.Exit(0)
	}()

	if err := replInstance.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("REPL error")
	}

	if err := replInstance.SaveHistory(); err != nil {
		logger.Warn().Err(err).Msg("failed to save history")
	}
}
