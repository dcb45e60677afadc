// Command relaybot runs the Slack bot: it relays channel mentions to Claude
// and lets Claude call MCP tools after a human approves each call from
// within Slack.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/Cyclone1070/relaybot/internal/config"
	"github.com/Cyclone1070/relaybot/internal/mcp"
	"github.com/Cyclone1070/relaybot/internal/orchestrator"
	"github.com/Cyclone1070/relaybot/internal/provider/claude"
	"github.com/Cyclone1070/relaybot/internal/slackbot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "relaybot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
		zerolog.SetGlobalLevel(level)
	}

	botToken := os.Getenv("SLACK_BOT_TOKEN")
	appToken := os.Getenv("SLACK_APP_TOKEN")
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	switch {
	case botToken == "":
		return fmt.Errorf("SLACK_BOT_TOKEN is not set")
	case appToken == "":
		return fmt.Errorf("SLACK_APP_TOKEN is not set")
	case apiKey == "":
		return fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	cfg, err := config.Load(os.Getenv("RELAYBOT_CONFIG"))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if model := os.Getenv("CLAUDE_MODEL"); model != "" {
		cfg.Bot.Model = model
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tools, err := mcp.NewManager(ctx, cfg.Servers,
		time.Duration(cfg.Bot.ToolTimeoutSeconds)*time.Second,
		log.With().Str("component", "mcp").Logger())
	if err != nil {
		return fmt.Errorf("start tool servers: %w", err)
	}
	defer func() {
		if err := tools.Close(); err != nil {
			log.Warn().Err(err).Msg("closing tool servers")
		}
	}()
	log.Info().Int("tools", len(tools.Tools())).Int("servers", len(cfg.Servers)).
		Msg("tool servers ready")

	anthropicClient := anthropic.NewClient(option.WithAPIKey(apiKey))
	conv := claude.New(&anthropicClient.Messages, claude.Config{
		Model:     cfg.Bot.Model,
		MaxTokens: cfg.Bot.MaxTokens,
		System:    cfg.Bot.SystemPrompt,
		Timeout:   time.Duration(cfg.Bot.LLMTimeoutSeconds) * time.Second,
	})

	api := slack.New(botToken,
		slack.OptionAppLevelToken(appToken),
	)
	auth, err := api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	log.Info().Str("bot_user", auth.UserID).Str("team", auth.Team).Msg("authenticated with slack")

	messenger := slackbot.NewMessenger(api)
	history := slackbot.NewHistoryLoader(api, auth.UserID, cfg.Bot.HistoryLimit,
		log.With().Str("component", "history").Logger())
	flow := orchestrator.New(conv, tools, messenger, history,
		log.With().Str("component", "orchestrator").Logger())

	socketClient := socketmode.New(api)
	bot := slackbot.New(socketClient, flow, tools, auth.UserID,
		log.With().Str("component", "slackbot").Logger())

	log.Info().Str("model", cfg.Bot.Model).Msg("relaybot starting")
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("socket mode loop: %w", err)
	}
	log.Info().Msg("relaybot stopped")
	return nil
}
