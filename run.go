package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/icebreaker-bot/server/internal/agent"
	"github.com/icebreaker-bot/server/internal/agent/conversations"
	"github.com/icebreaker-bot/server/internal/agent/dedup"
	"github.com/icebreaker-bot/server/internal/agent/graph"
	"github.com/icebreaker-bot/server/internal/agent/graph/observers"
	"github.com/icebreaker-bot/server/internal/agent/prompts"
	"github.com/icebreaker-bot/server/internal/agent/repo"
	"github.com/icebreaker-bot/server/internal/channel"
	"github.com/icebreaker-bot/server/internal/server"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

// run wires the bot and serves until SIGINT or SIGTERM.
func run(ctx context.Context, cfg AppConfig, mode server.Mode) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conversationRepo := repo.NewMemoryConversationRepository(cfg.Conversation.MaxTurns, cfg.Conversation.TTL)
	go conversationRepo.RunSweeper(ctx, cfg.Conversation.SweepInterval)

	// Completion credentials are checked on the first completion, not here.
	completer := graph.NewCompleter(cfg.Completion, observers.NewModelCallbacks())

	bot := agent.NewBot(
		completer,
		conversations.NewMessagesManager(conversationRepo),
		dedup.NewGuard(cfg.Dedup.Capacity),
		prompts.NewRenderer(observers.NewPromptCallbacks()),
		cfg.Bot,
	)

	adapter, err := channel.NewAdapter(ctx, cfg.Channel, nil)
	if err != nil {
		return err
	}
	if mode == server.ModeAsync {
		adapter.OnTurnError = channel.LogTurnError
	}

	srv, err := server.New(cfg.Server, mode, adapter, bot)
	if err != nil {
		return err
	}

	logx.Info().
		Str("mode", string(mode)).
		Str("provider", cfg.Completion.Provider).
		Bool("channel_auth", !cfg.Channel.DevelopmentMode()).
		Int("max_turns", cfg.Conversation.MaxTurns).
		Msg("Icebreaker bot starting")

	return srv.Run(ctx)
}
