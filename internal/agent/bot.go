// Package agent is the turn handler: it filters and routes inbound activities and
// produces exactly one reply for every routed message.
package agent

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/icebreaker-bot/server/internal/agent/commands"
	"github.com/icebreaker-bot/server/internal/agent/conversations"
	"github.com/icebreaker-bot/server/internal/agent/dedup"
	"github.com/icebreaker-bot/server/internal/agent/model"
	"github.com/icebreaker-bot/server/internal/agent/prompts"
	"github.com/icebreaker-bot/server/internal/channel"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

// Turn is the slice of the channel turn context the bot needs.
type Turn interface {
	Activity() *channel.Activity
	SendActivity(ctx context.Context, text string) error
}

// Completer produces one assistant reply for a prepared message list.
type Completer interface {
	Complete(ctx context.Context, messages []*schema.Message, params model.GenerationParams) (string, error)
}

// Bot owns all per-process state: conversation history and the seen-activity set.
type Bot struct {
	completer Completer
	messages  *conversations.MessagesManager
	guard     *dedup.Guard
	prompts   *prompts.Renderer
	config    model.BotConfig
	now       func() time.Time
}

func NewBot(completer Completer, messages *conversations.MessagesManager, guard *dedup.Guard, renderer *prompts.Renderer, config model.BotConfig) *Bot {
	if renderer == nil {
		renderer = prompts.NewRenderer()
	}
	return &Bot{
		completer: completer,
		messages:  messages,
		guard:     guard,
		prompts:   renderer,
		config:    config,
		now:       time.Now,
	}
}

// OnTurn adapts the bot to channel.Handler.
func (b *Bot) OnTurn(ctx context.Context, turn *channel.TurnContext) error {
	return b.HandleTurn(ctx, turn)
}

// HandleTurn dispatches by activity type. Types other than message and
// conversationUpdate are ignored.
func (b *Bot) HandleTurn(ctx context.Context, turn Turn) error {
	act := turn.Activity()
	switch act.Type {
	case channel.ActivityTypeMessage:
		return b.OnMessage(ctx, turn)
	case channel.ActivityTypeConversationUpdate:
		if len(act.MembersAdded) > 0 {
			return b.OnMembersAdded(ctx, turn, act.MembersAdded)
		}
	default:
		logx.Debug().Str("type", act.Type).Str("activity_id", act.ID).Msg("Ignoring activity")
	}
	return nil
}

// OnMessage drops the bot's own echoes and redeliveries, then routes the text to one handler.
func (b *Bot) OnMessage(ctx context.Context, turn Turn) error {
	act := turn.Activity()
	if act.IsFromSelf() {
		return nil
	}
	if !b.guard.ShouldProcess(act.ID) {
		logx.Debug().Str("activity_id", act.ID).Msg("Duplicate activity dropped")
		return nil
	}

	route := commands.Resolve(act.Text)
	logx.Debug().
		Str("conversation_id", act.Conversation.ID).
		Str("route", route.Kind.String()).
		Msg("Message routed")

	switch route.Kind {
	case commands.KindHelp:
		return turn.SendActivity(ctx, prompts.Help())
	case commands.KindDailyQuestion:
		return b.dailyQuestion(ctx, turn)
	case commands.KindGame:
		return b.game(ctx, turn, route.Text)
	case commands.KindConversation:
		return b.converse(ctx, turn, route.Text)
	default:
		return nil
	}
}

// OnMembersAdded welcomes every added member except the bot itself.
func (b *Bot) OnMembersAdded(ctx context.Context, turn Turn, members []channel.ChannelAccount) error {
	botID := turn.Activity().Recipient.ID
	for _, m := range members {
		if m.ID == botID {
			continue
		}
		if err := turn.SendActivity(ctx, prompts.Welcome()); err != nil {
			return err
		}
	}
	return nil
}
