package agent

import (
	"context"

	"github.com/icebreaker-bot/server/internal/agent/commands"
	"github.com/icebreaker-bot/server/internal/agent/prompts"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

func (b *Bot) dailyQuestion(ctx context.Context, turn Turn) error {
	today := b.now()

	messages, err := b.prompts.DailyQuestion(ctx, today)
	if err != nil {
		return err
	}
	question, err := b.completer.Complete(ctx, messages, b.config.DailyQuestion.Params())
	if err != nil {
		return b.replyError(ctx, turn, commands.KindDailyQuestion, err)
	}
	return turn.SendActivity(ctx, prompts.DailyQuestionReply(question, today))
}

func (b *Bot) game(ctx context.Context, turn Turn, text string) error {
	participants := commands.Participants(text, b.config.Game.DefaultParticipants)

	messages, err := b.prompts.Game(ctx, participants)
	if err != nil {
		return err
	}
	game, err := b.completer.Complete(ctx, messages, b.config.Game.Params())
	if err != nil {
		return b.replyError(ctx, turn, commands.KindGame, err)
	}
	return turn.SendActivity(ctx, prompts.GameReply(game, participants))
}

// converse holds the conversation lock from the user append to the assistant append,
// so the history of one conversation is never interleaved.
func (b *Bot) converse(ctx context.Context, turn Turn, text string) error {
	conversationID := turn.Activity().Conversation.ID

	unlock := b.messages.Lock(conversationID)
	defer unlock()

	if err := b.messages.SaveUserMessage(ctx, conversationID, text); err != nil {
		return err
	}
	messages, err := b.messages.BuildResponseContext(ctx, conversationID, prompts.ConversationSystem())
	if err != nil {
		return err
	}

	reply, err := b.completer.Complete(ctx, messages, b.config.Conversation.Params())
	if err != nil {
		return b.replyError(ctx, turn, commands.KindConversation, err)
	}
	if err := b.messages.SaveResponse(ctx, conversationID, reply); err != nil {
		return err
	}
	return turn.SendActivity(ctx, reply)
}

// replyError turns a reply-mappable failure into the single reply of the turn.
// Anything else goes back to the adapter's error policy.
func (b *Bot) replyError(ctx context.Context, turn Turn, kind commands.Kind, err error) error {
	text, ok := ErrorReply(kind, err)
	if !ok {
		return err
	}
	logx.Warn().
		Err(err).
		Str("activity_id", turn.Activity().ID).
		Str("route", kind.String()).
		Msg("Replying with error message")
	return turn.SendActivity(ctx, text)
}
