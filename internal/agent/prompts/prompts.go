package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

var (
	//go:embed template/daily_question_system.txt
	dailyQuestionSystem string
	//go:embed template/daily_question_user.txt
	dailyQuestionUser string
	//go:embed template/game_system.txt
	gameSystem string
	//go:embed template/game_user.txt
	gameUser string
	//go:embed template/conversation_system.txt
	conversationSystem string
	//go:embed template/help.md
	helpText string
	//go:embed template/welcome.md
	welcomeText string
)

// Renderer formats the completion requests of the command handlers.
// Handlers passed in observe each render through eino prompt callbacks.
type Renderer struct {
	daily    prompt.ChatTemplate
	game     prompt.ChatTemplate
	handlers []callbacks.Handler
}

func NewRenderer(handlers ...callbacks.Handler) *Renderer {
	return &Renderer{
		daily: prompt.FromMessages(
			schema.GoTemplate,
			schema.SystemMessage(dailyQuestionSystem),
			schema.UserMessage(dailyQuestionUser),
		),
		game: prompt.FromMessages(
			schema.GoTemplate,
			schema.SystemMessage(gameSystem),
			schema.UserMessage(gameUser),
		),
		handlers: handlers,
	}
}

// DailyQuestion renders the request asking for one icebreaker question for the given day.
func (r *Renderer) DailyQuestion(ctx context.Context, day time.Time) ([]*schema.Message, error) {
	return r.render(ctx, "DailyQuestion", r.daily, map[string]any{
		"Date": day.Format("2006-01-02"),
	})
}

// Game renders the request asking for one five-minute game for the given group size.
func (r *Renderer) Game(ctx context.Context, participants int) ([]*schema.Message, error) {
	return r.render(ctx, "Game", r.game, map[string]any{
		"Participants": participants,
	})
}

func (r *Renderer) render(ctx context.Context, name string, tpl prompt.ChatTemplate, vars map[string]any) ([]*schema.Message, error) {
	if len(r.handlers) > 0 {
		ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
			Name:      name,
			Type:      "GoTemplate",
			Component: components.ComponentOfPrompt,
		}, r.handlers...)
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", strings.ToLower(name), err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%s prompt render: empty result", strings.ToLower(name))
	}
	return msgs, nil
}

// ConversationSystem is the system instruction prepended to free conversation history.
func ConversationSystem() string {
	return conversationSystem
}

// Help is the static usage guide.
func Help() string {
	return strings.TrimSpace(helpText)
}

// Welcome greets members joining a conversation.
func Welcome() string {
	return strings.TrimSpace(welcomeText)
}

// DailyQuestionReply labels a generated question with the day it was asked for.
func DailyQuestionReply(question string, day time.Time) string {
	return fmt.Sprintf("🎯 **今日のアイスブレイク質問**\n\n%s\n\n📅 %s", question, day.Format("2006年01月02日"))
}

// GameReply labels a generated game with the resolved group size.
func GameReply(game string, participants int) string {
	return fmt.Sprintf("🎮 **%d人用ゲーム**\n\n%s", participants, game)
}
