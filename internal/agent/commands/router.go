// Package commands maps normalised chat text onto the bot's literal commands.
package commands

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Kind identifies the handler a message is routed to.
type Kind int

const (
	// KindNone means there is nothing to answer (blank text).
	KindNone Kind = iota
	KindHelp
	KindDailyQuestion
	KindGame
	KindConversation
)

func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindDailyQuestion:
		return "daily_question"
	case KindGame:
		return "game"
	case KindConversation:
		return "conversation"
	default:
		return "none"
	}
}

// GamePrefix starts a game-suggestion command.
const GamePrefix = "ゲーム"

const participantSuffix = "人"

var (
	helpCommands          = map[string]struct{}{"help": {}, "ヘルプ": {}, "使い方": {}}
	dailyQuestionCommands = map[string]struct{}{"今日の質問": {}, "アイスブレイク": {}}
)

// Route is the result of resolving a message.
type Route struct {
	Kind Kind
	// Text is the trimmed message as typed, without case folding.
	Text string
}

// Resolve routes text by priority: help, daily question, game prefix, then free conversation.
func Resolve(text string) Route {
	trimmed := strings.TrimSpace(text)
	normalized := strings.ToLower(trimmed)
	if normalized == "" {
		return Route{Kind: KindNone}
	}

	if _, ok := helpCommands[normalized]; ok {
		return Route{Kind: KindHelp, Text: trimmed}
	}
	if _, ok := dailyQuestionCommands[normalized]; ok {
		return Route{Kind: KindDailyQuestion, Text: trimmed}
	}
	if strings.HasPrefix(normalized, GamePrefix) {
		return Route{Kind: KindGame, Text: trimmed}
	}
	return Route{Kind: KindConversation, Text: trimmed}
}

// Participants extracts the participant count from a game command such as
// "ゲーム 8人" or "ゲーム8人". The first argument token that is purely numeric
// once a trailing "人" is removed and names a positive count wins; otherwise def is returned.
func Participants(text string, def int) int {
	args := strings.TrimPrefix(strings.TrimSpace(text), GamePrefix)
	// full-width digits and spaces are common in Japanese input
	args = width.Narrow.String(args)

	for _, token := range strings.Fields(args) {
		token = strings.TrimSuffix(token, participantSuffix)
		if !isDigits(token) {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil || n <= 0 {
			continue
		}
		return n
	}
	return def
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
