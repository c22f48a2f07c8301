package agent

import (
	"errors"
	"fmt"

	"github.com/icebreaker-bot/server/internal/agent/commands"
	errx "github.com/icebreaker-bot/server/internal/core/error"
)

const (
	errorReplyFormat        = "エラーが発生しました: %s"
	apologyErrorReplyFormat = "申し訳ございません。エラーが発生しました: %s"
)

// ErrorReply maps a handler failure to the chat text sent in place of the answer.
// ok is false for failures that must not be shown to the user.
func ErrorReply(kind commands.Kind, err error) (text string, ok bool) {
	var appErr *errx.AppError
	if !errors.As(err, &appErr) {
		return "", false
	}

	var description string
	switch appErr.Kind {
	case errx.KindConfiguration:
		description = appErr.Error()
	case errx.KindCompletion:
		description = appErr.Message
	default:
		return "", false
	}

	if kind == commands.KindConversation {
		return fmt.Sprintf(apologyErrorReplyFormat, description), true
	}
	return fmt.Sprintf(errorReplyFormat, description), true
}
