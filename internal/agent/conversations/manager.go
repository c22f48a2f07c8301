package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/icebreaker-bot/server/internal/agent/model"
)

// MessagesManager owns conversation history access for the turn handler.
// Callers serialise a whole read-modify-write turn with Lock.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	locks            *keyedMutex
}

func NewMessagesManager(conversationRepo model.ConversationRepository) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		locks:            newKeyedMutex(),
	}
}

// Lock acquires the conversation-scoped lock. Turns on other conversations are not blocked.
func (cm *MessagesManager) Lock(conversationID string) (unlock func()) {
	return cm.locks.Lock(conversationID)
}

func (cm *MessagesManager) SaveUserMessage(ctx context.Context, conversationID string, content string) error {
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(content))
}

// BuildResponseContext prepends the system prompt to the retained history.
func (cm *MessagesManager) BuildResponseContext(ctx context.Context, conversationID string, systemPrompt string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	messages := make([]*schema.Message, 0, len(history.Messages)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, history.Messages...)

	return messages, nil
}

func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.AssistantMessage(content, nil))
}

func (cm *MessagesManager) History(ctx context.Context, conversationID string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return history.Messages, nil
}
