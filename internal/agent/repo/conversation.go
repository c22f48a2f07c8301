package repo

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/icebreaker-bot/server/internal/agent/model"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

// DefaultMaxTurns bounds each conversation's retained history.
const DefaultMaxTurns = 20

type memoryConversation struct {
	messages  []*schema.Message
	touchedAt time.Time
}

// MemoryConversationRepository keeps a sliding window of turns per conversation
// for the lifetime of the process.
type MemoryConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*memoryConversation
	maxTurns      int
	ttl           time.Duration
	now           func() time.Time
}

// NewMemoryConversationRepository creates a repository retaining at most maxTurns
// messages per conversation. A positive ttl expires conversations idle for longer.
func NewMemoryConversationRepository(maxTurns int, ttl time.Duration) *MemoryConversationRepository {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &MemoryConversationRepository{
		conversations: make(map[string]*memoryConversation),
		maxTurns:      maxTurns,
		ttl:           ttl,
		now:           time.Now,
	}
}

func (r *MemoryConversationRepository) expired(c *memoryConversation, now time.Time) bool {
	return r.ttl > 0 && now.Sub(c.touchedAt) > r.ttl
}

func (r *MemoryConversationRepository) AddMessage(ctx context.Context, conversationID string, message *schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	c, ok := r.conversations[conversationID]
	if !ok || r.expired(c, now) {
		c = &memoryConversation{}
		r.conversations[conversationID] = c
	}

	c.messages = append(c.messages, message)
	// drop oldest first; copy so the backing array does not grow unbounded
	if len(c.messages) > r.maxTurns {
		trimmed := make([]*schema.Message, r.maxTurns)
		copy(trimmed, c.messages[len(c.messages)-r.maxTurns:])
		c.messages = trimmed
	}
	c.touchedAt = now
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conversations[conversationID]
	if !ok || r.expired(c, r.now()) {
		return &model.ConversationHistory{ConversationID: conversationID, Messages: []*schema.Message{}}, nil
	}

	msgs := make([]*schema.Message, len(c.messages))
	copy(msgs, c.messages)
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *MemoryConversationRepository) GetMessageCount(ctx context.Context, conversationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conversations[conversationID]
	if !ok || r.expired(c, r.now()) {
		return 0, nil
	}
	return len(c.messages), nil
}

// PruneExpired removes conversations idle for longer than the TTL and returns how many were dropped.
func (r *MemoryConversationRepository) PruneExpired() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	pruned := 0
	for id, c := range r.conversations {
		if r.expired(c, now) {
			delete(r.conversations, id)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of conversations currently held.
func (r *MemoryConversationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}

// RunSweeper prunes expired conversations every interval until ctx is done.
// It returns immediately when no TTL is configured.
func (r *MemoryConversationRepository) RunSweeper(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.PruneExpired(); n > 0 {
				logx.Debug().Int("pruned", n).Int("remaining", r.Len()).Msg("pruned idle conversations")
			}
		}
	}
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
