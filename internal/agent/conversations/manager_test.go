package conversations

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreaker-bot/server/internal/agent/repo"
)

func TestBuildResponseContext_PrependsSystemPrompt(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemoryConversationRepository(20, 0))

	require.NoError(t, mm.SaveUserMessage(ctx, "conv", "hi"))
	require.NoError(t, mm.SaveResponse(ctx, "conv", "hello!"))
	require.NoError(t, mm.SaveUserMessage(ctx, "conv", "how are you"))

	msgs, err := mm.BuildResponseContext(ctx, "conv", "be friendly")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "be friendly", msgs[0].Content)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, "how are you", msgs[3].Content)

	history, err := mm.History(ctx, "conv")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestLock_SerialisesSameConversation(t *testing.T) {
	mm := NewMessagesManager(repo.NewMemoryConversationRepository(20, 0))

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := mm.Lock("conv")
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, mm.locks.size())
}

func TestLock_OtherConversationsProceed(t *testing.T) {
	mm := NewMessagesManager(repo.NewMemoryConversationRepository(20, 0))

	unlockA := mm.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := mm.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on conversation b blocked behind conversation a")
	}
}

func TestLock_UnlockIsIdempotent(t *testing.T) {
	mm := NewMessagesManager(repo.NewMemoryConversationRepository(20, 0))
	unlock := mm.Lock("conv")
	unlock()
	unlock()
	assert.Zero(t, mm.locks.size())
}

func TestConcurrentTurns_KeepPairsInOrder(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemoryConversationRepository(200, 0))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := mm.Lock("conv")
			defer unlock()
			_ = mm.SaveUserMessage(ctx, "conv", fmt.Sprintf("q%d", i))
			_ = mm.SaveResponse(ctx, "conv", fmt.Sprintf("a%d", i))
		}(i)
	}
	wg.Wait()

	history, err := mm.History(ctx, "conv")
	require.NoError(t, err)
	require.Len(t, history, 40)
	for i := 0; i < len(history); i += 2 {
		require.Equal(t, schema.User, history[i].Role)
		require.Equal(t, schema.Assistant, history[i+1].Role)
		assert.Equal(t, history[i].Content[1:], history[i+1].Content[1:])
	}
}
