package channel

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/icebreaker-bot/server/internal/core/error"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []*Activity
	err  error
}

func (s *recordingSender) Send(_ context.Context, act *Activity) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, act)
	return "id", nil
}

type stubVerifier struct {
	err    error
	header string
}

func (v *stubVerifier) Authenticate(_ context.Context, header string) (jwt.MapClaims, error) {
	v.header = header
	return jwt.MapClaims{}, v.err
}

func message() *Activity {
	return &Activity{
		Type:         ActivityTypeMessage,
		ID:           "a1",
		From:         ChannelAccount{ID: "u1"},
		Recipient:    ChannelAccount{ID: "b1"},
		Conversation: ConversationAccount{ID: "c1"},
		Text:         "hi",
	}
}

func TestAdapter_ProcessActivity(t *testing.T) {
	sender := &recordingSender{}
	verifier := &stubVerifier{}
	a := NewAdapterWith(verifier, sender)

	resp, err := a.ProcessActivity(context.Background(), "Bearer x", message(), HandlerFunc(func(ctx context.Context, turn *TurnContext) error {
		assert.False(t, turn.Responded())
		require.NoError(t, turn.SendActivity(ctx, "pong"))
		assert.True(t, turn.Responded())
		return nil
	}))
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, "Bearer x", verifier.header)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "pong", sender.sent[0].Text)
	assert.Equal(t, "a1", sender.sent[0].ReplyToID)
}

func TestAdapter_AuthFailure(t *testing.T) {
	a := NewAdapterWith(&stubVerifier{err: errors.New("bad token")}, &recordingSender{})
	called := false

	_, err := a.ProcessActivity(context.Background(), "", message(), HandlerFunc(func(context.Context, *TurnContext) error {
		called = true
		return nil
	}))

	require.Error(t, err)
	assert.Equal(t, errx.KindChannelAuth, errx.KindOf(err))
	assert.Equal(t, http.StatusUnauthorized, errx.StatusOf(err))
	assert.False(t, called)
}

func TestAdapter_InvokeNotImplemented(t *testing.T) {
	a := NewAdapterWith(nil, &recordingSender{})
	act := message()
	act.Type = ActivityTypeInvoke

	resp, err := a.ProcessActivity(context.Background(), "", act, HandlerFunc(func(context.Context, *TurnContext) error {
		t.Fatal("handler must not run for invoke")
		return nil
	}))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotImplemented, resp.Status)
}

func TestAdapter_TurnErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := HandlerFunc(func(context.Context, *TurnContext) error { return boom })

	t.Run("returned without hook", func(t *testing.T) {
		a := NewAdapterWith(nil, &recordingSender{})
		_, err := a.ProcessActivity(context.Background(), "", message(), failing)
		require.ErrorIs(t, err, boom)
	})

	t.Run("routed to hook", func(t *testing.T) {
		a := NewAdapterWith(nil, &recordingSender{})
		var hooked error
		a.OnTurnError = func(_ context.Context, turn *TurnContext, err error) {
			assert.Equal(t, "a1", turn.Activity().ID)
			hooked = err
		}
		_, err := a.ProcessActivity(context.Background(), "", message(), failing)
		require.NoError(t, err)
		require.ErrorIs(t, hooked, boom)
	})

	t.Run("send failure surfaces", func(t *testing.T) {
		sendErr := errors.New("connector down")
		a := NewAdapterWith(nil, &recordingSender{err: sendErr})
		_, err := a.ProcessActivity(context.Background(), "", message(), HandlerFunc(func(ctx context.Context, turn *TurnContext) error {
			return turn.SendActivity(ctx, "x")
		}))
		require.ErrorIs(t, err, sendErr)
	})
}

func TestAdapter_NilActivity(t *testing.T) {
	a := NewAdapterWith(nil, &recordingSender{})
	_, err := a.ProcessActivity(context.Background(), "", nil, HandlerFunc(func(context.Context, *TurnContext) error { return nil }))
	assert.Equal(t, errx.KindMalformedRequest, errx.KindOf(err))
}

func TestLogTurnError(t *testing.T) {
	assert.NotPanics(t, func() {
		LogTurnError(context.Background(), NewTurnContext(message(), &recordingSender{}), errors.New("x"))
	})
}
