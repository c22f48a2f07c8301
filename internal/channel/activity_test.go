package channel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActivity(t *testing.T) {
	act, err := DecodeActivity(strings.NewReader(`{
		"type": "message",
		"id": "a1",
		"serviceUrl": "https://smba.example/",
		"from": {"id": "u1", "name": "Aki"},
		"recipient": {"id": "b1"},
		"conversation": {"id": "c1", "isGroup": true},
		"text": " help ",
		"entities": [{"type": "mention"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, ActivityTypeMessage, act.Type)
	assert.Equal(t, "u1", act.From.ID)
	assert.Equal(t, "c1", act.Conversation.ID)
	assert.True(t, act.Conversation.IsGroup)
	assert.Equal(t, " help ", act.Text)
	assert.False(t, act.IsFromSelf())
}

func TestDecodeActivity_Invalid(t *testing.T) {
	_, err := DecodeActivity(strings.NewReader(`{"type":`))
	require.Error(t, err)

	_, err = DecodeActivity(strings.NewReader(`{"text":"hi"}`))
	require.ErrorIs(t, err, errMissingType)

	_, err = DecodeActivity(strings.NewReader(`{"type":"  "}`))
	require.ErrorIs(t, err, errMissingType)
}

func TestActivity_IsFromSelf(t *testing.T) {
	assert.True(t, (&Activity{From: ChannelAccount{ID: "b"}, Recipient: ChannelAccount{ID: "b"}}).IsFromSelf())
	assert.True(t, (&Activity{}).IsFromSelf(), "missing sender and recipient")
	assert.False(t, (&Activity{From: ChannelAccount{ID: "u"}}).IsFromSelf())
	assert.False(t, (&Activity{Recipient: ChannelAccount{ID: "b"}}).IsFromSelf())
}

func TestNewReply(t *testing.T) {
	in := &Activity{
		Type:         ActivityTypeMessage,
		ID:           "a1",
		ServiceURL:   "https://smba.example",
		ChannelID:    "msteams",
		From:         ChannelAccount{ID: "u1"},
		Recipient:    ChannelAccount{ID: "b1"},
		Conversation: ConversationAccount{ID: "c1"},
		Locale:       "ja-JP",
	}

	out := NewReply(in, "**hi**")

	assert.Equal(t, ActivityTypeMessage, out.Type)
	assert.Equal(t, "b1", out.From.ID)
	assert.Equal(t, "u1", out.Recipient.ID)
	assert.Equal(t, "c1", out.Conversation.ID)
	assert.Equal(t, "a1", out.ReplyToID)
	assert.Equal(t, "**hi**", out.Text)
	assert.Equal(t, TextFormatMarkdown, out.TextFormat)
	assert.Equal(t, "ja-JP", out.Locale)
	assert.Empty(t, out.ID)
}
