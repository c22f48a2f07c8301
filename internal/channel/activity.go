// Package channel speaks the Bot Framework "Activity" protocol: it authenticates inbound
// webhook calls, decodes activities and posts replies back to the channel's connector.
package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	ActivityTypeMessage            = "message"
	ActivityTypeConversationUpdate = "conversationUpdate"
	ActivityTypeInvoke             = "invoke"

	TextFormatMarkdown = "markdown"
)

type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

type ConversationAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	IsGroup  bool   `json:"isGroup,omitempty"`
	TenantID string `json:"tenantId,omitempty"`
}

// Activity is the channel's wire envelope. Only the fields the bot reads or writes are modelled;
// channel-specific payloads are kept raw.
type Activity struct {
	Type           string              `json:"type"`
	ID             string              `json:"id,omitempty"`
	Timestamp      string              `json:"timestamp,omitempty"`
	ServiceURL     string              `json:"serviceUrl,omitempty"`
	ChannelID      string              `json:"channelId,omitempty"`
	From           ChannelAccount      `json:"from"`
	Recipient      ChannelAccount      `json:"recipient"`
	Conversation   ConversationAccount `json:"conversation"`
	Text           string              `json:"text,omitempty"`
	TextFormat     string              `json:"textFormat,omitempty"`
	Locale         string              `json:"locale,omitempty"`
	ReplyToID      string              `json:"replyToId,omitempty"`
	MembersAdded   []ChannelAccount    `json:"membersAdded,omitempty"`
	MembersRemoved []ChannelAccount    `json:"membersRemoved,omitempty"`
	Name           string              `json:"name,omitempty"`
	ChannelData    json.RawMessage     `json:"channelData,omitempty"`
	Value          json.RawMessage     `json:"value,omitempty"`
}

var errMissingType = errors.New("activity type is required")

// DecodeActivity reads one activity from r. Unknown fields are ignored.
func DecodeActivity(r io.Reader) (*Activity, error) {
	var act Activity
	if err := json.NewDecoder(r).Decode(&act); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	if strings.TrimSpace(act.Type) == "" {
		return nil, errMissingType
	}
	return &act, nil
}

// IsFromSelf reports whether the activity is the bot observing its own message.
// Sender and recipient both missing counts as an echo.
func (a *Activity) IsFromSelf() bool {
	return a.From.ID == a.Recipient.ID
}

// NewReply builds a markdown message addressed back to the sender of a.
func NewReply(a *Activity, text string) *Activity {
	return &Activity{
		Type:         ActivityTypeMessage,
		ServiceURL:   a.ServiceURL,
		ChannelID:    a.ChannelID,
		From:         a.Recipient,
		Recipient:    a.From,
		Conversation: a.Conversation,
		Text:         text,
		TextFormat:   TextFormatMarkdown,
		Locale:       a.Locale,
		ReplyToID:    a.ID,
	}
}
