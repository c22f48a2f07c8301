package prompts

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyQuestion(t *testing.T) {
	day := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	msgs, err := NewRenderer().DailyQuestion(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, dailyQuestionSystem, msgs[0].Content)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "今日(2026-10-18)")
	assert.NotContains(t, msgs[1].Content, "{{")
}

func TestGame(t *testing.T) {
	msgs, err := NewRenderer().Game(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, gameSystem, msgs[0].Content)
	assert.Contains(t, msgs[1].Content, "参加者8人")
	assert.Contains(t, msgs[1].Content, "5分")
}

func TestStaticTexts(t *testing.T) {
	assert.Contains(t, Help(), "使い方ガイド")
	assert.Contains(t, Help(), "ゲーム 5人")
	assert.Contains(t, Welcome(), "ヘルプ")
	assert.Contains(t, ConversationSystem(), "フレンドリー")
}

func TestReplies(t *testing.T) {
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	reply := DailyQuestionReply("好きな朝ごはんは？", day)
	assert.Equal(t, "🎯 **今日のアイスブレイク質問**\n\n好きな朝ごはんは？\n\n📅 2026年04月01日", reply)

	assert.Equal(t, "🎮 **8人用ゲーム**\n\nしりとり", GameReply("しりとり", 8))
}
