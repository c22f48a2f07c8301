package nodes

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreaker-bot/server/internal/agent/model"
	errx "github.com/icebreaker-bot/server/internal/core/error"
)

type fakeCompletions struct {
	got  openai.ChatCompletionNewParams
	resp *openai.ChatCompletion
	err  error
}

func (f *fakeCompletions) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.got = body
	return f.resp, f.err
}

func completion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: content},
		}},
		Usage: openai.CompletionUsage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
	}
}

func TestAzureChatModel_Generate(t *testing.T) {
	fake := &fakeCompletions{resp: completion("  hi there  ")}
	m := &AzureChatModel{completions: fake, deployment: "gpt-4o-icebreaker"}

	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("hello"),
		schema.AssistantMessage("earlier", nil),
	}, einomodel.WithMaxTokens(200), einomodel.WithTemperature(0.9))
	require.NoError(t, err)

	assert.Equal(t, schema.Assistant, out.Role)
	assert.Equal(t, "  hi there  ", out.Content)
	require.NotNil(t, out.ResponseMeta)
	assert.Equal(t, 15, out.ResponseMeta.Usage.TotalTokens)

	assert.Equal(t, openai.ChatModel("gpt-4o-icebreaker"), fake.got.Model)
	require.Len(t, fake.got.Messages, 3)
	assert.NotNil(t, fake.got.Messages[0].OfSystem)
	assert.NotNil(t, fake.got.Messages[1].OfUser)
	assert.NotNil(t, fake.got.Messages[2].OfAssistant)
	assert.Equal(t, int64(200), fake.got.MaxTokens.Value)
	assert.InDelta(t, 0.9, fake.got.Temperature.Value, 1e-6)
}

func TestAzureChatModel_Errors(t *testing.T) {
	boom := errors.New("boom")
	m := &AzureChatModel{completions: &fakeCompletions{err: boom}, deployment: "d"}
	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
	assert.ErrorIs(t, err, boom)

	m = &AzureChatModel{completions: &fakeCompletions{resp: &openai.ChatCompletion{}}, deployment: "d"}
	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
	assert.ErrorIs(t, err, errEmptyChoices)
}

func TestAzureChatModel_Stream(t *testing.T) {
	m := &AzureChatModel{completions: &fakeCompletions{resp: completion("streamed")}, deployment: "d"}
	sr, err := m.Stream(context.Background(), []*schema.Message{schema.UserMessage("x")})
	require.NoError(t, err)
	defer sr.Close()

	msg, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "streamed", msg.Content)
}

func TestNewChatModel_ConfigurationErrors(t *testing.T) {
	ctx := context.Background()

	_, _, err := NewChatModel(ctx, model.CompletionConfig{Provider: "azure"})
	assert.Equal(t, errx.KindConfiguration, errx.KindOf(err))

	_, _, err = NewChatModel(ctx, model.CompletionConfig{Provider: "gemini"})
	assert.Equal(t, errx.KindConfiguration, errx.KindOf(err))

	_, _, err = NewChatModel(ctx, model.CompletionConfig{Provider: "llama"})
	assert.Equal(t, errx.KindConfiguration, errx.KindOf(err))
}

func TestNewChatModel_Azure(t *testing.T) {
	cfg := model.CompletionConfig{Provider: "Azure"}
	cfg.Azure.APIKey = "k"
	cfg.Azure.Endpoint = "https://example.openai.azure.com"
	cfg.Azure.Deployment = "gpt-4o"

	cm, name, err := NewChatModel(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", name)
	assert.IsType(t, &AzureChatModel{}, cm)
}
