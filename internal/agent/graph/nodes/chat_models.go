package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/icebreaker-bot/server/internal/agent/model"
	errx "github.com/icebreaker-bot/server/internal/core/error"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

// NewChatModel creates the configured provider's chat model and returns the model name used for cost lookups.
func NewChatModel(ctx context.Context, config model.CompletionConfig) (einomodel.BaseChatModel, string, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "", model.ProviderAzure:
		client, err := config.Azure.New()
		if err != nil {
			logx.Error().Err(err).Msg("Error creating Azure OpenAI client")
			return nil, "", err
		}
		return NewAzureChatModel(client, config.Azure.Deployment), config.Azure.Deployment, nil
	case model.ProviderGemini:
		cm, err := NewGeminiChatModel(ctx, config.Gemini)
		if err != nil {
			return nil, "", err
		}
		return cm, config.Gemini.Model, nil
	default:
		return nil, "", errx.Configuration("unknown COMPLETION_PROVIDER %q", config.Provider)
	}
}

// NewGeminiChatModel creates a Gemini chat model. Token and temperature limits are
// supplied per call, so none are fixed here.
func NewGeminiChatModel(ctx context.Context, config model.GeminiConfig) (*gemini.ChatModel, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errx.Configuration("GEMINI_API_KEY is not set")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, errx.Configuration("error creating Gemini client: %v", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  config.Model,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini chat model")
		return nil, fmt.Errorf("error creating Gemini chat model: %w", err)
	}

	return chatModel, nil
}
