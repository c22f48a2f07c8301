package model

import (
	"time"

	"github.com/icebreaker-bot/server/pkg/azureopenai"
)

// ================ Config ================
type ConversationConfig struct {
	MaxTurns      int           `envconfig:"CONVERSATION_MAX_TURNS" default:"20"`
	TTL           time.Duration `envconfig:"CONVERSATION_TTL" default:"0s"`
	SweepInterval time.Duration `envconfig:"CONVERSATION_SWEEP_INTERVAL" default:"10m"`
}

type DedupConfig struct {
	Capacity int `envconfig:"DEDUP_CAPACITY" default:"1000"`
}

// GenerationParams are the per-call limits handed to the completion API.
type GenerationParams struct {
	MaxTokens   int
	Temperature float32
}

type DailyQuestionModelConfig struct {
	MaxTokens   int     `envconfig:"DAILY_QUESTION_MAX_TOKENS" default:"200"`
	Temperature float32 `envconfig:"DAILY_QUESTION_TEMPERATURE" default:"0.9"`
}

func (c DailyQuestionModelConfig) Params() GenerationParams {
	return GenerationParams{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

type GameModelConfig struct {
	MaxTokens           int     `envconfig:"GAME_MAX_TOKENS" default:"500"`
	Temperature         float32 `envconfig:"GAME_TEMPERATURE" default:"0.8"`
	DefaultParticipants int     `envconfig:"GAME_DEFAULT_PARTICIPANTS" default:"5"`
}

func (c GameModelConfig) Params() GenerationParams {
	return GenerationParams{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

type ConversationModelConfig struct {
	MaxTokens   int     `envconfig:"CONVERSATION_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"CONVERSATION_TEMPERATURE" default:"0.7"`
}

func (c ConversationModelConfig) Params() GenerationParams {
	return GenerationParams{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

// BotConfig groups the handler settings of the turn handler.
type BotConfig struct {
	DailyQuestion DailyQuestionModelConfig
	Game          GameModelConfig
	Conversation  ConversationModelConfig
}

// DefaultBotConfig mirrors the envconfig defaults for callers that do not load the environment.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		DailyQuestion: DailyQuestionModelConfig{MaxTokens: 200, Temperature: 0.9},
		Game:          GameModelConfig{MaxTokens: 500, Temperature: 0.8, DefaultParticipants: 5},
		Conversation:  ConversationModelConfig{MaxTokens: 1000, Temperature: 0.7},
	}
}

const (
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// CompletionConfig selects and configures the completion provider.
// Credentials are checked when the first completion is requested, not at startup.
type CompletionConfig struct {
	Provider string        `envconfig:"COMPLETION_PROVIDER" default:"azure"`
	Timeout  time.Duration `envconfig:"COMPLETION_TIMEOUT" default:"30s"`
	Azure    azureopenai.Config
	Gemini   GeminiConfig
}

type GeminiConfig struct {
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`
	Model   string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
}
