package azureopenai

import (
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"

	errx "github.com/icebreaker-bot/server/internal/core/error"
)

const DefaultAPIVersion = "2024-06-01"

type Config struct {
	APIKey     string `envconfig:"AZURE_OPENAI_API_KEY"`
	APIVersion string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-06-01"`
	Endpoint   string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	Deployment string `envconfig:"AZURE_OPENAI_DEPLOYMENT_NAME"`
	// RequestTimeout caps a single HTTP attempt; zero leaves it to the caller's context.
	RequestTimeout time.Duration `envconfig:"AZURE_OPENAI_REQUEST_TIMEOUT" default:"0s"`
}

// Validate reports the first missing credential as a configuration error.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.APIKey) == "":
		return errx.Configuration("AZURE_OPENAI_API_KEY is not set")
	case strings.TrimSpace(c.Endpoint) == "":
		return errx.Configuration("AZURE_OPENAI_ENDPOINT is not set")
	case strings.TrimSpace(c.Deployment) == "":
		return errx.Configuration("AZURE_OPENAI_DEPLOYMENT_NAME is not set")
	}
	return nil
}

// New builds an Azure OpenAI client. SDK retries are disabled; failures surface to the caller.
func (c *Config) New(opts ...option.RequestOption) (openai.Client, error) {
	if err := c.Validate(); err != nil {
		return openai.Client{}, err
	}

	version := c.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}

	base := []option.RequestOption{
		azure.WithEndpoint(strings.TrimRight(c.Endpoint, "/"), version),
		azure.WithAPIKey(c.APIKey),
		option.WithMaxRetries(0),
	}
	if c.RequestTimeout > 0 {
		base = append(base, option.WithRequestTimeout(c.RequestTimeout))
	}

	return openai.NewClient(append(base, opts...)...), nil
}
