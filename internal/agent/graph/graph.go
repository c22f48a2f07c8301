package graph

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/icebreaker-bot/server/internal/agent/graph/nodes"
	"github.com/icebreaker-bot/server/internal/agent/model"
	errx "github.com/icebreaker-bot/server/internal/core/error"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 30 * time.Second

var errEmptyCompletion = errors.New("completion returned no text")

// ModelFactory builds the chat model on first use and names it for cost accounting.
type ModelFactory func(ctx context.Context) (einomodel.BaseChatModel, string, error)

type compiled struct {
	runnable  compose.Runnable[[]*schema.Message, *schema.Message]
	modelName string
}

// Completer is the bot's single entry point to the completion API. The chat model
// and its chain are built once, on the first Complete call, and memoised together
// with any configuration error.
type Completer struct {
	timeout  time.Duration
	handlers []einocb.Handler
	init     func() (*compiled, error)
}

// NewCompleter builds a completer for the configured provider.
func NewCompleter(config model.CompletionConfig, handlers ...einocb.Handler) *Completer {
	return NewCompleterWithFactory(func(ctx context.Context) (einomodel.BaseChatModel, string, error) {
		return nodes.NewChatModel(ctx, config)
	}, config.Timeout, handlers...)
}

func NewCompleterWithFactory(factory ModelFactory, timeout time.Duration, handlers ...einocb.Handler) *Completer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Completer{
		timeout:  timeout,
		handlers: handlers,
	}
	c.init = sync.OnceValues(func() (*compiled, error) {
		return build(context.Background(), factory)
	})
	return c
}

func build(ctx context.Context, factory ModelFactory) (*compiled, error) {
	cm, name, err := factory(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("completion client initialisation failed")
		if errx.KindOf(err) == errx.KindUnhandled {
			return nil, errx.Configuration("completion client: %v", err)
		}
		return nil, err
	}

	runnable, err := compose.NewChain[[]*schema.Message, *schema.Message]().
		AppendChatModel(cm).
		Compile(ctx)
	if err != nil {
		return nil, errx.Configuration("compile completion chain: %v", err)
	}

	logx.Info().Str("model", name).Msg("completion client ready")
	return &compiled{runnable: runnable, modelName: name}, nil
}

// Complete sends the system+history messages and returns the trimmed text of the first choice.
// Failures are classified errx errors; nothing is retried.
func (c *Completer) Complete(ctx context.Context, messages []*schema.Message, params model.GenerationParams) (string, error) {
	built, err := c.init()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := []compose.Option{
		compose.WithChatModelOption(
			einomodel.WithMaxTokens(params.MaxTokens),
			einomodel.WithTemperature(params.Temperature),
		),
	}
	if len(c.handlers) > 0 {
		opts = append(opts, compose.WithCallbacks(c.handlers...))
	}

	start := time.Now()
	out, err := built.runnable.Invoke(ctx, messages, opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(err, ctxErr)
		}
		logx.Warn().Err(err).Str("model", built.modelName).Dur("elapsed", time.Since(start)).Msg("completion failed")
		return "", errx.WrapCompletion(err)
	}

	text := ""
	if out != nil {
		text = strings.TrimSpace(out.Content)
		logUsage(built.modelName, out, time.Since(start))
	}
	if text == "" {
		return "", errx.WrapCompletion(errEmptyCompletion)
	}
	return text, nil
}

func logUsage(modelName string, out *schema.Message, elapsed time.Duration) {
	ev := logx.Info().Str("model", modelName).Dur("elapsed", elapsed)
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		_, _, total := model.ComputeCost(usage, model.ResolvePricing(modelName))
		ev = ev.Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Float64("cost_usd", total)
	}
	ev.Msg("completion done")
}
