package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/rag/llm"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var errEmptyReply = errors.New("openai returned no choices")

type completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type llmClient struct {
	completions completer
	modelName   string
	timeout     time.Duration
	logger      *logger_i.Logger
}

// Options configure the chat client. BaseURL is only set for compatible
// gateways and tests.
type Options struct {
	APIKey     string
	ModelName  string
	Timeout    time.Duration
	HTTPClient *http.Client
	BaseURL    string
}

func NewOpenAIClient(opts Options) llm.Provider {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	modelName := opts.ModelName
	if modelName == "" {
		modelName = config.OpenAIModelName
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.RephraseTimeout
	}

	logger := logger_i.NewLogger("llm_openai")
	logger.Info("OpenAI client created", "model", modelName)
	return &llmClient{
		completions: &client.Chat.Completions,
		modelName:   modelName,
		timeout:     timeout,
		logger:      logger,
	}
}

func (c *llmClient) Rephrase(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.RephraseSystemRole),
			openai.UserMessage(llm.BuildRephrasePrompt(text)),
		},
		MaxTokens:   openai.Int(config.RephraseMaxTokens),
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY)).Warn("rephrase call failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyReply
	}
	return llm.CleanOutput(resp.Choices[0].Message.Content), nil
}
