package gemini

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/rag/llm"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
	"google.golang.org/genai"
)

var errEmptyReply = errors.New("gemini returned no text")

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type llmClient struct {
	models    generator
	modelName string
	timeout   time.Duration
	logger    *logger_i.Logger
}

var logger = logger_i.NewLogger("llm_gemini")

func NewGeminiClient(ctx context.Context, apiKey string, modelName string, timeout time.Duration, httpClient *http.Client) (llm.Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return nil, err
	}
	if modelName == "" {
		modelName = config.GeminiModelName
	}
	if timeout <= 0 {
		timeout = config.RephraseTimeout
	}
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{models: c.Models, modelName: modelName, timeout: timeout, logger: logger}, nil
}

func (c *llmClient) Rephrase(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: config.RephraseSystemRole}},
		},
		Temperature:     &temperature,
		MaxOutputTokens: int32(config.RephraseMaxTokens),
	}

	result, err := c.models.GenerateContent(ctx, c.modelName, genai.Text(llm.BuildRephrasePrompt(text)), contentConfig)
	if err != nil {
		c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY)).Warn("rephrase call failed", "error", err)
		return "", err
	}
	if result == nil {
		return "", errEmptyReply
	}
	return llm.CleanOutput(result.Text()), nil
}
