package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"physicstutor/internal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	ErrEmptyChoices = errors.New("empty response from model")
)

// InferenceClient ходит в OpenAI-совместимый chat completion endpoint
// (Hugging Face router). Создаётся один раз при старте и дальше только читается.
type InferenceClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewInferenceClient(cfg config.InferenceConfig, httpClient *http.Client, logger *slog.Logger) *InferenceClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.Token),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	client := openai.NewClient(opts...)

	return &InferenceClient{
		client: &client,
		model:  cfg.Model,
		logger: logger,
	}
}

func (c *InferenceClient) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toParams(req.Messages),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, option.WithJSONSet("stream", false))
	if err != nil {
		c.logFailure(err)
		// Ошибку SDK отдаём как есть: её текст попадает пользователю.
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *InferenceClient) logFailure(err error) {
	if c.logger == nil {
		return
	}
	attrs := []any{
		slog.String("model", c.model),
		slog.String("error", err.Error()),
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		attrs = append(attrs, slog.Int("status", apiErr.StatusCode))
	}
	c.logger.Warn("inference request failed", attrs...)
}

func toParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
