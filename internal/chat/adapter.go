package chat

import (
	"context"
	"log/slog"
	"time"

	"physicstutor/internal/llm"
	"physicstutor/internal/metrics"
)

// DefaultSystemPrompt инструкция по умолчанию: строгий решатель задач по физике.
const DefaultSystemPrompt = "You are a strict physics problem solver. You will ONLY answer physics questions using correct physics formulas and principles. " +
	"If someone asks about anything else (like shopping or restaurants), respond with: 'Sorry, I only solve physics problems.' " +
	"Always explain step-by-step with units and clear logic. Always convert units to SI (kg, m, s) when needed. " +
	"Do NOT guess. If the question lacks data, ask for clarification. " +
	"Do NOT generate questions or continue the conversation unless explicitly prompted by the user."

// HistoryEntry одна прошлая реплика в том виде, в каком её присылает UI.
type HistoryEntry struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Params параметры генерации. Значения передаются как есть, без проверки диапазонов.
type Params struct {
	SystemMessage string
	MaxTokens     int
	Temperature   float64
	TopP          float64
}

type TurnAdapter struct {
	client        llm.Client
	defaultPrompt string
	logger        *slog.Logger
}

// NewTurnAdapter создаёт адаптер. Пустой defaultPrompt заменяется на DefaultSystemPrompt.
func NewTurnAdapter(client llm.Client, defaultPrompt string, logger *slog.Logger) *TurnAdapter {
	if defaultPrompt == "" {
		defaultPrompt = DefaultSystemPrompt
	}
	return &TurnAdapter{
		client:        client,
		defaultPrompt: defaultPrompt,
		logger:        logger,
	}
}

// DefaultPrompt возвращает инструкцию, которая подставляется при пустом system message.
func (a *TurnAdapter) DefaultPrompt() string {
	return a.defaultPrompt
}

// Respond отправляет одну реплику и возвращает текст ответа.
// История не используется: в запрос всегда уходят ровно system и user.
// Любая ошибка внешнего вызова превращается в строку "Error: <описание>".
func (a *TurnAdapter) Respond(ctx context.Context, message string, _ []HistoryEntry, params Params) string {
	req := llm.Request{
		Messages:    buildMessages(message, params.SystemMessage, a.defaultPrompt),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	}

	start := time.Now()
	answer, err := a.complete(ctx, req)
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	metrics.ChatTurns.WithLabelValues(status).Inc()
	metrics.ChatTurnDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err != nil {
		if a.logger != nil {
			a.logger.Warn("chat turn failed", slog.String("error", err.Error()))
		}
		return "Error: " + err.Error()
	}
	return answer
}

// complete изолирует панику клиента, чтобы Respond никогда не падал.
func (a *TurnAdapter) complete(ctx context.Context, req llm.Request) (answer string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &panicError{value: rec}
		}
	}()
	return a.client.Complete(ctx, req)
}

func buildMessages(message, systemMessage, defaultPrompt string) []llm.Message {
	if systemMessage == "" {
		systemMessage = defaultPrompt
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemMessage},
		{Role: llm.RoleUser, Content: message},
	}
}
