package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message одно сообщение запроса chat completion.
type Message struct {
	Role    string
	Content string
}

// Request описывает один блокирующий запрос без стриминга.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Client минимальный публичный интерфейс LLM клиента.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
