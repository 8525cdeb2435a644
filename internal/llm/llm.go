package llm

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Messages    []Message
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Response struct {
	Text  string
	Usage Usage
}

// Client is the outbound boundary to a hosted text-completion provider.
// Implementations must honour ctx cancellation and carry their own timeout.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}
