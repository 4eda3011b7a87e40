package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// GenerateRequest is one prompt-completion request to the backend.
type GenerateRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a multi-turn request for backends that serve a chat API.
type ChatRequest struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// GenerateResult carries the normalized backend response. Transport failure
// is reported through Failed rather than an error: Text then holds a
// human-readable message and TokensUsed is zero, so callers always get a
// usable value and keep running.
type GenerateResult struct {
	Text       string
	TokensUsed int
	Failed     bool
}

// Stats are running usage counters, updated on every request. They inform
// reporting only and never alter client behavior. Like the context store,
// a Client is not safe for concurrent use; callers must serialize access.
type Stats struct {
	TotalTokens    int
	TotalRequests  int
	Errors         int
	AverageRequest time.Duration
}

// Client is the transport abstraction over a text-generation backend.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) GenerateResult
	Chat(ctx context.Context, req ChatRequest) GenerateResult
	Name() string
	Stats() Stats
}

// Options configures a transport client.
type Options struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
	Logger        *zap.Logger
}

// New creates a client by backend name. "ollama" speaks the native Ollama
// generate/chat wire format; "openai", "lmstudio", and "vllm" speak the
// OpenAI-compatible chat format.
func New(backend string, opts Options) (Client, error) {
	switch backend {
	case "ollama":
		return NewOllama(opts), nil
	case "openai", "lmstudio", "vllm":
		return NewOpenAICompat(opts), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", backend)
	}
}
