package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAICompat serves any backend speaking the OpenAI chat-completions wire
// format: OpenAI itself, LM Studio, vLLM, or an Ollama /v1 endpoint. The
// go-openai library handles the wire shape; this wrapper adds the same
// retry/degrade semantics as the native client.
type OpenAICompat struct {
	api   *openai.Client
	log   *zap.Logger
	label string

	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64

	stats     Stats
	totalTime time.Duration
}

// NewOpenAICompat builds a client for an OpenAI-compatible server.
func NewOpenAICompat(opts Options) *OpenAICompat {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAICompat{
		api:           openai.NewClientWithConfig(cfg),
		log:           log,
		label:         "openai",
		maxRetries:    opts.MaxRetries,
		initialDelay:  opts.InitialDelay,
		backoffFactor: opts.BackoffFactor,
	}
}

func (c *OpenAICompat) Name() string { return c.label }

// Stats returns the running usage counters.
func (c *OpenAICompat) Stats() Stats {
	s := c.stats
	if s.TotalRequests > 0 {
		s.AverageRequest = c.totalTime / time.Duration(s.TotalRequests)
	}
	return s
}

// Generate maps a prompt-completion request onto a two-message chat.
func (c *OpenAICompat) Generate(ctx context.Context, req GenerateRequest) GenerateResult {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.System},
		{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
	}
	return c.complete(ctx, req.Model, messages, req.Temperature, req.MaxTokens)
}

// Chat sends a multi-turn conversation, prepending the system prompt.
func (c *OpenAICompat) Chat(ctx context.Context, req ChatRequest) GenerateResult {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return c.complete(ctx, req.Model, messages, req.Temperature, req.MaxTokens)
}

func (c *OpenAICompat) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage, temperature float64, maxTokens int) GenerateResult {
	start := time.Now()
	c.stats.TotalRequests++

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
	}

	st := newRetryState(c.maxRetries, c.initialDelay, c.backoffFactor)
	var lastErr error
	for st.begin() {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				err = fmt.Errorf("no choices in response")
			} else {
				c.stats.TotalTokens += resp.Usage.TotalTokens
				c.totalTime += time.Since(start)
				return GenerateResult{
					Text:       resp.Choices[0].Message.Content,
					TokensUsed: resp.Usage.TotalTokens,
				}
			}
		}
		lastErr = err
		c.log.Warn("backend call failed",
			zap.String("backend", c.label),
			zap.Int("attempt", st.attempts()),
			zap.Error(err))
		if !st.wait(ctx) {
			break
		}
	}

	c.stats.Errors++
	c.totalTime += time.Since(start)
	return GenerateResult{
		Text:   fmt.Sprintf("Error calling backend after %d attempts: %v", st.attempts(), lastErr),
		Failed: true,
	}
}
