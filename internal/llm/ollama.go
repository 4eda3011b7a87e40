package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultOllamaURL = "http://localhost:11434"

// estimatedTokensPerWord approximates token usage when the backend returns
// no usage data: tokens ~= words * 4/3.
const (
	estTokenNumer = 4
	estTokenDenom = 3
)

// Ollama is the native client for an Ollama server (or anything serving its
// /api/generate and /api/chat endpoints).
type Ollama struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger

	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64

	stats     Stats
	totalTime time.Duration
}

// NewOllama creates an Ollama client from options, applying the usual
// defaults for a local server.
func NewOllama(opts Options) *Ollama {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Ollama{
		baseURL:       baseURL,
		client:        &http.Client{Timeout: timeout},
		log:           log,
		maxRetries:    opts.MaxRetries,
		initialDelay:  opts.InitialDelay,
		backoffFactor: opts.BackoffFactor,
	}
}

func (o *Ollama) Name() string { return "ollama" }

// Stats returns the running usage counters.
func (o *Ollama) Stats() Stats {
	s := o.stats
	if s.TotalRequests > 0 {
		s.AverageRequest = o.totalTime / time.Duration(s.TotalRequests)
	}
	return s
}

// Generate sends one prompt-completion request. Transport failures are
// retried with exponential backoff; an exhausted budget degrades to a
// GenerateResult with Failed set, never an error.
func (o *Ollama) Generate(ctx context.Context, req GenerateRequest) GenerateResult {
	body := map[string]any{
		"model":       req.Model,
		"prompt":      req.Prompt,
		"system":      req.System,
		"temperature": req.Temperature,
		"num_predict": req.MaxTokens,
	}
	return o.send(ctx, o.baseURL+"/api/generate", body)
}

// Chat sends a multi-turn request against the chat endpoint; the reply text
// arrives in message.content.
func (o *Ollama) Chat(ctx context.Context, req ChatRequest) GenerateResult {
	body := map[string]any{
		"model":       req.Model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	}
	if req.System != "" {
		body["system"] = req.System
	}
	return o.send(ctx, o.baseURL+"/api/chat", body)
}

func (o *Ollama) send(ctx context.Context, url string, body map[string]any) GenerateResult {
	start := time.Now()
	o.stats.TotalRequests++

	payload, err := json.Marshal(body)
	if err != nil {
		o.stats.Errors++
		return GenerateResult{Text: fmt.Sprintf("Error: marshaling request: %v", err), Failed: true}
	}

	st := newRetryState(o.maxRetries, o.initialDelay, o.backoffFactor)
	var lastErr error
	for st.begin() {
		raw, err := o.post(ctx, url, payload)
		if err == nil {
			text, tokens := normalizeResponse(raw)
			o.stats.TotalTokens += tokens
			o.totalTime += time.Since(start)
			return GenerateResult{Text: text, TokensUsed: tokens}
		}
		lastErr = err
		o.log.Warn("backend call failed",
			zap.String("url", url),
			zap.Int("attempt", st.attempts()),
			zap.Error(err))
		if !st.wait(ctx) {
			break
		}
	}

	o.stats.Errors++
	o.totalTime += time.Since(start)
	return GenerateResult{
		Text:   fmt.Sprintf("Error calling backend after %d attempts: %v", st.attempts(), lastErr),
		Failed: true,
	}
}

func (o *Ollama) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend error (status %d): %s", httpResp.StatusCode, truncateForLog(raw))
	}
	return raw, nil
}

// wireResponse covers every body shape the backend is known to serve:
// generate-style with a response field, chat-style with message.content,
// and usage either as eval counts or a nested usage object.
type wireResponse struct {
	Response        string  `json:"response"`
	Text            string  `json:"text"`
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	EvalCount       int     `json:"eval_count"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	TotalTokens     int     `json:"total_tokens"`
	Usage           struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (w wireResponse) text() string {
	switch {
	case w.Response != "":
		return w.Response
	case w.Text != "":
		return w.Text
	default:
		return w.Message.Content
	}
}

// recognized reports whether the object carries backend markers beyond its
// text. It distinguishes a genuine empty reply, which still has usage counts
// or a done flag, from arbitrary JSON-shaped input that happens to parse.
func (w wireResponse) recognized() bool {
	return w.Done || w.Message.Role != "" || w.tokens() > 0
}

func (w wireResponse) tokens() int {
	if n := w.EvalCount + w.PromptEvalCount; n > 0 {
		return n
	}
	if w.Usage.TotalTokens > 0 {
		return w.Usage.TotalTokens
	}
	return w.TotalTokens
}

// normalizeResponse turns a raw backend body into (text, tokens) across the
// three shapes it may arrive in: a single JSON object, a newline-delimited
// stream of JSON fragments, or plain text. Plain text gets an estimated
// token count from its word count.
func normalizeResponse(raw []byte) (string, int) {
	var single wireResponse
	if err := json.Unmarshal(raw, &single); err == nil {
		// An empty reply with usage counts or a done flag is still a
		// reply; returning the raw braces here would poison extraction.
		if text := single.text(); text != "" || single.recognized() {
			return text, single.tokens()
		}
	}

	// Streaming responses arrive as one JSON fragment per line, each
	// carrying a piece of the text; usage counts ride on the final one.
	var sb strings.Builder
	tokens := 0
	sawFragment := false
	recognized := false
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var frag wireResponse
		if err := json.Unmarshal([]byte(line), &frag); err != nil {
			continue
		}
		sawFragment = true
		recognized = recognized || frag.recognized()
		sb.WriteString(frag.text())
		if n := frag.tokens(); n > 0 {
			tokens = n
		}
	}
	if sawFragment && (sb.Len() > 0 || recognized) {
		return sb.String(), tokens
	}

	text := string(raw)
	words := len(strings.Fields(text))
	return text, words * estTokenNumer / estTokenDenom
}

func truncateForLog(raw []byte) string {
	const max = 200
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
