package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testOptions(url string) Options {
	return Options{
		BaseURL:       url,
		Timeout:       5 * time.Second,
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestOllama_GenerateSingleJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		w.Write([]byte(`{"response":"Issue 1: the handler ignores errors","eval_count":30,"prompt_eval_count":12}`))
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	res := o.Generate(context.Background(), GenerateRequest{Model: "codellama", Prompt: "code"})
	if res.Failed {
		t.Fatalf("Generate failed: %s", res.Text)
	}
	if res.Text != "Issue 1: the handler ignores errors" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42 (eval + prompt_eval)", res.TokensUsed)
	}
}

func TestOllama_GenerateUsageObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"looks problematic","usage":{"total_tokens":77}}`))
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	res := o.Generate(context.Background(), GenerateRequest{Model: "m"})
	if res.TokensUsed != 77 {
		t.Errorf("TokensUsed = %d, want 77", res.TokensUsed)
	}
}

func TestOllama_GenerateStreamingLines(t *testing.T) {
	body := `{"response":"Issue 1: ","done":false}
{"response":"unchecked error return","done":false}
{"response":"","done":true,"eval_count":20,"prompt_eval_count":5}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	res := o.Generate(context.Background(), GenerateRequest{Model: "m"})
	if res.Failed {
		t.Fatalf("Generate failed: %s", res.Text)
	}
	if res.Text != "Issue 1: unchecked error return" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.TokensUsed != 25 {
		t.Errorf("TokensUsed = %d, want 25", res.TokensUsed)
	}
}

func TestOllama_GenerateEmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"","eval_count":30,"prompt_eval_count":12,"done":true}`))
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	res := o.Generate(context.Background(), GenerateRequest{Model: "m"})
	if res.Failed {
		t.Fatalf("Generate failed: %s", res.Text)
	}
	// An empty model reply must stay empty, not echo the JSON envelope.
	if res.Text != "" {
		t.Errorf("Text = %q, want empty", res.Text)
	}
	if res.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42 (eval + prompt_eval)", res.TokensUsed)
	}
}

func TestOllama_GenerateEmptyStream(t *testing.T) {
	body := `{"response":"","done":false}
{"response":"","done":true,"eval_count":9,"prompt_eval_count":4}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	res := o.Generate(context.Background(), GenerateRequest{Model: "m"})
	if res.Text != "" {
		t.Errorf("Text = %q, want empty", res.Text)
	}
	if res.TokensUsed != 13 {
		t.Errorf("TokensUsed = %d, want 13", res.TokensUsed)
	}
}

func TestOllama_GeneratePlainTextFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all but useful"))
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	res := o.Generate(context.Background(), GenerateRequest{Model: "m"})
	if res.Failed {
		t.Fatalf("Generate failed: %s", res.Text)
	}
	if res.Text != "not json at all but useful" {
		t.Errorf("Text = %q", res.Text)
	}
	// 6 words * 4/3 = 8 estimated tokens.
	if res.TokensUsed != 8 {
		t.Errorf("TokensUsed = %d, want 8", res.TokensUsed)
	}
}

func TestOllama_RetryBound(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	res := o.Generate(context.Background(), GenerateRequest{Model: "m"})
	if !res.Failed {
		t.Fatal("expected degraded result after exhausted retries")
	}
	// 1 initial + 3 retries.
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
	if res.TokensUsed != 0 {
		t.Errorf("TokensUsed = %d, want 0 on failure", res.TokensUsed)
	}
	if !strings.HasPrefix(res.Text, "Error calling backend") {
		t.Errorf("sentinel text = %q", res.Text)
	}
	if o.Stats().Errors != 1 {
		t.Errorf("Errors = %d, want 1", o.Stats().Errors)
	}
}

func TestOllama_ChatMessageContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		w.Write([]byte(`{"message":{"role":"assistant","content":"the loop leaks goroutines"},"eval_count":9}`))
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	res := o.Chat(context.Background(), ChatRequest{
		Model:    "m",
		Messages: []Message{{Role: "user", Content: "review this"}},
	})
	if res.Failed {
		t.Fatalf("Chat failed: %s", res.Text)
	}
	if res.Text != "the loop leaks goroutines" {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestOllama_StatsAccumulate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"fine enough but verbose","eval_count":10}`))
	}))
	defer server.Close()

	o := NewOllama(testOptions(server.URL))
	o.Generate(context.Background(), GenerateRequest{Model: "m"})
	o.Generate(context.Background(), GenerateRequest{Model: "m"})

	s := o.Stats()
	if s.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", s.TotalRequests)
	}
	if s.TotalTokens != 20 {
		t.Errorf("TotalTokens = %d, want 20", s.TotalTokens)
	}
	if s.Errors != 0 {
		t.Errorf("Errors = %d, want 0", s.Errors)
	}
}

func TestNew_BackendSelection(t *testing.T) {
	tests := []struct {
		backend  string
		wantName string
	}{
		{"ollama", "ollama"},
		{"openai", "openai"},
		{"lmstudio", "openai"},
		{"vllm", "openai"},
	}
	for _, tt := range tests {
		c, err := New(tt.backend, Options{APIKey: "k"})
		if err != nil {
			t.Fatalf("New(%q) error: %v", tt.backend, err)
		}
		if c.Name() != tt.wantName {
			t.Errorf("New(%q).Name() = %q, want %q", tt.backend, c.Name(), tt.wantName)
		}
	}

	if _, err := New("bogus", Options{}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
