package cli

import (
	"testing"

	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/issue"
	"github.com/mgrantham/verdict/internal/store"
)

func defaultTestConfig() config.Config {
	return config.Default()
}

func newTestContext() *store.ProjectContext {
	pctx := store.NewProjectContext("demo")
	pctx.Put("a.go", &issue.FileAnalysis{
		FilePath: "a.go",
		Issues:   []issue.Issue{{ID: 1, Description: "unchecked error return value"}},
	})
	pctx.Put("b.go", &issue.FileAnalysis{
		FilePath: "b.go",
		Issues:   []issue.Issue{{ID: 1, Description: "magic number in loop bound", Fixed: true}},
	})
	pctx.Put("c.go", &issue.FileAnalysis{
		FilePath: "c.go",
		Issues: []issue.Issue{
			{ID: 1, Description: "missing input validation", Fixed: true},
			{ID: 2, Description: "response body never closed"},
		},
	})
	return pctx
}

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagBackend = ""
	flagBaseURL = ""
	flagModel = ""
	flagChatModel = ""
	flagMinIssues = 0
	flagMaxLines = 0
	flagTimeout = 0
	flagMaxRetries = 0
	flagExclude = ""
	flagFormat = ""
	flagOut = ""
	flagLogLevel = ""
	flagNoRedact = false
	flagFailIssues = false
	flagFresh = false
	flagMaxBytes = 0
	flagFixDryRun = false
	flagFixFile = ""
	flagHistoryLimit = 0
}

// --- splitComma tests ---

func TestSplitComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single value", "foo", []string{"foo"}},
		{"multiple values", "a,b,c", []string{"a", "b", "c"}},
		{"whitespace trimmed", " a , b , c ", []string{"a", "b", "c"}},
		{"empty parts skipped", "a,,b", []string{"a", "b"}},
		{"all empty", ",,,", nil},
		{"trailing comma", "a,b,", []string{"a", "b"}},
		{"glob patterns", "*.min.js,vendor/**", []string{"*.min.js", "vendor/**"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitComma(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitComma(%q) = %v (len %d), want %v (len %d)",
					tt.input, got, len(got), tt.want, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitComma(%q)[%d] = %q, want %q",
						tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagBackend = "vllm"
	flagBaseURL = "http://localhost:8000"
	flagModel = "qwen2.5-coder"
	flagChatModel = "llama3.3"
	flagMinIssues = 3
	flagMaxLines = 500
	flagTimeout = 60
	flagMaxRetries = 5
	flagLogLevel = "debug"

	m := buildOverrides()

	expected := map[string]string{
		"backend":        "vllm",
		"baseUrl":        "http://localhost:8000",
		"model":          "qwen2.5-coder",
		"chatModel":      "llama3.3",
		"minIssues":      "3",
		"maxLines":       "500",
		"timeoutSeconds": "60",
		"maxRetries":     "5",
		"logLevel":       "debug",
	}

	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}
}

func TestBuildOverrides_PartialFlags(t *testing.T) {
	resetFlags()
	flagBackend = "lmstudio"
	flagMaxLines = 100

	m := buildOverrides()
	if len(m) != 2 {
		t.Fatalf("buildOverrides() = %v, want 2 entries", m)
	}
	if m["backend"] != "lmstudio" || m["maxLines"] != "100" {
		t.Errorf("buildOverrides() = %v", m)
	}
}

// --- newClient tests ---

func TestNewClient_RejectsUnknownBackend(t *testing.T) {
	resetFlags()
	cfg := defaultTestConfig()
	cfg.Backend = "bedrock"
	if _, err := newClient(cfg, nil); err == nil {
		t.Error("newClient should reject an unknown backend")
	}
}

func TestNewClient_KnownBackends(t *testing.T) {
	resetFlags()
	for _, backend := range []string{"ollama", "openai", "lmstudio", "vllm"} {
		cfg := defaultTestConfig()
		cfg.Backend = backend
		if _, err := newClient(cfg, nil); err != nil {
			t.Errorf("newClient(%q) error: %v", backend, err)
		}
	}
}

// --- fixablePaths / hasUnfixed tests ---

func TestFixablePaths(t *testing.T) {
	pctx := newTestContext()
	paths := fixablePaths(pctx)
	if len(paths) != 2 {
		t.Fatalf("fixablePaths = %v, want 2 entries", paths)
	}
	if paths[0] != "a.go" || paths[1] != "c.go" {
		t.Errorf("fixablePaths = %v, want sorted [a.go c.go]", paths)
	}
}
