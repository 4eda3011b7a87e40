package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/llm"
	"github.com/mgrantham/verdict/internal/store"
)

// fakeClient scripts backend behavior per request and records every call.
// Per-file passes arrive as Generate, project aggregation as Chat.
type fakeClient struct {
	respond func(req llm.GenerateRequest) llm.GenerateResult
	calls   []llm.GenerateRequest
	chats   []llm.ChatRequest
}

func (f *fakeClient) Generate(_ context.Context, req llm.GenerateRequest) llm.GenerateResult {
	f.calls = append(f.calls, req)
	if f.respond != nil {
		return f.respond(req)
	}
	return llm.GenerateResult{
		Text:       "### Issue #1 (Lines 1-2):\nThe error handling is missing in this function.",
		TokensUsed: 10,
	}
}

func (f *fakeClient) Chat(_ context.Context, req llm.ChatRequest) llm.GenerateResult {
	f.chats = append(f.chats, req)
	return llm.GenerateResult{Text: "Project looks healthy overall.", TokensUsed: 5}
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Stats() llm.Stats { return llm.Stats{} }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Privacy.RedactSecrets = false
	return cfg
}

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRun_BatchResilience(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.go", "package a\n")
	writeProjectFile(t, root, "b.go", "package b\x00binary\n")
	writeProjectFile(t, root, "c.go", "package c\n")

	client := &fakeClient{}
	a := New(testConfig(), client, nil, nil)

	result, err := a.Run(context.Background(), root, filepath.Join(t.TempDir(), "ctx.json"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FilesAnalyzed != 2 {
		t.Errorf("FilesAnalyzed = %d, want 2", result.FilesAnalyzed)
	}
	if result.FailedFiles != 1 {
		t.Errorf("FailedFiles = %d, want 1", result.FailedFiles)
	}
	if _, ok := result.FileAnalyses["a.go"]; !ok {
		t.Error("a.go missing from analyses")
	}
	if _, ok := result.FileAnalyses["c.go"]; !ok {
		t.Error("c.go missing from analyses")
	}
	if _, ok := result.FileAnalyses["b.go"]; ok {
		t.Error("failed b.go must not appear in analyses")
	}

	sum := 0
	for _, fa := range result.FileAnalyses {
		sum += len(fa.Issues)
	}
	if result.TotalIssues != sum {
		t.Errorf("TotalIssues = %d, want sum %d", result.TotalIssues, sum)
	}
}

func TestRun_OversizedFileSkipped(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.go", "package a\n")
	writeProjectFile(t, root, "big.go", "package big\n"+strings.Repeat("var filler = 1\n", 50))

	cfg := testConfig()
	cfg.MaxFileBytes = 100
	client := &fakeClient{}
	a := New(cfg, client, nil, nil)

	result, err := a.Run(context.Background(), root, filepath.Join(t.TempDir(), "ctx.json"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FilesAnalyzed != 1 {
		t.Errorf("FilesAnalyzed = %d, want 1", result.FilesAnalyzed)
	}
	if result.FailedFiles != 1 {
		t.Errorf("FailedFiles = %d, want 1", result.FailedFiles)
	}
	for _, o := range result.Outcomes {
		if o.Path != "big.go" {
			continue
		}
		if o.Status != StatusSkipped {
			t.Errorf("big.go status = %q, want skipped", o.Status)
		}
		if !strings.Contains(o.Reason, "exceeds limit") {
			t.Errorf("big.go reason = %q", o.Reason)
		}
	}
	if _, ok := result.FileAnalyses["big.go"]; ok {
		t.Error("oversized big.go must not be analyzed")
	}
}

func TestRun_AggregateSuppression(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.go", "package a\n")
	writeProjectFile(t, root, "b.go", "package b\n")

	client := &fakeClient{
		respond: func(req llm.GenerateRequest) llm.GenerateResult {
			return llm.GenerateResult{Text: "Error calling backend after 4 attempts: connection refused", Failed: true}
		},
	}
	a := New(testConfig(), client, nil, nil)

	result, err := a.Run(context.Background(), root, filepath.Join(t.TempDir(), "ctx.json"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FilesAnalyzed != 0 {
		t.Errorf("FilesAnalyzed = %d, want 0", result.FilesAnalyzed)
	}
	// One standard-pass attempt per file, no aggregate calls.
	if len(client.calls) != 2 {
		t.Errorf("backend calls = %d, want 2", len(client.calls))
	}
	if len(client.chats) != 0 {
		t.Errorf("aggregate calls = %d, want 0", len(client.chats))
	}
	if result.ProjectSummary != "No files were successfully analyzed." {
		t.Errorf("ProjectSummary = %q, want placeholder", result.ProjectSummary)
	}
	if result.SecurityOverview != "No files were successfully analyzed." {
		t.Errorf("SecurityOverview = %q, want placeholder", result.SecurityOverview)
	}
	if len(result.GrowthRecommendations) != 1 || result.GrowthRecommendations[0].Title != "No recommendations available" {
		t.Errorf("GrowthRecommendations = %v, want placeholder", result.GrowthRecommendations)
	}
}

func TestRun_PassPolicy(t *testing.T) {
	root := t.TempDir()
	// 60 lines: long enough for security and performance passes.
	writeProjectFile(t, root, "big.go", "package big\n"+strings.Repeat("var x = 1\n", 59))

	client := &fakeClient{}
	a := New(testConfig(), client, nil, nil)

	result, err := a.Run(context.Background(), root, filepath.Join(t.TempDir(), "ctx.json"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 3 per-file passes on the analysis model, 3 aggregates on the chat model.
	if len(client.calls) != 3 {
		t.Fatalf("per-file calls = %d, want 3", len(client.calls))
	}
	if len(client.chats) != 3 {
		t.Fatalf("aggregate calls = %d, want 3", len(client.chats))
	}
	for _, req := range client.chats {
		if req.Model != testConfig().ChatModel {
			t.Errorf("aggregate model = %q, want %q", req.Model, testConfig().ChatModel)
		}
	}

	fa := result.FileAnalyses["big.go"]
	if fa.PassTexts.Standard == "" || fa.PassTexts.Security == "" || fa.PassTexts.Performance == "" {
		t.Errorf("all three pass texts must be recorded: %+v", fa.PassTexts)
	}
	// One issue per pass, renumbered sequentially across the concatenation.
	if len(fa.Issues) != 3 {
		t.Fatalf("issues = %d, want 3", len(fa.Issues))
	}
	for i, is := range fa.Issues {
		if is.ID != i+1 {
			t.Errorf("issue %d has ID %d, want %d", i, is.ID, i+1)
		}
	}
}

func TestRun_SmallFileGetsOnlyStandardPass(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "small.go", "package small\n")

	client := &fakeClient{}
	a := New(testConfig(), client, nil, nil)

	if _, err := a.Run(context.Background(), root, filepath.Join(t.TempDir(), "ctx.json")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 1 standard pass, 3 aggregates.
	if len(client.calls) != 1 {
		t.Errorf("per-file calls = %d, want 1", len(client.calls))
	}
	if len(client.chats) != 3 {
		t.Errorf("aggregate calls = %d, want 3", len(client.chats))
	}
}

func TestRun_CacheReuse(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.go", "package a\n")
	contextPath := filepath.Join(t.TempDir(), "ctx.json")

	first := &fakeClient{}
	if _, err := New(testConfig(), first, nil, nil).Run(context.Background(), root, contextPath); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	second := &fakeClient{}
	result, err := New(testConfig(), second, nil, nil).Run(context.Background(), root, contextPath)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	// The unchanged file is reused; only the aggregates hit the backend.
	if len(second.calls) != 0 {
		t.Errorf("per-file calls = %d, want 0", len(second.calls))
	}
	if len(second.chats) != 3 {
		t.Errorf("aggregate calls = %d, want 3", len(second.chats))
	}
	if result.FilesAnalyzed != 1 {
		t.Errorf("FilesAnalyzed = %d, want 1", result.FilesAnalyzed)
	}
	if !result.Outcomes[0].Reused {
		t.Error("outcome must be marked reused")
	}
	if len(result.FileAnalyses["a.go"].Issues) == 0 {
		t.Error("cached issues must carry over")
	}
}

func TestRun_FreshBypassesCache(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.go", "package a\n")
	contextPath := filepath.Join(t.TempDir(), "ctx.json")

	first := &fakeClient{}
	if _, err := New(testConfig(), first, nil, nil).Run(context.Background(), root, contextPath); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	second := &fakeClient{}
	a := New(testConfig(), second, nil, nil)
	a.Fresh = true
	result, err := a.Run(context.Background(), root, contextPath)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	// The standard pass runs again despite the warm cache.
	if len(second.calls) != 1 {
		t.Errorf("per-file calls = %d, want 1", len(second.calls))
	}
	if result.Outcomes[0].Reused {
		t.Error("fresh run must not reuse the cached analysis")
	}
}

func TestRun_EmptyDirectoryIsTerminal(t *testing.T) {
	client := &fakeClient{}
	a := New(testConfig(), client, nil, nil)
	if _, err := a.Run(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "ctx.json")); err == nil {
		t.Error("expected error for a directory with no analyzable files")
	}
}

func TestRun_HistoryPersisted(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.go", "package a\n")

	history := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.json"), 0)
	client := &fakeClient{}
	a := New(testConfig(), client, history, nil)

	result, err := a.Run(context.Background(), root, filepath.Join(t.TempDir(), "ctx.json"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, ok, err := history.Latest(result.ProjectName)
	if err != nil || !ok {
		t.Fatalf("Latest: ok=%v err=%v", ok, err)
	}
	if run.FilesAnalyzed != 1 {
		t.Errorf("persisted FilesAnalyzed = %d, want 1", run.FilesAnalyzed)
	}
	if run.IssueCount != result.TotalIssues {
		t.Errorf("persisted IssueCount = %d, want %d", run.IssueCount, result.TotalIssues)
	}
}

func TestSplitRecommendations(t *testing.T) {
	text := `Here are my recommendations:

1. Adopt a service layer
   Move business logic out of handlers into dedicated services.

2) Add integration tests
   Cover the critical paths end to end.

3. Introduce caching`

	recs := splitRecommendations(text)
	if len(recs) != 4 {
		t.Fatalf("recs = %d, want 4 (preamble + 3 items): %+v", len(recs), recs)
	}
	if recs[1].Title != "Adopt a service layer" {
		t.Errorf("recs[1].Title = %q", recs[1].Title)
	}
	if !strings.Contains(recs[1].Description, "business logic") {
		t.Errorf("recs[1].Description = %q", recs[1].Description)
	}
	if recs[3].Title != "Introduce caching" || recs[3].Description != "" {
		t.Errorf("recs[3] = %+v", recs[3])
	}
}

func TestSplitRecommendations_NoMarkers(t *testing.T) {
	recs := splitRecommendations("Just one blob of advice with no numbering.")
	if len(recs) != 1 {
		t.Fatalf("recs = %d, want 1", len(recs))
	}
	if recs[0].Title != "Just one blob of advice with no numbering." {
		t.Errorf("Title = %q", recs[0].Title)
	}
}
