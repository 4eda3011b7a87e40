package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/fileset"
	"github.com/mgrantham/verdict/internal/issue"
	"github.com/mgrantham/verdict/internal/llm"
	"github.com/mgrantham/verdict/internal/prompt"
	"github.com/mgrantham/verdict/internal/redact"
	"github.com/mgrantham/verdict/internal/store"
)

// Pass gates: the security pass needs a file longer than this many lines,
// the performance pass a file longer than performancePassMinLines.
const (
	securityPassMinLines    = 20
	performancePassMinLines = 50
)

// Analyzer runs the full directory pipeline: enumerate files, analyze the
// stale ones pass by pass, extract issues, and aggregate the results into a
// project-level report.
type Analyzer struct {
	cfg     config.Config
	client  llm.Client
	history *store.HistoryStore
	log     *zap.Logger

	// Fresh re-analyzes every file even when its cached analysis is current.
	Fresh bool
}

// New creates an Analyzer. history may be nil to disable run persistence.
func New(cfg config.Config, client llm.Client, history *store.HistoryStore, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, client: client, history: history, log: log}
}

// Run analyzes every code file under root. One file's failure never aborts
// the run; only an unreadable or empty root directory is terminal. The
// project context at contextPath is loaded before and persisted after the
// run.
func (a *Analyzer) Run(ctx context.Context, root, contextPath string) (*ProjectAnalysisResult, error) {
	start := time.Now()

	paths, err := fileset.Walk(root, a.cfg.Exclude)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no analyzable files found under %s", root)
	}

	projectName := projectNameFor(root)
	pctx, err := store.LoadContext(contextPath, projectName)
	if err != nil {
		a.log.Warn("context load failed, starting fresh", zap.Error(err))
		pctx = store.NewProjectContext(projectName)
	}

	a.log.Info("analysis started",
		zap.String("project", projectName),
		zap.Int("files", len(paths)))

	result := &ProjectAnalysisResult{
		ProjectName:  projectName,
		FileAnalyses: make(map[string]*issue.FileAnalysis),
	}

	for i, rel := range paths {
		a.log.Info("processing file",
			zap.String("path", rel),
			zap.Int("index", i+1),
			zap.Int("total", len(paths)))

		outcome := a.processFile(ctx, root, rel, pctx)
		result.Outcomes = append(result.Outcomes, outcome)

		switch outcome.Status {
		case StatusOk:
			result.FilesAnalyzed++
			result.FileAnalyses[rel] = outcome.Analysis
			result.TotalIssues += len(outcome.Analysis.Issues)
			result.TotalTokens += outcome.Analysis.TokensUsed
		default:
			result.FailedFiles++
			a.log.Warn("file not analyzed",
				zap.String("path", rel),
				zap.String("status", string(outcome.Status)),
				zap.String("reason", outcome.Reason))
		}
	}

	a.aggregate(ctx, result)

	result.ExecutionTime = time.Since(start)
	if result.FilesAnalyzed > 0 {
		result.AverageTimePerFile = result.ExecutionTime / time.Duration(result.FilesAnalyzed)
	}

	if err := pctx.Save(contextPath); err != nil {
		a.log.Warn("context persist failed", zap.Error(err))
	}
	if a.history != nil {
		if _, err := a.history.Append(projectName, result.TotalIssues, result.FilesAnalyzed, result); err != nil {
			a.log.Warn("history persist failed", zap.Error(err))
		}
	}

	a.log.Info("analysis complete",
		zap.Int("filesAnalyzed", result.FilesAnalyzed),
		zap.Int("failedFiles", result.FailedFiles),
		zap.Int("totalIssues", result.TotalIssues),
		zap.Duration("elapsed", result.ExecutionTime))
	return result, nil
}

// processFile runs the per-file state machine. Every failure is absorbed
// into the returned outcome.
func (a *Analyzer) processFile(ctx context.Context, root, rel string, pctx *store.ProjectContext) FileOutcome {
	f, err := fileset.Load(root, rel, int64(a.cfg.MaxFileBytes))
	if err != nil {
		if errors.Is(err, fileset.ErrBinary) || errors.Is(err, fileset.ErrTooLarge) {
			return FileOutcome{Path: rel, Status: StatusSkipped, Reason: err.Error()}
		}
		return FileOutcome{Path: rel, Status: StatusFailed, Reason: err.Error()}
	}

	if !a.Fresh && !pctx.IsStale(rel, f.Info.ModTime) {
		cached, _ := pctx.Get(rel)
		a.log.Debug("reusing cached analysis", zap.String("path", rel))
		return FileOutcome{Path: rel, Status: StatusOk, Reused: true, Analysis: cached}
	}

	content := f.Content
	if truncated, did := fileset.Truncate(content, a.cfg.MaxLines); did {
		a.log.Info("file truncated",
			zap.String("path", rel),
			zap.Int("lines", f.Info.LineCount),
			zap.Int("maxLines", a.cfg.MaxLines))
		content = truncated
	}
	if a.cfg.Privacy.RedactSecrets {
		content = redact.Content(content, rel, a.cfg.Privacy.RedactPaths)
	}

	fa := a.analyzeFile(ctx, rel, f.Language, content, f.Info, pctx)
	if fa == nil {
		return FileOutcome{Path: rel, Status: StatusFailed, Reason: "backend error on standard pass"}
	}

	pctx.Put(rel, fa)
	return FileOutcome{Path: rel, Status: StatusOk, Analysis: fa}
}

// analyzeFile runs the analysis passes over one file and assembles the
// FileAnalysis. It returns nil when the standard pass degrades to a
// transport failure, since nothing usable was produced.
func (a *Analyzer) analyzeFile(ctx context.Context, rel, language, content string, info fileset.Info, pctx *store.ProjectContext) *issue.FileAnalysis {
	summary := priorSummary(pctx, rel)

	texts := issue.PassTexts{}
	var issues []issue.Issue
	tokens := 0

	std := a.runPass(ctx, prompt.PassStandard, rel, language, content, summary)
	texts.Standard = std.Text
	tokens += std.TokensUsed
	if std.Failed {
		return nil
	}
	issues = append(issues, issue.Extract(std.Text)...)

	securityOk := true
	if info.LineCount > securityPassMinLines {
		sec := a.runPass(ctx, prompt.PassSecurity, rel, language, content, summary)
		texts.Security = sec.Text
		tokens += sec.TokensUsed
		securityOk = !sec.Failed
		if securityOk {
			issues = append(issues, retag(issue.Extract(sec.Text), issue.TypeSecurity)...)
		}
	}

	if info.LineCount > performancePassMinLines && securityOk {
		perf := a.runPass(ctx, prompt.PassPerformance, rel, language, content, summary)
		texts.Performance = perf.Text
		tokens += perf.TokensUsed
		if !perf.Failed {
			issues = append(issues, retag(issue.Extract(perf.Text), issue.TypePerformance)...)
		}
	}

	// IDs restart per pass; renumber across the concatenated list.
	for i := range issues {
		issues[i].ID = i + 1
	}

	return &issue.FileAnalysis{
		FilePath: rel,
		Language: language,
		FileInfo: issue.FileInfo{
			Size:      info.Size,
			ModTime:   info.ModTime,
			LineCount: info.LineCount,
		},
		Issues:     issues,
		PassTexts:  texts,
		TokensUsed: tokens,
		AnalyzedAt: time.Now(),
	}
}

func (a *Analyzer) runPass(ctx context.Context, pass prompt.Pass, rel, language, content, summary string) llm.GenerateResult {
	return a.client.Generate(ctx, llm.GenerateRequest{
		Model:       a.cfg.AnalysisModel,
		System:      prompt.AnalysisSystem(pass, language, rel, a.cfg.MinIssues),
		Prompt:      prompt.AnalysisUser(content, language, summary),
		Temperature: a.cfg.AnalysisTemp,
		MaxTokens:   a.cfg.MaxTokens,
	})
}

// retag narrows general issues found by a focused pass to that pass's type.
func retag(issues []issue.Issue, t issue.Type) []issue.Issue {
	for i := range issues {
		if issues[i].Type == issue.TypeGeneral {
			issues[i].Type = t
		}
	}
	return issues
}

// aggregate fills in the three project-level reports. With zero analyzed
// files it installs fixed placeholders and makes no backend calls.
func (a *Analyzer) aggregate(ctx context.Context, result *ProjectAnalysisResult) {
	if result.FilesAnalyzed == 0 {
		result.ProjectSummary = "No files were successfully analyzed."
		result.GrowthRecommendations = []Recommendation{{Title: "No recommendations available"}}
		result.SecurityOverview = "No files were successfully analyzed."
		return
	}

	summary := a.chat(ctx, prompt.SummarySystem(result.ProjectName, result.FilesAnalyzed, result.TotalIssues, topIssues(result.FileAnalyses, 5)), "Project-level analysis:")
	result.ProjectSummary = summary.Text
	result.TotalTokens += summary.TokensUsed

	growth := a.chat(ctx, prompt.GrowthSystem(result.ProjectName), "Growth recommendations:")
	result.GrowthRecommendations = splitRecommendations(growth.Text)
	result.TotalTokens += growth.TokensUsed

	security := a.chat(ctx, prompt.SecurityOverviewSystem(result.ProjectName, securityIssueLines(result.FileAnalyses)), "Security overview:")
	result.SecurityOverview = security.Text
	result.TotalTokens += security.TokensUsed
}

// chat issues one project-level request. Aggregation uses the chat model,
// keeping the per-file analysis model free for the heavy passes.
func (a *Analyzer) chat(ctx context.Context, system, user string) llm.GenerateResult {
	return a.client.Chat(ctx, llm.ChatRequest{
		Model:       a.cfg.ChatModel,
		System:      system,
		Messages:    []llm.Message{{Role: "user", Content: user}},
		Temperature: a.cfg.AnalysisTemp,
		MaxTokens:   a.cfg.MaxTokens,
	})
}

var recommendationMarkerRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)

// splitRecommendations breaks a numbered-list response into records: each
// segment's first line is the title, the rest the description.
func splitRecommendations(text string) []Recommendation {
	var recs []Recommendation
	for _, segment := range recommendationMarkerRe.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		title, description := segment, ""
		if idx := strings.Index(segment, "\n"); idx >= 0 {
			title = strings.TrimSpace(segment[:idx])
			description = strings.TrimSpace(segment[idx+1:])
		}
		recs = append(recs, Recommendation{Title: title, Description: description})
	}
	if len(recs) == 0 && strings.TrimSpace(text) != "" {
		recs = append(recs, Recommendation{Title: strings.TrimSpace(text)})
	}
	return recs
}

// topIssues returns the most common issue descriptions across files, each
// annotated with how many files report it.
func topIssues(analyses map[string]*issue.FileAnalysis, n int) []string {
	counts := make(map[string]int)
	for _, fa := range analyses {
		seen := make(map[string]bool)
		for _, is := range fa.Issues {
			if !seen[is.Description] {
				seen[is.Description] = true
				counts[is.Description]++
			}
		}
	}
	descs := make([]string, 0, len(counts))
	for d := range counts {
		descs = append(descs, d)
	}
	sort.Slice(descs, func(i, j int) bool {
		if counts[descs[i]] != counts[descs[j]] {
			return counts[descs[i]] > counts[descs[j]]
		}
		return descs[i] < descs[j]
	})
	if len(descs) > n {
		descs = descs[:n]
	}
	for i, d := range descs {
		descs[i] = fmt.Sprintf("%s (found in %d files)", d, counts[d])
	}
	return descs
}

// securityIssueLines flattens security-typed issues into "path: description"
// lines for the overview prompt.
func securityIssueLines(analyses map[string]*issue.FileAnalysis) []string {
	var lines []string
	for path, fa := range analyses {
		for _, is := range fa.Issues {
			if is.Type == issue.TypeSecurity {
				lines = append(lines, fmt.Sprintf("%s: %s", path, is.Description))
			}
		}
	}
	sort.Strings(lines)
	return lines
}

// priorSummary condenses the cached analysis of a file into a short context
// line for the next analysis prompt.
func priorSummary(pctx *store.ProjectContext, rel string) string {
	fa, ok := pctx.Get(rel)
	if !ok || len(fa.Issues) == 0 {
		return ""
	}
	n := len(fa.Issues)
	show := n
	if show > 3 {
		show = 3
	}
	parts := make([]string, 0, show)
	for _, is := range fa.Issues[:show] {
		parts = append(parts, is.Description)
	}
	return fmt.Sprintf("%d issues found previously, including: %s", n, strings.Join(parts, "; "))
}

func projectNameFor(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}
