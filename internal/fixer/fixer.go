package fixer

import (
	"context"

	"go.uber.org/zap"

	"github.com/mgrantham/verdict/internal/config"
	"github.com/mgrantham/verdict/internal/issue"
	"github.com/mgrantham/verdict/internal/llm"
	"github.com/mgrantham/verdict/internal/prompt"
	"github.com/mgrantham/verdict/internal/store"
)

// Fixer generates fixed file content for previously extracted issues.
type Fixer struct {
	cfg    config.Config
	client llm.Client
	log    *zap.Logger

	fixesApplied int
	filesFixed   int
}

// New creates a Fixer.
func New(cfg config.Config, client llm.Client, log *zap.Logger) *Fixer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fixer{cfg: cfg, client: client, log: log}
}

// FixFile asks the backend to fix the given issues in one file. The second
// return is false when no usable fix was produced: backend failure, no code
// in the response, unchanged content, or content failing the syntactic
// sanity check. The caller keeps the original content in that case.
func (f *Fixer) FixFile(ctx context.Context, path, language, content string, issues []issue.Issue) (string, bool) {
	if len(issues) == 0 {
		return "", false
	}

	res := f.client.Generate(ctx, llm.GenerateRequest{
		Model:       f.cfg.AnalysisModel,
		System:      prompt.FixSystem(language, path, len(issues)),
		Prompt:      prompt.FixUser(content, language, issues),
		Temperature: f.cfg.FixTemp,
		MaxTokens:   f.cfg.MaxTokens,
	})
	if res.Failed {
		f.log.Warn("fix generation failed", zap.String("path", path), zap.String("error", res.Text))
		return "", false
	}

	fixed := llm.ExtractCode(res.Text)
	if fixed == "" || fixed == content {
		f.log.Info("no fix produced", zap.String("path", path))
		return "", false
	}
	if !ValidCode(fixed, language) {
		f.log.Warn("fix discarded, failed validation",
			zap.String("path", path),
			zap.String("language", language))
		return "", false
	}

	f.fixesApplied += len(issues)
	f.filesFixed++
	return fixed, true
}

// MarkFixed flips the Fixed flag on every issue of a file's cached analysis.
// Called after a generated fix has been accepted and written.
func MarkFixed(pctx *store.ProjectContext, path string) {
	fa, ok := pctx.Get(path)
	if !ok {
		return
	}
	for i := range fa.Issues {
		fa.Issues[i].Fixed = true
	}
}

// Stats reports how many fixes and files this Fixer has produced.
func (f *Fixer) Stats() (fixesApplied, filesFixed int) {
	return f.fixesApplied, f.filesFixed
}
