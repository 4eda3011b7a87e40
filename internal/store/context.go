package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgrantham/verdict/internal/issue"
)

// ProjectContext is the incremental cache of per-file analysis results for
// one project. It holds exactly one FileAnalysis per path; a new analysis
// overwrites the old one. Not safe for concurrent use.
type ProjectContext struct {
	ProjectName  string
	FileAnalyses map[string]*issue.FileAnalysis
	LastAnalysis time.Time
}

// NewProjectContext creates an empty context for a project.
func NewProjectContext(name string) *ProjectContext {
	return &ProjectContext{
		ProjectName:  name,
		FileAnalyses: make(map[string]*issue.FileAnalysis),
	}
}

// Get returns the cached analysis for a path, if any.
func (pc *ProjectContext) Get(path string) (*issue.FileAnalysis, bool) {
	fa, ok := pc.FileAnalyses[path]
	return fa, ok
}

// Put stores an analysis for a path, replacing any prior entry, and bumps
// the project's last-analysis timestamp.
func (pc *ProjectContext) Put(path string, fa *issue.FileAnalysis) {
	pc.FileAnalyses[path] = fa
	pc.LastAnalysis = time.Now()
}

// IsStale reports whether a file needs re-analysis: true when there is no
// cached entry, or when the file's current modification time is strictly
// newer than the cached one. A file modified at exactly the cached time is
// fresh.
func (pc *ProjectContext) IsStale(path string, modTime time.Time) bool {
	fa, ok := pc.FileAnalyses[path]
	if !ok {
		return true
	}
	return modTime.After(fa.FileInfo.ModTime)
}

// contextDoc is the on-disk shape of a ProjectContext.
type contextDoc struct {
	ProjectName  string                         `json:"projectName"`
	FileAnalyses map[string]*issue.FileAnalysis `json:"fileAnalyses"`
	Metadata     struct {
		LastAnalysis time.Time `json:"lastAnalysisTimestamp"`
	} `json:"metadata"`
}

// LoadContext reads a persisted project context from path. A missing file
// yields a fresh empty context for projectName; a corrupt file is an error.
func LoadContext(path, projectName string) (*ProjectContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewProjectContext(projectName), nil
		}
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var doc contextDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}

	pc := &ProjectContext{
		ProjectName:  doc.ProjectName,
		FileAnalyses: doc.FileAnalyses,
		LastAnalysis: doc.Metadata.LastAnalysis,
	}
	if pc.ProjectName == "" {
		pc.ProjectName = projectName
	}
	if pc.FileAnalyses == nil {
		pc.FileAnalyses = make(map[string]*issue.FileAnalysis)
	}
	return pc, nil
}

// Save writes the context to path, creating parent directories as needed.
// The on-disk copy is the sole source of truth between runs.
func (pc *ProjectContext) Save(path string) error {
	doc := contextDoc{
		ProjectName:  pc.ProjectName,
		FileAnalyses: pc.FileAnalyses,
	}
	doc.Metadata.LastAnalysis = pc.LastAnalysis

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling context: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating context directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing context file: %w", err)
	}
	return nil
}

// RelatedFiles groups file paths that report an issue with the same leading
// description words, a cheap signal that files share a problem. The scan is
// quadratic in the number of files and meant for small projects.
func (pc *ProjectContext) RelatedFiles() map[string][]string {
	related := make(map[string][]string)
	paths := make([]string, 0, len(pc.FileAnalyses))
	for p := range pc.FileAnalyses {
		paths = append(paths, p)
	}
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			if shareIssuePrefix(pc.FileAnalyses[paths[i]], pc.FileAnalyses[paths[j]]) {
				related[paths[i]] = append(related[paths[i]], paths[j])
				related[paths[j]] = append(related[paths[j]], paths[i])
			}
		}
	}
	return related
}

func shareIssuePrefix(a, b *issue.FileAnalysis) bool {
	for _, ia := range a.Issues {
		pa := descriptionPrefix(ia.Description)
		if pa == "" {
			continue
		}
		for _, ib := range b.Issues {
			if pa == descriptionPrefix(ib.Description) {
				return true
			}
		}
	}
	return false
}

func descriptionPrefix(desc string) string {
	words := strings.Fields(strings.ToLower(desc))
	if len(words) < 3 {
		return ""
	}
	return strings.Join(words[:3], " ")
}
