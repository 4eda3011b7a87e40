package analyzer

import (
	"time"

	"github.com/mgrantham/verdict/internal/issue"
)

// Status is the terminal state of one file's processing.
type Status string

const (
	StatusOk      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// FileOutcome is the discriminated result of processing one file. Exactly
// one of Analysis (ok) or Reason (skipped/failed) is meaningful.
type FileOutcome struct {
	Path     string              `json:"path"`
	Status   Status              `json:"status"`
	Reason   string              `json:"reason,omitempty"`
	Reused   bool                `json:"reused,omitempty"`
	Analysis *issue.FileAnalysis `json:"-"`
}

// Recommendation is one growth recommendation split out of the aggregate
// response text.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Implemented bool   `json:"implemented"`
}

// ProjectAnalysisResult aggregates one full directory run. TotalIssues is
// always the sum of issue list lengths over FileAnalyses.
type ProjectAnalysisResult struct {
	ProjectName           string                         `json:"projectName"`
	FileAnalyses          map[string]*issue.FileAnalysis `json:"fileAnalyses"`
	Outcomes              []FileOutcome                  `json:"outcomes"`
	ProjectSummary        string                         `json:"projectSummary"`
	GrowthRecommendations []Recommendation               `json:"growthRecommendations"`
	SecurityOverview      string                         `json:"securityOverview"`

	FilesAnalyzed int `json:"filesAnalyzed"`
	TotalIssues   int `json:"totalIssues"`
	FailedFiles   int `json:"failedFiles"`
	TotalTokens   int `json:"totalTokens"`

	ExecutionTime      time.Duration `json:"executionTime"`
	AverageTimePerFile time.Duration `json:"averageTimePerFile"`
}
