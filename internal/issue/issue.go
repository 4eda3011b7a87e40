package issue

import "time"

// Severity represents how serious an issue is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Type categorizes what kind of problem an issue describes.
type Type string

const (
	TypeSecurity        Type = "security"
	TypePerformance     Type = "performance"
	TypeMaintainability Type = "maintainability"
	TypeBug             Type = "bug"
	TypeGeneral         Type = "general"
)

// Issue is one reported problem in a file. Within a single FileAnalysis no
// two issues share an identical Description.
type Issue struct {
	ID          int      `json:"id"`
	Description string   `json:"description"`
	LineStart   int      `json:"lineStart,omitempty"`
	LineEnd     int      `json:"lineEnd,omitempty"`
	Severity    Severity `json:"severity"`
	Type        Type     `json:"type"`
	Fixed       bool     `json:"fixed"`
}

// FileInfo records the file metadata the staleness check depends on.
type FileInfo struct {
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"modTime"`
	LineCount int       `json:"lineCount"`
}

// PassTexts holds the raw model output of each analysis pass. Security and
// Performance are empty when the corresponding pass did not run.
type PassTexts struct {
	Standard    string `json:"standard,omitempty"`
	Security    string `json:"security,omitempty"`
	Performance string `json:"performance,omitempty"`
}

// FileAnalysis is the result of analyzing one file in one run. It replaces
// any prior cached analysis for the same path; after that only the Fixed
// flags on its issues may change.
type FileAnalysis struct {
	FilePath   string    `json:"filePath"`
	Language   string    `json:"language"`
	FileInfo   FileInfo  `json:"fileInfo"`
	Issues     []Issue   `json:"issues"`
	PassTexts  PassTexts `json:"passTexts"`
	TokensUsed int       `json:"tokensUsed"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// CountBySeverity tallies issues per severity level.
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int)
	for _, is := range issues {
		counts[is.Severity]++
	}
	return counts
}

// CountByType tallies issues per type.
func CountByType(issues []Issue) map[Type]int {
	counts := make(map[Type]int)
	for _, is := range issues {
		counts[is.Type]++
	}
	return counts
}
