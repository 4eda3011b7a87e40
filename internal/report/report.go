package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mgrantham/verdict/internal/analyzer"
	"github.com/mgrantham/verdict/internal/issue"
)

// Writer renders an analysis result in a specific format.
type Writer interface {
	Write(w io.Writer, result *analyzer.ProjectAnalysisResult) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteResult writes the result to the specified output (file path or stdout).
func WriteResult(result *analyzer.ProjectAnalysisResult, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, result)
}

// sortedPaths returns file analysis paths in lexical order.
func sortedPaths(result *analyzer.ProjectAnalysisResult) []string {
	paths := make([]string, 0, len(result.FileAnalyses))
	for p := range result.FileAnalyses {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// sortIssues orders issues most severe first, then by starting line.
func sortIssues(issues []issue.Issue) []issue.Issue {
	out := make([]issue.Issue, len(issues))
	copy(out, issues)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := issue.SeverityRank(out[i].Severity), issue.SeverityRank(out[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return out[i].LineStart < out[j].LineStart
	})
	return out
}

// severityCounts tallies issues across all files by severity.
func severityCounts(result *analyzer.ProjectAnalysisResult) map[issue.Severity]int {
	counts := make(map[issue.Severity]int)
	for _, fa := range result.FileAnalyses {
		for _, is := range fa.Issues {
			counts[is.Severity]++
		}
	}
	return counts
}

var severityOrder = []issue.Severity{
	issue.SeverityCritical,
	issue.SeverityMajor,
	issue.SeverityMinor,
	issue.SeverityInfo,
}
