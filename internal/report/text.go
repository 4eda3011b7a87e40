package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mgrantham/verdict/internal/analyzer"
)

const timePrecision = 10 * time.Millisecond

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, result *analyzer.ProjectAnalysisResult) error {
	ew := &errWriter{w: w}

	ew.printf("Verdict Analysis — %s\n", result.ProjectName)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files analyzed: %d", result.FilesAnalyzed)
	if result.FailedFiles > 0 {
		ew.printf(" (%d skipped or failed)", result.FailedFiles)
	}
	ew.println("")
	ew.printf("Issues: %d total", result.TotalIssues)
	counts := severityCounts(result)
	if result.TotalIssues > 0 {
		parts := make([]string, 0, len(severityOrder))
		for _, sev := range severityOrder {
			if counts[sev] > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", counts[sev], sev))
			}
		}
		ew.printf(" (%s)", strings.Join(parts, ", "))
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	for _, path := range sortedPaths(result) {
		fa := result.FileAnalyses[path]
		ew.printf("\n%s [%s] — %d issue(s)\n", path, fa.Language, len(fa.Issues))
		for _, is := range sortIssues(fa.Issues) {
			ew.printf("  %s [%s/%s] %s\n",
				lineRange(is.LineStart, is.LineEnd), is.Severity, is.Type, statusMark(is.Fixed))
			for _, line := range wrapText(is.Description, 70) {
				ew.printf("    %s\n", line)
			}
		}
	}

	for _, out := range result.Outcomes {
		if out.Status == analyzer.StatusOk {
			continue
		}
		ew.printf("\n%s: %s (%s)\n", strings.ToUpper(string(out.Status)), out.Path, out.Reason)
	}

	if result.ProjectSummary != "" {
		ew.printf("\n%s\nSummary\n", strings.Repeat("─", 60))
		for _, line := range wrapText(result.ProjectSummary, 76) {
			ew.printf("%s\n", line)
		}
	}
	if len(result.GrowthRecommendations) > 0 {
		ew.printf("\nRecommendations\n")
		for i, rec := range result.GrowthRecommendations {
			ew.printf("  %d. %s\n", i+1, rec.Title)
			if rec.Description != "" {
				for _, line := range wrapText(rec.Description, 70) {
					ew.printf("     %s\n", line)
				}
			}
		}
	}
	if result.SecurityOverview != "" {
		ew.printf("\nSecurity Overview\n")
		for _, line := range wrapText(result.SecurityOverview, 76) {
			ew.printf("%s\n", line)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %s (%s per file, %d tokens)\n",
		result.ExecutionTime.Round(timePrecision),
		result.AverageTimePerFile.Round(timePrecision),
		result.TotalTokens)

	return ew.err
}

func lineRange(start, end int) string {
	switch {
	case start == 0:
		return "file"
	case end == 0 || end == start:
		return fmt.Sprintf("line %d", start)
	default:
		return fmt.Sprintf("lines %d-%d", start, end)
	}
}

func statusMark(fixed bool) string {
	if fixed {
		return "(fixed)"
	}
	return ""
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
