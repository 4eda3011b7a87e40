package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mgrantham/verdict/internal/analyzer"
	"github.com/mgrantham/verdict/internal/issue"
)

// MarkdownWriter outputs a shareable markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, result *analyzer.ProjectAnalysisResult) error {
	fmt.Fprintf(w, "# Verdict Analysis: %s\n\n", result.ProjectName)

	counts := severityCounts(result)
	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	for _, sev := range severityOrder {
		fmt.Fprintf(w, "| %s | %d |\n", titleCase(string(sev)), counts[sev])
	}
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", result.TotalIssues)

	fmt.Fprintf(w, "Analyzed %d file(s)", result.FilesAnalyzed)
	if result.FailedFiles > 0 {
		fmt.Fprintf(w, ", %d skipped or failed", result.FailedFiles)
	}
	fmt.Fprintf(w, ".\n\n")

	for _, path := range sortedPaths(result) {
		fa := result.FileAnalyses[path]
		if len(fa.Issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "<details>\n<summary><code>%s</code> (%d)</summary>\n\n", path, len(fa.Issues))
		for _, is := range sortIssues(fa.Issues) {
			fmt.Fprintf(w, "- %s **%s** (%s, %s)%s: %s\n",
				mdSeverityIcon(is.Severity), lineRange(is.LineStart, is.LineEnd),
				is.Severity, is.Type, mdFixedMark(is.Fixed), is.Description)
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}

	for _, out := range result.Outcomes {
		if out.Status == analyzer.StatusOk {
			continue
		}
		fmt.Fprintf(w, "> **%s** `%s`: %s\n", strings.ToUpper(string(out.Status)), out.Path, out.Reason)
	}

	if result.ProjectSummary != "" {
		fmt.Fprintf(w, "\n## Summary\n\n%s\n", result.ProjectSummary)
	}
	if len(result.GrowthRecommendations) > 0 {
		fmt.Fprintf(w, "\n## Recommendations\n\n")
		for i, rec := range result.GrowthRecommendations {
			fmt.Fprintf(w, "%d. **%s**", i+1, rec.Title)
			if rec.Description != "" {
				fmt.Fprintf(w, " %s", rec.Description)
			}
			fmt.Fprintln(w)
		}
	}
	if result.SecurityOverview != "" {
		fmt.Fprintf(w, "\n## Security Overview\n\n%s\n", result.SecurityOverview)
	}

	fmt.Fprintf(w, "\n*Completed in %s, %d tokens used.*\n",
		result.ExecutionTime.Round(timePrecision), result.TotalTokens)
	return nil
}

func mdSeverityIcon(s issue.Severity) string {
	switch s {
	case issue.SeverityCritical:
		return ":red_circle:"
	case issue.SeverityMajor:
		return ":orange_circle:"
	case issue.SeverityMinor:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func mdFixedMark(fixed bool) string {
	if fixed {
		return " ~~fixed~~"
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
