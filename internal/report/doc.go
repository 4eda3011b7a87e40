// Package report formats analysis results for display or machine consumption.
//
// Three formats are supported:
//   - text     — human-readable terminal output (default)
//   - json     — full structured JSON result
//   - markdown — shareable report with collapsible per-file sections
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*analyzer.ProjectAnalysisResult].
// [WriteResult] is a convenience helper that handles destination selection.
package report
