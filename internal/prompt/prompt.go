package prompt

import (
	"fmt"
	"strings"

	"github.com/mgrantham/verdict/internal/issue"
)

// Pass names one analysis pass type.
type Pass string

const (
	PassStandard    Pass = "standard"
	PassSecurity    Pass = "security"
	PassPerformance Pass = "performance"
)

const standardFocus = `
Focus on:
1. Code quality and best practices
2. Potential bugs and edge cases
3. Design patterns and architecture
4. Code organization and readability
5. Error handling and robustness
`

const securityFocus = `
Focus on SECURITY issues only:
1. Potential vulnerabilities
2. Input validation and sanitization
3. Authentication and authorization issues
4. Data exposure risks
5. Injection attacks
6. Hardcoded secrets or credentials
`

const performanceFocus = `
Focus on PERFORMANCE issues only:
1. Algorithm and data structure efficiency
2. Resource usage (memory, CPU, I/O)
3. Bottlenecks and optimization opportunities
4. Caching and memoization
5. Database queries and network calls
`

const formatInstructions = `
FORMAT YOUR RESPONSE:
1. Line numbers MUST be specified for each issue
2. Each issue MUST have a clear description
3. Each issue MUST include a specific, actionable recommendation
4. Use Markdown formatting for clarity

Example:
### Issue #1 (Lines 25-28):
The error handling is insufficient. The catch block silently ignores errors.
`

// AnalysisSystem builds the system prompt for one analysis pass over one
// file. minIssues sets the floor the model is pushed to find.
func AnalysisSystem(pass Pass, language, path string, minIssues int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert code reviewer with years of experience in %s.\n", language)
	b.WriteString("You are highly critical and thorough, always finding issues even in well-written code.\n")
	fmt.Fprintf(&b, "You are analyzing the file: %s\n", path)
	fmt.Fprintf(&b, "\nYour task is to perform a %s analysis of the code you are given.\n", pass)

	switch pass {
	case PassSecurity:
		b.WriteString(securityFocus)
	case PassPerformance:
		b.WriteString(performanceFocus)
	default:
		b.WriteString(standardFocus)
	}

	b.WriteString(formatInstructions)
	if minIssues > 0 {
		fmt.Fprintf(&b, "\nIMPORTANT: If you cannot find at least %d issues, you are not looking hard enough. Be critical!\n", minIssues)
	}
	return b.String()
}

// AnalysisUser builds the user prompt: the code in a fenced block, preceded
// by the prior analysis summary when one exists.
func AnalysisUser(code, language, contextSummary string) string {
	var b strings.Builder
	if contextSummary != "" {
		fmt.Fprintf(&b, "Previous analysis summary:\n%s\n\n", contextSummary)
	}
	fmt.Fprintf(&b, "```%s\n%s\n```\n\nProvide your analysis:", language, code)
	return b.String()
}

// FixSystem builds the system prompt for generating fixes to a file.
func FixSystem(language, path string, issueCount int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert code fixer specializing in %s.\n", language)
	fmt.Fprintf(&b, "You have been asked to fix issues in the file: %s\n", path)
	b.WriteString(`
IMPORTANT INSTRUCTIONS:
1. Do NOT remove functionality or change the overall behavior
2. Make the minimal necessary changes to fix each issue
3. Return the ENTIRE fixed file in one fenced code block, not just the changed sections
4. Do not introduce new issues
`)
	if issueCount == 1 {
		b.WriteString("\nRemember you are fixing exactly 1 issue.\n")
	} else {
		fmt.Fprintf(&b, "\nRemember you are fixing %d issues.\n", issueCount)
	}
	return b.String()
}

// FixUser builds the user prompt for a fix request: the numbered issue list
// followed by the original code.
func FixUser(code, language string, issues []issue.Issue) string {
	var b strings.Builder

	b.WriteString("ISSUES TO FIX:\n")
	for i, is := range issues {
		b.WriteString(formatIssueLine(i+1, is))
	}
	fmt.Fprintf(&b, "\nORIGINAL CODE:\n```%s\n%s\n```\n\nFIXED CODE:", language, code)
	return b.String()
}

func formatIssueLine(n int, is issue.Issue) string {
	location := ""
	switch {
	case is.LineStart > 0 && is.LineEnd > is.LineStart:
		location = fmt.Sprintf(" (Lines %d-%d)", is.LineStart, is.LineEnd)
	case is.LineStart > 0:
		location = fmt.Sprintf(" (Line %d)", is.LineStart)
	}
	return fmt.Sprintf("Issue #%d%s: %s\n", n, location, is.Description)
}

// SummarySystem builds the system prompt for the project-level summary.
func SummarySystem(project string, filesAnalyzed, issueCount int, topIssues []string) string {
	var b strings.Builder

	b.WriteString("You are an expert software architect and technical lead.\n")
	fmt.Fprintf(&b, "You are analyzing a project called '%s' as a whole.\n\n", project)
	b.WriteString("PROJECT OVERVIEW:\n")
	fmt.Fprintf(&b, "- Files analyzed: %d\n", filesAnalyzed)
	fmt.Fprintf(&b, "- Total issues found: %d\n", issueCount)
	if len(topIssues) > 0 {
		b.WriteString("\nTOP ISSUES:\n")
		for i, ti := range topIssues {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ti)
		}
	}
	b.WriteString(`
Your task is to provide a comprehensive project-level analysis.

Focus on:
1. Overall code quality and architecture
2. Common patterns of issues across files
3. Technical debt assessment
4. Prioritization of fixes

FORMAT YOUR RESPONSE:
1. Start with an executive summary (2-3 paragraphs)
2. Include concrete, actionable recommendations
3. Use Markdown formatting
`)
	return b.String()
}

// GrowthSystem builds the system prompt for growth recommendations. The
// response is expected as a numbered list so it can be split into records.
func GrowthSystem(project string) string {
	var b strings.Builder

	b.WriteString("You are an expert software architect with a focus on scalable applications.\n")
	fmt.Fprintf(&b, "You are analyzing a project called '%s' to provide growth and scalability recommendations.\n", project)
	b.WriteString(`
Focus on:
1. Scaling architecture
2. Database and data storage scalability
3. Security at scale
4. Multi-user support
5. Deployment, testing, and observability

FORMAT YOUR RESPONSE:
1. Provide 5-7 specific recommendations as a numbered list
2. For each: a clear title on the first line, then why it matters and how to implement it
3. Sort by priority
`)
	return b.String()
}

// SecurityOverviewSystem builds the system prompt for the project security
// overview, listing the security issues found per file.
func SecurityOverviewSystem(project string, securityIssues []string) string {
	var b strings.Builder

	b.WriteString("You are an expert security engineer.\n")
	fmt.Fprintf(&b, "You are writing a security overview for a project called '%s'.\n\n", project)
	if len(securityIssues) > 0 {
		b.WriteString("SECURITY ISSUES FOUND:\n")
		for _, si := range securityIssues {
			fmt.Fprintf(&b, "- %s\n", si)
		}
	} else {
		b.WriteString("No security issues were flagged at the file level.\n")
	}
	b.WriteString(`
Your task is to assess the overall security posture, call out the highest
risks first, and recommend concrete remediations. Use Markdown formatting.
`)
	return b.String()
}
