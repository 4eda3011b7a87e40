package issue

import "regexp"

// Keyword families for severity and type classification. Matching is
// case-insensitive and on word boundaries so "button" never matches "bug".
var (
	criticalRe = regexp.MustCompile(`(?i)\b(critical|severe|serious|crash(es|ed)?|security|exploit|vulnerabilit(y|ies))\b`)
	majorRe    = regexp.MustCompile(`(?i)\b(major|important|significant|errors?|bugs?)\b`)
	minorRe    = regexp.MustCompile(`(?i)\b(minor|style|formatting|suggestion|improvement)\b`)

	securityTypeRe    = regexp.MustCompile(`(?i)\b(security|vulnerabilit(y|ies)|exploit|injection|xss|csrf|unsafe|sanitiz)\b`)
	performanceTypeRe = regexp.MustCompile(`(?i)\b(performance|slow|speed|memory|cpu|efficien(t|cy)|leak|latency)\b`)
	maintainTypeRe    = regexp.MustCompile(`(?i)\b(maintainabilit(y|ies)|readability|clarity|documentation|style|formatting|naming|duplicat)\b`)
	bugTypeRe         = regexp.MustCompile(`(?i)\b(bugs?|errors?|exceptions?|crash(es|ed)?|incorrect|wrong|nil|null)\b`)
)

// Classify assigns a severity and type to an issue from keyword heuristics
// over its title or description. Unmatched text defaults to a minor, general
// issue; "info" is only ever produced by structured model output, never by
// classification.
func Classify(title string) (Severity, Type) {
	sev := SeverityMinor
	switch {
	case criticalRe.MatchString(title):
		sev = SeverityCritical
	case majorRe.MatchString(title):
		sev = SeverityMajor
	case minorRe.MatchString(title):
		sev = SeverityMinor
	}

	typ := TypeGeneral
	switch {
	case securityTypeRe.MatchString(title):
		typ = TypeSecurity
	case performanceTypeRe.MatchString(title):
		typ = TypePerformance
	case maintainTypeRe.MatchString(title):
		typ = TypeMaintainability
	case bugTypeRe.MatchString(title):
		typ = TypeBug
	}

	return sev, typ
}
