package parsers

import (
	"strings"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// NormalizeSeverity maps an arbitrary tool-reported severity or level string
// onto the fixed severity enum. Matching is case-insensitive substring
// containment, evaluated in priority order so that e.g. "High (error)" still
// lands on critical-adjacent buckets deterministically. Unknown, empty and
// missing values all fall through to info; there is no error path.
//
// The function is idempotent over its own output: normalizing "critical",
// "high", "medium", "low" or "info" returns the same value back.
func NormalizeSeverity(raw string) schemas.Severity {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "critical"):
		return schemas.SeverityCritical
	case strings.Contains(s, "high"), strings.Contains(s, "error"):
		return schemas.SeverityHigh
	case strings.Contains(s, "medium"), strings.Contains(s, "warn"):
		return schemas.SeverityMedium
	case strings.Contains(s, "low"), strings.Contains(s, "note"):
		return schemas.SeverityLow
	default:
		return schemas.SeverityInfo
	}
}
