package schemas

import "encoding/json"

// -- Finding Schemas --

// Severity represents the normalized severity of a finding. The values are
// lowercase to keep them stable across config files and API payloads.
type Severity string

// Constants defining the standard severity levels for findings.
const (
	SeverityCritical Severity = "critical" // Represents a critical issue.
	SeverityHigh     Severity = "high"     // Represents a high-severity issue.
	SeverityMedium   Severity = "medium"   // Represents a medium-severity issue.
	SeverityLow      Severity = "low"      // Represents a low-severity issue.
	SeverityInfo     Severity = "info"     // Represents an informational finding.

	// SeveritySuccess marks a requirement check that passed. It is only
	// produced by the AI category; it never comes out of normalization.
	SeveritySuccess Severity = "success"
)

// Weight returns a numeric weight for sorting (higher = more severe).
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

func (s Severity) String() string { return string(s) }

// Category identifies which analysis family a finding came from.
type Category string

// The supported analysis categories.
const (
	CategoryStatic      Category = "static"
	CategoryDynamic     Category = "dynamic"
	CategoryPerformance Category = "performance"
	CategoryAI          Category = "ai"
)

// Finding is one normalized issue produced by a category parser or the SARIF
// adapter. IDs are deterministic (tool name plus positional index) and unique
// only within one Parse call for one tool; they must not be treated as global
// identifiers.
type Finding struct {
	ID       string   `json:"id"`
	Tool     string   `json:"tool"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Location is file+line for code-level findings, or a URL for findings
	// against a running target. A finding carries one or the other.
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	URL  string `json:"url,omitempty"`

	RuleID     string `json:"rule_id,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Status     string `json:"status,omitempty"`
	Language   string `json:"language,omitempty"`

	// Subcategory tags AI findings with their requirement type
	// (functional, stylistic, endpoint).
	Subcategory string `json:"subcategory,omitempty"`

	// Metric and Value are set on performance findings only.
	Metric string `json:"metric,omitempty"`
	Value  string `json:"value,omitempty"`

	// Raw preserves the untouched source sub-object for audit and detail
	// rendering. The normalization logic never reads it back.
	Raw map[string]any `json:"raw,omitempty"`
}

// LocationString renders the finding's location the way detail views show it:
// "file:line" for code findings, the URL otherwise.
func (f Finding) LocationString() string {
	if f.URL != "" {
		return f.URL
	}
	if f.File == "" {
		return ""
	}
	return FormatFileLine(f.File, f.Line)
}

// Metric is one named measurement surfaced by a tool summary.
type Metric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ToolSummary aggregates one tool's output within one category.
//
// TotalIssues is the count the backend reported and is authoritative: it may
// exceed len(Issues) while hydration is pending, and it is deliberately not
// recomputed after hydration replaces the issue list.
type ToolSummary struct {
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Status        string    `json:"status"`
	TotalIssues   int       `json:"total_issues"`
	ExecutionTime string    `json:"execution_time,omitempty"`
	Issues        []Finding `json:"issues"`
	Metrics       []Metric  `json:"metrics,omitempty"`

	// ExternalRef points at a SARIF artifact stored outside the payload.
	// Its presence is one of the hydration preconditions.
	ExternalRef string `json:"external_ref,omitempty"`
}

// HydrationEligible reports whether this summary satisfies all three
// preconditions for fetching extended issue data: nothing materialized
// locally, a non-zero reported count, and an external artifact to resolve.
func (t ToolSummary) HydrationEligible() bool {
	return len(t.Issues) == 0 && t.TotalIssues > 0 && t.ExternalRef != ""
}

// DetailView is the drill-down rendering of one finding.
type DetailView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
	Code        string   `json:"code,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
}

// HydrationEnvelope is the wire shape of the extended-results endpoint:
// GET /results/{taskId}/tools/{toolName}?service={category}.
type HydrationEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}
