package parsers

import (
	"encoding/json"
	"fmt"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// StaticParser normalizes static-analysis output. The payload nests results
// as language -> tool -> issues, where the per-tool value is either a bare
// issue array or an object carrying an "issues" array next to status and
// execution metadata. Iteration order of both levels follows the payload.
type StaticParser struct {
	payload json.RawMessage
}

// NewStaticParser builds a parser over one static service payload snapshot.
func NewStaticParser(payload json.RawMessage) *StaticParser {
	return &StaticParser{payload: payload}
}

func (p *StaticParser) Category() schemas.Category { return schemas.CategoryStatic }

// Parse flattens every language and tool into one ordered finding list.
// Ids run per tool: "<tool>-0", "<tool>-1", ... The counter spans languages,
// so a tool reported under several languages keeps one id sequence.
func (p *StaticParser) Parse() ([]schemas.Finding, error) {
	var findings []schemas.Finding
	counters := map[string]int{}
	decodeOrdered(p.payload).Each(func(language string, langRaw json.RawMessage) {
		decodeOrdered(langRaw).Each(func(tool string, toolRaw json.RawMessage) {
			for _, issue := range decodeIssueList(toolRaw, "issues") {
				findings = append(findings, p.finding(language, tool, counters[tool], issue))
				counters[tool]++
			}
		})
	})
	return findings, nil
}

// Tools lists every tool key across all languages, in wire order, first
// occurrence winning. The list comes from the payload structure, not from
// findings, so a tool with zero inline issues is still reported.
func (p *StaticParser) Tools() ([]string, error) {
	var tools []string
	seen := map[string]bool{}
	decodeOrdered(p.payload).Each(func(_ string, langRaw json.RawMessage) {
		decodeOrdered(langRaw).Each(func(tool string, _ json.RawMessage) {
			if !seen[tool] {
				seen[tool] = true
				tools = append(tools, tool)
			}
		})
	})
	return tools, nil
}

func (p *StaticParser) finding(language, tool string, index int, issue map[string]any) schemas.Finding {
	f := rawIssueFinding(tool, findingID(tool, index), issue)
	f.Language = language
	return f
}

// rawIssueFinding applies the shared multi-field fallbacks for loosely-typed
// issue objects. The static parser and the hydration path both produce
// findings through it; only the id namespace differs.
func rawIssueFinding(tool, id string, issue map[string]any) schemas.Finding {
	message := stringField(issue, "message", "text", "description", "issue_text")
	if message == "" {
		message = "No description"
	}
	line, _ := intField(issue, "line", "line_number", "lineno", "start_line")
	return schemas.Finding{
		ID:         id,
		Tool:       tool,
		Category:   schemas.CategoryStatic,
		Severity:   NormalizeSeverity(stringField(issue, "severity", "level", "issue_severity")),
		Message:    message,
		File:       stringField(issue, "file", "filename", "file_path", "path", "location"),
		Line:       line,
		RuleID:     stringField(issue, "rule_id", "check_id", "test_id"),
		Confidence: stringField(issue, "confidence", "issue_confidence"),
		Raw:        issue,
	}
}

// MapExternalIssues converts an inline issue array fetched during hydration.
// The ids live in their own "<tool>-hydrated-<n>" namespace so they cannot
// collide with whatever the summary was built from.
func MapExternalIssues(tool string, category schemas.Category, issues []map[string]any) []schemas.Finding {
	findings := make([]schemas.Finding, 0, len(issues))
	for i, issue := range issues {
		f := rawIssueFinding(tool, fmt.Sprintf("%s-hydrated-%d", tool, i), issue)
		f.Category = category
		findings = append(findings, f)
	}
	return findings
}

// DecodeIssueObjects decodes a raw array of issue objects, tolerating and
// skipping nothing: non-object entries become empty objects and fall through
// the usual defaults.
func DecodeIssueObjects(raw json.RawMessage) []map[string]any {
	return decodeIssueList(raw, "issues")
}

// ToolData aggregates one tool's findings plus the status, count, timing and
// external SARIF reference recorded on its raw payload object.
func (p *StaticParser) ToolData(tool string) (schemas.ToolSummary, error) {
	all, _ := p.Parse()
	var issues []schemas.Finding
	for _, f := range all {
		if f.Tool == tool {
			issues = append(issues, f)
		}
	}

	raw := p.toolObject(tool)
	total, ok := intField(raw, "total_issues", "issue_count")
	if !ok {
		total = len(issues)
	}
	return schemas.ToolSummary{
		Name:          tool,
		Category:      schemas.CategoryStatic,
		Status:        stringField(raw, "status"),
		TotalIssues:   total,
		ExecutionTime: executionTime(raw),
		Issues:        issues,
		ExternalRef:   sarifReference(raw),
	}, nil
}

// toolObject scans the nested map for the named tool's raw object. A bare
// issue array has no metadata to offer, so only object-shaped entries count.
func (p *StaticParser) toolObject(tool string) map[string]any {
	var found map[string]any
	decodeOrdered(p.payload).Each(func(_ string, langRaw json.RawMessage) {
		if found != nil {
			return
		}
		if toolRaw, ok := decodeOrdered(langRaw).Get(tool); ok {
			if obj, isObj := decodeValue(toolRaw).(map[string]any); isObj {
				found = obj
			}
		}
	})
	if found == nil {
		return map[string]any{}
	}
	return found
}

// Detail renders the drill-down view for one static finding.
func (p *StaticParser) Detail(id string) (schemas.DetailView, error) {
	all, _ := p.Parse()
	for _, f := range all {
		if f.ID != id {
			continue
		}
		language := f.Language
		if language == "" {
			language = "Static Analysis"
		}
		desc := stringField(f.Raw, "description")
		if desc == "" {
			desc = f.Message
		}
		return schemas.DetailView{
			ID:          f.ID,
			Title:       f.Message,
			Subtitle:    fmt.Sprintf("%s (%s)", f.Tool, language),
			Severity:    f.Severity,
			Description: desc,
			Location:    f.LocationString(),
			Code:        stringField(f.Raw, "code", "context"),
			Remediation: stringField(f.Raw, "remediation", "solution"),
		}, nil
	}
	return schemas.DetailView{}, fmt.Errorf("finding %q: %w", id, ErrFindingNotFound)
}

// executionTime pulls tool timing from an execution record's duration or a
// plain duration field, whichever the tool recorded.
func executionTime(raw map[string]any) string {
	if exec, ok := mapField(raw, "execution"); ok {
		if d, ok := exec["duration"]; ok {
			return stringify(d)
		}
	}
	if d, ok := raw["execution_time"]; ok {
		return stringify(d)
	}
	if d, ok := raw["duration"]; ok {
		return stringify(d)
	}
	return ""
}

// sarifReference extracts the external SARIF artifact path, which tools
// record either nested under a "sarif" object or as a top-level key.
func sarifReference(raw map[string]any) string {
	if s, ok := mapField(raw, "sarif"); ok {
		if ref := stringField(s, "sarif_file"); ref != "" {
			return ref
		}
	}
	return stringField(raw, "sarif_file")
}
