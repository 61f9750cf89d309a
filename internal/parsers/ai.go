package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// Pseudo-tool name for legacy AI payloads whose requirement lists sit at the
// top level instead of under named sub-tools.
const legacyAITool = "ai_analysis"

// Requirement-type tags carried on AI findings.
const (
	subcategoryFunctional = "functional"
	subcategoryStylistic  = "stylistic"
	subcategoryEndpoint   = "endpoint"
)

// AIParser normalizes AI-review output across two payload generations. The
// current format keys results by sub-tool (a requirements checker, a code
// quality analyzer), each sub-tool an object with "status" and "results".
// When at least one such sub-tool is present it is the sole source; the
// legacy top-level requirement arrays are only consulted otherwise. A payload
// mixing a populated sub-tool map with extra legacy arrays deliberately drops
// the legacy data.
type AIParser struct {
	payload json.RawMessage
}

// NewAIParser builds a parser over one AI service payload snapshot.
func NewAIParser(payload json.RawMessage) *AIParser {
	return &AIParser{payload: payload}
}

func (p *AIParser) Category() schemas.Category { return schemas.CategoryAI }

// subTools returns the current-format sub-tool members in wire order. A
// member qualifies when it is an object carrying a "results" member.
func (p *AIParser) subTools() []struct {
	name string
	obj  map[string]any
} {
	var tools []struct {
		name string
		obj  map[string]any
	}
	decodeOrdered(p.payload).Each(func(name string, raw json.RawMessage) {
		obj, isObj := decodeValue(raw).(map[string]any)
		if !isObj {
			return
		}
		if _, ok := obj["results"]; !ok {
			return
		}
		tools = append(tools, struct {
			name string
			obj  map[string]any
		}{name, obj})
	})
	return tools
}

// Parse flattens requirement checks into findings. Passed checks become
// severity "success" rather than being dropped, so summaries can show what
// was verified, not just what failed.
func (p *AIParser) Parse() ([]schemas.Finding, error) {
	tools := p.subTools()
	if len(tools) > 0 {
		var findings []schemas.Finding
		for _, t := range tools {
			results := asObject(t.obj["results"])
			findings = append(findings, p.resultFindings(t.name, results)...)
		}
		return findings, nil
	}

	// Legacy fallback: the requirement arrays sit directly on the payload.
	legacy := asObject(decodeValue(p.payload))
	return p.resultFindings(legacyAITool, legacy), nil
}

// resultFindings walks the three requirement lists one sub-tool may carry,
// keeping one running id namespace per tool.
func (p *AIParser) resultFindings(tool string, results map[string]any) []schemas.Finding {
	var findings []schemas.Finding
	index := 0

	if reqs, ok := sliceField(results, "functional_requirements"); ok {
		for _, r := range reqs {
			req := asObject(r)
			met := requirementMet(req)
			findings = append(findings, schemas.Finding{
				ID:          findingID(tool, index),
				Tool:        tool,
				Category:    schemas.CategoryAI,
				Severity:    passFail(met, schemas.SeverityHigh),
				Message:     requirementMessage(req),
				Status:      metStatus(req, met),
				Subcategory: subcategoryFunctional,
				Raw:         req,
			})
			index++
		}
	}

	if tests, ok := sliceField(results, "control_endpoint_tests"); ok {
		for _, t := range tests {
			test := asObject(t)
			passed, _ := boolField(test, "passed", "success")
			findings = append(findings, schemas.Finding{
				ID:          findingID(tool, index),
				Tool:        tool,
				Category:    schemas.CategoryAI,
				Severity:    passFail(passed, schemas.SeverityHigh),
				Message:     endpointMessage(test),
				Status:      passedStatus(passed),
				Confidence:  "HIGH",
				URL:         stringField(test, "endpoint", "url"),
				Subcategory: subcategoryEndpoint,
				Raw:         test,
			})
			index++
		}
	}

	if reqs, ok := sliceField(results, "stylistic_requirements"); ok {
		for _, r := range reqs {
			req := asObject(r)
			met := requirementMet(req)
			findings = append(findings, schemas.Finding{
				ID:          findingID(tool, index),
				Tool:        tool,
				Category:    schemas.CategoryAI,
				Severity:    passFail(met, schemas.SeverityMedium),
				Message:     requirementMessage(req),
				Status:      metStatus(req, met),
				Subcategory: subcategoryStylistic,
				Raw:         req,
			})
			index++
		}
	}
	return findings
}

// Tools lists the current-format sub-tools in wire order. A legacy payload
// has no sub-tools, so its single pseudo-tool stands in; an empty payload
// yields nothing.
func (p *AIParser) Tools() ([]string, error) {
	subs := p.subTools()
	if len(subs) > 0 {
		tools := make([]string, 0, len(subs))
		for _, t := range subs {
			tools = append(tools, t.name)
		}
		return tools, nil
	}
	if decodeOrdered(p.payload).Len() == 0 {
		return nil, nil
	}
	return []string{legacyAITool}, nil
}

// ToolData with an empty tool name aggregates every finding; a named tool
// narrows to its own slice. Only non-success findings count as issues.
func (p *AIParser) ToolData(tool string) (schemas.ToolSummary, error) {
	all, _ := p.Parse()
	name := tool
	if name == "" {
		name = "ai_review"
	}

	var issues []schemas.Finding
	total := 0
	for _, f := range all {
		if tool != "" && f.Tool != tool {
			continue
		}
		issues = append(issues, f)
		if f.Severity != schemas.SeveritySuccess {
			total++
		}
	}

	status := ""
	for _, t := range p.subTools() {
		if t.name == tool {
			status = stringField(t.obj, "status")
			break
		}
	}
	return schemas.ToolSummary{
		Name:        name,
		Category:    schemas.CategoryAI,
		Status:      status,
		TotalIssues: total,
		Issues:      issues,
	}, nil
}

// Detail renders the drill-down view for one AI finding.
func (p *AIParser) Detail(id string) (schemas.DetailView, error) {
	all, _ := p.Parse()
	return detailFor(all, id, func(f schemas.Finding) string {
		return fmt.Sprintf("%s (AI Review)", f.Tool)
	})
}

// requirementMet resolves the pass/fail signal tools express as a bool or a
// status string.
func requirementMet(req map[string]any) bool {
	if met, ok := boolField(req, "met", "passed"); ok {
		return met
	}
	status := stringField(req, "status")
	return strings.EqualFold(status, "met") || strings.EqualFold(status, "passed")
}

func requirementMessage(req map[string]any) string {
	if msg := stringField(req, "requirement", "description", "name", "message"); msg != "" {
		return msg
	}
	return "No description"
}

// endpointMessage renders "<METHOD> <endpoint>" for control-endpoint tests.
func endpointMessage(test map[string]any) string {
	method := strings.ToUpper(stringField(test, "method"))
	if method == "" {
		method = "GET"
	}
	return fmt.Sprintf("%s %s", method, stringField(test, "endpoint", "url"))
}

func passFail(passed bool, failSeverity schemas.Severity) schemas.Severity {
	if passed {
		return schemas.SeveritySuccess
	}
	return failSeverity
}

// metStatus passes through a reported status string and derives one when the
// tool only sent a boolean.
func metStatus(req map[string]any, met bool) string {
	if s := stringField(req, "status"); s != "" {
		return s
	}
	if met {
		return "Met"
	}
	return "Not Met"
}

func passedStatus(passed bool) string {
	if passed {
		return "Passed"
	}
	return "Failed"
}
