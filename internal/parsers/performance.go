package parsers

import (
	"encoding/json"
	"fmt"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// Latency above this many milliseconds is flagged instead of merely reported.
const slowLatencyThresholdMs = 1000

// Reserved top-level keys on a performance payload that are run metadata,
// not tool runs.
var performanceMetaKeys = map[string]bool{
	"summary": true,
	"status":  true,
	"error":   true,
}

// PerformanceParser normalizes load-test output. Runs live in a "tool_runs"
// map, but older payloads also drop runs directly at the top level; any
// non-reserved object-valued key counts as a run, with "tool_runs" entries
// winning name collisions.
type PerformanceParser struct {
	payload json.RawMessage
}

// NewPerformanceParser builds a parser over one performance payload snapshot.
func NewPerformanceParser(payload json.RawMessage) *PerformanceParser {
	return &PerformanceParser{payload: payload}
}

func (p *PerformanceParser) Category() schemas.Category { return schemas.CategoryPerformance }

// toolRuns merges the "tool_runs" map with loose top-level runs, preserving
// order within each group.
func (p *PerformanceParser) toolRuns() []struct {
	name string
	run  map[string]any
} {
	root := decodeOrdered(p.payload)
	var runs []struct {
		name string
		run  map[string]any
	}
	seen := map[string]bool{}

	if nested, ok := root.Get("tool_runs"); ok {
		decodeOrdered(nested).Each(func(name string, raw json.RawMessage) {
			if obj, isObj := decodeValue(raw).(map[string]any); isObj {
				runs = append(runs, struct {
					name string
					run  map[string]any
				}{name, obj})
				seen[name] = true
			}
		})
	}
	root.Each(func(name string, raw json.RawMessage) {
		if name == "tool_runs" || performanceMetaKeys[name] || seen[name] {
			return
		}
		if obj, isObj := decodeValue(raw).(map[string]any); isObj {
			runs = append(runs, struct {
				name string
				run  map[string]any
			}{name, obj})
		}
	})
	return runs
}

// Parse emits at most a failure finding per failed run, or one finding per
// recognized metric otherwise. Sub-threshold metrics stay informational.
func (p *PerformanceParser) Parse() ([]schemas.Finding, error) {
	var findings []schemas.Finding
	for _, tr := range p.toolRuns() {
		findings = append(findings, p.runFindings(tr.name, tr.run)...)
	}
	return findings, nil
}

func (p *PerformanceParser) runFindings(tool string, run map[string]any) []schemas.Finding {
	status := stringField(run, "status")
	if status == "failed" || status == "error" {
		reason := stringField(run, "error")
		if reason == "" {
			reason = "Unknown error"
		}
		return []schemas.Finding{{
			ID:       findingID(tool, 0),
			Tool:     tool,
			Category: schemas.CategoryPerformance,
			Severity: schemas.SeverityHigh,
			Message:  fmt.Sprintf("Tool execution failed: %s", reason),
			Status:   status,
			Raw:      run,
		}}
	}

	metrics := run
	if nested, ok := mapField(run, "metrics"); ok {
		metrics = nested
	}

	var findings []schemas.Finding
	index := 0
	if rps, ok := floatField(metrics, "requests_per_second"); ok {
		findings = append(findings, schemas.Finding{
			ID:       findingID(tool, index),
			Tool:     tool,
			Category: schemas.CategoryPerformance,
			Severity: schemas.SeverityInfo,
			Message:  fmt.Sprintf("RPS: %.2f", rps),
			Metric:   "RPS",
			Value:    fmt.Sprintf("%.2f", rps),
			Raw:      run,
		})
		index++
	}
	if latency, ok := floatField(metrics, "avg_response_time"); ok {
		severity := schemas.SeverityInfo
		if latency > slowLatencyThresholdMs {
			severity = schemas.SeverityMedium
		}
		findings = append(findings, schemas.Finding{
			ID:       findingID(tool, index),
			Tool:     tool,
			Category: schemas.CategoryPerformance,
			Severity: severity,
			Message:  fmt.Sprintf("Avg Latency: %.2fms", latency),
			Metric:   "Avg Latency",
			Value:    fmt.Sprintf("%.2fms", latency),
			Raw:      run,
		})
	}
	return findings
}

// Tools lists every run name, merged the same way toolRuns merges them.
func (p *PerformanceParser) Tools() ([]string, error) {
	runs := p.toolRuns()
	tools := make([]string, 0, len(runs))
	for _, tr := range runs {
		tools = append(tools, tr.name)
	}
	return tools, nil
}

// ToolData surfaces each metric finding as a named measurement against the
// run's target URL. Only high-severity findings (failed runs) count as
// issues; healthy metrics are reported but not counted.
func (p *PerformanceParser) ToolData(tool string) (schemas.ToolSummary, error) {
	all, _ := p.Parse()
	var issues []schemas.Finding
	var metrics []schemas.Metric
	total := 0
	var run map[string]any
	for _, tr := range p.toolRuns() {
		if tr.name == tool {
			run = tr.run
			break
		}
	}

	target := stringField(run, "url", "target_url", "target")
	for _, f := range all {
		if f.Tool != tool {
			continue
		}
		issues = append(issues, f)
		if f.Severity == schemas.SeverityHigh {
			total++
		}
		if f.Metric != "" {
			name := f.Metric
			if target != "" {
				name = fmt.Sprintf("%s (%s)", f.Metric, target)
			}
			metrics = append(metrics, schemas.Metric{Name: name, Value: f.Value})
		}
	}

	return schemas.ToolSummary{
		Name:          tool,
		Category:      schemas.CategoryPerformance,
		Status:        stringField(run, "status"),
		TotalIssues:   total,
		ExecutionTime: executionTime(run),
		Issues:        issues,
		Metrics:       metrics,
	}, nil
}

// Detail renders the drill-down view for one performance finding.
func (p *PerformanceParser) Detail(id string) (schemas.DetailView, error) {
	all, _ := p.Parse()
	return detailFor(all, id, func(f schemas.Finding) string {
		return fmt.Sprintf("%s (Performance)", f.Tool)
	})
}
