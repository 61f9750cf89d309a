package parsers

import (
	"encoding/json"
	"fmt"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// Internal tool identifiers for the three dynamic sub-scanners. Callers may
// refer to the vulnerability scanner by its UI alias "vulnscan".
const (
	toolWebScan   = "web_scan"
	toolVulnScan  = "vulnerability_scan"
	toolPortScan  = "port_scan"
	vulnScanAlias = "vulnscan"
)

// DynamicParser normalizes runtime-scan output. One payload can carry up to
// three independent sub-shapes, each with its own id namespace: web-scan
// alerts keyed by risk level, vulnerability-scan entries, and port-scan
// results (a bare port array or an object with "open_ports").
type DynamicParser struct {
	payload json.RawMessage
}

// NewDynamicParser builds a parser over one dynamic service payload snapshot.
func NewDynamicParser(payload json.RawMessage) *DynamicParser {
	return &DynamicParser{payload: payload}
}

func (p *DynamicParser) Category() schemas.Category { return schemas.CategoryDynamic }

// Parse emits web-scan, vulnerability-scan and port-scan findings, in that
// order, each namespace indexed independently from zero.
func (p *DynamicParser) Parse() ([]schemas.Finding, error) {
	root := decodeOrdered(p.payload)
	var findings []schemas.Finding
	findings = append(findings, p.webScanFindings(root)...)
	findings = append(findings, p.vulnScanFindings(root)...)
	findings = append(findings, p.portScanFindings(root)...)
	return findings, nil
}

// webScanFindings flattens alerts grouped under their risk level. The risk
// key itself is the severity source; the alert object rarely repeats it.
func (p *DynamicParser) webScanFindings(root OrderedObject) []schemas.Finding {
	raw, ok := root.Get(toolWebScan)
	if !ok {
		return nil
	}
	alerts, ok := mapFieldRaw(raw, "alerts")
	if !ok {
		return nil
	}
	var findings []schemas.Finding
	index := 0
	decodeOrdered(alerts).Each(func(risk string, group json.RawMessage) {
		for _, alert := range decodeIssueList(group, "alerts") {
			message := stringField(alert, "alert", "name", "message", "description")
			if message == "" {
				message = "No description"
			}
			findings = append(findings, schemas.Finding{
				ID:         findingID(toolWebScan, index),
				Tool:       toolWebScan,
				Category:   schemas.CategoryDynamic,
				Severity:   NormalizeSeverity(risk),
				Message:    message,
				URL:        stringField(alert, "url", "uri"),
				Confidence: stringField(alert, "confidence"),
				Raw:        alert,
			})
			index++
		}
	})
	return findings
}

// vulnScanFindings reads vulnerability entries; unlike web-scan alerts they
// carry their own severity field.
func (p *DynamicParser) vulnScanFindings(root OrderedObject) []schemas.Finding {
	raw, ok := root.Get(toolVulnScan)
	if !ok {
		return nil
	}
	var findings []schemas.Finding
	for i, vuln := range decodeIssueList(raw, "vulnerabilities") {
		message := stringField(vuln, "description", "type")
		if message == "" {
			message = "No description"
		}
		findings = append(findings, schemas.Finding{
			ID:       findingID(toolVulnScan, i),
			Tool:     toolVulnScan,
			Category: schemas.CategoryDynamic,
			Severity: NormalizeSeverity(stringField(vuln, "severity")),
			Message:  message,
			URL:      stringField(vuln, "url", "target", "host"),
			Raw:      vuln,
		})
	}
	return findings
}

// portScanFindings reports every open port as informational. The scanner
// emits either a bare port array or {host, open_ports}.
func (p *DynamicParser) portScanFindings(root OrderedObject) []schemas.Finding {
	raw, ok := root.Get(toolPortScan)
	if !ok {
		return nil
	}
	host := "target"
	var ports []any
	switch v := decodeValue(raw).(type) {
	case []any:
		ports = v
	case map[string]any:
		if h := stringField(v, "host"); h != "" {
			host = h
		}
		ports, _ = sliceField(v, "open_ports")
	}

	findings := make([]schemas.Finding, 0, len(ports))
	for i, port := range ports {
		label := stringify(port)
		if obj, ok := port.(map[string]any); ok {
			label = stringify(obj["port"])
		}
		findings = append(findings, schemas.Finding{
			ID:       findingID(toolPortScan, i),
			Tool:     toolPortScan,
			Category: schemas.CategoryDynamic,
			Severity: schemas.SeverityInfo,
			Message:  fmt.Sprintf("Open Port: %s", label),
			URL:      host,
			Raw:      map[string]any{"port": port, "host": host},
		})
	}
	return findings
}

// Tools lists the sub-scanners whose source section materialized on the
// payload, in the same fixed order Parse emits them.
func (p *DynamicParser) Tools() ([]string, error) {
	root := decodeOrdered(p.payload)
	var tools []string
	for _, name := range []string{toolWebScan, toolVulnScan, toolPortScan} {
		if _, ok := root.Get(name); ok {
			tools = append(tools, name)
		}
	}
	return tools, nil
}

// ToolData aggregates one sub-scanner's findings. Status is inferred from
// presence: a materialized source section implies the scanner ran to
// completion ("success"); an absent one reports the default "completed".
func (p *DynamicParser) ToolData(tool string) (schemas.ToolSummary, error) {
	name := canonicalDynamicTool(tool)
	all, _ := p.Parse()
	var issues []schemas.Finding
	for _, f := range all {
		if f.Tool == name {
			issues = append(issues, f)
		}
	}

	status := "completed"
	if _, ok := decodeOrdered(p.payload).Get(name); ok {
		status = "success"
	}
	return schemas.ToolSummary{
		Name:        name,
		Category:    schemas.CategoryDynamic,
		Status:      status,
		TotalIssues: len(issues),
		Issues:      issues,
	}, nil
}

// Detail renders the drill-down view for one dynamic finding.
func (p *DynamicParser) Detail(id string) (schemas.DetailView, error) {
	all, _ := p.Parse()
	return detailFor(all, id, func(f schemas.Finding) string {
		return fmt.Sprintf("%s (Dynamic Analysis)", f.Tool)
	})
}

// canonicalDynamicTool resolves UI aliases to internal identifiers.
func canonicalDynamicTool(tool string) string {
	if tool == vulnScanAlias {
		return toolVulnScan
	}
	return tool
}

// mapFieldRaw digs one level into a raw object member without losing the
// wire ordering of whatever sits below it.
func mapFieldRaw(raw json.RawMessage, key string) (json.RawMessage, bool) {
	return decodeOrdered(raw).Get(key)
}
