package sarif

import (
	"fmt"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// Fallbacks for documents with missing tool metadata or locations.
const (
	unknownTool   = "Unknown Tool"
	unknownFile   = "unknown"
	noDescription = "No description"
)

// Adapter converts SARIF documents into canonical findings. It is used both
// standalone and by any category parser whose tool emits SARIF, so the
// finding category is fixed at construction.
type Adapter struct {
	category schemas.Category
}

// NewAdapter returns an adapter tagging its findings with the given category.
func NewAdapter(category schemas.Category) *Adapter {
	return &Adapter{category: category}
}

// ParseDocument decodes raw SARIF JSON and converts it. A document that does
// not decode yields no findings; partial documents convert as far as their
// shape allows.
func (a *Adapter) ParseDocument(raw []byte) []schemas.Finding {
	var log Log
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil
	}
	return a.Parse(&log)
}

// Parse walks runs and results in document order. Ids encode the run and
// result positions ("<tool>-<run>-<result>") so they stay stable across
// repeated parses of the same document.
func (a *Adapter) Parse(log *Log) []schemas.Finding {
	if log == nil {
		return nil
	}
	var findings []schemas.Finding
	for runIdx, run := range log.Runs {
		if run == nil {
			continue
		}
		tool := unknownTool
		var rules map[string]*ReportingDescriptor
		if run.Tool != nil && run.Tool.Driver != nil {
			if run.Tool.Driver.Name != "" {
				tool = run.Tool.Driver.Name
			}
			rules = ruleIndex(run.Tool.Driver.Rules)
		}
		for resIdx, result := range run.Results {
			if result == nil {
				continue
			}
			findings = append(findings, a.finding(tool, rules, runIdx, resIdx, result))
		}
	}
	return findings
}

func (a *Adapter) finding(tool string, rules map[string]*ReportingDescriptor, runIdx, resIdx int, result *Result) schemas.Finding {
	rule := rules[result.RuleID]

	level := result.Level
	if level == "" && rule != nil && rule.DefaultConfiguration != nil {
		level = rule.DefaultConfiguration.Level
	}

	message := messageText(result.Message)
	if message == "" && rule != nil {
		message = descriptionText(rule.ShortDescription)
	}
	if message == "" {
		message = noDescription
	}

	file, line := resultLocation(result)
	return schemas.Finding{
		ID:       fmt.Sprintf("%s-%d-%d", tool, runIdx, resIdx),
		Tool:     tool,
		Category: a.category,
		Severity: levelSeverity(level),
		Message:  message,
		File:     file,
		Line:     line,
		RuleID:   result.RuleID,
		Raw:      rawObject(result),
	}
}

// levelSeverity is the SARIF-specific severity map. It is narrower than the
// generic normalizer on purpose: SARIF levels are a closed set.
func levelSeverity(level Level) schemas.Severity {
	switch level {
	case LevelError:
		return schemas.SeverityHigh
	case LevelWarning:
		return schemas.SeverityMedium
	case LevelNote:
		return schemas.SeverityLow
	default:
		return schemas.SeverityInfo
	}
}

func ruleIndex(rules []*ReportingDescriptor) map[string]*ReportingDescriptor {
	if len(rules) == 0 {
		return nil
	}
	index := make(map[string]*ReportingDescriptor, len(rules))
	for _, r := range rules {
		if r != nil {
			index[r.ID] = r
		}
	}
	return index
}

// resultLocation reads the first physical location, defaulting the artifact
// URI to "unknown" and the start line to 0.
func resultLocation(result *Result) (string, int) {
	file := unknownFile
	line := 0
	if len(result.Locations) == 0 || result.Locations[0] == nil {
		return file, line
	}
	phys := result.Locations[0].PhysicalLocation
	if phys == nil {
		return file, line
	}
	if phys.ArtifactLocation != nil && phys.ArtifactLocation.URI != nil && *phys.ArtifactLocation.URI != "" {
		file = *phys.ArtifactLocation.URI
	}
	if phys.Region != nil && phys.Region.StartLine != nil {
		line = *phys.Region.StartLine
	}
	return file, line
}

func messageText(m *Message) string {
	if m == nil || m.Text == nil {
		return ""
	}
	return *m.Text
}

func descriptionText(m *MultiformatMessageString) string {
	if m == nil || m.Text == nil {
		return ""
	}
	return *m.Text
}

// rawObject round-trips the typed result back into the loose map shape the
// audit trail stores for every finding.
func rawObject(result *Result) map[string]any {
	data, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return obj
}
