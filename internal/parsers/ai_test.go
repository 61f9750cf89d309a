package parsers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// An unmet functional requirement in the current multi-tool format becomes a
// high finding tagged with its requirement type.
func TestAIParser_UnmetFunctionalRequirement(t *testing.T) {
	payload := json.RawMessage(`{
		"requirements_checker": {
			"status": "completed",
			"results": {
				"functional_requirements": [
					{"requirement": "Service exposes /health", "status": "Not Met"}
				]
			}
		}
	}`)

	findings, err := NewAIParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "requirements_checker-0", findings[0].ID)
	assert.Equal(t, schemas.SeverityHigh, findings[0].Severity)
	assert.Equal(t, "functional", findings[0].Subcategory)
	assert.Equal(t, "Not Met", findings[0].Status)
	assert.Equal(t, "Service exposes /health", findings[0].Message)
}

// Passed checks are kept as success findings so summaries show what was
// verified; endpoint tests always report HIGH confidence.
func TestAIParser_EndpointAndStylisticChecks(t *testing.T) {
	payload := json.RawMessage(`{
		"requirements_checker": {
			"status": "completed",
			"results": {
				"functional_requirements": [{"requirement": "Auth required", "met": true}],
				"control_endpoint_tests": [
					{"method": "post", "endpoint": "/api/login", "passed": true},
					{"method": "get", "endpoint": "/api/admin", "passed": false}
				]
			}
		},
		"code_quality_analyzer": {
			"status": "completed",
			"results": {
				"stylistic_requirements": [{"description": "Consistent naming", "met": false}]
			}
		}
	}`)

	findings, err := NewAIParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 4)

	assert.Equal(t, schemas.SeveritySuccess, findings[0].Severity)
	assert.Equal(t, "Met", findings[0].Status)

	assert.Equal(t, "POST /api/login", findings[1].Message)
	assert.Equal(t, schemas.SeveritySuccess, findings[1].Severity)
	assert.Equal(t, "HIGH", findings[1].Confidence)
	assert.Equal(t, "endpoint", findings[1].Subcategory)

	assert.Equal(t, "GET /api/admin", findings[2].Message)
	assert.Equal(t, schemas.SeverityHigh, findings[2].Severity)
	assert.Equal(t, "Failed", findings[2].Status)

	assert.Equal(t, "code_quality_analyzer-0", findings[3].ID)
	assert.Equal(t, schemas.SeverityMedium, findings[3].Severity)
	assert.Equal(t, "stylistic", findings[3].Subcategory)
}

// Legacy payloads keep the requirement arrays at the top level and parse
// under the legacy pseudo-tool.
func TestAIParser_LegacyFallback(t *testing.T) {
	payload := json.RawMessage(`{
		"functional_requirements": [{"requirement": "Must paginate", "met": false}],
		"stylistic_requirements": [{"description": "Docstrings", "met": true}]
	}`)

	findings, err := NewAIParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, legacyAITool+"-0", findings[0].ID)
	assert.Equal(t, schemas.SeverityHigh, findings[0].Severity)
	assert.Equal(t, schemas.SeveritySuccess, findings[1].Severity)
}

// A populated sub-tool map is the sole source; stray legacy arrays next to
// it are deliberately ignored.
func TestAIParser_NewFormatPrecedence(t *testing.T) {
	payload := json.RawMessage(`{
		"requirements_checker": {
			"status": "completed",
			"results": {"functional_requirements": [{"requirement": "A", "met": true}]}
		},
		"functional_requirements": [{"requirement": "legacy leftover", "met": false}]
	}`)

	findings, err := NewAIParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "requirements_checker", findings[0].Tool)
}

// Success findings are reported but never counted as issues.
func TestAIParser_ToolDataCountsFailuresOnly(t *testing.T) {
	payload := json.RawMessage(`{
		"requirements_checker": {
			"status": "completed",
			"results": {
				"functional_requirements": [
					{"requirement": "A", "met": true},
					{"requirement": "B", "met": false},
					{"requirement": "C", "met": false}
				]
			}
		}
	}`)
	p := NewAIParser(payload)

	all, err := p.ToolData("")
	require.NoError(t, err)
	assert.Len(t, all.Issues, 3)
	assert.Equal(t, 2, all.TotalIssues)

	named, err := p.ToolData("requirements_checker")
	require.NoError(t, err)
	assert.Equal(t, "completed", named.Status)
	assert.Equal(t, 2, named.TotalIssues)
}

// Tool listing names the sub-tools when present and stands in the legacy
// pseudo-tool otherwise; an empty payload lists nothing.
func TestAIParser_Tools(t *testing.T) {
	newFormat := json.RawMessage(`{
		"requirements_checker": {"status": "completed", "results": {}},
		"code_quality_analyzer": {"results": {}}
	}`)
	tools, err := NewAIParser(newFormat).Tools()
	require.NoError(t, err)
	assert.Equal(t, []string{"requirements_checker", "code_quality_analyzer"}, tools)

	legacy := json.RawMessage(`{"functional_requirements": [{"requirement": "r", "met": true}]}`)
	tools, err = NewAIParser(legacy).Tools()
	require.NoError(t, err)
	assert.Equal(t, []string{"ai_analysis"}, tools)

	tools, err = NewAIParser(json.RawMessage(`{}`)).Tools()
	require.NoError(t, err)
	assert.Empty(t, tools)
}
