package parsers

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// One language, one tool, a bare issue array: the missing severity defaults
// to info, "error" normalizes to high, and ids follow the tool-index scheme.
func TestStaticParser_BareIssueArray(t *testing.T) {
	payload := json.RawMessage(`{
		"python": {
			"bandit": [
				{"message": "hardcoded password", "file": "app.py", "line": 10},
				{"severity": "error", "issue_text": "subprocess call", "filename": "run.py", "line_number": 42}
			]
		}
	}`)

	findings, err := NewStaticParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, "bandit-0", findings[0].ID)
	assert.Equal(t, schemas.SeverityInfo, findings[0].Severity)
	assert.Equal(t, "hardcoded password", findings[0].Message)
	assert.Equal(t, "app.py", findings[0].File)
	assert.Equal(t, 10, findings[0].Line)
	assert.Equal(t, "python", findings[0].Language)

	assert.Equal(t, "bandit-1", findings[1].ID)
	assert.Equal(t, schemas.SeverityHigh, findings[1].Severity)
	assert.Equal(t, "subprocess call", findings[1].Message)
	assert.Equal(t, "run.py", findings[1].File)
	assert.Equal(t, 42, findings[1].Line)
}

// Languages and tools must flatten in payload order, not key order.
func TestStaticParser_PreservesPayloadOrder(t *testing.T) {
	payload := json.RawMessage(`{
		"python": {
			"pylint": [{"message": "a"}],
			"bandit": [{"message": "b"}]
		},
		"go": {
			"gosec": [{"message": "c"}]
		}
	}`)

	findings, err := NewStaticParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 3)
	assert.Equal(t, []string{"pylint-0", "bandit-0", "gosec-0"},
		[]string{findings[0].ID, findings[1].ID, findings[2].ID})
}

// A tool reported under several languages keeps one id sequence across the
// whole parse, so its ids stay unique and Detail can reach every finding.
func TestStaticParser_SharedToolAcrossLanguages(t *testing.T) {
	payload := json.RawMessage(`{
		"python": {"semgrep": [{"message": "sql injection"}]},
		"javascript": {"semgrep": [{"message": "eval"}]}
	}`)
	p := NewStaticParser(payload)

	findings, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "semgrep-0", findings[0].ID)
	assert.Equal(t, "python", findings[0].Language)
	assert.Equal(t, "semgrep-1", findings[1].ID)
	assert.Equal(t, "javascript", findings[1].Language)

	detail, err := p.Detail("semgrep-1")
	require.NoError(t, err)
	assert.Equal(t, "eval", detail.Title)
	assert.Equal(t, "semgrep (javascript)", detail.Subtitle)
}

// Tools come from the payload structure in wire order, deduplicated across
// languages, including tools whose inline issue list is empty.
func TestStaticParser_Tools(t *testing.T) {
	payload := json.RawMessage(`{
		"python": {
			"bandit": {"total_issues": 3, "sarif_file": "bandit.sarif", "issues": []},
			"semgrep": [{"message": "a"}]
		},
		"javascript": {"semgrep": [{"message": "b"}]}
	}`)

	tools, err := NewStaticParser(payload).Tools()
	require.NoError(t, err)
	assert.Equal(t, []string{"bandit", "semgrep"}, tools)
}

// Parse must be stateless: two calls over the same snapshot are identical.
func TestStaticParser_ParseIsDeterministic(t *testing.T) {
	payload := json.RawMessage(`{
		"js": {"eslint": {"issues": [{"message": "x", "severity": "warning"}, {"text": "y"}]}}
	}`)
	p := NewStaticParser(payload)

	first, err := p.Parse()
	require.NoError(t, err)
	second, err := p.Parse()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))

	seen := map[string]bool{}
	for _, f := range first {
		assert.False(t, seen[f.ID], "duplicate id %q", f.ID)
		seen[f.ID] = true
	}
}

// The wrapped object form contributes status, counts, timing and the
// external SARIF reference to the tool summary.
func TestStaticParser_ToolData(t *testing.T) {
	payload := json.RawMessage(`{
		"python": {
			"bandit": {
				"status": "completed",
				"total_issues": 5,
				"execution": {"duration": "12.4s"},
				"sarif": {"sarif_file": "bandit.sarif"},
				"issues": []
			},
			"semgrep": {
				"issue_count": 1,
				"sarif_file": "semgrep.sarif",
				"issues": [{"message": "eval", "severity": "high"}]
			}
		}
	}`)
	p := NewStaticParser(payload)

	bandit, err := p.ToolData("bandit")
	require.NoError(t, err)
	assert.Equal(t, "bandit", bandit.Name)
	assert.Equal(t, "completed", bandit.Status)
	assert.Equal(t, 5, bandit.TotalIssues)
	assert.Equal(t, "12.4s", bandit.ExecutionTime)
	assert.Equal(t, "bandit.sarif", bandit.ExternalRef)
	assert.Empty(t, bandit.Issues)
	assert.True(t, bandit.HydrationEligible())

	semgrep, err := p.ToolData("semgrep")
	require.NoError(t, err)
	assert.Equal(t, 1, semgrep.TotalIssues)
	assert.Equal(t, "semgrep.sarif", semgrep.ExternalRef)
	require.Len(t, semgrep.Issues, 1)
	assert.False(t, semgrep.HydrationEligible())
}

// Without an explicit count the summary falls back to the materialized list.
func TestStaticParser_ToolDataCountFallback(t *testing.T) {
	payload := json.RawMessage(`{"go": {"gosec": [{"message": "a"}, {"message": "b"}]}}`)
	summary, err := NewStaticParser(payload).ToolData("gosec")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalIssues)
	assert.Empty(t, summary.Status)
}

func TestStaticParser_Detail(t *testing.T) {
	payload := json.RawMessage(`{
		"python": {
			"bandit": [{
				"message": "hardcoded password",
				"severity": "high",
				"file": "app.py",
				"line": 10,
				"code": "PASSWORD = \"hunter2\"",
				"remediation": "load secrets from the environment"
			}]
		}
	}`)
	p := NewStaticParser(payload)

	detail, err := p.Detail("bandit-0")
	require.NoError(t, err)
	assert.Equal(t, "hardcoded password", detail.Title)
	assert.Equal(t, "bandit (python)", detail.Subtitle)
	assert.Equal(t, schemas.SeverityHigh, detail.Severity)
	assert.Equal(t, "app.py:10", detail.Location)
	assert.Equal(t, `PASSWORD = "hunter2"`, detail.Code)
	assert.Equal(t, "load secrets from the environment", detail.Remediation)

	_, err = p.Detail("bandit-99")
	assert.ErrorIs(t, err, ErrFindingNotFound)
}

// Hydrated issue mapping shares the static fallbacks but keeps its own id
// namespace.
func TestMapExternalIssues(t *testing.T) {
	issues := []map[string]any{
		{"issue_text": "weak hash", "issue_severity": "MEDIUM", "path": "crypto.py"},
		{},
	}
	findings := MapExternalIssues("bandit", schemas.CategoryStatic, issues)
	require.Len(t, findings, 2)
	assert.Equal(t, "bandit-hydrated-0", findings[0].ID)
	assert.Equal(t, schemas.SeverityMedium, findings[0].Severity)
	assert.Equal(t, "weak hash", findings[0].Message)
	assert.Equal(t, "crypto.py", findings[0].File)
	assert.Equal(t, "bandit-hydrated-1", findings[1].ID)
	assert.Equal(t, schemas.SeverityInfo, findings[1].Severity)
	assert.Equal(t, "No description", findings[1].Message)
}
