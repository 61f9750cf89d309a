package parsers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// Latency above the threshold is flagged medium and formatted to two
// decimals.
func TestPerformanceParser_SlowLatency(t *testing.T) {
	payload := json.RawMessage(`{
		"tool_runs": {
			"wrk": {"status": "completed", "metrics": {"avg_response_time": 1500}}
		}
	}`)

	findings, err := NewPerformanceParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "wrk-0", findings[0].ID)
	assert.Equal(t, schemas.SeverityMedium, findings[0].Severity)
	assert.Equal(t, "Avg Latency: 1500.00ms", findings[0].Message)
}

// Sub-threshold latency and throughput stay informational. Metrics may sit
// directly on the run when there is no nested metrics object.
func TestPerformanceParser_HealthyMetrics(t *testing.T) {
	payload := json.RawMessage(`{
		"tool_runs": {
			"wrk": {"requests_per_second": 842.5, "avg_response_time": 120.25}
		}
	}`)

	findings, err := NewPerformanceParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "RPS: 842.50", findings[0].Message)
	assert.Equal(t, schemas.SeverityInfo, findings[0].Severity)
	assert.Equal(t, "Avg Latency: 120.25ms", findings[1].Message)
	assert.Equal(t, schemas.SeverityInfo, findings[1].Severity)
}

// A failed run yields exactly one high finding carrying the tool's error.
func TestPerformanceParser_FailedRun(t *testing.T) {
	payload := json.RawMessage(`{
		"locust": {"status": "failed", "error": "connection refused"},
		"ab": {"status": "error"}
	}`)

	findings, err := NewPerformanceParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, schemas.SeverityHigh, findings[0].Severity)
	assert.Equal(t, "Tool execution failed: connection refused", findings[0].Message)
	assert.Equal(t, "Tool execution failed: Unknown error", findings[1].Message)
}

// A run listed both under tool_runs and at the top level resolves to the
// tool_runs entry; reserved meta keys never become runs.
func TestPerformanceParser_ToolRunPrecedence(t *testing.T) {
	payload := json.RawMessage(`{
		"summary": {"total": 1},
		"status": "completed",
		"wrk": {"metrics": {"requests_per_second": 1}},
		"tool_runs": {"wrk": {"metrics": {"requests_per_second": 2}}}
	}`)

	findings, err := NewPerformanceParser(payload).Parse()
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "RPS: 2.00", findings[0].Message)
}

// Only high-severity findings count as issues; healthy metrics surface as
// named measurements against the run's target.
func TestPerformanceParser_ToolData(t *testing.T) {
	payload := json.RawMessage(`{
		"tool_runs": {
			"wrk": {
				"status": "completed",
				"url": "http://app:8080",
				"metrics": {"requests_per_second": 300, "avg_response_time": 2000}
			},
			"locust": {"status": "failed", "error": "timeout"}
		}
	}`)
	p := NewPerformanceParser(payload)

	wrk, err := p.ToolData("wrk")
	require.NoError(t, err)
	assert.Equal(t, "completed", wrk.Status)
	assert.Zero(t, wrk.TotalIssues, "latency and throughput findings are not issues")
	require.Len(t, wrk.Metrics, 2)
	assert.Equal(t, schemas.Metric{Name: "RPS (http://app:8080)", Value: "300.00"}, wrk.Metrics[0])
	assert.Equal(t, schemas.Metric{Name: "Avg Latency (http://app:8080)", Value: "2000.00ms"}, wrk.Metrics[1])

	locust, err := p.ToolData("locust")
	require.NoError(t, err)
	assert.Equal(t, 1, locust.TotalIssues)
	assert.Empty(t, locust.Metrics)
}

// Tool listing merges tool_runs with loose top-level runs, skipping the
// reserved metadata keys.
func TestPerformanceParser_Tools(t *testing.T) {
	payload := json.RawMessage(`{
		"summary": {"total": 1},
		"tool_runs": {"wrk": {"status": "completed"}},
		"ab": {"status": "failed", "error": "boom"}
	}`)
	tools, err := NewPerformanceParser(payload).Tools()
	require.NoError(t, err)
	assert.Equal(t, []string{"wrk", "ab"}, tools)
}
