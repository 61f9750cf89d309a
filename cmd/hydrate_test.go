package cmd

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Candidate tools come from the payload structure, so a tool whose whole
// issue list lives in an external artifact is discovered and hydrated
// without being named on the command line. Tools with inline issues are
// skipped and cost no request.
func TestHydrate_DiscoversEligibleTool(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/results/task-1/tools/bandit", r.URL.Path)
		assert.Equal(t, "static", r.URL.Query().Get("service"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"issues": [
			{"message": "hardcoded password", "severity": "high", "file": "app.py", "line": 10}
		]}}`))
	}))
	t.Cleanup(server.Close)
	t.Setenv("VERDICT_API_BASE_URL", server.URL)

	payload := writePayload(t, `{
		"id": "task-1",
		"services": {
			"static": {
				"python": {
					"bandit": {"status": "completed", "total_issues": 3, "sarif_file": "bandit.sarif", "issues": []},
					"semgrep": {"issue_count": 1, "issues": [{"message": "eval", "severity": "high"}]}
				}
			}
		}
	}`)

	out, err := runCommand(t, "hydrate", "--payload", payload, "--service", "static")
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
	assert.Contains(t, out, "bandit: hydrated")
	assert.Contains(t, out, "issues: 3 reported, 1 loaded")
	assert.Contains(t, out, "[high] bandit-hydrated-0: hardcoded password @ app.py:10")
	assert.NotContains(t, out, "nothing to hydrate")
}

func TestHydrate_NoEligibleTools(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	t.Cleanup(server.Close)
	t.Setenv("VERDICT_API_BASE_URL", server.URL)

	payload := writePayload(t, `{
		"id": "task-1",
		"services": {
			"static": {"go": {"gosec": [{"message": "weak rand"}]}}
		}
	}`)

	out, err := runCommand(t, "hydrate", "--payload", payload, "--service", "static")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to hydrate")
	assert.Zero(t, requests.Load())
}
