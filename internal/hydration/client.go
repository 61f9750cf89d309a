package hydration

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
	"github.com/xkilldash9x/verdict-cli/internal/parsers"
	"github.com/xkilldash9x/verdict-cli/internal/sarif"
)

// Outcome is the typed result of one hydration fetch. The extended-results
// endpoint answers in exactly one of three shapes; modeling them as a sealed
// set keeps the branch exhaustive at the call sites.
type Outcome interface {
	outcome()
}

// InlineIssues carries issue objects the backend inlined directly. They are
// already mapped into findings under the hydrated id namespace.
type InlineIssues struct {
	Findings []schemas.Finding
}

// SarifContent carries a SARIF document the backend inlined, already run
// through the adapter.
type SarifContent struct {
	Findings []schemas.Finding
}

// UnresolvedReference means the backend only knows a file path for the
// artifact and returned no content. It cannot be hydrated locally.
type UnresolvedReference struct {
	File string
}

func (InlineIssues) outcome()        {}
func (SarifContent) outcome()        {}
func (UnresolvedReference) outcome() {}

// envelopeData is the union of the three data shapes; exactly one group of
// fields is populated per response.
type envelopeData struct {
	Issues       stdjson.RawMessage `json:"issues"`
	SarifContent stdjson.RawMessage `json:"sarif_content"`
	SarifFile    string             `json:"sarif_file"`
}

// Client fetches extended issue data for one tool from the results API.
// It is safe for concurrent use; pacing is enforced by a shared limiter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient builds a hydration client against the given API base URL.
// requestsPerSecond <= 0 disables client-side pacing.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, logger *zap.Logger) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    limiter,
		logger:     logger.Named("hydration_client"),
	}
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Fetch issues the single hydration request for one tool and classifies the
// response into its typed outcome. Shape precedence follows the backend
// contract: inline issues, then inline SARIF, then the bare file reference.
func (c *Client) Fetch(ctx context.Context, taskID, tool string, category schemas.Category) (Outcome, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("hydration rate limit: %w", err)
	}

	endpoint := fmt.Sprintf("%s/results/%s/tools/%s?service=%s",
		c.baseURL, url.PathEscape(taskID), url.PathEscape(tool), url.QueryEscape(string(category)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build hydration request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching extended results",
		zap.String("task_id", taskID),
		zap.String("tool", tool),
		zap.String("category", string(category)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hydration request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hydration request: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read hydration response: %w", err)
	}

	var envelope schemas.HydrationEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode hydration envelope: %w", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("hydration request for %q rejected by backend", tool)
	}
	return c.classify(envelope.Data, tool, category)
}

func (c *Client) classify(data stdjson.RawMessage, tool string, category schemas.Category) (Outcome, error) {
	var d envelopeData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode hydration data: %w", err)
	}

	switch {
	case len(d.Issues) > 0 && string(d.Issues) != "null":
		issues := parsers.DecodeIssueObjects(d.Issues)
		return InlineIssues{Findings: parsers.MapExternalIssues(tool, category, issues)}, nil

	case len(d.SarifContent) > 0 && string(d.SarifContent) != "null":
		adapter := sarif.NewAdapter(category)
		return SarifContent{Findings: adapter.ParseDocument(d.SarifContent)}, nil

	case d.SarifFile != "":
		return UnresolvedReference{File: d.SarifFile}, nil

	default:
		return nil, fmt.Errorf("hydration response for %q carried no recognizable data", tool)
	}
}
