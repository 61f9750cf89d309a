package hydration

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// State is the hydration lifecycle of one open detail view.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateHydrated State = "hydrated"
	StateFailed   State = "failed"
)

// View drives hydration for a single tool summary. Each open detail view
// owns one View over its own summary snapshot; nothing is shared across
// views. A failed hydration is terminal for the view — there is no retry
// until the view is closed and a new one constructed.
type View struct {
	client *Client
	logger *zap.Logger

	taskID   string
	category schemas.Category

	mu      sync.Mutex
	state   State
	summary schemas.ToolSummary
	// activation identifies the latest Hydrate call. Responses carrying a
	// superseded token are discarded so an earlier activation can never
	// overwrite a later one.
	activation string
}

// NewView wraps one tool summary for hydration against the given task.
func NewView(client *Client, taskID string, category schemas.Category, summary schemas.ToolSummary, logger *zap.Logger) *View {
	return &View{
		client:   client,
		logger:   logger.Named("hydration_view"),
		taskID:   taskID,
		category: category,
		state:    StateIdle,
		summary:  summary,
	}
}

// State returns the current lifecycle state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Summary returns the view's current summary snapshot. After a successful
// hydration its issue list is the replaced one; TotalIssues always keeps the
// value established at summary-build time.
func (v *View) Summary() schemas.ToolSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.summary
}

// Hydrate runs the Idle -> Loading -> Hydrated | Failed transition. It is a
// no-op unless the summary is hydration-eligible (empty local issue list, a
// positive reported count, and an external artifact reference). Hydrated and
// Failed are terminal: a call in either state returns it without issuing a
// request. A call while an earlier request is still in flight starts a new
// activation that supersedes it. Transport errors and the unresolvable
// file-reference case both land in StateFailed; only transport errors are
// additionally returned, and neither invalidates the summary already on
// screen.
func (v *View) Hydrate(ctx context.Context) (State, error) {
	v.mu.Lock()
	if v.state == StateHydrated || v.state == StateFailed || !v.summary.HydrationEligible() {
		state := v.state
		v.mu.Unlock()
		return state, nil
	}
	v.state = StateLoading
	token := uuid.NewString()
	v.activation = token
	tool := v.summary.Name
	v.mu.Unlock()

	outcome, err := v.client.Fetch(ctx, v.taskID, tool, v.category)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.activation != token {
		// A later activation owns the state now; drop this response.
		v.logger.Debug("Discarding stale hydration response", zap.String("tool", tool))
		return v.state, nil
	}

	if err != nil {
		v.state = StateFailed
		v.logger.Warn("Hydration failed", zap.String("tool", tool), zap.Error(err))
		return v.state, fmt.Errorf("hydrate %q: %w", tool, err)
	}

	switch o := outcome.(type) {
	case InlineIssues:
		v.summary.Issues = o.Findings
		v.state = StateHydrated
	case SarifContent:
		v.summary.Issues = o.Findings
		v.state = StateHydrated
	case UnresolvedReference:
		v.state = StateFailed
		v.logger.Warn("Extended results are stored externally and were not inlined; cannot hydrate locally",
			zap.String("tool", tool),
			zap.String("sarif_file", o.File))
	}
	return v.state, nil
}
