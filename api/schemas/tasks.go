package schemas

import (
	"encoding/json"
	"fmt"
)

// TaskPayload is the full analysis-task snapshot fetched once per task.
// The per-category result blobs live under Services keyed by category name;
// they stay as raw JSON because every category has its own shape and the
// parsers decode them lazily.
type TaskPayload struct {
	ID       string                     `json:"id"`
	Name     string                     `json:"name,omitempty"`
	Status   string                     `json:"status,omitempty"`
	Target   string                     `json:"target,omitempty"`
	Services map[string]json.RawMessage `json:"services"`
}

// Service returns the raw sub-object for one category, or an empty JSON
// object when the category is absent. Callers never see a nil payload.
func (t TaskPayload) Service(category Category) json.RawMessage {
	if raw, ok := t.Services[string(category)]; ok && len(raw) > 0 {
		return raw
	}
	return json.RawMessage(`{}`)
}

// FormatFileLine renders a code location the way summaries and detail views
// display it. Line 0 means the line is unknown and is still shown, matching
// the backend's convention for unresolvable locations.
func FormatFileLine(file string, line int) string {
	return fmt.Sprintf("%s:%d", file, line)
}
