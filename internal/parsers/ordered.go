package parsers

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"

	json "github.com/json-iterator/go"
)

// OrderedObject is a JSON object whose members keep the order they appear in
// on the wire. Parse output is required to preserve the backend's source-map
// ordering, and Go maps would scramble it, so the service payloads are walked
// through this type instead.
type OrderedObject struct {
	members []orderedMember
	index   map[string]stdjson.RawMessage
}

type orderedMember struct {
	key   string
	value stdjson.RawMessage
}

// decodeOrdered parses raw as a JSON object, preserving member order.
// Non-object input (including null and absent payloads) yields an empty
// object rather than an error, matching the engine's defensive posture.
func decodeOrdered(raw stdjson.RawMessage) OrderedObject {
	obj := OrderedObject{index: map[string]stdjson.RawMessage{}}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return obj
	}

	dec := stdjson.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil { // opening brace
		return obj
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return obj
		}
		key, ok := keyTok.(string)
		if !ok {
			return obj
		}
		var value stdjson.RawMessage
		if err := dec.Decode(&value); err != nil {
			return obj
		}
		obj.members = append(obj.members, orderedMember{key: key, value: value})
		obj.index[key] = value
	}
	return obj
}

// Len returns the number of members.
func (o OrderedObject) Len() int { return len(o.members) }

// Keys returns the member keys in wire order.
func (o OrderedObject) Keys() []string {
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.key
	}
	return keys
}

// Get returns the raw value for key, if present.
func (o OrderedObject) Get(key string) (stdjson.RawMessage, bool) {
	raw, ok := o.index[key]
	return raw, ok
}

// Each calls fn for every member in wire order.
func (o OrderedObject) Each(fn func(key string, value stdjson.RawMessage)) {
	for _, m := range o.members {
		fn(m.key, m.value)
	}
}

// decodeValue unmarshals raw into a generic value, returning nil on any
// decode failure instead of propagating it.
func decodeValue(raw stdjson.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// decodeIssueList accepts either a bare array or an object wrapping the
// array under wrapKey, which is how tools disagree about issue lists.
func decodeIssueList(raw stdjson.RawMessage, wrapKey string) []map[string]any {
	v := decodeValue(raw)
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		if s, ok := sliceField(t, wrapKey); ok {
			items = s
		}
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, asObject(it))
	}
	return out
}

// findingID builds the deterministic per-tool id used across all parsers.
func findingID(tool string, index int) string {
	return fmt.Sprintf("%s-%d", tool, index)
}
