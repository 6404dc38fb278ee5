// Package jsonutil recovers JSON payloads from free-form model output.
// Reasoning responses arrive as plain text; any structure is extracted here,
// never enforced by the transport.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Shape selects the bracket pattern ExtractRaw looks for.
type Shape string

const (
	ShapeObject Shape = "object"
	ShapeArray  Shape = "array"
)

// ExtractRaw locates the first greedy bracket span of the requested shape
// ("{...}" or "[...]") in text and returns it if it parses as JSON. If the
// span does not parse, the entire text is tried verbatim. Returns nil when
// neither attempt yields valid JSON. There are no further recovery
// heuristics; a nil result is always handled by the caller.
func ExtractRaw(text string, shape Shape) json.RawMessage {
	open, close := "{", "}"
	if shape == ShapeArray {
		open, close = "[", "]"
	}

	start := strings.Index(text, open)
	end := strings.LastIndex(text, close)
	if start >= 0 && end > start {
		candidate := []byte(text[start : end+1])
		if json.Valid(candidate) {
			return candidate
		}
	}

	whole := []byte(strings.TrimSpace(text))
	if json.Valid(whole) && matchesShape(whole, shape) {
		return whole
	}
	return nil
}

// Extract unmarshals the first JSON span of the requested shape into v.
// Returns false when no parseable span exists or decoding fails.
func Extract(text string, shape Shape, v any) bool {
	raw := ExtractRaw(text, shape)
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func matchesShape(raw []byte, shape Shape) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch shape {
	case ShapeArray:
		return trimmed[0] == '['
	default:
		return trimmed[0] == '{'
	}
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & into <, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Number coerces a loosely typed JSON value into a float64.
// Strings with numeric content are accepted; anything else reports false.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		var f float64
		if err := json.Unmarshal([]byte(strings.TrimSpace(x)), &f); err != nil {
			return 0, false
		}
		return f, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
