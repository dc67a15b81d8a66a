package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformed marks a provider response that did not match the expected
// shape. Malformed responses are never retried; the caller substitutes the
// task's fallback result.
var ErrMalformed = errors.New("malformed backend response")

// extractJSON pulls the first JSON document out of a completion. Models
// routinely wrap payloads in markdown fences or prose, so the raw text is
// probed with gjson before strict decoding.
func extractJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	if fenced, ok := stripFence(trimmed); ok {
		trimmed = fenced
	}
	if gjson.Valid(trimmed) {
		return trimmed, true
	}
	for _, open := range []byte{'{', '['} {
		start := strings.IndexByte(trimmed, open)
		if start < 0 {
			continue
		}
		closer := byte('}')
		if open == '[' {
			closer = ']'
		}
		end := strings.LastIndexByte(trimmed, closer)
		if end <= start {
			continue
		}
		candidate := trimmed[start : end+1]
		if gjson.Valid(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func stripFence(text string) (string, bool) {
	if !strings.HasPrefix(text, "```") {
		return "", false
	}
	rest := strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	}
	if idx := strings.LastIndex(rest, "```"); idx >= 0 {
		rest = rest[:idx]
	}
	return strings.TrimSpace(rest), true
}

// decodeJSON extracts and unmarshals a typed payload. All failure modes wrap
// ErrMalformed.
func decodeJSON(text string, out interface{}) error {
	payload, ok := extractJSON(text)
	if !ok {
		return fmt.Errorf("%w: no JSON payload in response", ErrMalformed)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// stringField reads a single named string from a completion without a full
// decode; used for tasks whose result is one prose field.
func stringField(text, field string) (string, bool) {
	payload, ok := extractJSON(text)
	if !ok {
		return "", false
	}
	value := gjson.Get(payload, field)
	if !value.Exists() {
		return "", false
	}
	result := strings.TrimSpace(value.String())
	return result, result != ""
}
