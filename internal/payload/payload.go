// Package payload extracts well-formed JSON payloads from possibly
// prose-wrapped backend responses.
//
// Inference backends are asked for bare JSON but routinely wrap it in
// markdown fences, preamble, or trailing commentary. Every stage of the
// pipeline parses responses through this package so the recovery logic
// lives in exactly one place.
package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mealvoice/mealvoice/internal/common"
)

// ExtractArray returns the first well-formed JSON array found in content.
// Surrounding prose and markdown code fences are tolerated.
func ExtractArray(content string) (json.RawMessage, error) {
	return extract(content, '[', ']')
}

// ExtractObject returns the first well-formed JSON object found in content.
func ExtractObject(content string) (json.RawMessage, error) {
	return extract(content, '{', '}')
}

// StripFences removes a surrounding markdown code fence, if present.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func extract(content string, open, closing byte) (json.RawMessage, error) {
	content = StripFences(content)

	start := strings.IndexByte(content, open)
	for start >= 0 {
		if raw, ok := balanced(content[start:], open, closing); ok {
			if json.Valid(raw) {
				return raw, nil
			}
		}
		next := strings.IndexByte(content[start+1:], open)
		if next < 0 {
			break
		}
		start += 1 + next
	}

	return nil, fmt.Errorf("%w: no valid JSON %c...%c payload in response",
		common.ErrBackendProtocol, open, closing)
}

// balanced scans forward from the opening bracket, tracking nesting depth and
// string/escape state, and returns the shortest balanced span.
func balanced(s string, open, closing byte) (json.RawMessage, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return json.RawMessage(s[:i+1]), true
			}
		}
	}
	return nil, false
}
