// Package llmjson recovers and validates JSON payloads embedded in
// free-form model output. Model responses routinely wrap JSON in prose
// or markdown fences; callers hand the raw text here and get back the
// first well-formed JSON document, checked against a named schema.
package llmjson

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnparsed is returned whenever no usable JSON document can be
// recovered from a model response. Callers branch on it with errors.Is
// to trigger their fallback path.
var ErrUnparsed = eris.New("llmjson: no parseable JSON in response")

// Extract returns the first balanced JSON object or array embedded in
// s, stripping markdown code fences first. It does not validate the
// document beyond balance and quote tracking; use Decode* or Validate
// for that.
func Extract(s string) (string, error) {
	s = stripFences(s)

	start := -1
	for i, r := range s {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", ErrUnparsed
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrUnparsed
}

// DecodeObject extracts and unmarshals a JSON object from s.
func DecodeObject(s string) (map[string]any, error) {
	doc, err := Extract(s)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, ErrUnparsed
	}
	return out, nil
}

// DecodeArray extracts and unmarshals a JSON array from s. A bare
// object is accepted and wrapped in a single-element slice, since
// models asked for arrays sometimes return just one item.
func DecodeArray(s string) ([]map[string]any, error) {
	doc, err := Extract(s)
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	if err := json.Unmarshal([]byte(doc), &out); err == nil {
		return out, nil
	}
	var single map[string]any
	if err := json.Unmarshal([]byte(doc), &single); err == nil {
		return []map[string]any{single}, nil
	}
	return nil, ErrUnparsed
}

// DecodeInto extracts a JSON document from s and unmarshals it into v.
func DecodeInto(s string, v any) error {
	doc, err := Extract(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return ErrUnparsed
	}
	return nil
}

// stripFences removes markdown code fences (``` or ```json) so the
// scanner sees the payload directly.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var out strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}
