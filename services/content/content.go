// Package content normalizes inbound message payloads. Chat frontends
// send content as a plain string, as a list of typed segments, or (one
// known-buggy integration) as a serialized textual rendering of such a
// list. Every shape is reduced to a single clean string before it
// touches thread state.
package content

import (
	"encoding/json"
	"strings"
)

// Segment is one typed content block. Only text segments contribute to
// the normalized output; other types are dropped silently.
type Segment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Normalize converts a raw JSON content field into a clean string.
// Unrecognized shapes fall back to their trimmed textual form rather
// than failing the request.
func Normalize(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return NormalizeText(s)
	}

	var segments []Segment
	if err := json.Unmarshal(raw, &segments); err == nil {
		return joinTextSegments(segments)
	}

	return strings.TrimSpace(string(raw))
}

// NormalizeText cleans a string-form content value. A string that looks
// like a serialized segment list is parsed back into segments and
// flattened; on parse failure the raw string is used as-is.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	if !looksSerialized(s) {
		return s
	}
	segments, ok := parseSerializedSegments(s)
	if !ok {
		return s
	}
	return joinTextSegments(segments)
}

// looksSerialized is the heuristic for the buggy-client encoding: the
// string opens a list of records and mentions both a type tag and a
// text tag.
func looksSerialized(s string) bool {
	return strings.HasPrefix(s, "[{") &&
		strings.Contains(s, "type") &&
		strings.Contains(s, "text")
}

// parseSerializedSegments attempts to decode a serialized segment list.
// The defective client renders Python-style single-quoted literals, so
// a failed JSON parse is retried with quotes swapped. Anything that
// still does not parse is rejected, never guessed at.
func parseSerializedSegments(s string) ([]Segment, bool) {
	var segments []Segment
	if err := json.Unmarshal([]byte(s), &segments); err == nil {
		return segments, true
	}
	if !strings.Contains(s, "'") {
		return nil, false
	}
	requoted := strings.ReplaceAll(s, "'", `"`)
	if err := json.Unmarshal([]byte(requoted), &segments); err == nil {
		return segments, true
	}
	return nil, false
}

func joinTextSegments(segments []Segment) string {
	var parts []string
	for _, seg := range segments {
		if seg.Type == "text" && seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
