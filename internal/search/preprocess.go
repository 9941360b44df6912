package search

import (
	"encoding/json"
	"strings"
)

// FlattenList turns a stored list field (features, images) into plain
// searchable text. Listings store these fields as JSON-encoded string
// arrays; older rows may carry a bare comma-separated string instead, so
// both shapes are accepted.
//
// Notes:
//   - A JSON array yields its elements joined by single spaces.
//   - Anything that does not parse as a JSON array is treated as a
//     comma-separated list.
//   - Empty elements are dropped; the result carries no leading or
//     trailing whitespace.
func FlattenList(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var items []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			items = nil
		}
	}
	if items == nil {
		items = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

// ComposeText joins the text parts of a listing document (location,
// description, flattened features) into one blob, skipping empty parts and
// collapsing internal whitespace.
func ComposeText(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(normalizeWhitespace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
