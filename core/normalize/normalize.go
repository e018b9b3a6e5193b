package normalize

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// Result is the outcome of one extraction pass.
type Result struct {
	// Structured reports whether an embedded JSON object was found. When
	// false, only Raw is meaningful.
	Structured bool

	// Object is the decoded JSON object when Structured is true.
	Object map[string]any

	// Description and Response are the conventional machine fields pulled
	// from the object, when present.
	Description string
	Response    string

	// Raw is the original input text, always populated.
	Raw string
}

// Extract locates and decodes the JSON object embedded in text.
//
// The search proceeds in order of decreasing confidence:
//  1. the interior of a fenced code block, if one exists;
//  2. every brace-balanced candidate found by a quote- and escape-aware
//     forward scan, tried longest first (the longest valid JSON is the most
//     likely intended payload);
//  3. the span from the first '{' to the last '}' in the whole text.
//
// A candidate that decodes to a JSON-encoded string (double-encoded output)
// gets one more decode pass. Candidates that fail strict decoding get a
// repair attempt before being rejected. When everything fails, the original
// text is returned tagged raw.
func Extract(text string) Result {
	raw := Result{Raw: text}

	if fenced, ok := fencedBlock(text); ok {
		if obj, ok := decodeObject(fenced); ok {
			return structured(text, obj)
		}
	}

	for _, candidate := range balancedCandidates(text) {
		if obj, ok := decodeObject(candidate); ok {
			return structured(text, obj)
		}
	}

	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first >= 0 && last > first {
		if obj, ok := decodeObject(text[first : last+1]); ok {
			return structured(text, obj)
		}
	}

	return raw
}

func structured(raw string, obj map[string]any) Result {
	result := Result{Structured: true, Object: obj, Raw: raw}
	if v, ok := obj["description"].(string); ok {
		result.Description = v
	}
	if v, ok := obj["response"].(string); ok {
		result.Response = v
	}
	return result
}

// fencedBlock returns the interior of the first fenced code block in text.
// An optional language tag after the opening fence is skipped.
func fencedBlock(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open < 0 {
		return "", false
	}
	rest := text[open+3:]

	// Skip the language tag line, e.g. "json".
	if newline := strings.IndexByte(rest, '\n'); newline >= 0 {
		firstLine := strings.TrimSpace(rest[:newline])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}") {
			rest = rest[newline+1:]
		}
	}

	closing := strings.Index(rest, "```")
	if closing < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:closing]), true
}

// balancedCandidates scans text for every opening '{' and extracts the
// brace-balanced substring starting there, using a single forward pass that
// tracks nesting depth and ignores braces inside quoted strings (honoring
// escape sequences). Candidates are returned longest first; ties keep their
// textual order.
func balancedCandidates(text string) []string {
	var candidates []string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		if span, ok := balancedSpan(text, i); ok {
			candidates = append(candidates, span)
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return len(candidates[a]) > len(candidates[b])
	})
	return candidates
}

// balancedSpan extracts the brace-balanced substring of text starting at the
// '{' at position start. Returns false when the braces never balance.
func balancedSpan(text string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// decodeObject decodes candidate into a JSON object. Double-encoded payloads
// (a JSON string containing JSON) get one additional decode pass; candidates
// rejected by the strict decoder get a repair attempt before giving up.
func decodeObject(candidate string) (map[string]any, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	if gjson.Valid(candidate) {
		if obj, ok := decodeValid(candidate); ok {
			return obj, true
		}
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, false
	}
	return decodeValid(repaired)
}

func decodeValid(candidate string) (map[string]any, bool) {
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, false
	}

	// One extra pass for double-encoded payloads.
	if inner, ok := value.(string); ok {
		if err := json.Unmarshal([]byte(inner), &value); err != nil {
			return nil, false
		}
	}

	obj, ok := value.(map[string]any)
	return obj, ok
}
