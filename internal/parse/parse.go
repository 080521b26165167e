// Package parse recovers structured JSON from raw model output. Hosted models
// wrap valid JSON in prose, markdown fences, or emit a single malformed entry
// among otherwise-valid ones; failing outright on any of these would discard
// usable data, so parsing proceeds through an ordered chain of progressively
// more aggressive strategies and the first success wins.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	objectSpanRE = regexp.MustCompile(`(?s)\{.*\}`)
	arraySpanRE  = regexp.MustCompile(`(?s)\[.*\]`)

	// trailingCommaRE matches a comma directly before a closing bracket or
	// brace, a malformation models produce when truncating lists.
	trailingCommaRE = regexp.MustCompile(`,\s*([\]}])`)

	// danglingEscapeRE matches a backslash followed by a raw newline, which
	// models emit mid-string when they wrap long values.
	danglingEscapeRE = regexp.MustCompile(`\\\r?\n`)

	// questionObjectRE matches individual flat objects carrying a "question"
	// key inside otherwise unbalanced text. Last-resort salvage only.
	questionObjectRE = regexp.MustCompile(`(?s)\{[^{}]*"question"[^{}]*\}`)
)

// Object recovers a single JSON object from text. Returns nil when every
// strategy fails; the caller treats nil identically to a transport failure.
func Object(text string) map[string]any {
	for i, candidate := range candidates(text, objectSpanRE, "{", "}") {
		var out map[string]any
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			if i > 0 {
				zap.L().Debug("parse: object recovered", zap.Int("strategy", i+1))
			}
			return out
		}
	}
	return nil
}

// Array recovers a JSON array of objects from text. Beyond the shared
// strategies it applies low-risk textual repairs, then falls back to
// salvaging individual question objects out of unbalanced text. Returns nil
// when nothing could be recovered.
func Array(text string) []map[string]any {
	for i, candidate := range candidates(text, arraySpanRE, "[", "]") {
		if out := unmarshalObjects(candidate); out != nil {
			if i > 0 {
				zap.L().Debug("parse: array recovered", zap.Int("strategy", i+1))
			}
			return out
		}
	}

	// Strategy 5: textual repair of the widest bracketed span.
	if span := widestSpan(text, "[", "]"); span != "" {
		repaired := Repair(span)
		if out := unmarshalObjects(repaired); out != nil {
			zap.L().Debug("parse: array recovered after repair")
			return out
		}
	}

	// Strategy 6: salvage whichever individual question objects parse.
	var salvaged []map[string]any
	for _, m := range questionObjectRE.FindAllString(text, -1) {
		repaired := Repair(m)
		var obj map[string]any
		if err := json.Unmarshal([]byte(repaired), &obj); err == nil {
			salvaged = append(salvaged, obj)
		}
	}
	if len(salvaged) > 0 {
		zap.L().Debug("parse: array salvaged partially", zap.Int("objects", len(salvaged)))
	}
	return salvaged
}

// Repair applies low-risk textual fixes: trailing commas before closing
// brackets are removed and dangling escaped newlines are normalized.
func Repair(s string) string {
	s = trailingCommaRE.ReplaceAllString(s, "$1")
	s = danglingEscapeRE.ReplaceAllString(s, `\n`)
	return s
}

// candidates yields the strategy-ordered substrings to attempt parsing:
// the text as-is, the fence-stripped text, the first greedy bracketed span,
// and the widest first-open-to-last-close span.
func candidates(text string, spanRE *regexp.Regexp, open, closing string) []string {
	out := []string{text}

	if stripped := StripWrapping(text); stripped != text {
		out = append(out, stripped)
	}
	if span := spanRE.FindString(text); span != "" {
		out = append(out, span)
	}
	if span := widestSpan(text, open, closing); span != "" {
		out = append(out, span)
	}
	return out
}

// StripWrapping removes a leading byte-order mark and surrounding markdown
// code fences, then trims whitespace.
func StripWrapping(text string) string {
	s := strings.TrimPrefix(text, "\ufeff")
	s = strings.TrimSpace(s)

	fenced := false
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		fenced = true
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		fenced = true
	}
	if fenced {
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// widestSpan returns the substring between the first open delimiter and the
// last close delimiter, or "" when the text has no such span.
func widestSpan(text, open, closing string) string {
	start := strings.Index(text, open)
	end := strings.LastIndex(text, closing)
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// unmarshalObjects parses s as an array whose elements are objects.
// Non-object elements are skipped rather than failing the whole array.
func unmarshalObjects(s string) []map[string]any {
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, el := range raw {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
