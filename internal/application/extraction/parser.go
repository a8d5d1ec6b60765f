package extraction

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/errexplain/internal/domain/analysis"
)

// Outcome tags how a completion was turned into fields.
type Outcome string

const (
	OutcomeParsed   Outcome = "parsed"
	OutcomeFallback Outcome = "fallback"
)

const (
	// maxParseInput bounds the bytes the parser looks at.
	maxParseInput = 64 << 10
	// maxCandidates bounds both the balanced and the greedy spans tried.
	maxCandidates = 16
	// fallbackExplanationLen is how much raw text a fallback keeps.
	fallbackExplanationLen = 500
)

const (
	genericExplanation = "Unable to analyze this error. Please try again."
	genericCause       = "Unable to determine specific causes. Please check the error format."
	genericSolution    = "Verify Error Format: Ensure the error message is complete and properly formatted."
)

// Result is the tagged outcome of one extraction. Fields is always usable.
type Result struct {
	Outcome Outcome
	Fields  analysis.Fields
	Raw     string
	Reason  string
}

// Degraded is true when Fields came from the deterministic fallback.
func (r Result) Degraded() bool { return r.Outcome == OutcomeFallback }

// ParseCompletion turns untrusted completion text into bounded fields.
// It never fails; anything it cannot use yields the fallback.
func ParseCompletion(raw string) Result {
	obj, ok := firstObject(raw)
	if !ok {
		return fallback(raw, "no JSON object in completion")
	}
	f, reason := fieldsFrom(obj)
	if reason != "" {
		return fallback(raw, reason)
	}
	return Result{Outcome: OutcomeParsed, Fields: f.Bounded(), Raw: raw}
}

func fallback(raw, reason string) Result {
	explanation := analysis.Truncate(strings.TrimSpace(raw), fallbackExplanationLen)
	if explanation == "" {
		explanation = genericExplanation
	}
	f := analysis.Fields{
		Explanation: explanation,
		Causes:      []string{genericCause},
		Solutions:   []string{genericSolution},
		Category:    analysis.CategoryUnknown,
		Severity:    analysis.SeverityMedium,
	}
	return Result{Outcome: OutcomeFallback, Fields: f.Bounded(), Raw: raw, Reason: reason}
}

// firstObject returns the first candidate span that decodes to a JSON object.
func firstObject(raw string) (map[string]json.RawMessage, bool) {
	if len(raw) > maxParseInput {
		raw = raw[:maxParseInput]
	}
	for _, c := range candidates(raw) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(c), &obj); err == nil && obj != nil {
			return obj, true
		}
	}
	return nil, false
}

// candidates lists balanced top-level {...} spans in order, then the greedy
// spans ending at the last '}', then the whole text.
func candidates(s string) []string {
	var (
		out      []string
		depth    int
		start    int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s) && len(out) < maxCandidates; i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			// quotes in surrounding prose are not JSON strings
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				out = append(out, s[start:i+1])
			}
		}
	}

	// greedy spans: every '{' up to the last '}', earliest first
	last := strings.LastIndexByte(s, '}')
	for i, n := 0, 0; i < last && n < maxCandidates; i++ {
		if s[i] == '{' {
			out = appendUnique(out, s[i:last+1])
			n++
		}
	}
	return appendUnique(out, strings.TrimSpace(s))
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}

func fieldsFrom(obj map[string]json.RawMessage) (analysis.Fields, string) {
	var f analysis.Fields

	explanation, ok := scalarText(obj["explanation"])
	if !ok || strings.TrimSpace(explanation) == "" {
		return f, "missing explanation"
	}
	causes, ok := textList(obj["causes"])
	if !ok {
		return f, "missing causes"
	}
	solutions, ok := textList(obj["solutions"])
	if !ok {
		return f, "missing solutions"
	}

	f.Explanation = strings.TrimSpace(explanation)
	f.Causes = causes
	f.Solutions = solutions
	if c, ok := scalarText(obj["category"]); ok {
		f.Category = analysis.Category(c)
	}
	if s, ok := scalarText(obj["severity"]); ok {
		f.Severity = analysis.Severity(s)
	}
	if code, ok := scalarText(obj["exampleCode"]); ok {
		f.ExampleCode = code
	}
	return f, ""
}

func isNull(v json.RawMessage) bool {
	t := strings.TrimSpace(string(v))
	return t == "" || t == "null"
}

// scalarText reads a string value; other non-null values are kept as JSON text.
func scalarText(v json.RawMessage) (string, bool) {
	if isNull(v) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}
	return compact(v), true
}

// textList accepts an array or a single value and renders every item as text.
func textList(v json.RawMessage) ([]string, bool) {
	if isNull(v) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		items = []json.RawMessage{v}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if isNull(it) {
			continue
		}
		if s := itemText(it); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

type solutionItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

func itemText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var sol solutionItem
	if err := json.Unmarshal(v, &sol); err == nil && (sol.Title != "" || sol.Description != "") {
		text := sol.Description
		switch {
		case sol.Title != "" && sol.Description != "":
			text = sol.Title + ": " + sol.Description
		case sol.Title != "":
			text = sol.Title
		}
		if strings.TrimSpace(sol.Code) != "" {
			text += "\n\n" + sol.Code
		}
		return text
	}
	return compact(v)
}

func compact(v json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return strings.TrimSpace(string(v))
	}
	return buf.String()
}
