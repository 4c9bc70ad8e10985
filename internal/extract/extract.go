// Package extract recovers a plan document from free-text model output.
//
// Models wrap their answer in markdown fences, add prose around it, or stop
// mid-object when they hit the output token limit. JSONObject strips fences,
// locates the outermost object and closes it when it was cut off. The repair
// only balances brackets: an unterminated string or any other malformation is
// reported as a ParseError.
package extract

import (
	"alcyxob/fitplan/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("unparseable model output")

// ParseError reports model output from which no plan could be recovered.
// Fragment holds the text that was handed to the JSON decoder, for logs only.
type ParseError struct {
	Reason   string
	Fragment string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse model output: %s: %v", e.Reason, e.Err)
	}
	return "parse model output: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParse) true for any *ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// fencePattern matches an opening or closing code fence, with an optional language tag.
var fencePattern = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*\r?\n?")

// JSONObject returns the JSON object text embedded in raw.
func JSONObject(raw string) (string, error) {
	clean := strings.TrimSpace(fencePattern.ReplaceAllString(strings.TrimSpace(raw), ""))

	start := strings.IndexByte(clean, '{')
	if start == -1 {
		return "", &ParseError{Reason: "no JSON object found", Fragment: clean}
	}

	tail := clean[start:]
	closed, mismatched, _ := scan(tail)
	if mismatched {
		return "", &ParseError{Reason: "invalid JSON", Fragment: tail}
	}
	if !closed {
		return Repair(tail), nil
	}

	end := strings.LastIndexByte(clean, '}') + 1
	if end <= start {
		return "", &ParseError{Reason: "invalid JSON", Fragment: tail}
	}
	return clean[start:end], nil
}

// Repair closes the containers left open in a truncated JSON fragment, in
// nesting order. Brackets inside string literals are ignored. A fragment
// that ends inside a string is returned unchanged apart from the closers, so
// it still fails to decode. A fragment with a mismatched closer is returned
// unchanged.
func Repair(fragment string) string {
	_, mismatched, open := scan(fragment)
	if mismatched || len(open) == 0 {
		return fragment
	}
	var b strings.Builder
	b.Grow(len(fragment) + len(open))
	b.WriteString(fragment)
	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// scan walks s, which starts with '{', until that object is closed. It reports
// whether it was closed, whether a closer did not match the innermost open
// container and, if neither, the stack of still open '{' / '['.
func scan(s string) (closed, mismatched bool, open []byte) {
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
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
			inString = true
		case '{', '[':
			open = append(open, ch)
		case '}', ']':
			if len(open) == 0 || open[len(open)-1] != opener(ch) {
				return false, true, nil
			}
			open = open[:len(open)-1]
			if len(open) == 0 {
				return true, false, nil
			}
		}
	}
	return false, false, open
}

func opener(closer byte) byte {
	if closer == '}' {
		return '{'
	}
	return '['
}

// planDocument is the shape the model is asked to produce.
type planDocument struct {
	Summary string           `json:"summary"`
	Week    []domain.PlanDay `json:"week"`
}

// Plan decodes raw model output into a plan. The parsed summary and week are
// kept; id and createdAt always come from the caller, even when the model
// echoed fields with the same names.
func Plan(raw, id string, createdAt time.Time) (*domain.Plan, error) {
	text, err := JSONObject(raw)
	if err != nil {
		return nil, err
	}

	var doc planDocument
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Fragment: text, Err: err}
	}

	return &domain.Plan{
		ID:        id,
		Summary:   doc.Summary,
		CreatedAt: createdAt,
		Week:      doc.Week,
	}, nil
}
