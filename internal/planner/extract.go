package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/daydemir/devpilot/internal/types"
)

// ErrNoJSON is returned when a response contains no parseable JSON object
var ErrNoJSON = errors.New("no JSON object found")

// ParseError carries the raw response that could not be parsed
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, ErrNoJSON) {
		return fmt.Sprintf("invalid plan JSON: %v", e.Err)
	}
	return ErrNoJSON.Error()
}

func (e *ParseError) Is(target error) bool {
	return target == ErrNoJSON
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractJSON returns the first JSON object embedded in text. Candidates
// start at each '{' in order; the decoder reads one complete value from
// there and stops, so prose or code after the object is ignored and a
// failed start costs no more than the text up to its first syntax error.
func ExtractJSON(text string) (json.RawMessage, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if raw, ok := decodeObject(text[start:]); ok {
			return raw, nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, &ParseError{Raw: text, Err: ErrNoJSON}
}

// decodeObject reads the object that opens s
func decodeObject(s string) (json.RawMessage, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&raw); err != nil {
		return nil, false
	}
	return raw, true
}

// ParsePlan extracts the plan object from a model response
func ParsePlan(text string) (*types.Plan, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var plan types.Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	return &plan, nil
}
