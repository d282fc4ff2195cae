package types

import (
	"fmt"
	"strings"
)

// ValidationError is one missing or malformed task field
type ValidationError struct {
	Field    string // path like "tasks[0].path"
	Expected string // e.g. "non-empty string"
	Actual   any    // value found, nil when absent
	Message  string // what the plan author should do
}

// ValidationErrors collects every problem found in a task or plan
type ValidationErrors struct {
	Errors []ValidationError
}

// Add records a problem with field
func (v *ValidationErrors) Add(field, expected string, actual any, msg string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:    field,
		Expected: expected,
		Actual:   actual,
		Message:  msg,
	})
}

// Merge appends all errors from other
func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	v.Errors = append(v.Errors, other.Errors...)
}

// HasErrors reports whether any problem was recorded
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Fields returns the offending field paths in order
func (v *ValidationErrors) Fields() []string {
	fields := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		fields[i] = e.Field
	}
	return fields
}

func (v *ValidationErrors) Error() string {
	switch len(v.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		e := v.Errors[0]
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	default:
		return fmt.Sprintf("invalid fields: %s", strings.Join(v.Fields(), ", "))
	}
}

// ToPrompt renders one line per problem, suitable for the terminal or for
// sending back to the model
func (v *ValidationErrors) ToPrompt() string {
	if !v.HasErrors() {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d problem(s) found:\n", len(v.Errors))
	for _, e := range v.Errors {
		fmt.Fprintf(&sb, "  - %s: expected %s, found %s. %s\n", e.Field, e.Expected, formatActual(e.Actual), e.Message)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatActual(actual any) string {
	switch v := actual.(type) {
	case nil:
		return "nothing"
	case string:
		if v == "" {
			return "an empty string"
		}
		return fmt.Sprintf("%q", v)
	case TaskType:
		return fmt.Sprintf("%q", string(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
