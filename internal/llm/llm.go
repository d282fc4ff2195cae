// Package llm talks to the text-generation service that produces plans,
// fixes and generated code.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Generator turns a prompt into response text
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrRetriesExhausted is returned after every retry attempt failed.
// The last ServiceError is wrapped alongside it.
var ErrRetriesExhausted = errors.New("max retries exceeded")

// ServiceError describes a failed call to the generation service
type ServiceError struct {
	StatusCode int
	Message    string
	// Empty is set when the service answered without any text
	Empty bool
	// Retryable marks transport errors, 429, 5xx and empty answers
	Retryable bool
	Err       error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Empty:
		return "empty response from text generation service"
	case e.StatusCode == 429:
		return "rate limited (429)"
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("API error (%d)", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("API request failed: %v", e.Err)
	default:
		return "API call failed: " + e.Message
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a ServiceError worth retrying
func IsRetryable(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	return false
}
