package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists matches AlreadyExistsError with errors.Is
	ErrAlreadyExists = errors.New("file already exists")
	// ErrNotFound matches NotFoundError with errors.Is
	ErrNotFound = errors.New("file not found")
	// ErrUnknownTaskType is logged for tasks whose type has no handler.
	// Such tasks are skipped, never recorded as failures.
	ErrUnknownTaskType = errors.New("unknown task type")
)

// AlreadyExistsError is returned by writeFile when the target exists
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("file already exists: %s", e.Path)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// NotFoundError is returned by editFile when the target is missing
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
