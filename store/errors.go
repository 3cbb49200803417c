package store

import (
	"errors"
	"fmt"
)

// ErrNotCreated is returned by Load when the backing task file does not exist
// yet. The task manager creates the file on first plan; until then this is a
// recoverable condition, not a fault.
var ErrNotCreated = errors.New("task file has not been created yet")

// ErrTaskNotFound is returned when an operation references a task ID that is
// not present in the file.
var ErrTaskNotFound = errors.New("task not found")

// ErrEntryNotFound is returned when a history entry does not exist.
var ErrEntryNotFound = errors.New("history entry not found")

// ErrInvalidEntryName is returned for history entry names that do not match
// the snapshot naming scheme or that try to escape the memory directory.
var ErrInvalidEntryName = errors.New("invalid history entry name")

// ParseError reports a task file that exists but cannot be decoded. It is the
// only failure the engines above the store ever see for file content; missing
// or partial fields inside a well-formed file are not errors.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed task file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
