package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound reports a lookup of a referenced course, player, or round
// that produced nothing.
var ErrNotFound = errors.New("not found")

// ValidationError blocks the initiating action at the boundary; it is
// never silently swallowed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PartialGroupFailure reports a group batch where some, but not all,
// per-player writes failed. Successful writes are not rolled back; the
// caller is expected to surface the message and let the user retry.
type PartialGroupFailure struct {
	Op     string
	Failed map[string]error // playerID -> error
}

func (e *PartialGroupFailure) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%s failed for players: %s", e.Op, strings.Join(ids, ", "))
}
