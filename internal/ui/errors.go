package ui

import (
	"errors"
	"fmt"
	"time"
)

// Transient driver errors. The Waiter retries these until its deadline.
var (
	ErrNotFound        = errors.New("element not found")
	ErrNotInteractable = errors.New("element not interactable")
	ErrStale           = errors.New("element detached from page")
)

// ErrTimeout matches any *TimeoutError with errors.Is
var ErrTimeout = errors.New("timed out")

// IsTransient reports whether err means "not ready yet" rather than a failure.
// A timeout is final even when it wraps a transient cause.
func IsTransient(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return false
	}
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNotInteractable) ||
		errors.Is(err, ErrStale)
}

// TimeoutError reports a condition that never became true
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	// Last is the most recent transient error seen while polling, if any
	Last error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Condition)
	if e.Last != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.Last)
	}
	return msg
}

// Is makes errors.Is(err, ErrTimeout) true for every TimeoutError
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}
