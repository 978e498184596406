package services

import (
	"errors"
	"fmt"
)

// ErrMismatch matches every verification failure (value mismatch or missing
// cart line) with errors.Is, as opposed to UI or setup failures
var ErrMismatch = errors.New("verification mismatch")

// PreconditionError is a static setup problem that retrying cannot fix, such
// as a product with no category mapping. No UI interaction has happened.
type PreconditionError struct {
	Product string
	Err     error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed for %s: %v", e.Product, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// StepError is a UI step that could not be completed
type StepError struct {
	Step    string
	Product string
	Err     error
}

func (e *StepError) Error() string {
	if e.Product == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Product, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ParseError is UI text that does not hold the expected kind of value
type ParseError struct {
	Field   string
	Product string
	Raw     string
	Err     error
}

func (e *ParseError) Error() string {
	subject := e.Field
	if e.Product != "" {
		subject = fmt.Sprintf("%s of %s", e.Field, e.Product)
	}
	return fmt.Sprintf("cannot parse %s from %q: %v", subject, e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MismatchError is an expected value the UI did not show
type MismatchError struct {
	Field    string
	Product  string
	Expected any
	Actual   any
}

func (e *MismatchError) Error() string {
	if e.Product == "" {
		return fmt.Sprintf("%s mismatch, expected: %s, actual: %s",
			e.Field, formatValue(e.Expected), formatValue(e.Actual))
	}
	return fmt.Sprintf("product %s %s mismatch, expected: %s, actual: %s",
		e.Product, e.Field, formatValue(e.Expected), formatValue(e.Actual))
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// NotFoundInCartError means no cart row matched the product name
type NotFoundInCartError struct {
	Product string
	Rows    int
}

func (e *NotFoundInCartError) Error() string {
	return fmt.Sprintf("product %s not found in cart (%d rows checked)", e.Product, e.Rows)
}

func (e *NotFoundInCartError) Is(target error) bool {
	return target == ErrMismatch
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", x)
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
