package diagnostic

import (
	"errors"
	"fmt"
)

// Kind classifies who is at fault for an error.
type Kind string

const (
	// KindFunctional means the caller or a cartridge configuration is invalid.
	KindFunctional Kind = "FUNCTIONAL"
	// KindTechnical means the environment failed (unreadable files, broken functions).
	KindTechnical Kind = "TECHNICAL"
)

// Step names the pipeline stage that raised an error.
type Step string

const (
	StepValidation Step = "VALIDATION"
	StepEnrichment Step = "ENRICHMENT"
	StepTransform  Step = "TRANSFORM"
	StepResolve    Step = "RESOLVE"
	StepConfig     Step = "CONFIG"
	StepUnknown    Step = "UNKNOWN"
)

// Error is the engine's error value. It is immutable once constructed.
type Error struct {
	Code    Code
	Kind    Kind
	Message string
	// Field is the offending field path (may be empty).
	Field string
	// Step is the pipeline stage (may be empty).
	Step Step

	cause error
}

// Functional builds a FUNCTIONAL error.
func Functional(code Code, step Step, field, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Kind:    KindFunctional,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
		Step:    step,
	}
}

// Technical builds a TECHNICAL error.
func Technical(code Code, step Step, field, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Kind:    KindTechnical,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
		Step:    step,
	}
}

// Wrap attaches a cause to the error and returns it.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause

	return &cp
}

// WithStep returns a copy of the error tagged with step, unless a step is already set.
func (e *Error) WithStep(step Step) *Error {
	if e.Step != "" {
		return e
	}

	cp := *e
	cp.Step = step

	return &cp
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// IsFunctional returns true for FUNCTIONAL errors.
func (e *Error) IsFunctional() bool { return e.Kind == KindFunctional }

// IsTechnical returns true for TECHNICAL errors.
func (e *Error) IsTechnical() bool { return e.Kind == KindTechnical }

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}

	return nil, false
}

// From converts any error into an *Error. Errors outside the taxonomy become
// TECHNICAL generic errors tagged with step.
func From(err error, step Step) *Error {
	if err == nil {
		return nil
	}

	if de, ok := As(err); ok {
		return de.WithStep(step)
	}

	return Technical(CodeGenericTechnical, step, "", "unexpected error").Wrap(err)
}

// Payload is the wire form of an Error.
type Payload struct {
	Code    Code   `json:"code"`
	Type    Kind   `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Step    Step   `json:"step,omitempty"`
}

// Payload returns the wire form of the error. The cause is not included.
func (e *Error) Payload() Payload {
	return Payload{
		Code:    e.Code,
		Type:    e.Kind,
		Message: e.Message,
		Field:   e.Field,
		Step:    e.Step,
	}
}
