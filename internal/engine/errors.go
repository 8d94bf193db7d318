package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind int

const (
	// EngineFailure is anything that is neither a syntax nor a runtime error
	EngineFailure Kind = iota
	// SyntaxError means the unit could not be parsed or compiled
	SyntaxError
	// RuntimeError means the unit compiled but failed while running
	RuntimeError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case RuntimeError:
		return "RuntimeError"
	default:
		return "EngineFailure"
	}
}

// Error is a classified engine failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Syntax wraps err as a SyntaxError.
func Syntax(err error) *Error {
	return &Error{Kind: SyntaxError, Message: err.Error(), Err: err}
}

// Runtime wraps err as a RuntimeError.
func Runtime(err error) *Error {
	return &Error{Kind: RuntimeError, Message: err.Error(), Err: err}
}

// Classify converts any error into an *Error. Errors that are not already
// classified become EngineFailure.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: EngineFailure, Message: err.Error(), Err: err}
}
