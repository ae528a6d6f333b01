package dson

import (
	"errors"
	"fmt"
)

// Error codes
const (
	// CodeUnsupported marks events the notation cannot represent
	// (comments, constructors, raw passthrough, undefined).
	CodeUnsupported = "UNSUPPORTED_CONSTRUCT"

	// CodeInvalidState marks close events that do not match the
	// innermost open frame, or writes after a fatal failure.
	CodeInvalidState = "INVALID_STATE"

	// CodeConfiguration marks invalid option or vocabulary values.
	CodeConfiguration = "INVALID_CONFIGURATION"
)

// WriteError represents a writer failure.
type WriteError struct {
	Code    string // Error code (UNSUPPORTED_CONSTRUCT, etc.)
	Op      string // Operation that failed (optional)
	Message string // Human-readable message
}

func (e *WriteError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("dson: %s: %s (%s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("dson: %s (%s)", e.Message, e.Code)
}

// IsUnsupported reports whether err is an UNSUPPORTED_CONSTRUCT failure.
func IsUnsupported(err error) bool {
	return hasCode(err, CodeUnsupported)
}

// IsInvalidState reports whether err is an INVALID_STATE failure.
func IsInvalidState(err error) bool {
	return hasCode(err, CodeInvalidState)
}

// IsConfiguration reports whether err is an INVALID_CONFIGURATION failure.
func IsConfiguration(err error) bool {
	return hasCode(err, CodeConfiguration)
}

func hasCode(err error, code string) bool {
	var we *WriteError
	return errors.As(err, &we) && we.Code == code
}

func errUnsupported(op, what string) *WriteError {
	return &WriteError{Code: CodeUnsupported, Op: op, Message: "the notation has no " + what}
}

func errInvalidState(op, msg string) *WriteError {
	return &WriteError{Code: CodeInvalidState, Op: op, Message: msg}
}

func errConfiguration(msg string) *WriteError {
	return &WriteError{Code: CodeConfiguration, Message: msg}
}
