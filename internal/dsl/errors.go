package dsl

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes script execution errors.
type ErrorCode string

const (
	// CodeParse indicates a line that is not a well-formed call.
	// Recoverable: the line is reported and skipped.
	CodeParse ErrorCode = "PARSE"

	// CodeUnknownPrimitive indicates a call to a name outside the
	// primitive vocabulary. Recoverable: reported and skipped.
	CodeUnknownPrimitive ErrorCode = "UNKNOWN_PRIMITIVE"

	// CodeContract indicates a primitive whose own invariant cannot be
	// satisfied (bad argument type, an identifier that stays invalid
	// after lower-casing). Fatal: the run aborts, nothing is written.
	CodeContract ErrorCode = "CONTRACT"

	// CodeMissingContext indicates a structural command issued with no
	// current sheet. Fatal.
	CodeMissingContext ErrorCode = "MISSING_CONTEXT"
)

// Error is a script execution error with enough structure for the CLI to
// report the offending command and decide whether the run continues.
type Error struct {
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Line is the 1-based script line number, 0 when not yet attached.
	Line int

	// Text is the offending script line, when known.
	Text string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 && e.Text != "" {
		return fmt.Sprintf("%s: %s (line %d: %s)", e.Code, e.Message, e.Line, e.Text)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Code, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Recoverable reports whether execution may continue past this error.
// Only malformed lines and unknown primitives are recoverable; contract
// violations and missing context abort the run.
func (e *Error) Recoverable() bool {
	return e.Code == CodeParse || e.Code == CodeUnknownPrimitive
}

// IsRecoverable reports whether err is a recoverable script error.
// Uses errors.As to handle wrapped errors.
func IsRecoverable(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Recoverable()
	}
	return false
}

func parseErrorf(format string, args ...any) *Error {
	return &Error{Code: CodeParse, Message: fmt.Sprintf(format, args...)}
}

func unknownPrimitiveError(name string) *Error {
	return &Error{Code: CodeUnknownPrimitive, Message: fmt.Sprintf("unknown primitive %q", name)}
}

func contractErrorf(format string, args ...any) *Error {
	return &Error{Code: CodeContract, Message: fmt.Sprintf(format, args...)}
}

func missingContextError(primitive string) *Error {
	return &Error{
		Code:    CodeMissingContext,
		Message: fmt.Sprintf("%s requires a current sheet (no ProcessSheet in effect)", primitive),
	}
}

// at attaches script position to an error, preserving its code.
func at(err *Error, line int, text string) *Error {
	err.Line = line
	err.Text = text
	return err
}
