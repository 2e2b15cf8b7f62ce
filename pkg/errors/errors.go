// Package errors provides structured error types for chaoscrypt.
//
// Every failure the scrambling core can report has its own machine-readable
// code, so callers (the CLI, tests, or an embedding program) can branch on the
// kind of failure without parsing messages.
//
// # Error Codes
//
//   - NO_USABLE_DIVISORS: a width has no divisor in [2, width/2+1]
//   - KEY_GENERATION_EXHAUSTED: no partition was found within the draw bound
//   - INVALID_SECRET_KEY: a key does not partition the width using its divisors
//   - DIMENSION_MISMATCH: a grid is not square or does not match the width
//   - CHANNEL_WORKER_FAILURE: a per-channel pipeline worker failed
//   - INVALID_*: other input validation failures
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDimensionMismatch, "grid is %dx%d", w, h)
//	if errors.Is(err, errors.ErrCodeDimensionMismatch) {
//	    // reject the input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "channel %d", i)
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Key generation errors
	ErrCodeNoUsableDivisors       Code = "NO_USABLE_DIVISORS"
	ErrCodeKeyGenerationExhausted Code = "KEY_GENERATION_EXHAUSTED"
	ErrCodeInvalidSecretKey       Code = "INVALID_SECRET_KEY"

	// Transform input errors
	ErrCodeDimensionMismatch Code = "DIMENSION_MISMATCH"

	// Pipeline errors
	ErrCodeChannelWorkerFailure Code = "CHANNEL_WORKER_FAILURE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for the first *Error and compares its
// code. Any *ChannelError in the chain also matches CHANNEL_WORKER_FAILURE.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) && e.Code == code {
		return true
	}
	var ce *ChannelError
	return code == ErrCodeChannelWorkerFailure && errors.As(err, &ce)
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ChannelError attributes a failure to one channel of a multi-channel run.
type ChannelError struct {
	Channel int   // Index of the input channel that failed
	Err     error // What went wrong in that channel's worker
}

// Error implements the error interface.
func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %d: %v", e.Channel, e.Err)
}

// Unwrap returns the worker's error.
func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Code returns the error code for this error type.
func (e *ChannelError) Code() Code {
	return ErrCodeChannelWorkerFailure
}

// ChannelErrors collects every failed channel of a run.
type ChannelErrors []*ChannelError

// Error lists the failed channels in index order.
func (es ChannelErrors) Error() string {
	sorted := make(ChannelErrors, len(es))
	copy(sorted, es)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Channel < sorted[j].Channel })

	parts := make([]string, len(sorted))
	for i, e := range sorted {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d channel(s) failed: %s", len(es), strings.Join(parts, "; "))
}

// Unwrap exposes the individual channel errors to errors.Is/As.
func (es ChannelErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Channels returns the failed channel indexes in ascending order.
func (es ChannelErrors) Channels() []int {
	out := make([]int, len(es))
	for i, e := range es {
		out[i] = e.Channel
	}
	sort.Ints(out)
	return out
}
