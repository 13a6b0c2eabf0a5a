package generator

import (
	"errors"
	"fmt"
)

// Operation names used in errors, logs and metrics.
const (
	OpChildren  = "children"
	OpDetail    = "detail"
	OpSummarize = "summarize"
)

// ErrEmptyResult is wrapped by a ParseError when a response holds no usable content.
var ErrEmptyResult = errors.New("empty result")

// CallError reports that the generation call itself failed: transport error,
// non-success status, timeout, cancellation or an open circuit breaker.
type CallError struct {
	Op  string
	Err error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("generator: %s call failed: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// ParseError reports a response that arrived but did not have the expected shape.
type ParseError struct {
	Op  string
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("generator: malformed %s response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsCallError reports whether err is or wraps a *CallError.
func IsCallError(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Classify tags an untyped error from op as a CallError. Tagged errors pass through.
func Classify(op string, err error) error {
	if err == nil || IsCallError(err) || IsParseError(err) {
		return err
	}
	return &CallError{Op: op, Err: err}
}
