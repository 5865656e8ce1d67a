// Package errors provides unified error handling for notifycast.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code represents an error code for categorization.
type Code string

// DispatchError is the error type produced everywhere in the dispatch
// pipeline. The Code categorizes the failure; Details and Cause carry the
// specifics.
type DispatchError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Scheme  string `json:"scheme,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *DispatchError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error by code.
func (e *DispatchError) Is(target error) bool {
	if dispatchErr, ok := target.(*DispatchError); ok {
		return e.Code == dispatchErr.Code
	}
	return false
}

// WithDetails adds details to the error.
func (e *DispatchError) WithDetails(details string) *DispatchError {
	e.Details = details
	return e
}

// WithScheme tags the error with the provider scheme it occurred for.
func (e *DispatchError) WithScheme(scheme string) *DispatchError {
	e.Scheme = scheme
	return e
}

// New creates a new DispatchError.
func New(code Code, message string) *DispatchError {
	return &DispatchError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new DispatchError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *DispatchError {
	return &DispatchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with a DispatchError.
func Wrap(cause error, code Code, message string) *DispatchError {
	return &DispatchError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(cause error, code Code, format string, args ...interface{}) *DispatchError {
	return &DispatchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// CodeOf extracts the Code from err, walking the wrap chain. Errors that
// are not DispatchErrors report CodeAdapterFailure, the catch-all for
// anything leaking across an adapter boundary.
func CodeOf(err error) Code {
	var dispatchErr *DispatchError
	if stderrors.As(err, &dispatchErr) {
		return dispatchErr.Code
	}
	return CodeAdapterFailure
}
