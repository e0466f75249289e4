// Package errors provides coded errors for the gallery downloader.
//
// Usage:
//
//	// In fetchers - return typed errors
//	if resp.StatusCode != http.StatusOK {
//	    return errors.Fetchf("gallery page returned status %d", resp.StatusCode)
//	}
//
//	// In the command layer - check with errors.Is
//	if errors.Is(err, errors.ErrDuplicate) {
//	    return nil
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeInvalidURL Code = "INVALID_URL"
	CodeFetch      Code = "FETCH"
	CodeDownload   Code = "DOWNLOAD"
	CodeManifest   Code = "MANIFEST"
	CodeStructure  Code = "STRUCTURE"
	CodeDuplicate  Code = "DUPLICATE"
	CodeConfig     Code = "CONFIG"
)

// Error is a domain error with a code and message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidURL = &Error{Code: CodeInvalidURL, Message: "invalid gallery url"}
	ErrFetch      = &Error{Code: CodeFetch, Message: "fetch failed"}
	ErrDownload   = &Error{Code: CodeDownload, Message: "download failed"}
	ErrManifest   = &Error{Code: CodeManifest, Message: "invalid file manifest"}
	ErrStructure  = &Error{Code: CodeStructure, Message: "unexpected page structure"}
	ErrDuplicate  = &Error{Code: CodeDuplicate, Message: "duplicate gallery"}
	ErrConfig     = &Error{Code: CodeConfig, Message: "invalid configuration"}
)

// InvalidURLf creates an invalid url error with formatted message.
func InvalidURLf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidURL, Message: fmt.Sprintf(format, args...)}
}

// Fetchf creates a fetch error with formatted message.
func Fetchf(format string, args ...any) *Error {
	return &Error{Code: CodeFetch, Message: fmt.Sprintf(format, args...)}
}

// Downloadf creates a download error with formatted message.
func Downloadf(format string, args ...any) *Error {
	return &Error{Code: CodeDownload, Message: fmt.Sprintf(format, args...)}
}

// Manifestf creates a manifest error with formatted message.
func Manifestf(format string, args ...any) *Error {
	return &Error{Code: CodeManifest, Message: fmt.Sprintf(format, args...)}
}

// Structuref creates a page structure error with formatted message.
func Structuref(format string, args ...any) *Error {
	return &Error{Code: CodeStructure, Message: fmt.Sprintf(format, args...)}
}

// Duplicatef creates a duplicate gallery error with formatted message.
func Duplicatef(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicate, Message: fmt.Sprintf(format, args...)}
}

// Configf creates a configuration error with formatted message.
func Configf(format string, args ...any) *Error {
	return &Error{Code: CodeConfig, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
