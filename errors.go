// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderbuild

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes shaderbuild errors.
type ErrorKind uint8

const (
	// ErrParse indicates a malformed manifest document.
	ErrParse ErrorKind = iota

	// ErrConfiguration indicates the requested format or tool set cannot
	// produce a valid build graph.
	ErrConfiguration

	// ErrSubprocess indicates an external tool exited with a failure.
	ErrSubprocess

	// ErrFileWrite indicates an output file could not be written.
	ErrFileWrite
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrParse:
		return "ParseError"
	case ErrConfiguration:
		return "ConfigurationError"
	case ErrSubprocess:
		return "SubprocessFailure"
	case ErrFileWrite:
		return "FileWriteError"
	default:
		return "Unknown"
	}
}

// Error represents a shaderbuild failure.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Path optionally names the file the error refers to.
	Path string

	// Message provides details about the error.
	Message string

	// Err is the underlying cause, if any.
	Err error

	// ExitCode is the exit status of the failed subprocess (ErrSubprocess only).
	ExitCode int
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &Error{Kind: ErrParse}) matches any parse failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && t.Message == "" && t.Err == nil
}

// NewError creates a new error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a new error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind and a path to an underlying error.
func WrapError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// ExitCodeOf maps an error to a process exit status. Subprocess failures
// report the child's exit code; every other error reports 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == ErrSubprocess && e.ExitCode > 0 {
		return e.ExitCode
	}
	return 1
}
