// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderbuild

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ErrParse, "ParseError"},
		{ErrConfiguration, "ConfigurationError"},
		{ErrSubprocess, "SubprocessFailure"},
		{ErrFileWrite, "FileWriteError"},
		{ErrorKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.kind.String()
			if got != tt.want {
				t.Errorf("ErrorKind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err1 := Errorf(ErrConfiguration, "format %q needs a converter", "metallib")
	got1 := err1.Error()
	if !strings.HasPrefix(got1, "ConfigurationError: ") {
		t.Errorf("Error() should start with kind, got %q", got1)
	}
	if !strings.Contains(got1, `"metallib"`) {
		t.Errorf("Error() should contain message, got %q", got1)
	}

	err2 := WrapError(ErrParse, "shaders/basic.json", errors.New("unexpected EOF"))
	got2 := err2.Error()
	want2 := "ParseError: shaders/basic.json: unexpected EOF"
	if got2 != want2 {
		t.Errorf("Error() = %q, want %q", got2, want2)
	}

	err3 := &Error{Kind: ErrFileWrite, Path: "out.ninja", Message: "rename", Err: fs.ErrPermission}
	if got := err3.Error(); !strings.Contains(got, "rename: permission denied") {
		t.Errorf("Error() should join message and cause, got %q", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	err := WrapError(ErrFileWrite, "out.ninja", fs.ErrPermission)
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("generate: %w", WrapError(ErrParse, "a.json", errors.New("bad")))

	if !errors.Is(err, &Error{Kind: ErrParse}) {
		t.Error("errors.Is should match a bare error of the same kind")
	}
	if errors.Is(err, &Error{Kind: ErrConfiguration}) {
		t.Error("errors.Is should not match a different kind")
	}
	if !IsKind(err, ErrParse) {
		t.Error("IsKind(ErrParse) = false, want true")
	}
	if IsKind(errors.New("plain"), ErrParse) {
		t.Error("IsKind on a plain error should be false")
	}
}

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"parse", NewError(ErrParse, "bad json"), 1},
		{"subprocess", &Error{Kind: ErrSubprocess, ExitCode: 3}, 3},
		{"wrapped subprocess", fmt.Errorf("step: %w", &Error{Kind: ErrSubprocess, ExitCode: 42}), 42},
		{"subprocess without code", &Error{Kind: ErrSubprocess}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeOf(tt.err); got != tt.want {
				t.Errorf("ExitCodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
