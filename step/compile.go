// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package step implements the commands a generated build graph runs for
// its compile stage.
//
// Compile wraps an external compiler (dxc-compatible flags): it runs the
// compiler once to write a make-style depfile next to the output and once
// to write the output itself. CompileWGSL is the built-in alternative that
// compiles WGSL to SPIR-V in-process with naga.
package step

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/depfile"
)

// Compiler flags appended to the two runs. They follow dxc's spelling.
var (
	// DepsFlags returns the flags requesting a depfile at path.
	DepsFlags = func(path string) []string { return []string{"-M", "-MF", path} }

	// OutputFlags returns the flags requesting the object file at path.
	OutputFlags = func(path string) []string { return []string{"-Fo", path} }
)

// exitNotFound is reported when the compiler cannot be started at all.
const exitNotFound = 127

// Invocation is one compile-stage command line:
//
//	<output> <compiler> [args...]
type Invocation struct {
	Output   string
	Compiler string
	Args     []string
}

// ParseInvocation parses the arguments of `shaderbuild step`.
func ParseInvocation(args []string) (Invocation, error) {
	if len(args) < 2 {
		return Invocation{}, shaderbuild.NewError(shaderbuild.ErrConfiguration,
			"usage: step <output> <compiler> [args...]")
	}
	return Invocation{Output: args[0], Compiler: args[1], Args: args[2:]}, nil
}

// DepfilePath returns the depfile written next to output.
func DepfilePath(output string) string {
	return output + ".d"
}

// Compile runs the dependency pass then the output pass of inv. The
// compiler's stdout and stderr are forwarded unchanged. When the first
// run fails the second is skipped. A failed run yields an ErrSubprocess
// error carrying the compiler's exit code.
func Compile(ctx context.Context, inv Invocation, stdout, stderr io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(inv.Output), 0o755); err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrFileWrite, inv.Output, err)
	}

	dep := DepfilePath(inv.Output)
	if err := run(ctx, inv.Compiler, append(cloneArgs(inv.Args), DepsFlags(dep)...), stdout, stderr); err != nil {
		return err
	}
	if err := retarget(dep, inv.Output); err != nil {
		return err
	}
	return run(ctx, inv.Compiler, append(cloneArgs(inv.Args), OutputFlags(inv.Output)...), stdout, stderr)
}

func run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	shaderbuild.Logger().Debug("running compiler", "compiler", name, "args", args)

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // G204: the command line comes from the generated build graph
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}

	failure := &shaderbuild.Error{
		Kind:     shaderbuild.ErrSubprocess,
		Path:     name,
		Err:      err,
		ExitCode: 1,
	}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		failure.ExitCode = exitErr.ExitCode()
		failure.Err = nil
		failure.Message = fmt.Sprintf("exited with status %d", failure.ExitCode)
		if failure.ExitCode <= 0 {
			failure.ExitCode = 1
		}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		failure.ExitCode = exitNotFound
	}
	return failure
}

// retarget rewrites the depfile so that its single target is output.
// ninja's "deps = gcc" mode expects the depfile to name the edge output,
// while compilers usually name the source or object they were given.
func retarget(path, output string) error {
	f, err := os.Open(path)
	if err != nil {
		return &shaderbuild.Error{
			Kind:     shaderbuild.ErrSubprocess,
			Path:     path,
			Message:  "compiler did not write a depfile",
			Err:      err,
			ExitCode: 1,
		}
	}
	parsed, err := depfile.Parse(f)
	f.Close()
	if err != nil {
		return &shaderbuild.Error{Kind: shaderbuild.ErrSubprocess, Path: path, Err: err, ExitCode: 1}
	}
	parsed.Targets = []string{filepath.ToSlash(output)}
	return writeDepfile(path, parsed)
}

func writeDepfile(path string, f *depfile.File) error {
	out, err := os.Create(path)
	if err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	if err := out.Close(); err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	return nil
}

func cloneArgs(args []string) []string {
	return append([]string(nil), args...)
}
