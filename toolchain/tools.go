// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"

	"github.com/gogpu/shaderbuild"
)

// BuiltinNaga selects the in-process WGSL compiler run by `shaderbuild naga`.
const BuiltinNaga = "naga"

// Default Apple tool invocations.
const (
	DefaultMetal    = "xcrun -sdk macosx metal"
	DefaultMetalLib = "xcrun -sdk macosx metallib"
)

// DefaultConverter is the SPIR-V cross-compiler used when a metallib is
// requested without naming a converter.
const DefaultConverter = "spirv-cross"

// Tools holds the external tool invocations available to a build graph.
// Every value is a command line: an executable optionally followed by
// arguments.
type Tools struct {
	// Compiler compiles shader sources. Mandatory.
	Compiler string

	// Metal compiles MSL to AIR. Defaults to DefaultMetal.
	Metal string

	// MetalLib links AIR into a metallib. Defaults to DefaultMetalLib.
	MetalLib string

	// Converters maps converter names (e.g. "spirv-cross") to invocations.
	Converters map[string]string
}

// Builtin reports whether the compile stage uses the built-in naga compiler.
func (t Tools) Builtin() bool {
	return t.Compiler == BuiltinNaga
}

// ParseTools parses the tools argument of the generator.
//
// The argument is either a single compiler path, or a ';'-separated list of
// name=path entries:
//
//	dxc=/opt/dxc/bin/dxc;spirv-cross=/usr/bin/spirv-cross;metal=xcrun -sdk iphoneos metal
//
// "dxc" and "compiler" name the compiler, "naga" selects the built-in
// compiler, "metal" and "metallib" override the Apple tools, and any other
// name registers a converter. A leading ~ is expanded to the home directory.
//
// The single-path form, and any value naming an existing file or a drive
// path, is one literal executable path: spaces and backslashes in it are
// kept. Other values are command lines split like a shell would.
func ParseTools(arg string) (Tools, error) {
	var tools Tools
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return tools, shaderbuild.NewError(shaderbuild.ErrConfiguration, "empty tools argument")
	}

	if !strings.Contains(arg, "=") {
		compiler, err := homedir.Expand(arg)
		if err != nil {
			return tools, shaderbuild.WrapError(shaderbuild.ErrConfiguration, arg, err)
		}
		tools.Compiler = literalWord(compiler)
		return tools, nil
	}

	for _, entry := range strings.Split(arg, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" {
			return tools, shaderbuild.Errorf(shaderbuild.ErrConfiguration, "malformed tool entry %q, want name=path", entry)
		}
		if name == BuiltinNaga {
			tools.Compiler = BuiltinNaga
			continue
		}
		if value == "" {
			return tools, shaderbuild.Errorf(shaderbuild.ErrConfiguration, "tool %q has no path", name)
		}
		expanded, err := homedir.Expand(value)
		if err != nil {
			return tools, shaderbuild.WrapError(shaderbuild.ErrConfiguration, value, err)
		}
		if isLiteralPath(expanded) {
			expanded = literalWord(expanded)
		}
		if err := tools.Set(name, expanded); err != nil {
			return tools, err
		}
	}
	return tools, nil
}

// Set assigns a tool by name using the naming rules of ParseTools.
func (t *Tools) Set(name, value string) error {
	switch name {
	case "dxc", "compiler":
		if t.Compiler != "" && t.Compiler != value {
			return shaderbuild.Errorf(shaderbuild.ErrConfiguration, "compiler given twice (%q and %q)", t.Compiler, value)
		}
		t.Compiler = value
	case BuiltinNaga:
		t.Compiler = BuiltinNaga
	case "metal":
		t.Metal = value
	case "metallib":
		t.MetalLib = value
	default:
		if t.Converters == nil {
			t.Converters = make(map[string]string)
		}
		t.Converters[name] = value
	}
	return nil
}

// ConverterNames returns the registered converter names, sorted.
func (t Tools) ConverterNames() []string {
	names := make([]string, 0, len(t.Converters))
	for name := range t.Converters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RelativeTo rewrites path-like executables relative to dir so the emitted
// graph carries no absolute paths. Bare command names resolved through PATH
// (dxc, xcrun) are kept as they are.
func (t Tools) RelativeTo(dir string) (Tools, error) {
	out := Tools{Converters: make(map[string]string, len(t.Converters))}
	var err error
	rel := func(cmdline string) string {
		if err != nil || cmdline == "" || cmdline == BuiltinNaga {
			return cmdline
		}
		var s string
		s, err = relativeCommand(cmdline, dir)
		return s
	}

	out.Compiler = rel(t.Compiler)
	out.Metal = rel(t.Metal)
	out.MetalLib = rel(t.MetalLib)
	for _, name := range t.ConverterNames() {
		out.Converters[name] = rel(t.Converters[name])
	}
	return out, err
}

func relativeCommand(cmdline, dir string) (string, error) {
	words, err := splitCommand(cmdline)
	if err != nil {
		return "", err
	}
	if isPathLike(words[0]) && !isForeignPath(words[0]) {
		words[0], err = RelPath(words[0], dir)
		if err != nil {
			return "", err
		}
	}
	return joinWords(words), nil
}

// AnchorCommand resolves a relative path-like executable of cmdline
// against base. Bare command names are kept.
func AnchorCommand(cmdline, base string) (string, error) {
	words, err := splitCommand(cmdline)
	if err != nil {
		return "", err
	}
	if isPathLike(words[0]) && !filepath.IsAbs(words[0]) && !isForeignPath(words[0]) {
		words[0] = filepath.Join(base, filepath.FromSlash(words[0]))
	}
	return joinWords(words), nil
}

// splitCommand splits a tool command line into words.
func splitCommand(cmdline string) ([]string, error) {
	words, err := shellwords.Parse(cmdline)
	if err != nil {
		return nil, shaderbuild.WrapError(shaderbuild.ErrConfiguration, cmdline, err)
	}
	if len(words) == 0 {
		return nil, shaderbuild.Errorf(shaderbuild.ErrConfiguration, "empty command line %q", cmdline)
	}
	return words, nil
}

// ParseFlags splits a shell-quoted flag string such as `-O3 -D "NAME=a b"`.
func ParseFlags(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	words, err := shellwords.Parse(s)
	if err != nil {
		return nil, shaderbuild.WrapError(shaderbuild.ErrConfiguration, s, err)
	}
	return words, nil
}

func isPathLike(exe string) bool {
	return filepath.IsAbs(exe) || strings.ContainsAny(exe, `/\`)
}

// isLiteralPath reports whether a name=path value is a single executable
// path rather than a command line.
func isLiteralPath(value string) bool {
	if hasDrive(value) {
		return true
	}
	info, err := os.Stat(value)
	return err == nil && info.Mode().IsRegular()
}

func hasDrive(p string) bool {
	if len(p) < 3 || p[1] != ':' || (p[2] != '\\' && p[2] != '/') {
		return false
	}
	c := p[0] | 0x20
	return c >= 'a' && c <= 'z'
}

// isForeignPath reports whether p is a drive path on a host without
// drives. It cannot be made relative and is kept as given.
func isForeignPath(p string) bool {
	return hasDrive(p) && filepath.VolumeName(p) == ""
}

// RelPath returns target relative to base with forward slashes.
func RelPath(target, base string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", shaderbuild.WrapError(shaderbuild.ErrConfiguration, target, fmt.Errorf("not reachable from %s: %w", base, err))
	}
	return filepath.ToSlash(rel), nil
}

// QuoteArg quotes a command argument for the shell when it contains
// whitespace or quotes.
func QuoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, " \t\"'") {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
}

// literalWord quotes s for storage in a Tools value so that splitCommand
// yields it back as one unchanged word.
func literalWord(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\$`|&;<>()") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// joinWords is the inverse of splitCommand.
func joinWords(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = literalWord(w)
	}
	return strings.Join(quoted, " ")
}

// joinCommand joins words into a command line for the build graph.
func joinCommand(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = QuoteArg(w)
	}
	return strings.Join(quoted, " ")
}
