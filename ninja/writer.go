// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ninja writes ninja build files.
//
// The Writer follows the conventions of ninja's own ninja_syntax module:
// long lines wrap at spaces with a trailing " $", continuation lines are
// indented two levels deeper, and a wrap never splits an escaped "$ ".
//
//	w := ninja.NewWriter(f, 150)
//	w.Rule("cc", ninja.Rule{Command: "cc -MD -MF $out.d -c $in -o $out", Depfile: "$out.d", Deps: "gcc"})
//	w.Build(ninja.Build{Outputs: []string{"a.o"}, Rule: "cc", Inputs: []string{"a.c"}})
//	if err := w.Err(); err != nil {
//	    return err
//	}
package ninja

import (
	"io"
	"strconv"
	"strings"
)

// DefaultWidth is the line width used by NewWriter when width <= 0.
const DefaultWidth = 78

// Var is a variable binding. Slices of Var keep emission order stable.
type Var struct {
	Key   string
	Value string
}

// Rule describes a ninja rule. Empty fields are omitted.
type Rule struct {
	Command        string
	Description    string
	Depfile        string
	Generator      bool
	Pool           string
	Restat         bool
	Rspfile        string
	RspfileContent string
	Deps           string
}

// Build describes a build edge.
type Build struct {
	Outputs         []string
	ImplicitOutputs []string
	Rule            string
	Inputs          []string
	Implicit        []string
	OrderOnly       []string
	Variables       []Var
	Pool            string
}

// Writer emits ninja syntax to an io.Writer. The first write error is
// kept and every later call becomes a no-op; check Err when done.
type Writer struct {
	w     io.Writer
	width int
	err   error
}

// NewWriter returns a Writer wrapping lines at width columns.
func NewWriter(w io.Writer, width int) *Writer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Writer{w: w, width: width}
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// Newline writes an empty line.
func (w *Writer) Newline() {
	w.write("\n")
}

// Comment writes text as '#' comment lines wrapped at the writer width.
func (w *Writer) Comment(text string) {
	for _, line := range wrapWords(text, w.width-2) {
		w.write("# " + line + "\n")
	}
}

// Variable writes "key = value" at the given indent level.
func (w *Writer) Variable(key, value string, indent int) {
	if value == "" {
		w.line(key+" =", indent)
		return
	}
	w.line(key+" = "+value, indent)
}

// Pool declares a pool with the given depth.
func (w *Writer) Pool(name string, depth int) {
	w.line("pool "+name, 0)
	w.Variable("depth", strconv.Itoa(depth), 1)
}

// Rule declares a rule.
func (w *Writer) Rule(name string, r Rule) {
	w.line("rule "+name, 0)
	w.Variable("command", r.Command, 1)
	optional := []Var{
		{"description", r.Description},
		{"depfile", r.Depfile},
		{"generator", flag(r.Generator)},
		{"pool", r.Pool},
		{"restat", flag(r.Restat)},
		{"rspfile", r.Rspfile},
		{"rspfile_content", r.RspfileContent},
		{"deps", r.Deps},
	}
	for _, v := range optional {
		if v.Value != "" {
			w.Variable(v.Key, v.Value, 1)
		}
	}
}

// Build writes a build edge. Paths are escaped; variable values are not.
func (w *Writer) Build(b Build) {
	outputs := escapePaths(b.Outputs)
	if len(b.ImplicitOutputs) > 0 {
		outputs = append(outputs, "|")
		outputs = append(outputs, escapePaths(b.ImplicitOutputs)...)
	}

	inputs := escapePaths(b.Inputs)
	if len(b.Implicit) > 0 {
		inputs = append(inputs, "|")
		inputs = append(inputs, escapePaths(b.Implicit)...)
	}
	if len(b.OrderOnly) > 0 {
		inputs = append(inputs, "||")
		inputs = append(inputs, escapePaths(b.OrderOnly)...)
	}

	w.line("build "+strings.Join(outputs, " ")+": "+strings.Join(append([]string{b.Rule}, inputs...), " "), 0)
	if b.Pool != "" {
		w.Variable("pool", b.Pool, 1)
	}
	for _, v := range b.Variables {
		w.Variable(v.Key, v.Value, 1)
	}
}

// Include writes an include statement.
func (w *Writer) Include(path string) {
	w.line("include "+path, 0)
}

// Subninja writes a subninja statement.
func (w *Writer) Subninja(path string) {
	w.line("subninja "+path, 0)
}

// Default declares default targets.
func (w *Writer) Default(paths ...string) {
	w.line("default "+strings.Join(paths, " "), 0)
}

// line writes text, wrapping it at spaces that are not escaped.
func (w *Writer) line(text string, indent int) {
	leading := strings.Repeat("  ", indent)
	for len(leading)+len(text) > w.width {
		// Try the last unescaped space that fits, then the first one after.
		available := w.width - len(leading) - len(" $")
		space := available
		for {
			space = strings.LastIndexByte(text[:clamp(space, 0, len(text))], ' ')
			if space < 0 || dollarsBefore(text, space)%2 == 0 {
				break
			}
		}
		if space < 0 {
			space = available - 1
			for {
				start := space + 1
				if start < 0 {
					start = 0
				}
				if start > len(text) {
					space = -1
					break
				}
				idx := strings.IndexByte(text[start:], ' ')
				if idx < 0 {
					space = -1
					break
				}
				space = start + idx
				if dollarsBefore(text, space)%2 == 0 {
					break
				}
			}
		}
		if space < 0 {
			break
		}
		w.write(leading + text[:space] + " $\n")
		text = text[space+1:]
		leading = strings.Repeat("  ", indent+2)
	}
	w.write(leading + text + "\n")
}

// Escape escapes a string for use in a variable value or command.
func Escape(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// EscapePath escapes a path for use in a build statement.
func EscapePath(s string) string {
	s = strings.ReplaceAll(s, "$ ", "$$ ")
	s = strings.ReplaceAll(s, " ", "$ ")
	return strings.ReplaceAll(s, ":", "$:")
}

func escapePaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = EscapePath(p)
	}
	return out
}

// dollarsBefore counts the '$' characters immediately preceding index i.
func dollarsBefore(s string, i int) int {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '$'; j-- {
		n++
	}
	return n
}

// wrapWords splits text into lines of at most width bytes at spaces. Words
// longer than width stay whole. Leading spaces of the first line are kept.
func wrapWords(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	trimmed := strings.TrimLeft(text, " ")
	indent := text[:len(text)-len(trimmed)]

	var lines []string
	cur := indent
	empty := true
	for _, word := range strings.Fields(trimmed) {
		switch {
		case empty:
			cur += word
			empty = false
		case len(cur)+1+len(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	return append(lines, cur)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
