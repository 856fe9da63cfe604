// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package depfile reads and writes make-style dependency files, the
// format ninja consumes with "deps = gcc".
//
//	out/basic_main.spv: shaders/basic.hlsl \
//	  shaders/include/common.hlsli
package depfile

import (
	"fmt"
	"io"
	"strings"
)

// File is a dependency file: the targets and the files they depend on.
type File struct {
	Targets []string
	Deps    []string
}

// Parse reads a make-style dependency file. Several rules are merged into
// one File; duplicate entries are dropped, first occurrence wins.
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\\\n", " ")

	f := &File{}
	seenTargets := map[string]bool{}
	seenDeps := map[string]bool{}
	for n, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		sep := ruleSeparator(line)
		if sep < 0 {
			return nil, fmt.Errorf("depfile line %d: missing ':' separator", n+1)
		}
		for _, t := range splitWords(line[:sep]) {
			if !seenTargets[t] {
				seenTargets[t] = true
				f.Targets = append(f.Targets, t)
			}
		}
		for _, d := range splitWords(line[sep+1:]) {
			if !seenDeps[d] {
				seenDeps[d] = true
				f.Deps = append(f.Deps, d)
			}
		}
	}
	if len(f.Targets) == 0 {
		return nil, fmt.Errorf("depfile has no targets")
	}
	return f, nil
}

// Write writes f with one dependency per continuation line.
func (f *File) Write(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(joinEscaped(f.Targets))
	sb.WriteString(":")
	for _, d := range f.Deps {
		sb.WriteString(" \\\n  ")
		sb.WriteString(escape(d))
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// ruleSeparator returns the index of the ':' ending the target list. A
// colon followed by anything other than whitespace (C:\dir) is part of a
// path.
func ruleSeparator(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ':' || (i > 0 && line[i-1] == '\\') {
			continue
		}
		if i+1 == len(line) || line[i+1] == ' ' || line[i+1] == '\t' {
			return i
		}
	}
	return -1
}

// splitWords splits on unescaped whitespace and unescapes "\ ", "\#" and "$$".
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '#' || s[i+1] == ':'):
			cur.WriteByte(s[i+1])
			i++
		case c == '$' && i+1 < len(s) && s[i+1] == '$':
			cur.WriteByte('$')
			i++
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return words
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "$", "$$")
	s = strings.ReplaceAll(s, "#", "\\#")
	return strings.ReplaceAll(s, " ", "\\ ")
}

func joinEscaped(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = escape(w)
	}
	return strings.Join(out, " ")
}
