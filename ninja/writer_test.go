// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ninja

import (
	"errors"
	"strings"
	"testing"
)

func render(width int, fn func(w *Writer)) string {
	var sb strings.Builder
	w := NewWriter(&sb, width)
	fn(w)
	return sb.String()
}

func TestEscapePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"out/basic_main.cso", "out/basic_main.cso"},
		{"my shaders/a.hlsl", "my$ shaders/a.hlsl"},
		{"C:/shaders/a.hlsl", "C$:/shaders/a.hlsl"},
		{"odd$ name", "odd$$$ name"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := EscapePath(tt.in); got != tt.want {
				t.Errorf("EscapePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	if got := Escape("a$b $$c"); got != "a$$b $$$$c" {
		t.Errorf("Escape() = %q", got)
	}
}

func TestWriter_Rule(t *testing.T) {
	got := render(150, func(w *Writer) {
		w.Rule("shader_compile", Rule{
			Command:     "cc $in",
			Description: "CC $out",
			Depfile:     "$out.d",
			Deps:        "gcc",
		})
	})
	want := "rule shader_compile\n" +
		"  command = cc $in\n" +
		"  description = CC $out\n" +
		"  depfile = $out.d\n" +
		"  deps = gcc\n"
	if got != want {
		t.Errorf("Rule output:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriter_RuleFlags(t *testing.T) {
	got := render(150, func(w *Writer) {
		w.Rule("regen", Rule{Command: "gen", Generator: true, Restat: true})
	})
	want := "rule regen\n  command = gen\n  generator = 1\n  restat = 1\n"
	if got != want {
		t.Errorf("Rule output:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriter_Build(t *testing.T) {
	got := render(150, func(w *Writer) {
		w.Build(Build{
			Outputs:  []string{"out/a.cso"},
			Rule:     "shader_compile",
			Inputs:   []string{"a.hlsl"},
			Implicit: []string{"bin/shaderbuild"},
			Variables: []Var{
				{"shader_type", "vs"},
				{"entry_point", "main"},
			},
		})
	})
	want := "build out/a.cso: shader_compile a.hlsl | bin/shaderbuild\n" +
		"  shader_type = vs\n" +
		"  entry_point = main\n"
	if got != want {
		t.Errorf("Build output:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriter_BuildOrderOnlyAndImplicitOutputs(t *testing.T) {
	got := render(150, func(w *Writer) {
		w.Build(Build{
			Outputs:         []string{"a"},
			ImplicitOutputs: []string{"a.map"},
			Rule:            "r",
			Inputs:          []string{"b"},
			OrderOnly:       []string{"dir"},
			Pool:            "console",
		})
	})
	want := "build a | a.map: r b || dir\n  pool = console\n"
	if got != want {
		t.Errorf("Build output:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriter_Variable(t *testing.T) {
	got := render(150, func(w *Writer) {
		w.Variable("includes", "", 0)
		w.Variable("shaderbuild", "bin/shaderbuild", 0)
	})
	want := "includes =\nshaderbuild = bin/shaderbuild\n"
	if got != want {
		t.Errorf("Variable output %q, want %q", got, want)
	}
}

func TestWriter_LineWrap(t *testing.T) {
	got := render(20, func(w *Writer) {
		w.Variable("x", "aaa bbb ccc ddd eee", 0)
	})
	want := "x = aaa bbb ccc $\n    ddd eee\n"
	if got != want {
		t.Errorf("wrapped output %q, want %q", got, want)
	}
}

func TestWriter_LineWrapKeepsEscapedSpaces(t *testing.T) {
	got := render(12, func(w *Writer) {
		w.Build(Build{Outputs: []string{"out file"}, Rule: "r", Inputs: []string{"in"}})
	})
	want := "build $\n    out$ file: $\n    r in\n"
	if got != want {
		t.Errorf("wrapped output %q, want %q", got, want)
	}
}

func TestWriter_LongWordNotSplit(t *testing.T) {
	long := strings.Repeat("x", 40)
	got := render(20, func(w *Writer) {
		w.Variable("v", long, 0)
	})
	// The only space is before the long word; nothing after it can wrap.
	want := "v = $\n    " + long + "\n"
	if got != want {
		t.Errorf("wrapped output %q, want %q", got, want)
	}
}

func TestWriter_Comment(t *testing.T) {
	got := render(20, func(w *Writer) {
		w.Comment("one two three four five six")
		w.Comment(" short")
	})
	want := "# one two three four\n# five six\n#  short\n"
	if got != want {
		t.Errorf("Comment output %q, want %q", got, want)
	}
}

func TestWriter_Statements(t *testing.T) {
	got := render(150, func(w *Writer) {
		w.Pool("link", 1)
		w.Include("rules.ninja")
		w.Subninja("sub/build.ninja")
		w.Default("a", "b")
		w.Newline()
	})
	want := "pool link\n  depth = 1\ninclude rules.ninja\nsubninja sub/build.ninja\ndefault a b\n\n"
	if got != want {
		t.Errorf("output %q, want %q", got, want)
	}
}

type failingWriter struct{ calls int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func TestWriter_ErrIsSticky(t *testing.T) {
	fw := &failingWriter{}
	w := NewWriter(fw, 0)
	w.Comment("header")
	w.Variable("a", "b", 0)
	w.Newline()

	if w.Err() == nil || w.Err().Error() != "disk full" {
		t.Fatalf("Err() = %v, want disk full", w.Err())
	}
	if fw.calls != 1 {
		t.Errorf("writes after the first failure: got %d calls, want 1", fw.calls)
	}
}
