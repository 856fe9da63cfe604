// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package step

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/shaderbuild"
)

const triangleWGSL = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) col: vec3<f32>) -> VertexOutput {
    var output: VertexOutput;
    output.position = vec4<f32>(pos.x, pos.y, pos.z, 1.0);
    output.color = col;
    return output;
}

@fragment
fn fs_main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(color.x, color.y, color.z, 1.0);
}
`

func writeShader(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triangle.wgsl")
	if err := os.WriteFile(path, []byte(source), 0o600); err != nil {
		t.Fatalf("write shader: %v", err)
	}
	return path
}

func TestShaderStage(t *testing.T) {
	tests := []struct {
		shaderType string
		want       ir.ShaderStage
	}{
		{"vs", ir.StageVertex},
		{"vs_6_0", ir.StageVertex},
		{"VERTEX", ir.StageVertex},
		{"ps_6_0", ir.StageFragment},
		{"fs", ir.StageFragment},
		{"fragment", ir.StageFragment},
		{"cs_6_5", ir.StageCompute},
		{"compute", ir.StageCompute},
	}

	for _, tt := range tests {
		t.Run(tt.shaderType, func(t *testing.T) {
			got, err := ShaderStage(tt.shaderType)
			if err != nil {
				t.Fatalf("ShaderStage(%q) failed: %v", tt.shaderType, err)
			}
			if got != tt.want {
				t.Errorf("ShaderStage(%q) = %v, want %v", tt.shaderType, got, tt.want)
			}
		})
	}

	if _, err := ShaderStage("gs_6_0"); !shaderbuild.IsKind(err, shaderbuild.ErrConfiguration) {
		t.Errorf("geometry shaders have no WGSL stage, got err %v", err)
	}
}

func TestCompileWGSL(t *testing.T) {
	input := writeShader(t, triangleWGSL)
	out := filepath.Join(t.TempDir(), "out", "triangle_vs_main.spv")

	err := CompileWGSL(WGSLInvocation{Output: out, Input: input, ShaderType: "vs", EntryPoint: "vs_main"})
	if err != nil {
		t.Fatalf("CompileWGSL failed: %v", err)
	}

	code, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(code) < 20 {
		t.Fatal("SPIR-V output too short")
	}
	magic := uint32(code[0]) | uint32(code[1])<<8 | uint32(code[2])<<16 | uint32(code[3])<<24
	if magic != 0x07230203 {
		t.Errorf("Invalid SPIR-V magic: got 0x%08x, want 0x07230203", magic)
	}

	dep, err := os.ReadFile(DepfilePath(out))
	if err != nil {
		t.Fatalf("read depfile: %v", err)
	}
	want := filepath.ToSlash(out) + ": \\\n  " + filepath.ToSlash(input) + "\n"
	if string(dep) != want {
		t.Errorf("depfile = %q, want %q", dep, want)
	}
}

func TestCompileWGSL_EntryPointErrors(t *testing.T) {
	input := writeShader(t, triangleWGSL)
	out := filepath.Join(t.TempDir(), "x.spv")

	tests := []struct {
		name       string
		shaderType string
		entryPoint string
		wantMsg    string
	}{
		{"stage mismatch", "ps", "vs_main", "is a vertex shader, not fragment"},
		{"missing entry point", "vs", "main", `entry point "main" not found`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompileWGSL(WGSLInvocation{Output: out, Input: input, ShaderType: tt.shaderType, EntryPoint: tt.entryPoint})
			if !shaderbuild.IsKind(err, shaderbuild.ErrConfiguration) {
				t.Fatalf("want ConfigurationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
			if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
				t.Error("no output should be written on failure")
			}
		})
	}
}

func TestCompileWGSL_SyntaxError(t *testing.T) {
	input := writeShader(t, "@vertex fn main( {")
	err := CompileWGSL(WGSLInvocation{Output: filepath.Join(t.TempDir(), "x.spv"), Input: input, ShaderType: "vs", EntryPoint: "main"})
	if !shaderbuild.IsKind(err, shaderbuild.ErrParse) {
		t.Errorf("want ParseError, got %v", err)
	}
}
