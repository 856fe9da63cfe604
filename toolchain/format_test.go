// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"testing"

	"github.com/gogpu/shaderbuild"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"native", FormatNative},
		{"DXIL", FormatNative},
		{"cso", FormatNative},
		{"spirv", FormatSPIRV},
		{" spv ", FormatSPIRV},
		{"metallib", FormatMetalLib},
		{"Metal", FormatMetalLib},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if err != nil {
				t.Fatalf("ParseFormat(%q) failed: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if _, err := ParseFormat("dxbc2"); !shaderbuild.IsKind(err, shaderbuild.ErrConfiguration) {
		t.Errorf("unknown format: want ConfigurationError, got %v", err)
	}
}

func TestFormat_NeedsPortableIR(t *testing.T) {
	if FormatNative.NeedsPortableIR() {
		t.Error("native format compiles to native bytecode")
	}
	if !FormatSPIRV.NeedsPortableIR() || !FormatMetalLib.NeedsPortableIR() {
		t.Error("spirv and metallib go through SPIR-V")
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		name  string
		want  Language
		ext   string
		flags string
	}{
		{"msl", LanguageMSL, ".metal", "--msl"},
		{"glsl", LanguageGLSL, ".glsl", "--version 450 --no-es"},
		{"hlsl", LanguageHLSL, ".hlsl", "--hlsl --shader-model 60"},
		{"es", LanguageESSL, ".essl", "--es --version 310"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLanguage(tt.name)
			if err != nil {
				t.Fatalf("ParseLanguage(%q) failed: %v", tt.name, err)
			}
			if got != tt.want {
				t.Fatalf("ParseLanguage(%q) = %v, want %v", tt.name, got, tt.want)
			}
			if got.String() != tt.name {
				t.Errorf("String() = %q, want %q", got.String(), tt.name)
			}
			if got.Extension() != tt.ext {
				t.Errorf("Extension() = %q, want %q", got.Extension(), tt.ext)
			}
			if flags := joinCommand(got.spirvCrossFlags()); flags != tt.flags {
				t.Errorf("spirvCrossFlags() = %q, want %q", flags, tt.flags)
			}
		})
	}

	if _, err := ParseLanguage("wgsl"); !shaderbuild.IsKind(err, shaderbuild.ErrConfiguration) {
		t.Errorf("unknown language: want ConfigurationError, got %v", err)
	}
}
