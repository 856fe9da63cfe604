// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"strings"

	"github.com/gogpu/shaderbuild"
)

// Format is the final artifact a build graph produces for every configuration.
type Format uint8

// Supported target formats.
const (
	// FormatNative is the compiler's native bytecode (DXIL/DXBC, .cso).
	FormatNative Format = iota

	// FormatSPIRV is portable SPIR-V (.spv), optionally cross-compiled further.
	FormatSPIRV

	// FormatMetalLib is an Apple shader library built through
	// SPIR-V → MSL → AIR → metallib.
	FormatMetalLib
)

// String returns the canonical format name.
func (f Format) String() string {
	switch f {
	case FormatNative:
		return "native"
	case FormatSPIRV:
		return "spirv"
	case FormatMetalLib:
		return "metallib"
	default:
		return "unknown"
	}
}

// NeedsPortableIR reports whether the compile stage must emit SPIR-V
// rather than native bytecode.
func (f Format) NeedsPortableIR() bool {
	return f != FormatNative
}

// ParseFormat parses a format name. Matching is case-insensitive.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "native", "dxil", "cso":
		return FormatNative, nil
	case "spirv", "spv":
		return FormatSPIRV, nil
	case "metallib", "metal":
		return FormatMetalLib, nil
	default:
		return 0, shaderbuild.Errorf(shaderbuild.ErrConfiguration, "unknown shader format %q", name)
	}
}

// Language is an output language of a SPIR-V cross-compiler.
type Language uint8

// Supported converter output languages.
const (
	LanguageMSL Language = iota
	LanguageGLSL
	LanguageHLSL
	LanguageESSL
)

// String returns the language name as accepted by ParseLanguage.
func (l Language) String() string {
	switch l {
	case LanguageMSL:
		return "msl"
	case LanguageGLSL:
		return "glsl"
	case LanguageHLSL:
		return "hlsl"
	case LanguageESSL:
		return "es"
	default:
		return "unknown"
	}
}

// Extension returns the file extension of converted sources.
func (l Language) Extension() string {
	switch l {
	case LanguageMSL:
		return ".metal"
	case LanguageGLSL:
		return ".glsl"
	case LanguageHLSL:
		return ".hlsl"
	case LanguageESSL:
		return ".essl"
	default:
		return ".txt"
	}
}

// spirvCrossFlags returns the spirv-cross flags selecting this language.
func (l Language) spirvCrossFlags() []string {
	switch l {
	case LanguageMSL:
		return []string{"--msl"}
	case LanguageHLSL:
		return []string{"--hlsl", "--shader-model", "60"}
	case LanguageESSL:
		return []string{"--es", "--version", "310"}
	default:
		return []string{"--version", "450", "--no-es"}
	}
}

// ParseLanguage parses a converter output language.
func ParseLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "msl", "metal":
		return LanguageMSL, nil
	case "glsl":
		return LanguageGLSL, nil
	case "hlsl":
		return LanguageHLSL, nil
	case "es", "essl", "gles":
		return LanguageESSL, nil
	default:
		return 0, shaderbuild.Errorf(shaderbuild.ErrConfiguration, "unknown converter output language %q", name)
	}
}
