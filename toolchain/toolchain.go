// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package toolchain decides which build stages turn a shader source into
// the requested format, and how each stage invokes its tool.
//
// The chain is data-driven: every Format maps to an ordered list of stage
// kinds, and every configuration of every manifest goes through the same
// chain. The compile stage emits SPIR-V whenever anything after it (or the
// format itself) needs a portable IR:
//
//	native:   compile (.cso)
//	spirv:    compile (.spv) [→ convert]
//	metallib: compile (.spv) → convert (.metal) → metal (.air) → metallib (.metallib)
package toolchain

import (
	"path/filepath"
	"strings"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/ninja"
)

// StageKind identifies one step of a shader build chain.
type StageKind uint8

const (
	// StageCompile compiles the shader source (the only stage with a depfile).
	StageCompile StageKind = iota

	// StageConvert cross-compiles SPIR-V to another shading language.
	StageConvert

	// StageMetalCompile compiles MSL to Apple IR (AIR).
	StageMetalCompile

	// StageMetalLink links AIR into a metallib.
	StageMetalLink
)

// String returns the stage kind name.
func (k StageKind) String() string {
	switch k {
	case StageCompile:
		return "compile"
	case StageConvert:
		return "convert"
	case StageMetalCompile:
		return "metal"
	case StageMetalLink:
		return "metallib"
	default:
		return "unknown"
	}
}

// Rule returns the ninja rule name used for this stage kind.
func (k StageKind) Rule() string {
	switch k {
	case StageCompile:
		return "shader_compile"
	case StageConvert:
		return "shader_convert"
	case StageMetalCompile:
		return "metal_compile"
	case StageMetalLink:
		return "metallib_link"
	default:
		return "unknown"
	}
}

// Variables referenced by stage command templates.
const (
	VarHelper     = "shaderbuild"
	VarIncludes   = "includes"
	VarShaderType = "shader_type"
	VarEntryPoint = "entry_point"
)

// formatStages maps every format to its chain. StageConvert is appended to
// the spirv chain only when a converter is requested.
var formatStages = map[Format][]StageKind{
	FormatNative:   {StageCompile},
	FormatSPIRV:    {StageCompile},
	FormatMetalLib: {StageCompile, StageConvert, StageMetalCompile, StageMetalLink},
}

// Stage describes one link of the build chain.
type Stage struct {
	Kind StageKind

	// Rule is the ninja rule name.
	Rule string

	// Command is the ninja command template. It uses $in and $out, and the
	// compile stage also $shaderbuild, $shader_type, $entry_point and $includes.
	Command string

	// Description is the status line ninja prints while running the stage.
	Description string

	// Extension is the output file extension, including the dot.
	Extension string

	// Depfile reports whether the stage writes $out.d in gcc format.
	Depfile bool
}

// Converter selects a SPIR-V cross-compiler and its output language.
type Converter struct {
	// Name is the converter's key in Tools.Converters.
	Name string

	// Language is the converter output language.
	Language Language
}

// Options tune plan selection.
type Options struct {
	// Converter requests a conversion stage after the compile stage.
	// Required for FormatSPIRV conversions; defaults to spirv-cross/msl
	// for FormatMetalLib.
	Converter *Converter

	// CompilerFlags are appended to every compiler invocation.
	CompilerFlags []string
}

// Plan is the stage chain applied to every configuration of a build graph.
type Plan struct {
	Format Format

	// PortableIR reports whether the compile stage emits SPIR-V.
	PortableIR bool

	Stages []Stage
}

// Select builds the plan for format using tools. Tool paths are used as
// given; call Tools.RelativeTo first to emit relative paths.
func Select(format Format, tools Tools, opts Options) (*Plan, error) {
	kinds, ok := formatStages[format]
	if !ok {
		return nil, shaderbuild.Errorf(shaderbuild.ErrConfiguration, "unknown shader format %d", format)
	}
	if tools.Compiler == "" {
		return nil, shaderbuild.NewError(shaderbuild.ErrConfiguration, "no shader compiler given")
	}

	needsPortableIR := format.NeedsPortableIR()
	if tools.Builtin() && !needsPortableIR {
		return nil, shaderbuild.Errorf(shaderbuild.ErrConfiguration,
			"the built-in naga compiler emits SPIR-V only and cannot produce the %s format", format)
	}

	converter, err := selectConverter(format, tools, opts.Converter)
	if err != nil {
		return nil, err
	}
	if format == FormatSPIRV && converter != nil {
		kinds = append(append([]StageKind(nil), kinds...), StageConvert)
	}

	plan := &Plan{Format: format, PortableIR: needsPortableIR}
	for _, kind := range kinds {
		var stage Stage
		switch kind {
		case StageCompile:
			stage, err = compileStage(tools, needsPortableIR, opts.CompilerFlags)
		case StageConvert:
			stage, err = convertStage(tools.Converters[converter.Name], *converter)
		case StageMetalCompile:
			stage, err = toolStage(kind, orDefault(tools.Metal, DefaultMetal), ".air", "METAL", "-c", "$in", "-o", "$out")
		case StageMetalLink:
			stage, err = toolStage(kind, orDefault(tools.MetalLib, DefaultMetalLib), ".metallib", "METALLIB", "$in", "-o", "$out")
		}
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, stage)
	}

	shaderbuild.Logger().Debug("toolchain selected",
		"format", format, "portable_ir", needsPortableIR, "stages", len(plan.Stages))
	return plan, nil
}

// selectConverter validates the requested converter against the format
// and the available tools. It returns nil when no conversion is needed.
func selectConverter(format Format, tools Tools, requested *Converter) (*Converter, error) {
	switch format {
	case FormatNative:
		if requested != nil {
			return nil, shaderbuild.Errorf(shaderbuild.ErrConfiguration,
				"converter %q needs SPIR-V input, which the native format does not produce", requested.Name)
		}
		return nil, nil
	case FormatSPIRV:
		if requested == nil {
			return nil, nil
		}
	case FormatMetalLib:
		if requested == nil {
			requested = &Converter{Name: DefaultConverter, Language: LanguageMSL}
		}
		if requested.Language != LanguageMSL {
			return nil, shaderbuild.Errorf(shaderbuild.ErrConfiguration,
				"metallib needs MSL from the converter, got %s", requested.Language)
		}
	}

	if tools.Converters[requested.Name] == "" {
		return nil, shaderbuild.Errorf(shaderbuild.ErrConfiguration,
			"format %s needs converter %q but no path was given for it", format, requested.Name)
	}
	return requested, nil
}

func compileStage(tools Tools, portableIR bool, flags []string) (Stage, error) {
	ext := ".cso"
	if portableIR {
		ext = ".spv"
	}
	stage := Stage{
		Kind:      StageCompile,
		Rule:      StageCompile.Rule(),
		Extension: ext,
		Depfile:   true,
	}

	if tools.Builtin() {
		stage.Command = "$" + VarHelper + " naga $out $in -T $" + VarShaderType + " -E $" + VarEntryPoint
		stage.Description = "NAGA $out"
		return stage, nil
	}

	compiler, err := splitCommand(tools.Compiler)
	if err != nil {
		return Stage{}, err
	}
	words := []string{"$" + VarHelper, "step", "$out", escapeWords(compiler)}
	if portableIR {
		words = append(words, "-spirv")
	}
	words = append(words, "$in", "-T", "$"+VarShaderType, "-E", "$"+VarEntryPoint, "$"+VarIncludes)
	if len(flags) > 0 {
		words = append(words, escapeWords(flags))
	}
	stage.Command = strings.Join(words, " ")
	stage.Description = strings.ToUpper(toolName(compiler[0])) + " $out"
	return stage, nil
}

func convertStage(cmdline string, conv Converter) (Stage, error) {
	words, err := splitCommand(cmdline)
	if err != nil {
		return Stage{}, err
	}
	args := append(conv.Language.spirvCrossFlags(), "$in", "--output", "$out")
	return Stage{
		Kind:        StageConvert,
		Rule:        StageConvert.Rule(),
		Command:     escapeWords(words) + " " + strings.Join(args, " "),
		Description: strings.ToUpper(conv.Name) + " $out",
		Extension:   conv.Language.Extension(),
	}, nil
}

func toolStage(kind StageKind, cmdline, ext, label string, args ...string) (Stage, error) {
	words, err := splitCommand(cmdline)
	if err != nil {
		return Stage{}, err
	}
	return Stage{
		Kind:        kind,
		Rule:        kind.Rule(),
		Command:     escapeWords(words) + " " + strings.Join(args, " "),
		Description: label + " $out",
		Extension:   ext,
	}, nil
}

// escapeWords joins literal words into a command fragment, quoting for the
// shell and escaping for ninja.
func escapeWords(words []string) string {
	return ninja.Escape(joinCommand(words))
}

// toolName returns the executable's base name without extension. Both
// '/' and '\\' separate path elements.
func toolName(exe string) string {
	base := exe[strings.LastIndexAny(exe, `/\`)+1:]
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
