// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package step

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/depfile"
)

// WGSLInvocation is one built-in compile:
//
//	shaderbuild naga <output> <input> -T <shader type> -E <entry point>
type WGSLInvocation struct {
	Output     string
	Input      string
	ShaderType string
	EntryPoint string

	// Validate runs IR validation before code generation.
	Validate bool

	// Debug emits OpName/OpLine debug information.
	Debug bool
}

// ShaderStage maps a shader type identifier to a naga stage. Only the part
// before the first '_' matters, so "vs_6_0" and "vs" are both vertex.
func ShaderStage(shaderType string) (ir.ShaderStage, error) {
	prefix, _, _ := strings.Cut(strings.ToLower(shaderType), "_")
	switch prefix {
	case "vs", "vert", "vertex":
		return ir.StageVertex, nil
	case "ps", "fs", "frag", "fragment", "pixel":
		return ir.StageFragment, nil
	case "cs", "comp", "compute":
		return ir.StageCompute, nil
	default:
		return 0, shaderbuild.Errorf(shaderbuild.ErrConfiguration, "shader type %q has no WGSL stage", shaderType)
	}
}

func stageName(s ir.ShaderStage) string {
	switch s {
	case ir.StageVertex:
		return "vertex"
	case ir.StageFragment:
		return "fragment"
	case ir.StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("stage(%d)", s)
	}
}

// CompileWGSL compiles inv.Input to SPIR-V at inv.Output and writes a
// depfile listing the source. The module must declare inv.EntryPoint with
// the stage named by inv.ShaderType.
func CompileWGSL(inv WGSLInvocation) error {
	stage, err := ShaderStage(inv.ShaderType)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inv.Input)
	if err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrParse, inv.Input, err)
	}
	source := string(data)

	ast, err := naga.Parse(source)
	if err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrParse, inv.Input, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrParse, inv.Input, err)
	}

	if err := checkEntryPoint(module, inv.EntryPoint, stage); err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrConfiguration, inv.Input, err)
	}

	if inv.Validate {
		validationErrors, err := naga.Validate(module)
		if err != nil {
			return shaderbuild.WrapError(shaderbuild.ErrParse, inv.Input, err)
		}
		if len(validationErrors) > 0 {
			return shaderbuild.WrapError(shaderbuild.ErrParse, inv.Input, &validationErrors[0])
		}
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3, Debug: inv.Debug})
	if err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrParse, inv.Input, err)
	}

	if err := os.MkdirAll(filepath.Dir(inv.Output), 0o755); err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrFileWrite, inv.Output, err)
	}
	if err := os.WriteFile(inv.Output, code, 0o644); err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrFileWrite, inv.Output, err)
	}

	shaderbuild.Logger().Debug("compiled WGSL",
		"input", inv.Input, "entry_point", inv.EntryPoint, "stage", stageName(stage), "bytes", len(code))

	return writeDepfile(DepfilePath(inv.Output), &depfile.File{
		Targets: []string{filepath.ToSlash(inv.Output)},
		Deps:    []string{filepath.ToSlash(inv.Input)},
	})
}

func checkEntryPoint(module *ir.Module, name string, stage ir.ShaderStage) error {
	var names []string
	for _, ep := range module.EntryPoints {
		if ep.Name != name {
			names = append(names, ep.Name)
			continue
		}
		if ep.Stage != stage {
			return fmt.Errorf("entry point %q is a %s shader, not %s", name, stageName(ep.Stage), stageName(stage))
		}
		return nil
	}
	return fmt.Errorf("entry point %q not found (module declares %s)", name, strings.Join(names, ", "))
}
