// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package buildgraph

import (
	"path/filepath"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/toolchain"
)

// Config describes one build graph.
type Config struct {
	// Target names the graph in the document header.
	Target string

	// BuildDir is the directory ninja runs in. Every path in the document
	// is relative to it. Defaults to the directory of Output.
	BuildDir string

	// OutputDir is the root of the shader outputs; sources keep their
	// position below ShadersRoot. Defaults to the directory of Output.
	OutputDir string

	// Output is the path of the .ninja document to write.
	Output string

	// Format selects the toolchain chain.
	Format toolchain.Format

	// Tools lists the available tool invocations.
	Tools toolchain.Tools

	// Converter requests a conversion stage (see toolchain.Options).
	Converter *toolchain.Converter

	// ShadersRoot is the directory sources are mirrored from.
	ShadersRoot string

	// Helper is the shaderbuild executable the compile stage runs.
	Helper string

	// Includes are passed to the compiler as -I directories.
	Includes []string

	// CompilerFlags are appended to every compiler invocation.
	CompilerFlags []string

	// Manifests are the manifest documents, in emission order.
	Manifests []string
}

// normalize fills defaults and validates the required fields.
func (c Config) normalize() (Config, error) {
	if c.Output == "" {
		return c, shaderbuild.NewError(shaderbuild.ErrConfiguration, "no output document given")
	}
	if c.ShadersRoot == "" {
		return c, shaderbuild.NewError(shaderbuild.ErrConfiguration, "no shaders root given")
	}
	if c.Helper == "" {
		return c, shaderbuild.NewError(shaderbuild.ErrConfiguration, "no shaderbuild helper path given")
	}
	if c.BuildDir == "" {
		c.BuildDir = filepath.Dir(c.Output)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Dir(c.Output)
	}
	if c.Target == "" {
		c.Target = filepath.Base(c.ShadersRoot)
	}
	return c, nil
}

// plan selects the toolchain with tool paths relative to the build dir.
func (c Config) plan() (*toolchain.Plan, error) {
	tools, err := c.Tools.RelativeTo(c.BuildDir)
	if err != nil {
		return nil, err
	}
	return toolchain.Select(c.Format, tools, toolchain.Options{
		Converter:     c.Converter,
		CompilerFlags: c.CompilerFlags,
	})
}
