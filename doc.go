// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shaderbuild generates ninja build graphs for shader pipelines.
//
// A set of JSON shader manifests, each naming one shader source and the
// (entry point, shader type) configurations to build from it, is turned
// into a .ninja document that compiles every configuration and, depending
// on the requested format, chains further conversion steps:
//   - native: compiler bytecode (.cso)
//   - spirv: portable SPIR-V (.spv), optionally cross-compiled to another language
//   - metallib: SPIR-V → MSL → AIR → metallib for Apple platforms
//
// The root package holds the error kinds and logger shared by the
// sub-packages. The work itself is split across:
//   - manifest: reading shader manifests
//   - toolchain: choosing the stage chain and tool invocations for a format
//   - ninja: writing ninja syntax
//   - buildgraph: emitting the document
//   - step: helpers invoked by the generated graph
//   - batch, watch: multi-target and continuous generation
//
// Example:
//
//	cfg := buildgraph.Config{
//	    Target:      "Engine",
//	    BuildDir:    "build",
//	    Output:      "build/shaders.ninja",
//	    Format:      toolchain.FormatSPIRV,
//	    Tools:       toolchain.Tools{Compiler: "/opt/dxc/bin/dxc"},
//	    ShadersRoot: "shaders",
//	    Helper:      "build/bin/shaderbuild",
//	    Manifests:   []string{"shaders/basic.json"},
//	}
//	if err := buildgraph.Generate(cfg); err != nil {
//	    log.Fatal(err)
//	}
package shaderbuild

// Version is the shaderbuild release version.
const Version = "0.1.0-dev"
