// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command shaderbuild turns shader manifests into a ninja build graph and
// runs the per-shader compile steps of that graph.
//
// Usage:
//
//	shaderbuild generate <target> <build-dir> <format> <output> <tools> <shaders-root> <helper> <includes|None> [<converter> <language>] <manifest.json>...
//	shaderbuild plan     (same arguments as generate)
//	shaderbuild watch    (same arguments as generate)
//	shaderbuild batch <file.toml>
//	shaderbuild step <out> <compiler> [args...]
//	shaderbuild naga <out> <in> -T <shader-type> -E <entry-point>
//
// Examples:
//
//	shaderbuild generate engine build spirv build/shaders.ninja /opt/dxc/bin/dxc \
//	    src/shaders build/bin/shaderbuild "src/shaders/include" src/shaders/basic.json
//	shaderbuild plan engine build metallib build/shaders.ninja "dxc=dxc;spirv-cross=spirv-cross" \
//	    src/shaders build/bin/shaderbuild None src/shaders/basic.json
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gogpu/shaderbuild"
)

func main() {
	if err := NewCLI().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(shaderbuild.ExitCodeOf(err))
	}
}
