// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/shaderbuild/step"
)

func newStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step <out> <compiler> [args...]",
		Short: "Run a compiler for one build edge and write its depfile",
		Long: `Run the compiler twice: once with -M -MF <out>.d to write the make-style
dependency file, then with -Fo <out> to write the output. Arguments after
<compiler> are passed through unchanged.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := step.ParseInvocation(args)
			if err != nil {
				return err
			}
			return step.Compile(cmd.Context(), inv, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func newNagaCmd() *cobra.Command {
	var inv step.WGSLInvocation
	cmd := &cobra.Command{
		Use:   "naga <out> <in> -T <shader-type> -E <entry-point>",
		Short: "Compile a WGSL entry point to SPIR-V in-process",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv.Output = args[0]
			inv.Input = args[1]
			return step.CompileWGSL(inv)
		},
	}
	cmd.Flags().StringVarP(&inv.ShaderType, "shader-type", "T", "", "Shader type, e.g. vs_6_0 or fragment")
	cmd.Flags().StringVarP(&inv.EntryPoint, "entry-point", "E", "", "Entry point name")
	cmd.Flags().BoolVar(&inv.Validate, "validate", true, "Validate the IR before code generation")
	cmd.Flags().BoolVar(&inv.Debug, "debug", false, "Emit SPIR-V debug info")
	cmd.MarkFlagRequired("shader-type")
	cmd.MarkFlagRequired("entry-point")
	return cmd
}
