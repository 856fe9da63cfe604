// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/buildgraph"
	"github.com/gogpu/shaderbuild/toolchain"
)

// generateFixedArgs is the number of positional arguments before the
// optional converter pair and the manifests.
const generateFixedArgs = 8

// noIncludes is the includes argument meaning "no include directories".
const noIncludes = "None"

// parseArgs maps the positional arguments of generate, plan and watch to
// a build graph configuration.
func parseArgs(args []string) (buildgraph.Config, error) {
	var cfg buildgraph.Config
	if len(args) < generateFixedArgs {
		return cfg, shaderbuild.Errorf(shaderbuild.ErrConfiguration,
			"expected at least %d arguments, got %d", generateFixedArgs, len(args))
	}

	cfg.Target = args[0]
	cfg.BuildDir = args[1]
	cfg.Output = args[3]
	cfg.ShadersRoot = args[5]
	cfg.Helper = args[6]

	var err error
	if cfg.Format, err = toolchain.ParseFormat(args[2]); err != nil {
		return cfg, err
	}
	if cfg.Tools, err = toolchain.ParseTools(args[4]); err != nil {
		return cfg, err
	}
	cfg.Includes = parseIncludes(args[7])

	rest := args[generateFixedArgs:]
	if len(rest) > 0 && !isManifest(rest[0]) {
		if len(rest) < 2 {
			return cfg, shaderbuild.Errorf(shaderbuild.ErrConfiguration,
				"converter %q given without an output language", rest[0])
		}
		lang, err := toolchain.ParseLanguage(rest[1])
		if err != nil {
			return cfg, err
		}
		cfg.Converter = &toolchain.Converter{Name: rest[0], Language: lang}
		rest = rest[2:]
	}
	cfg.Manifests = rest
	return cfg, nil
}

// configFromArgs parses the positional arguments and applies the flags
// shared by generate, plan and watch.
func configFromArgs(cmd *cobra.Command, args []string) (buildgraph.Config, error) {
	cfg, err := parseArgs(args)
	if err != nil {
		return cfg, err
	}
	flags, _ := cmd.Flags().GetString("compiler-flags")
	if cfg.CompilerFlags, err = toolchain.ParseFlags(flags); err != nil {
		return cfg, err
	}
	cfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
	return cfg, nil
}

func parseIncludes(arg string) []string {
	if arg == noIncludes {
		return nil
	}
	var dirs []string
	for _, dir := range strings.Split(arg, ";") {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func isManifest(arg string) bool {
	return strings.EqualFold(filepath.Ext(arg), ".json")
}

// printPlan writes one table row per build edge.
func printPlan(w io.Writer, cfg buildgraph.Config) error {
	plan, steps, err := buildgraph.Preview(cfg)
	if err != nil {
		return err
	}

	var data [][]string
	for _, s := range steps {
		data = append(data, []string{
			s.Output,
			s.Kind.String(),
			strings.Join(s.Inputs, " "),
			s.Configuration.EntryPoint,
			s.Configuration.ShaderType,
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"OUTPUT", "STAGE", "INPUT", "ENTRY POINT", "SHADER TYPE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	table.AppendBulk(data)
	table.Render()

	shaderbuild.Logger().Info("plan", "format", plan.Format, "stages", len(plan.Stages), "edges", len(steps))
	return nil
}
