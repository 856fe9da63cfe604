// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/batch"
	"github.com/gogpu/shaderbuild/buildgraph"
	"github.com/gogpu/shaderbuild/watch"
)

// NewCLI returns the shaderbuild command tree.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shaderbuild",
		Short: "Shader build-graph generator",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			setupLogging(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Log warnings and errors only")

	cobra.EnableCommandSorting = false

	generateCmd := &cobra.Command{
		Use:   "generate <target> <build-dir> <format> <output> <tools> <shaders-root> <helper> <includes|None> [<converter> <language>] <manifest>...",
		Short: "Write the ninja build graph for a set of manifests",
		Args:  cobra.MinimumNArgs(generateFixedArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromArgs(cmd, args)
			if err != nil {
				return err
			}
			return buildgraph.Generate(cfg)
		},
	}

	planCmd := &cobra.Command{
		Use:   "plan <generate arguments>...",
		Short: "Print the build edges without writing the graph",
		Args:  cobra.MinimumNArgs(generateFixedArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromArgs(cmd, args)
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), cfg)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch <generate arguments>...",
		Short: "Regenerate the build graph whenever a manifest changes",
		Args:  cobra.MinimumNArgs(generateFixedArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromArgs(cmd, args)
			if err != nil {
				return err
			}
			debounce, _ := cmd.Flags().GetDuration("debounce")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watch.Run(ctx, cfg, watch.Options{Debounce: debounce})
		},
	}
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before regenerating")

	for _, cmd := range []*cobra.Command{generateCmd, planCmd, watchCmd} {
		cmd.Flags().String("compiler-flags", "", "Extra compiler flags, shell quoted")
		cmd.Flags().String("output-dir", "", "Root of the compiled shaders (default: directory of <output>)")
	}

	batchCmd := &cobra.Command{
		Use:   "batch <file.toml>",
		Short: "Generate every target of a batch file in parallel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, jobs, err := batch.Load(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("jobs") {
				jobs, _ = cmd.Flags().GetInt("jobs")
			}
			return batch.Run(cmd.Context(), configs, jobs)
		},
	}
	batchCmd.Flags().IntP("jobs", "j", 0, "Maximum number of targets generated at once (0: no limit)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shaderbuild version %s\n", shaderbuild.Version)
		},
	}

	rootCmd.AddCommand(
		generateCmd,
		planCmd,
		watchCmd,
		batchCmd,
		newStepCmd(),
		newNagaCmd(),
		versionCmd,
	)

	return rootCmd
}

// setupLogging installs a text logger on stderr at the level selected by
// the verbosity flags.
func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = slog.LevelWarn
	}
	shaderbuild.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}
