// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package batch generates several build graphs described by one TOML file.
//
//	[[target]]
//	name = "engine"
//	output = "build/engine_shaders.ninja"
//	format = "metallib"
//	tools = "dxc=~/sdk/dxc;spirv-cross=/usr/local/bin/spirv-cross"
//	shaders_root = "src/shaders"
//	helper = "build/bin/shaderbuild"
//	includes = ["src/shaders/include"]
//	manifests = ["src/shaders/*.json", "src/shaders/*/*.json"]
//
// Relative paths are resolved against the directory of the TOML file.
// Manifest entries may be glob patterns; matches keep lexical order.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/buildgraph"
	"github.com/gogpu/shaderbuild/toolchain"
)

// Target is one [[target]] table of a batch file.
type Target struct {
	Name          string   `toml:"name"`
	BuildDir      string   `toml:"build_dir"`
	OutputDir     string   `toml:"output_dir"`
	Output        string   `toml:"output"`
	Format        string   `toml:"format"`
	Tools         string   `toml:"tools"`
	Converter     string   `toml:"converter"`
	Language      string   `toml:"language"`
	ShadersRoot   string   `toml:"shaders_root"`
	Helper        string   `toml:"helper"`
	Includes      []string `toml:"includes"`
	CompilerFlags string   `toml:"compiler_flags"`
	Manifests     []string `toml:"manifests"`
}

// File is a decoded batch file.
type File struct {
	// Jobs bounds the number of targets generated at once; 0 means no limit.
	Jobs    int      `toml:"jobs"`
	Targets []Target `toml:"target"`
}

// Load reads the batch file at path. It returns one buildgraph.Config per
// target in file order, and the jobs limit.
func Load(path string) ([]buildgraph.Config, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, shaderbuild.WrapError(shaderbuild.ErrParse, path, err)
	}

	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, 0, shaderbuild.WrapError(shaderbuild.ErrParse, path, err)
	}
	if len(f.Targets) == 0 {
		return nil, 0, &shaderbuild.Error{Kind: shaderbuild.ErrConfiguration, Path: path, Message: "no [[target]] declared"}
	}

	base := filepath.Dir(path)
	configs := make([]buildgraph.Config, 0, len(f.Targets))
	for i, t := range f.Targets {
		cfg, err := t.config(base)
		if err != nil {
			return nil, 0, &shaderbuild.Error{
				Kind:    shaderbuild.ErrConfiguration,
				Path:    path,
				Message: fmt.Sprintf("target %d (%s)", i+1, t.Name),
				Err:     err,
			}
		}
		configs = append(configs, cfg)
	}
	return configs, f.Jobs, nil
}

// config converts the table into a buildgraph.Config rooted at base.
func (t Target) config(base string) (buildgraph.Config, error) {
	resolve := func(p string) (string, error) {
		if p == "" {
			return "", nil
		}
		p, err := homedir.Expand(p)
		if err != nil {
			return "", err
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p), nil
		}
		return filepath.Join(base, filepath.FromSlash(p)), nil
	}

	var cfg buildgraph.Config
	var err error
	cfg.Target = t.Name
	for _, field := range []struct {
		dst *string
		src string
	}{
		{&cfg.BuildDir, t.BuildDir},
		{&cfg.OutputDir, t.OutputDir},
		{&cfg.Output, t.Output},
		{&cfg.ShadersRoot, t.ShadersRoot},
		{&cfg.Helper, t.Helper},
	} {
		if *field.dst, err = resolve(field.src); err != nil {
			return cfg, err
		}
	}

	if t.Format == "" {
		t.Format = toolchain.FormatNative.String()
	}
	if cfg.Format, err = toolchain.ParseFormat(t.Format); err != nil {
		return cfg, err
	}
	if cfg.Tools, err = toolchain.ParseTools(t.Tools); err != nil {
		return cfg, err
	}
	for _, name := range cfg.Tools.ConverterNames() {
		if cfg.Tools.Converters[name], err = resolveTool(cfg.Tools.Converters[name], base); err != nil {
			return cfg, err
		}
	}
	for _, tool := range []*string{&cfg.Tools.Compiler, &cfg.Tools.Metal, &cfg.Tools.MetalLib} {
		if *tool, err = resolveTool(*tool, base); err != nil {
			return cfg, err
		}
	}

	if t.Converter != "" {
		lang := toolchain.LanguageMSL
		if t.Language != "" {
			if lang, err = toolchain.ParseLanguage(t.Language); err != nil {
				return cfg, err
			}
		}
		cfg.Converter = &toolchain.Converter{Name: t.Converter, Language: lang}
	}
	if cfg.CompilerFlags, err = toolchain.ParseFlags(t.CompilerFlags); err != nil {
		return cfg, err
	}

	for _, dir := range t.Includes {
		abs, err := resolve(dir)
		if err != nil {
			return cfg, err
		}
		cfg.Includes = append(cfg.Includes, abs)
	}
	for _, pattern := range t.Manifests {
		abs, err := resolve(pattern)
		if err != nil {
			return cfg, err
		}
		matches, err := filepath.Glob(abs)
		if err != nil {
			return cfg, err
		}
		if matches == nil {
			// A literal path that does not exist is reported when loading.
			matches = []string{abs}
		}
		cfg.Manifests = append(cfg.Manifests, matches...)
	}
	return cfg, nil
}

// resolveTool anchors a relative path-like executable at base. Bare names
// and the built-in compiler are kept.
func resolveTool(cmdline, base string) (string, error) {
	if cmdline == "" || cmdline == toolchain.BuiltinNaga {
		return cmdline, nil
	}
	return toolchain.AnchorCommand(cmdline, base)
}

// Run generates every config concurrently. At most jobs targets run at
// once when jobs > 0. The first failure cancels the targets not yet
// started and is returned.
func Run(ctx context.Context, configs []buildgraph.Config, jobs int) error {
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	log := shaderbuild.Logger()
	for _, cfg := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Debug("generating target", "target", cfg.Target, "output", cfg.Output)
			return buildgraph.Generate(cfg)
		})
	}
	return g.Wait()
}
