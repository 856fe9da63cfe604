// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package buildgraph emits the ninja document that builds every shader
// configuration of a set of manifests.
//
// The document declares each rule of the toolchain plan once, then one
// build edge per (configuration, stage) in manifest, configuration and
// stage order. The compile edge of a configuration reads the shader source
// and carries its shader type and entry point; every later edge reads the
// previous edge's output. Output names are {stem}_{entry point}{extension},
// placed below the output directory at the source's position under the
// shaders root:
//
//	shaders/sprites/sprite.hlsl, entry VsMain, spirv
//	    → out/sprites/sprite_VsMain.spv
//
// Identical inputs produce byte-identical documents: paths are relative to
// the build directory with forward slashes and nothing time-dependent is
// written.
package buildgraph

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/manifest"
	"github.com/gogpu/shaderbuild/ninja"
	"github.com/gogpu/shaderbuild/toolchain"
)

// LineWidth is the column at which document lines wrap.
const LineWidth = 150

const (
	banner    = "####################################################################"
	separator = "--------------------------------------------------------------------"
)

// Step is one build edge of the document.
type Step struct {
	Kind toolchain.StageKind
	Rule string

	// Output is the single file the edge produces.
	Output string

	// Inputs are the explicit inputs: the source for the compile edge,
	// the previous output otherwise.
	Inputs []string

	// Implicit inputs rebuild the edge when they change.
	Implicit []string

	// Variables are the per-edge bindings (compile edges only).
	Variables []ninja.Var

	// Source and Configuration identify what the edge belongs to.
	Source        string
	Configuration manifest.Configuration
}

// Steps computes the build edges for manifests under plan.
func Steps(cfg Config, manifests []*manifest.Manifest, plan *toolchain.Plan) ([]Step, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	helper, err := toolchain.RelPath(cfg.Helper, cfg.BuildDir)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.ShadersRoot)
	if err != nil {
		return nil, shaderbuild.WrapError(shaderbuild.ErrConfiguration, cfg.ShadersRoot, err)
	}

	var steps []Step
	outputs := make(map[string]string)
	for _, m := range manifests {
		source, err := filepath.Abs(m.Source)
		if err != nil {
			return nil, shaderbuild.WrapError(shaderbuild.ErrConfiguration, m.Source, err)
		}
		within, err := filepath.Rel(root, source)
		if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
			return nil, shaderbuild.Errorf(shaderbuild.ErrConfiguration,
				"shader %s (from %s) is outside the shaders root %s", m.Source, m.Document, cfg.ShadersRoot)
		}
		sourceRel, err := toolchain.RelPath(source, cfg.BuildDir)
		if err != nil {
			return nil, err
		}

		dir := filepath.Dir(within)
		base := filepath.Base(within)
		stem := strings.TrimSuffix(base, filepath.Ext(base))

		for _, c := range m.Configurations {
			input := sourceRel
			for i, stage := range plan.Stages {
				out, err := toolchain.RelPath(filepath.Join(cfg.OutputDir, dir, stem+"_"+c.EntryPoint+stage.Extension), cfg.BuildDir)
				if err != nil {
					return nil, err
				}
				if prev, dup := outputs[out]; dup {
					return nil, shaderbuild.Errorf(shaderbuild.ErrConfiguration,
						"output %s is produced twice (%s and %s, entry point %q)", out, prev, m.Source, c.EntryPoint)
				}
				outputs[out] = m.Source

				s := Step{
					Kind:          stage.Kind,
					Rule:          stage.Rule,
					Output:        out,
					Inputs:        []string{input},
					Source:        sourceRel,
					Configuration: c,
				}
				if i == 0 {
					s.Implicit = []string{helper}
					s.Variables = []ninja.Var{
						{Key: toolchain.VarShaderType, Value: ninja.Escape(c.ShaderType)},
						{Key: toolchain.VarEntryPoint, Value: ninja.Escape(c.EntryPoint)},
					}
				}
				steps = append(steps, s)
				input = out
			}
		}
	}
	return steps, nil
}

// Emit writes the document for manifests under plan to w.
func Emit(w io.Writer, cfg Config, manifests []*manifest.Manifest, plan *toolchain.Plan) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}
	steps, err := Steps(cfg, manifests, plan)
	if err != nil {
		return err
	}
	vars, err := variables(cfg)
	if err != nil {
		return err
	}

	nw := ninja.NewWriter(w, LineWidth)
	nw.Comment(banner)
	nw.Comment(" " + cfg.Target + " shaders compilation ninja file")
	nw.Comment(banner)
	nw.Newline()

	for _, v := range vars {
		nw.Variable(v.Key, v.Value, 0)
	}
	nw.Newline()

	nw.Comment(separator)
	nw.Comment(" Build rules")
	nw.Comment(separator)
	nw.Newline()

	rules := linkedhashmap.New()
	for _, stage := range plan.Stages {
		if _, found := rules.Get(stage.Rule); !found {
			rules.Put(stage.Rule, stage)
		}
	}
	rules.Each(func(key, value interface{}) {
		stage := value.(toolchain.Stage)
		r := ninja.Rule{Command: stage.Command, Description: stage.Description}
		if stage.Depfile {
			r.Depfile = "$out.d"
			r.Deps = "gcc"
		}
		nw.Rule(key.(string), r)
		nw.Newline()
	})

	nw.Comment(separator)
	nw.Comment(" Build commands")
	nw.Comment(separator)

	for i, s := range steps {
		if i%len(plan.Stages) == 0 {
			nw.Newline()
		}
		nw.Build(ninja.Build{
			Outputs:   []string{s.Output},
			Rule:      s.Rule,
			Inputs:    s.Inputs,
			Implicit:  s.Implicit,
			Variables: s.Variables,
		})
	}
	if err := nw.Err(); err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrFileWrite, cfg.Output, err)
	}
	return nil
}

// variables returns the top-level bindings referenced by the rules.
func variables(cfg Config) ([]ninja.Var, error) {
	helper, err := toolchain.RelPath(cfg.Helper, cfg.BuildDir)
	if err != nil {
		return nil, err
	}
	includes := make([]string, 0, len(cfg.Includes))
	for _, dir := range cfg.Includes {
		rel, err := toolchain.RelPath(dir, cfg.BuildDir)
		if err != nil {
			return nil, err
		}
		includes = append(includes, `-I "`+ninja.Escape(rel)+`"`)
	}
	return []ninja.Var{
		{Key: toolchain.VarHelper, Value: toolchain.QuoteArg(ninja.Escape(helper))},
		{Key: toolchain.VarIncludes, Value: strings.Join(includes, " ")},
	}, nil
}

// Preview selects the plan, loads the manifests and computes the steps
// without writing anything.
func Preview(cfg Config) (*toolchain.Plan, []Step, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, nil, err
	}
	plan, err := cfg.plan()
	if err != nil {
		return nil, nil, err
	}
	manifests, err := manifest.LoadAll(cfg.Manifests)
	if err != nil {
		return nil, nil, err
	}
	steps, err := Steps(cfg, manifests, plan)
	if err != nil {
		return nil, nil, err
	}
	return plan, steps, nil
}

// Render returns the document for cfg. Configuration errors are reported
// before any manifest is read.
func Render(cfg Config) ([]byte, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	plan, err := cfg.plan()
	if err != nil {
		return nil, err
	}
	manifests, err := manifest.LoadAll(cfg.Manifests)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Emit(&buf, cfg, manifests, plan); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Generate renders the document and writes it to cfg.Output. Nothing is
// written when any step fails. A document whose content is unchanged is
// left untouched.
func Generate(cfg Config) error {
	data, err := Render(cfg)
	if err != nil {
		return err
	}
	written, err := writeIfChanged(cfg.Output, data)
	if err != nil {
		return err
	}
	log := shaderbuild.Logger()
	if written {
		log.Info("wrote build graph", "output", cfg.Output, "bytes", len(data))
	} else {
		log.Info("build graph unchanged", "output", cfg.Output)
	}
	return nil
}
