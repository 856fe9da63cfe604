// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package manifest reads JSON shader manifests.
//
// A manifest describes one shader source and the configurations to build
// from it:
//
//	{
//	  "Path": "basic.hlsl",
//	  "Configurations": [
//	    { "EntryPoint": "VsMain", "ShaderType": "vs_6_0" },
//	    { "EntryPoint": "PsMain", "ShaderType": "ps_6_0" }
//	  ]
//	}
//
// Path is resolved against the directory holding the manifest. Documents
// that are not objects, or lack a Path or Configurations key, are not
// shader manifests and are skipped.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"

	"github.com/gogpu/shaderbuild"
)

// Keys a document must carry to be treated as a shader manifest.
const (
	keyPath           = "Path"
	keyConfigurations = "Configurations"
)

// Configuration is one (entry point, shader type) pair to compile.
type Configuration struct {
	// EntryPoint names the function to compile.
	EntryPoint string `mapstructure:"EntryPoint"`

	// ShaderType is the stage identifier passed to the compiler, e.g. "vs_6_0".
	ShaderType string `mapstructure:"ShaderType"`
}

// Manifest describes one shader source file and its configurations.
type Manifest struct {
	// Document is the path of the manifest file itself.
	Document string `mapstructure:"-"`

	// Path is the shader source location as written in the document.
	Path string `mapstructure:"Path"`

	// Source is Path resolved against the manifest's directory.
	Source string `mapstructure:"-"`

	// Configurations lists the builds to produce, in document order.
	Configurations []Configuration `mapstructure:"Configurations"`
}

// Load reads the manifest at path.
//
// It returns (nil, nil) when the document is not an object or lacks the
// Path or Configurations key. A document that is not valid JSON, or whose fields have the wrong
// shape, yields an ErrParse error.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, shaderbuild.WrapError(shaderbuild.ErrParse, path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, shaderbuild.WrapError(shaderbuild.ErrParse, path, err)
	}
	if m == nil {
		return nil, nil
	}
	m.Document = path
	m.Source = filepath.Join(filepath.Dir(path), filepath.FromSlash(m.Path))
	return m, nil
}

// Parse decodes a manifest document. Document and Source are left empty.
func Parse(data []byte) (*Manifest, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, nil
	}
	if _, ok := raw[keyPath]; !ok {
		return nil, nil
	}
	if _, ok := raw[keyConfigurations]; !ok {
		return nil, nil
	}

	var m Manifest
	if err := mapstructure.Decode(raw, &m); err != nil {
		return nil, err
	}
	if m.Path == "" {
		return nil, fmt.Errorf("%s must be a non-empty string", keyPath)
	}

	// mapstructure leaves missing keys zero; a configuration without both
	// fields cannot produce a compile command.
	configs, _ := raw[keyConfigurations].([]any)
	for i, c := range configs {
		fields, ok := c.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not an object", keyConfigurations, i)
		}
		for _, key := range []string{"EntryPoint", "ShaderType"} {
			if _, ok := fields[key]; !ok {
				return nil, fmt.Errorf("%s[%d] is missing %s", keyConfigurations, i, key)
			}
		}
		if m.Configurations[i].EntryPoint == "" {
			return nil, fmt.Errorf("%s[%d].EntryPoint is empty", keyConfigurations, i)
		}
		if m.Configurations[i].ShaderType == "" {
			return nil, fmt.Errorf("%s[%d].ShaderType is empty", keyConfigurations, i)
		}
	}
	return &m, nil
}

// LoadAll loads every manifest in order, dropping skipped documents.
// The first error aborts the whole load.
func LoadAll(paths []string) ([]*Manifest, error) {
	log := shaderbuild.Logger()
	manifests := make([]*Manifest, 0, len(paths))
	for _, path := range paths {
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		if m == nil {
			log.Debug("skipping document without shader manifest keys", "document", path)
			continue
		}
		log.Info("creating commands", "source", m.Source, "configurations", len(m.Configurations))
		for _, c := range m.Configurations {
			log.Debug("configuration", "shader_type", c.ShaderType, "entry_point", c.EntryPoint)
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}
