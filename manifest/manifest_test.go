// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shaderbuild"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "sprites/sprite.json", `{
		"Path": "sprite.hlsl",
		"Configurations": [
			{"EntryPoint": "VsMain", "ShaderType": "vs_6_0"},
			{"EntryPoint": "PsMain", "ShaderType": "ps_6_0"}
		]
	}`)

	m, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, path, m.Document)
	assert.Equal(t, "sprite.hlsl", m.Path)
	assert.Equal(t, filepath.Join(dir, "sprites", "sprite.hlsl"), m.Source)
	assert.Equal(t, []Configuration{
		{EntryPoint: "VsMain", ShaderType: "vs_6_0"},
		{EntryPoint: "PsMain", ShaderType: "ps_6_0"},
	}, m.Configurations)
}

func TestLoad_Skipped(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing configurations", `{"Path": "basic.hlsl"}`},
		{"missing path", `{"Configurations": [{"EntryPoint": "main", "ShaderType": "vs"}]}`},
		{"unrelated document", `{"Version": 3}`},
		{"array document", `[1, 2, 3]`},
		{"string document", `"shader"`},
		{"null document", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, t.TempDir(), "doc.json", tt.content)
			m, err := Load(path)
			require.NoError(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"Path": "basic.hlsl",`},
		{"path not a string", `{"Path": 5, "Configurations": []}`},
		{"empty path", `{"Path": "", "Configurations": []}`},
		{"configurations not a list", `{"Path": "a.hlsl", "Configurations": "vs"}`},
		{"configuration not an object", `{"Path": "a.hlsl", "Configurations": ["vs"]}`},
		{"missing entry point", `{"Path": "a.hlsl", "Configurations": [{"ShaderType": "vs"}]}`},
		{"missing shader type", `{"Path": "a.hlsl", "Configurations": [{"EntryPoint": "main"}]}`},
		{"empty entry point", `{"Path": "a.hlsl", "Configurations": [{"EntryPoint": "", "ShaderType": "vs"}]}`},
		{"empty shader type", `{"Path": "a.hlsl", "Configurations": [{"EntryPoint": "main", "ShaderType": ""}]}`},
		{"entry point not a string", `{"Path": "a.hlsl", "Configurations": [{"EntryPoint": 1, "ShaderType": "vs"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, t.TempDir(), "doc.json", tt.content)
			m, err := Load(path)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, shaderbuild.IsKind(err, shaderbuild.ErrParse), "want ParseError, got %v", err)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, shaderbuild.IsKind(err, shaderbuild.ErrParse))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "a.json", `{"Path": "a.hlsl", "Configurations": [{"EntryPoint": "main", "ShaderType": "vs"}]}`)
	skip := writeDoc(t, dir, "skip.json", `{"Path": "skip.hlsl"}`)
	b := writeDoc(t, dir, "b.json", `{"Path": "b.hlsl", "Configurations": []}`)

	manifests, err := LoadAll([]string{b, skip, a})
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, "b.hlsl", manifests[0].Path, "argument order is preserved")
	assert.Equal(t, "a.hlsl", manifests[1].Path)
	assert.Empty(t, manifests[0].Configurations)
}

func TestLoadAll_AbortsOnError(t *testing.T) {
	dir := t.TempDir()
	good := writeDoc(t, dir, "good.json", `{"Path": "a.hlsl", "Configurations": []}`)
	bad := writeDoc(t, dir, "bad.json", `not json`)

	manifests, err := LoadAll([]string{good, bad})
	require.Error(t, err)
	assert.Nil(t, manifests)
	assert.True(t, shaderbuild.IsKind(err, shaderbuild.ErrParse))
}
