// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package buildgraph

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/gogpu/shaderbuild"
)

// writeIfChanged atomically replaces path with data unless the file already
// holds exactly data. It reports whether the file was written.
func writeIfChanged(path string, data []byte) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return false, shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return false, shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return false, shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return false, shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return false, shaderbuild.WrapError(shaderbuild.ErrFileWrite, path, err)
	}
	return true, nil
}
