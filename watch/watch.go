// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package watch regenerates a build graph whenever one of its manifests
// changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/shaderbuild"
	"github.com/gogpu/shaderbuild/buildgraph"
)

// DefaultDebounce is the quiet period after the last relevant event before
// the graph is regenerated.
const DefaultDebounce = 200 * time.Millisecond

// Options tune the watch loop.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// OnGenerate, if set, is called after every generation with its result.
	OnGenerate func(error)
}

// Run generates cfg once, then regenerates it after manifest changes until
// ctx is cancelled. Directories are watched rather than files so that
// editors replacing a file by rename are noticed.
//
// A configuration error on the first generation is returned, since no
// manifest edit can fix it. Every later failure is logged and the loop
// keeps running.
func Run(ctx context.Context, cfg buildgraph.Config, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := shaderbuild.Logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return shaderbuild.WrapError(shaderbuild.ErrConfiguration, "", err)
	}
	defer watcher.Close()

	manifests := make(map[string]bool, len(cfg.Manifests))
	dirs := make(map[string]bool)
	for _, m := range cfg.Manifests {
		abs, err := filepath.Abs(m)
		if err != nil {
			return shaderbuild.WrapError(shaderbuild.ErrConfiguration, m, err)
		}
		manifests[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return shaderbuild.WrapError(shaderbuild.ErrConfiguration, dir, err)
		}
		dirs[dir] = true
	}

	generate := func() error {
		err := buildgraph.Generate(cfg)
		if err != nil {
			log.Error("build graph generation failed", "output", cfg.Output, "err", err)
		}
		if opts.OnGenerate != nil {
			opts.OnGenerate(err)
		}
		return err
	}

	if err := generate(); shaderbuild.IsKind(err, shaderbuild.ErrConfiguration) {
		return err
	}
	log.Info("watching manifests", "manifests", len(manifests), "dirs", len(dirs))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, manifests) {
				continue
			}
			log.Debug("manifest changed", "path", event.Name, "op", event.Op.String())
			fire = time.After(opts.Debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		case <-fire:
			fire = nil
			generate()
		}
	}
}

func relevant(event fsnotify.Event, manifests map[string]bool) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return manifests[abs]
}
