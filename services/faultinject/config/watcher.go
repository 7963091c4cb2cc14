// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/faultkit/services/faultinject/registry"
)

// ReloadFunc is called after every reload attempt. err is nil on success.
type ReloadFunc func(p *Plan, err error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the watcher's logger. Nil keeps slog.Default().
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnReload registers a callback run after each reload attempt.
func OnReload(fn ReloadFunc) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// Watcher re-applies a plan file to a registry whenever the file changes.
//
// # Description
//
// The plan's directory is watched rather than the file itself so that
// editors which replace the file through a rename keep triggering reloads.
// Only events naming the plan file are acted on. A reload that fails to
// load or apply leaves the registry as it was, and so does an event for a
// zero-length file.
//
// # Thread Safety
//
// Run must be called at most once. Close is safe to call at any time.
type Watcher struct {
	path     string
	reg      *registry.Registry
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onReload ReloadFunc
}

// NewWatcher creates a watcher for a plan file.
//
// # Inputs
//
//   - path: Plan file path. Must have a .yaml, .yml or .toml extension.
//   - reg: Registry the plan is applied to.
//   - opts: Optional settings.
//
// # Outputs
//
//   - *Watcher: Ready to Run.
//   - error: Non-nil if the format is unsupported or fsnotify fails.
func NewWatcher(path string, reg *registry.Registry, opts ...WatcherOption) (*Watcher, error) {
	if _, err := FormatFromPath(path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving plan path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:    abs,
		reg:     reg,
		watcher: fw,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(slog.String("component", "plan_watcher"), slog.String("path", abs))
	return w, nil
}

// Run watches the plan until ctx is cancelled or the watcher is closed.
//
// # Outputs
//
//   - error: Non-nil only if the directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.Debug("plan watcher started")

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				w.reload(ctx)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("plan watcher error", slog.String("error", err.Error()))

		case <-ctx.Done():
			w.logger.Debug("plan watcher stopping")
			return nil
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// reload skips empty files: editors that truncate before writing emit a
// Write event for the empty file, and an empty plan would reset the registry.
func (w *Watcher) reload(ctx context.Context) {
	if info, err := os.Stat(w.path); err == nil && info.Size() == 0 {
		w.logger.Debug("plan file empty, reload skipped")
		return
	}

	p, err := LoadPlan(ctx, w.path)
	if err == nil {
		err = p.Apply(ctx, w.reg)
	}

	if err != nil {
		planReloadErrors.Inc()
		w.logger.Warn("plan reload failed", slog.String("error", err.Error()))
	} else {
		w.logger.Info("plan reloaded",
			slog.String("plan", p.Name),
			slog.Int("faults", len(p.Faults)),
		)
	}

	if w.onReload != nil {
		if err != nil {
			p = nil
		}
		w.onReload(p, err)
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
