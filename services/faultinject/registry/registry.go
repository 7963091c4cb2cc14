// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry holds the active fault of every category.
//
// # Overview
//
// A Registry maps each of the seven taxonomy categories to at most one
// active fault. Test code injects faults; instrumented code polls the
// per-category handles to decide whether to fail:
//
//	reg := registry.New(registry.WithLogger(logger))
//	reg.API().InjectHTTP(taxonomy.StatusServiceUnavailable)
//
//	if reg.API().ShouldFail() {
//	    switch f := reg.API().GetFault().(type) {
//	    case taxonomy.APIHTTP:
//	        return fakeResponse(int(f.Status))
//	    }
//	}
//
// Consumers that check several categories conventionally check map, then
// api, then data, then ui. The registry does not enforce an order.
//
// # Concurrency
//
// State is an immutable Snapshot published through an atomic pointer.
// Writers serialize on a mutex, copy the current snapshot, modify the copy
// and swap it in. Readers never lock and never see a partial update: Reset
// clears all seven slots in a single swap.
//
// No operation blocks on I/O or returns an error. Injections that unset
// environment variables do so best-effort.
package registry

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Recorder observes registry mutations. telemetry.Metrics satisfies it.
type Recorder interface {
	RecordInjection(category, kind string)
	RecordClear(category string)
	RecordReset()
}

// Config configures a Registry.
type Config struct {
	// Logger receives the diagnostic lines. Default: slog.Default().
	Logger *slog.Logger

	// Env is used by injections with environment side effects.
	// Default: the process environment.
	Env Environment

	// Recorder, when set, observes every injection, clear and reset.
	Recorder Recorder
}

// DefaultConfig returns a config logging to slog.Default() and touching the
// process environment.
func DefaultConfig() *Config {
	return &Config{
		Logger: slog.Default(),
		Env:    ProcessEnvironment{},
	}
}

// Option configures a Registry.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithEnvironment replaces the process environment.
func WithEnvironment(env Environment) Option {
	return func(c *Config) {
		if env != nil {
			c.Env = env
		}
	}
}

// WithRecorder attaches a mutation observer.
func WithRecorder(r Recorder) Option {
	return func(c *Config) { c.Recorder = r }
}

// -----------------------------------------------------------------------------
// Snapshot
// -----------------------------------------------------------------------------

// ActiveFault pairs a category with its active fault.
type ActiveFault struct {
	Category taxonomy.Category
	Fault    taxonomy.Fault
}

// Descriptor returns the string-typed view of the fault.
func (a ActiveFault) Descriptor() taxonomy.Descriptor {
	return taxonomy.Describe(a.Fault)
}

// Snapshot is the registry state at one instant. The zero value has no faults.
type Snapshot struct {
	slots [taxonomy.NumCategories]taxonomy.Fault
}

// Get returns the active fault of c, or nil.
func (s Snapshot) Get(c taxonomy.Category) taxonomy.Fault {
	i := c.Index()
	if i < 0 {
		return nil
	}
	return s.slots[i]
}

// Active returns the non-empty slots in category declaration order.
func (s Snapshot) Active() []ActiveFault {
	categories := taxonomy.Categories()
	out := make([]ActiveFault, 0, taxonomy.NumCategories)
	for i, f := range s.slots {
		if f != nil {
			out = append(out, ActiveFault{Category: categories[i], Fault: f})
		}
	}
	return out
}

// HasAny reports whether any slot is set.
func (s Snapshot) HasAny() bool {
	for _, f := range s.slots {
		if f != nil {
			return true
		}
	}
	return false
}

// Descriptors returns the active faults keyed by category name.
func (s Snapshot) Descriptors() map[taxonomy.Category]taxonomy.Descriptor {
	out := make(map[taxonomy.Category]taxonomy.Descriptor, taxonomy.NumCategories)
	for _, a := range s.Active() {
		out[a.Category] = a.Descriptor()
	}
	return out
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// Registry holds at most one active fault per category.
//
// Thread Safety: Safe for concurrent use. See the package documentation.
type Registry struct {
	config *Config
	logger *slog.Logger
	state  atomic.Pointer[Snapshot]
	mu     sync.Mutex // serializes writers
}

// New creates a Registry with every category empty.
func New(opts ...Option) *Registry {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	r := &Registry{
		config: config,
		logger: config.Logger.With(slog.String("component", "fault_registry")),
	}
	r.state.Store(&Snapshot{})
	return r
}

// Snapshot returns the state of all seven categories at one instant.
func (r *Registry) Snapshot() Snapshot {
	return *r.state.Load()
}

// SetFault makes f the active fault of f.Category().
//
// Description:
//
//	The previous fault of that category, if any, is replaced. Other
//	categories are untouched. A fault failing taxonomy.Validate is
//	logged and ignored.
//
// Inputs:
//   - f: The fault to activate.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) SetFault(f taxonomy.Fault) {
	if err := taxonomy.Validate(f); err != nil {
		r.logger.Warn("fault rejected", slog.String("error", err.Error()))
		return
	}
	category := f.Category()
	r.swap(func(s *Snapshot) { s.slots[category.Index()] = f })

	r.logger.Info("fault injected",
		slog.String("category", string(category)),
		slog.Any("fault", taxonomy.Describe(f)),
	)
	if r.config.Recorder != nil {
		r.config.Recorder.RecordInjection(string(category), string(f.Kind()))
	}
}

// ClearFault empties the slot of c. Unknown categories are ignored.
func (r *Registry) ClearFault(c taxonomy.Category) {
	i := c.Index()
	if i < 0 {
		r.logger.Warn("unknown category ignored", slog.String("category", string(c)))
		return
	}
	r.swap(func(s *Snapshot) { s.slots[i] = nil })
	r.logger.Info("fault cleared", slog.String("category", string(c)))
	if r.config.Recorder != nil {
		r.config.Recorder.RecordClear(string(c))
	}
}

// Reset empties every slot in one atomic swap.
func (r *Registry) Reset() {
	r.mu.Lock()
	prev := r.state.Swap(&Snapshot{})
	r.mu.Unlock()

	r.logger.Info("fault registry reset", slog.Int("cleared", len(prev.Active())))
	if r.config.Recorder != nil {
		r.config.Recorder.RecordReset()
	}
}

// ActiveFaults returns the set slots in category declaration order.
func (r *Registry) ActiveFaults() []ActiveFault {
	return r.state.Load().Active()
}

// HasAnyFault reports whether any category has an active fault.
func (r *Registry) HasAnyFault() bool {
	return r.state.Load().HasAny()
}

// swap applies mutate to a copy of the current snapshot and publishes it.
func (r *Registry) swap(mutate func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := *r.state.Load()
	mutate(&next)
	r.state.Store(&next)
}
