// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagnostics

import (
	"maps"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// DefaultSource is the source attached to records when the caller supplies none.
const DefaultSource = "fault-injection-system"

// -----------------------------------------------------------------------------
// StructuredError
// -----------------------------------------------------------------------------

// StructuredError is an immutable diagnostic record derived from an observed fault.
//
// Field names and the trace_id, correlation_id and timestamp formats are a
// wire contract. Optional fields are omitted from JSON when empty.
type StructuredError struct {
	ErrorCode     Code              `json:"error_code" yaml:"error_code"`
	Message       string            `json:"message" yaml:"message"`
	TraceID       string            `json:"trace_id" yaml:"trace_id"`
	CorrelationID string            `json:"correlation_id,omitempty" yaml:"correlation_id,omitempty"`
	Timestamp     string            `json:"timestamp" yaml:"timestamp"`
	Category      taxonomy.Category `json:"category" yaml:"category"`
	FaultKind     taxonomy.Kind     `json:"fault_kind" yaml:"fault_kind"`
	Metadata      map[string]any    `json:"metadata" yaml:"metadata"`
	Severity      Severity          `json:"severity" yaml:"severity"`
	Source        string            `json:"source" yaml:"source"`
	UserID        string            `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	SessionID     string            `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

// -----------------------------------------------------------------------------
// Record Options
// -----------------------------------------------------------------------------

type recordOptions struct {
	correlationID string
	metadata      map[string]any
	severity      Severity
	source        string
	userID        string
	sessionID     string
}

// Option configures a single record.
type Option func(*recordOptions)

// WithCorrelationID attaches a cross-service correlation ID.
func WithCorrelationID(id string) Option {
	return func(o *recordOptions) { o.correlationID = id }
}

// WithMetadata attaches metadata. The map is copied.
func WithMetadata(md map[string]any) Option {
	return func(o *recordOptions) { o.metadata = maps.Clone(md) }
}

// WithSeverity overrides the default severity. Ignored by CreateSeverityAwareError.
func WithSeverity(s Severity) Option {
	return func(o *recordOptions) { o.severity = s }
}

// WithSource overrides DefaultSource.
func WithSource(source string) Option {
	return func(o *recordOptions) { o.source = source }
}

// WithUserID attaches the user the failure was observed for.
func WithUserID(id string) Option {
	return func(o *recordOptions) { o.userID = id }
}

// WithSessionID attaches the session the failure was observed in.
func WithSessionID(id string) Option {
	return func(o *recordOptions) { o.sessionID = id }
}

// -----------------------------------------------------------------------------
// Factory
// -----------------------------------------------------------------------------

// Recorder observes minted records. telemetry.Metrics satisfies it.
type Recorder interface {
	RecordErrorCreated(code string, severity string)
}

// Factory mints StructuredError records.
//
// Description:
//
//	The factory owns the clock and the random source used for identifiers
//	so tests can make records fully deterministic. Records never fail to
//	build: omitted optional fields get their defaults.
//
// Thread Safety: Safe for concurrent use.
type Factory struct {
	now      func() time.Time
	mu       sync.Mutex // guards src
	src      rand.Source
	recorder Recorder
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		if now != nil {
			f.now = now
		}
	}
}

// WithRandSource replaces the random source used for identifier suffixes.
func WithRandSource(src rand.Source) FactoryOption {
	return func(f *Factory) {
		if src != nil {
			f.src = src
		}
	}
}

// WithRecorder attaches a Recorder notified for every minted record.
func WithRecorder(r Recorder) FactoryOption {
	return func(f *Factory) { f.recorder = r }
}

// NewFactory creates a factory using the wall clock and math/rand/v2.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		now: time.Now,
		src: globalSource{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewTraceID returns a trace ID of the form trace-<base36 ms>-<6 base36>.
//
// IDs are unique in practice, not cryptographically.
func (f *Factory) NewTraceID() string {
	return f.newID(TraceIDPrefix, f.now())
}

// NewCorrelationID returns a correlation ID of the form <service>-<base36 ms>-<6 base36>.
func (f *Factory) NewCorrelationID(service string) string {
	return f.newID(service, f.now())
}

func (f *Factory) newID(prefix string, at time.Time) string {
	f.mu.Lock()
	suffix := randomSuffix(f.src)
	f.mu.Unlock()
	return prefix + "-" + base36Millis(at) + "-" + suffix
}

// CreateStructuredError builds a record with generated trace_id and timestamp.
//
// Description:
//
//	Defaults: metadata {}, severity medium, source fault-injection-system.
//	correlation_id is attached only when WithCorrelationID is supplied.
//
// Inputs:
//   - code: Canonical error code. Not checked here; see ValidateStructuredError.
//   - message: Free text.
//   - category: Owning category of the observed fault.
//   - kind: Discriminator of the observed fault.
//   - opts: Optional fields.
//
// Outputs:
//   - StructuredError: The record.
func (f *Factory) CreateStructuredError(code Code, message string, category taxonomy.Category, kind taxonomy.Kind, opts ...Option) StructuredError {
	o := collect(opts)
	return f.build(code, message, category, kind, o)
}

// CreateCorrelatedError is CreateStructuredError with a mandatory correlation ID.
//
// correlationID takes precedence over any WithCorrelationID option.
func (f *Factory) CreateCorrelatedError(code Code, message string, category taxonomy.Category, kind taxonomy.Kind, correlationID string, opts ...Option) StructuredError {
	o := collect(opts)
	o.correlationID = correlationID
	return f.build(code, message, category, kind, o)
}

// CreateSeverityAwareError is CreateStructuredError with severity taken from
// SeverityForKind. A WithSeverity option is ignored.
func (f *Factory) CreateSeverityAwareError(code Code, message string, category taxonomy.Category, kind taxonomy.Kind, opts ...Option) StructuredError {
	o := collect(opts)
	o.severity = SeverityForKind(kind)
	return f.build(code, message, category, kind, o)
}

// CreateFromFault mints a severity-aware record for f using CodeForFault.
//
// The fault's payload, if any, is merged into metadata under "fault". A nil
// fault yields an UNKNOWN_FAULT record with no category or fault_kind, which
// ValidateStructuredError reports as missing.
func (f *Factory) CreateFromFault(fault taxonomy.Fault, message string, opts ...Option) StructuredError {
	o := collect(opts)
	if fault == nil {
		o.severity = DefaultSeverity
		return f.build(CodeUnknownFault, message, "", "", o)
	}
	if d := taxonomy.Describe(fault); len(d.Payload) > 0 {
		if o.metadata == nil {
			o.metadata = make(map[string]any, 1)
		}
		o.metadata["fault"] = d.Payload
	}
	o.severity = SeverityForKind(fault.Kind())
	return f.build(CodeForFault(fault), message, fault.Category(), fault.Kind(), o)
}

func collect(opts []Option) recordOptions {
	var o recordOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (f *Factory) build(code Code, message string, category taxonomy.Category, kind taxonomy.Kind, o recordOptions) StructuredError {
	at := f.now()
	rec := StructuredError{
		ErrorCode:     code,
		Message:       message,
		TraceID:       f.newID(TraceIDPrefix, at),
		CorrelationID: o.correlationID,
		Timestamp:     formatTimestamp(at),
		Category:      category,
		FaultKind:     kind,
		Metadata:      o.metadata,
		Severity:      o.severity,
		Source:        o.source,
		UserID:        o.userID,
		SessionID:     o.sessionID,
	}
	if rec.Metadata == nil {
		rec.Metadata = map[string]any{}
	}
	if rec.Severity == "" {
		rec.Severity = DefaultSeverity
	}
	if rec.Source == "" {
		rec.Source = DefaultSource
	}
	if f.recorder != nil {
		f.recorder.RecordErrorCreated(string(rec.ErrorCode), string(rec.Severity))
	}
	return rec
}
