// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads fault plans and the embedded plan profiles.
//
// A plan is a YAML or TOML file that lists at most one fault per category
// plus logging and telemetry settings for the server:
//
//	name: checkout-outage
//	faults:
//	  - category: api
//	    kind: http
//	    payload: {status: 503}
//	  - category: integration
//	    kind: circuit-breaker-trigger
//	logging:
//	  level: debug
//
// Plans are applied to a registry.Registry with Plan.Apply. A Watcher
// re-applies a plan file whenever it changes on disk.
//
// Thread Safety:
//
//	All exported functions are safe for concurrent use. A *Plan must not be
//	mutated while it is being applied.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/faultkit/services/faultinject/registry"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxPlanFileSize is the maximum accepted plan file size (1MB).
	MaxPlanFileSize = 1024 * 1024

	// EnvPlan names a plan file applied at server start.
	EnvPlan = "FAULTKIT_PLAN"

	// EnvLogLevel overrides the logging level of plans and flags.
	EnvLogLevel = "FAULTKIT_LOG_LEVEL"
)

// Format is a plan file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrPlanTooLarge indicates a plan file above MaxPlanFileSize.
	ErrPlanTooLarge = errors.New("plan file too large")

	// ErrUnsupportedFormat indicates a plan file extension other than .yaml, .yml or .toml.
	ErrUnsupportedFormat = errors.New("unsupported plan format")

	// ErrInvalidPlan indicates a plan that does not decode or fails validation.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrProfileNotFound indicates an unknown embedded profile name.
	ErrProfileNotFound = errors.New("profile not found")
)

// =============================================================================
// Metrics and Tracing
// =============================================================================

var (
	planLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faultkit_plan_loads_total",
		Help: "Plan loads by source and result",
	}, []string{"source", "result"})

	planLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "faultkit_plan_load_duration_seconds",
		Help:    "Duration of plan loading and validation",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	planApplies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faultkit_plan_applies_total",
		Help: "Plans applied to a fault registry",
	})

	planReloadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faultkit_plan_reload_errors_total",
		Help: "Watched plan reloads that failed to load or apply",
	})
)

var tracer = otel.Tracer("faultkit.config")

// =============================================================================
// Validation
// =============================================================================

var planValidate *validator.Validate

func init() {
	planValidate = validator.New()
	_ = planValidate.RegisterValidation("fault_category", validateCategory)
}

// validateCategory accepts the seven taxonomy category names.
func validateCategory(fl validator.FieldLevel) bool {
	_, err := taxonomy.ParseCategory(fl.Field().String())
	return err == nil
}

// =============================================================================
// Types
// =============================================================================

// FaultEntry is one fault of a plan.
type FaultEntry struct {
	Category string         `yaml:"category" toml:"category" json:"category" validate:"required,fault_category"`
	Kind     string         `yaml:"kind" toml:"kind" json:"kind" validate:"required,max=64"`
	Payload  map[string]any `yaml:"payload,omitempty" toml:"payload,omitempty" json:"payload,omitempty"`
}

// LoggingSettings configures the server logger.
type LoggingSettings struct {
	Level string `yaml:"level,omitempty" toml:"level,omitempty" json:"level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json,omitempty" toml:"json,omitempty" json:"json,omitempty"`
}

// TelemetrySettings configures exporters. Empty fields fall back to the environment.
type TelemetrySettings struct {
	TracesExporter  string `yaml:"traces_exporter,omitempty" toml:"traces_exporter,omitempty" json:"traces_exporter,omitempty" validate:"omitempty,oneof=otlp stdout none"`
	MetricsExporter string `yaml:"metrics_exporter,omitempty" toml:"metrics_exporter,omitempty" json:"metrics_exporter,omitempty" validate:"omitempty,oneof=prometheus stdout none"`
	OTLPEndpoint    string `yaml:"otlp_endpoint,omitempty" toml:"otlp_endpoint,omitempty" json:"otlp_endpoint,omitempty" validate:"omitempty,hostname_port"`
}

// Plan is a declarative fault configuration.
type Plan struct {
	Name        string            `yaml:"name" toml:"name" json:"name" validate:"omitempty,max=64"`
	Description string            `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty" validate:"max=512"`
	Faults      []FaultEntry      `yaml:"faults" toml:"faults" json:"faults" validate:"max=7,dive"`
	Logging     LoggingSettings   `yaml:"logging,omitempty" toml:"logging,omitempty" json:"logging,omitempty"`
	Telemetry   TelemetrySettings `yaml:"telemetry,omitempty" toml:"telemetry,omitempty" json:"telemetry,omitempty"`
}

// =============================================================================
// Parsing and Loading
// =============================================================================

// FormatFromPath picks the plan format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParsePlan decodes and validates a plan.
//
// Description:
//
//	Decoding is strict: unknown keys are errors in both formats. The
//	decoded plan is then validated field by field and every fault entry
//	is resolved against the taxonomy, so a plan that parses can be
//	applied.
//
// Inputs:
//   - data: Encoded plan. At most MaxPlanFileSize bytes.
//   - format: FormatYAML or FormatTOML.
//
// Outputs:
//   - *Plan: The validated plan.
//   - error: Wraps ErrPlanTooLarge, ErrUnsupportedFormat or ErrInvalidPlan.
//     Decoder errors are wrapped with ErrInvalidPlan.
func ParsePlan(data []byte, format Format) (*Plan, error) {
	if len(data) > MaxPlanFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPlanTooLarge, len(data), MaxPlanFileSize)
	}

	var p Plan
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: decoding YAML: %w", ErrInvalidPlan, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &p)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding TOML: %w", ErrInvalidPlan, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: decoding TOML: unknown key %q", ErrInvalidPlan, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPlan reads, decodes and validates a plan file.
//
// Description:
//
//	The format is taken from the file extension. Files larger than
//	MaxPlanFileSize are rejected before they are read.
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - path: Plan file path.
//
// Outputs:
//   - *Plan: The validated plan.
//   - error: Non-nil if the file cannot be read or the plan is invalid.
func LoadPlan(ctx context.Context, path string) (*Plan, error) {
	_, span := tracer.Start(ctx, "config.LoadPlan",
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()

	start := time.Now()
	defer func() { planLoadDuration.Observe(time.Since(start).Seconds()) }()

	p, err := loadPlanFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		planLoads.WithLabelValues("file", "error").Inc()
		return nil, err
	}

	span.SetAttributes(
		attribute.String("plan", p.Name),
		attribute.Int("fault_count", len(p.Faults)),
	)
	planLoads.WithLabelValues("file", "ok").Inc()
	return p, nil
}

func loadPlanFile(path string) (*Plan, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat plan: %w", err)
	}
	if info.Size() > MaxPlanFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPlanTooLarge, info.Size(), MaxPlanFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return ParsePlan(data, format)
}

// =============================================================================
// Plan Methods
// =============================================================================

// Validate checks field constraints and resolves every fault entry.
//
// Outputs:
//   - error: Wraps ErrInvalidPlan, and the taxonomy error when an entry
//     does not resolve.
func (p *Plan) Validate() error {
	if err := planValidate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidPlan, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	_, err := p.Resolve()
	return err
}

// Resolve converts the fault entries into typed faults.
//
// Outputs:
//   - []taxonomy.Fault: One fault per entry, in entry order.
//   - error: Wraps ErrInvalidPlan when a category is listed twice, plus the
//     taxonomy error when an entry does not parse.
func (p *Plan) Resolve() ([]taxonomy.Fault, error) {
	faults := make([]taxonomy.Fault, 0, len(p.Faults))
	seen := make(map[taxonomy.Category]bool, len(p.Faults))
	for i, e := range p.Faults {
		category, err := taxonomy.ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: faults[%d]: %w", ErrInvalidPlan, i, err)
		}
		if seen[category] {
			return nil, fmt.Errorf("%w: faults[%d]: category %s listed twice", ErrInvalidPlan, i, category)
		}
		seen[category] = true

		f, err := taxonomy.ParseFault(category, taxonomy.Kind(e.Kind), e.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: faults[%d]: %w", ErrInvalidPlan, i, err)
		}
		faults = append(faults, f)
	}
	return faults, nil
}

// Apply resets reg and injects every fault of the plan.
//
// Description:
//
//	The plan is resolved before reg is touched, so an invalid plan leaves
//	the registry unchanged. Injection goes through Registry.Inject and
//	carries the same side effects as the typed Inject methods. Readers may
//	observe the registry between the reset and the last injection.
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - reg: The registry to configure.
//
// Outputs:
//   - error: Non-nil if the plan does not resolve.
func (p *Plan) Apply(ctx context.Context, reg *registry.Registry) error {
	_, span := tracer.Start(ctx, "config.Plan.Apply",
		trace.WithAttributes(
			attribute.String("plan", p.Name),
			attribute.Int("fault_count", len(p.Faults)),
		),
	)
	defer span.End()

	faults, err := p.Resolve()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		return err
	}

	reg.Reset()
	for _, f := range faults {
		reg.Inject(f)
	}
	planApplies.Inc()
	return nil
}

// FromSnapshot builds a plan that reproduces the given registry state.
func FromSnapshot(name string, snap registry.Snapshot) *Plan {
	p := &Plan{Name: name, Faults: []FaultEntry{}}
	for _, a := range snap.Active() {
		d := a.Descriptor()
		p.Faults = append(p.Faults, FaultEntry{
			Category: string(d.Category),
			Kind:     string(d.Kind),
			Payload:  d.Payload,
		})
	}
	return p
}
