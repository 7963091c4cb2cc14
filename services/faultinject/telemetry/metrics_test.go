// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AleutianAI/faultkit/pkg/logging"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/registry"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("faultkit-test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

// sumFor returns the int64 sum of the named counter over data points whose
// attributes include every attr given.
func sumFor(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if hasAll(dp.Attributes, attrs) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func hasAll(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}

func TestMetrics_RegistryRecorder(t *testing.T) {
	m, reader := newTestMetrics(t)
	reg := registry.New(
		registry.WithRecorder(m),
		registry.WithLogger(logging.Discard()),
		registry.WithEnvironment(registry.NoEnvironment{}),
	)

	reg.API().InjectHTTP(taxonomy.StatusServiceUnavailable)
	reg.API().InjectTimeout()
	reg.Map().InjectTileError()
	reg.Map().Clear()
	reg.Reset()

	if got := sumFor(t, reader, "faultkit_injections_total"); got != 3 {
		t.Errorf("injections = %d, want 3", got)
	}
	if got := sumFor(t, reader, "faultkit_injections_total",
		attribute.String("category", "api")); got != 2 {
		t.Errorf("api injections = %d, want 2", got)
	}
	if got := sumFor(t, reader, "faultkit_injections_total",
		attribute.String("category", "map"), attribute.String("kind", "tile-error")); got != 1 {
		t.Errorf("map/tile-error injections = %d, want 1", got)
	}
	if got := sumFor(t, reader, "faultkit_clears_total",
		attribute.String("category", "map")); got != 1 {
		t.Errorf("map clears = %d, want 1", got)
	}
	if got := sumFor(t, reader, "faultkit_resets_total"); got != 1 {
		t.Errorf("resets = %d, want 1", got)
	}
}

func TestMetrics_FactoryRecorder(t *testing.T) {
	m, reader := newTestMetrics(t)
	f := diagnostics.NewFactory(diagnostics.WithRecorder(m))

	f.CreateFromFault(taxonomy.IntegrationCircuitBreakerTrigger{}, "breaker open")
	f.CreateStructuredError(diagnostics.CodeAPITimeout, "slow", taxonomy.CategoryAPI, taxonomy.KindTimeout)

	if got := sumFor(t, reader, "faultkit_errors_created_total"); got != 2 {
		t.Errorf("errors created = %d, want 2", got)
	}
	if got := sumFor(t, reader, "faultkit_errors_created_total",
		attribute.String("severity", "critical")); got != 1 {
		t.Errorf("critical errors = %d, want 1", got)
	}
	if got := sumFor(t, reader, "faultkit_errors_created_total",
		attribute.String("error_code", "API_TIMEOUT"), attribute.String("severity", "medium")); got != 1 {
		t.Errorf("API_TIMEOUT/medium errors = %d, want 1", got)
	}
}

func TestMetrics_RecordAudit(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAudit(ctx, diagnostics.AuditReport{TotalErrors: 3, ValidErrors: 2, InvalidErrors: 1})
	m.RecordAudit(ctx, diagnostics.AuditReport{TotalErrors: 4, ValidErrors: 4})

	if got := sumFor(t, reader, "faultkit_audits_total", attribute.String("outcome", "findings")); got != 1 {
		t.Errorf("audits with findings = %d, want 1", got)
	}
	if got := sumFor(t, reader, "faultkit_audits_total", attribute.String("outcome", "healthy")); got != 1 {
		t.Errorf("healthy audits = %d, want 1", got)
	}
	if got := sumFor(t, reader, "faultkit_audited_records_total", attribute.Bool("valid", true)); got != 6 {
		t.Errorf("valid records = %d, want 6", got)
	}
	if got := sumFor(t, reader, "faultkit_audited_records_total", attribute.Bool("valid", false)); got != 1 {
		t.Errorf("invalid records = %d, want 1", got)
	}
}

func TestRecordError(t *testing.T) {
	RecordError(nil, errors.New("ignored"))

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, ok := tp.Tracer("test").Start(context.Background(), "ok")
	RecordError(ok, nil)
	ok.End()

	_, failed := tp.Tracer("test").Start(context.Background(), "failed")
	RecordError(failed, errors.New("plan rejected"), attribute.String("plan", "p"))
	failed.End()

	ended := sr.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Status().Code != codes.Unset {
		t.Errorf("ok span status = %v, want Unset", ended[0].Status().Code)
	}
	if ended[1].Status().Code != codes.Error || ended[1].Status().Description != "plan rejected" {
		t.Errorf("failed span status = %+v", ended[1].Status())
	}
	if len(ended[1].Events()) != 1 {
		t.Errorf("failed span events = %d, want 1", len(ended[1].Events()))
	}
}
