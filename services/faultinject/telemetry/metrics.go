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
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
)

// Metrics holds the faultkit instruments.
//
// Description:
//
//	All instruments use the "faultkit_" prefix. Metrics implements
//	registry.Recorder (RecordInjection, RecordClear, RecordReset) and
//	diagnostics.Recorder (RecordErrorCreated).
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// InjectionsTotal counts faults injected by category and kind.
	InjectionsTotal metric.Int64Counter

	// ClearsTotal counts single-category clears by category.
	ClearsTotal metric.Int64Counter

	// ResetsTotal counts registry resets.
	ResetsTotal metric.Int64Counter

	// ErrorsCreatedTotal counts structured errors minted by code and severity.
	ErrorsCreatedTotal metric.Int64Counter

	// AuditsTotal counts audits by outcome.
	AuditsTotal metric.Int64Counter

	// AuditedRecordsTotal counts audited records by validity.
	AuditedRecordsTotal metric.Int64Counter

	// AuditBatchSize records the number of records per audit.
	AuditBatchSize metric.Int64Histogram
}

// NewMetrics registers the faultkit instruments with meter.
//
// Inputs:
//
//	meter - The OTel meter, e.g. otel.Meter("faultkit").
//
// Outputs:
//
//	*Metrics - Ready to record.
//	error - Non-nil if an instrument cannot be created.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.InjectionsTotal, err = meter.Int64Counter(
		"faultkit_injections_total",
		metric.WithDescription("Faults injected into the registry"),
		metric.WithUnit("{fault}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create injections_total: %w", err)
	}

	m.ClearsTotal, err = meter.Int64Counter(
		"faultkit_clears_total",
		metric.WithDescription("Fault slots cleared one category at a time"),
		metric.WithUnit("{clear}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create clears_total: %w", err)
	}

	m.ResetsTotal, err = meter.Int64Counter(
		"faultkit_resets_total",
		metric.WithDescription("Registry resets"),
		metric.WithUnit("{reset}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create resets_total: %w", err)
	}

	m.ErrorsCreatedTotal, err = meter.Int64Counter(
		"faultkit_errors_created_total",
		metric.WithDescription("Structured errors created"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_created_total: %w", err)
	}

	m.AuditsTotal, err = meter.Int64Counter(
		"faultkit_audits_total",
		metric.WithDescription("Structured error audits"),
		metric.WithUnit("{audit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create audits_total: %w", err)
	}

	m.AuditedRecordsTotal, err = meter.Int64Counter(
		"faultkit_audited_records_total",
		metric.WithDescription("Structured errors checked by audits"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create audited_records_total: %w", err)
	}

	m.AuditBatchSize, err = meter.Int64Histogram(
		"faultkit_audit_batch_size",
		metric.WithDescription("Records per audit"),
		metric.WithUnit("{error}"),
		metric.WithExplicitBucketBoundaries(1, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit_batch_size: %w", err)
	}

	return m, nil
}

// RecordInjection implements registry.Recorder.
func (m *Metrics) RecordInjection(category, kind string) {
	m.InjectionsTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("kind", kind),
	))
}

// RecordClear implements registry.Recorder.
func (m *Metrics) RecordClear(category string) {
	m.ClearsTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("category", category),
	))
}

// RecordReset implements registry.Recorder.
func (m *Metrics) RecordReset() {
	m.ResetsTotal.Add(context.Background(), 1)
}

// RecordErrorCreated implements diagnostics.Recorder.
func (m *Metrics) RecordErrorCreated(code, severity string) {
	m.ErrorsCreatedTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("error_code", code),
		attribute.String("severity", severity),
	))
}

// RecordAudit records the outcome of one audit.
func (m *Metrics) RecordAudit(ctx context.Context, report diagnostics.AuditReport) {
	outcome := "healthy"
	if !report.Healthy() {
		outcome = "findings"
	}
	m.AuditsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if report.ValidErrors > 0 {
		m.AuditedRecordsTotal.Add(ctx, int64(report.ValidErrors),
			metric.WithAttributes(attribute.Bool("valid", true)))
	}
	if report.InvalidErrors > 0 {
		m.AuditedRecordsTotal.Add(ctx, int64(report.InvalidErrors),
			metric.WithAttributes(attribute.Bool("valid", false)))
	}
	m.AuditBatchSize.Record(ctx, int64(report.TotalErrors))
}
