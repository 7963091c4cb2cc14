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

import "encoding/json"

// AuditFinding pairs an invalid record with the validator's messages for it.
type AuditFinding struct {
	Error  StructuredError `json:"error" yaml:"error"`
	Issues []string        `json:"issues" yaml:"issues"`
}

// AuditReport aggregates validation over a batch of records.
//
// ValidErrors + InvalidErrors == TotalErrors and
// len(ValidationErrors) == InvalidErrors always hold.
type AuditReport struct {
	TotalErrors           int            `json:"totalErrors" yaml:"totalErrors"`
	ValidErrors           int            `json:"validErrors" yaml:"validErrors"`
	InvalidErrors         int            `json:"invalidErrors" yaml:"invalidErrors"`
	MissingErrorCodes     int            `json:"missingErrorCodes" yaml:"missingErrorCodes"`
	MissingTraceIDs       int            `json:"missingTraceIds" yaml:"missingTraceIds"`
	MissingCorrelationIDs int            `json:"missingCorrelationIds" yaml:"missingCorrelationIds"`
	ValidationErrors      []AuditFinding `json:"validationErrors" yaml:"validationErrors"`
}

// Healthy reports whether every record in the batch was valid.
func (r AuditReport) Healthy() bool { return r.InvalidErrors == 0 }

// AuditStructuredErrors validates every record and aggregates the results.
//
// Description:
//
//	Every record is processed regardless of earlier failures. Missing
//	counters track absence only: a malformed trace_id is an invalid record
//	but not a missing one. A record without correlation_id is still valid.
//
// Inputs:
//   - records: The batch. May be empty.
//
// Outputs:
//   - AuditReport: The aggregate, with ValidationErrors in batch order.
func AuditStructuredErrors(records []StructuredError) AuditReport {
	report := newAuditReport(len(records))
	for _, rec := range records {
		report.add(rec, ValidateStructuredError(rec))
	}
	return report
}

// AuditDocuments is AuditStructuredErrors over raw JSON documents.
//
// Each document is checked with ValidateDocument, so one that does not
// decode is counted as invalid instead of failing the batch. A field with
// the wrong JSON type carries no value and counts as missing.
func AuditDocuments(docs []json.RawMessage) AuditReport {
	report := newAuditReport(len(docs))
	for _, raw := range docs {
		report.add(ValidateDocument(raw))
	}
	return report
}

func newAuditReport(total int) AuditReport {
	return AuditReport{
		TotalErrors:      total,
		ValidationErrors: []AuditFinding{},
	}
}

func (r *AuditReport) add(rec StructuredError, res ValidationResult) {
	if rec.ErrorCode == "" {
		r.MissingErrorCodes++
	}
	if rec.TraceID == "" {
		r.MissingTraceIDs++
	}
	if rec.CorrelationID == "" {
		r.MissingCorrelationIDs++
	}

	if res.IsValid {
		r.ValidErrors++
		return
	}
	r.InvalidErrors++
	r.ValidationErrors = append(r.ValidationErrors, AuditFinding{
		Error:  rec,
		Issues: res.Errors,
	})
}
