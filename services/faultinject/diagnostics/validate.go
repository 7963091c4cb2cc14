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
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/go-openapi/strfmt"
)

var (
	traceIDPattern       = regexp.MustCompile(`^trace-\w+-\w+$`)
	correlationIDPattern = regexp.MustCompile(`^[\w-]+-\w+-\w+$`)
)

// ValidationResult is the outcome of checking one record.
//
// IsValid is true iff Errors is empty. Every entry of MissingFields also has
// a matching message in Errors.
type ValidationResult struct {
	IsValid       bool     `json:"isValid" yaml:"isValid"`
	Errors        []string `json:"errors" yaml:"errors"`
	MissingFields []string `json:"missingFields" yaml:"missingFields"`
}

// ValidateStructuredError checks a record against the wire contract.
//
// Description:
//
//	Presence: error_code, trace_id, message, category, fault_kind and
//	timestamp must be non-empty. Format checks run on present values only
//	and are independent of presence, so a record can fail both ways:
//
//	  - error_code must be in Codes()
//	  - trace_id must match ^trace-\w+-\w+$
//	  - correlation_id must match ^[\w-]+-\w+-\w+$
//	  - timestamp must parse as an RFC 3339 date-time
//	  - severity must be one of the four levels
//
// Inputs:
//   - rec: The record. Not modified.
//
// Outputs:
//   - ValidationResult: Findings, never nil slices.
func ValidateStructuredError(rec StructuredError) ValidationResult {
	res := ValidationResult{Errors: []string{}, MissingFields: []string{}}

	required := []struct {
		field string
		value string
	}{
		{"error_code", string(rec.ErrorCode)},
		{"trace_id", rec.TraceID},
		{"message", rec.Message},
		{"category", string(rec.Category)},
		{"fault_kind", string(rec.FaultKind)},
		{"timestamp", rec.Timestamp},
	}
	for _, r := range required {
		if r.value == "" {
			res.MissingFields = append(res.MissingFields, r.field)
			res.Errors = append(res.Errors, "Missing required field: "+r.field)
		}
	}

	if rec.ErrorCode != "" && !rec.ErrorCode.Valid() {
		res.Errors = append(res.Errors, fmt.Sprintf("Invalid error_code: %s", rec.ErrorCode))
	}
	if rec.TraceID != "" && !traceIDPattern.MatchString(rec.TraceID) {
		res.Errors = append(res.Errors, fmt.Sprintf("Invalid trace_id format: %s", rec.TraceID))
	}
	if rec.CorrelationID != "" && !correlationIDPattern.MatchString(rec.CorrelationID) {
		res.Errors = append(res.Errors, fmt.Sprintf("Invalid correlation_id format: %s", rec.CorrelationID))
	}
	if rec.Timestamp != "" && !strfmt.IsDateTime(rec.Timestamp) {
		res.Errors = append(res.Errors, fmt.Sprintf("Invalid timestamp: %s", rec.Timestamp))
	}
	if rec.Severity != "" && !rec.Severity.Valid() {
		res.Errors = append(res.Errors, fmt.Sprintf("Invalid severity: %s", rec.Severity))
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

// ValidateDocument decodes one JSON document and validates the result.
//
// Description:
//
//	A document that does not decode into a StructuredError is invalid, and
//	the decode error leads the findings. Decoding continues past a field of
//	the wrong JSON type, so the returned record keeps every field that did
//	decode and the mistyped field is left empty.
//
// Inputs:
//   - raw: One JSON document. Need not be an object.
//
// Outputs:
//   - StructuredError: The decoded, possibly partial, record.
//   - ValidationResult: Findings for the record.
func ValidateDocument(raw []byte) (StructuredError, ValidationResult) {
	var rec StructuredError
	decodeErr := json.Unmarshal(raw, &rec)
	res := ValidateStructuredError(rec)
	if decodeErr != nil {
		res.Errors = append([]string{"Undecodable record: " + decodeErr.Error()}, res.Errors...)
		res.IsValid = false
	}
	return rec, res
}
