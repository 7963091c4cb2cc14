// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diagnostics manufactures, validates and audits structured errors.
//
// # Overview
//
// A StructuredError is the diagnostic record a consumer mints after it
// observes an injected fault. Its JSON shape is a wire contract for
// downstream log ingestion, so field names and identifier formats are
// stable:
//
//	{
//	  "error_code": "API_HTTP_ERROR",
//	  "message": "Service unavailable",
//	  "trace_id": "trace-m7q2x4k1-a9c0zz",
//	  "timestamp": "2026-03-01T12:00:00.123Z",
//	  "category": "api",
//	  "fault_kind": "http",
//	  "metadata": {},
//	  "severity": "medium",
//	  "source": "fault-injection-system"
//	}
//
// # Components
//
//   - codes.go: fault kind to canonical error code, with the UNKNOWN_FAULT fallback
//   - severity.go: the single severity priority table
//   - factory.go, ids.go: record construction, trace and correlation IDs
//   - validate.go: single-record contract check
//   - audit.go: batch aggregation over the validator
//
// Nothing in this package returns an error. Validation findings are data.
//
// # Thread Safety
//
// Factory is safe for concurrent use. All other functions are pure.
package diagnostics
