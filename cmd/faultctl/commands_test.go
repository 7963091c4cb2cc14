// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/faultkit/services/faultinject/config"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// =============================================================================
// catalog
// =============================================================================

func TestCatalog_All(t *testing.T) {
	r := runCLI(t, "", "catalog", "--format", "json")
	require.Equal(t, exitOK, r.code, r.stderr)

	rows := decodeJSON[[]kindRow](t, r)
	total := 0
	for _, cat := range taxonomy.Categories() {
		total += len(taxonomy.Kinds(cat))
	}
	require.Len(t, rows, total)
	assert.Equal(t, taxonomy.CategoryAPI, rows[0].Category)
	assert.Equal(t, taxonomy.CategoryIntegration, rows[len(rows)-1].Category)
}

func TestCatalog_OneCategory(t *testing.T) {
	r := runCLI(t, "", "catalog", "Integration", "--format", "json")
	require.Equal(t, exitOK, r.code, r.stderr)

	rows := decodeJSON[[]kindRow](t, r)
	require.Len(t, rows, len(taxonomy.Kinds(taxonomy.CategoryIntegration)))
	for _, row := range rows {
		assert.Equal(t, taxonomy.CategoryIntegration, row.Category)
		if row.Kind == taxonomy.KindCircuitBreakerTrigger {
			assert.Equal(t, diagnostics.SeverityCritical, row.Severity)
			assert.Equal(t, diagnostics.CodeIntegrationCircuitBreaker, row.Code)
		}
	}
}

func TestCatalog_Text(t *testing.T) {
	r := runCLI(t, "", "catalog", "map")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.True(t, strings.HasPrefix(r.stdout, "map\n"), r.stdout)
	assert.Contains(t, r.stdout, "MAP_TILE_ERROR")
	assert.NotContains(t, r.stdout, "API_TIMEOUT")
}

func TestCatalog_UnknownCategory(t *testing.T) {
	r := runCLI(t, "", "catalog", "kernel")
	assert.Equal(t, exitFailure, r.code)
	assert.Contains(t, r.stderr, "unknown fault category")
}

// =============================================================================
// mint
// =============================================================================

func TestMint_Plain(t *testing.T) {
	r := runCLI(t, "", "mint", "--format", "json",
		"--category", "api", "--kind", "timeout", "--message", "upstream timed out",
		"--user-id", "u-1", "--meta", "attempt=3")
	require.Equal(t, exitOK, r.code, r.stderr)

	rec := decodeJSON[diagnostics.StructuredError](t, r)
	assert.Equal(t, diagnostics.CodeAPITimeout, rec.ErrorCode)
	assert.Equal(t, diagnostics.DefaultSeverity, rec.Severity)
	assert.Equal(t, diagnostics.DefaultSource, rec.Source)
	assert.Equal(t, "u-1", rec.UserID)
	assert.Equal(t, "3", rec.Metadata["attempt"])
	assert.Empty(t, rec.CorrelationID)
	assert.True(t, diagnostics.ValidateStructuredError(rec).IsValid)
}

func TestMint_Modes(t *testing.T) {
	t.Run("correlated", func(t *testing.T) {
		r := runCLI(t, "", "mint", "--format", "json", "--mode", "correlated", "--service", "checkout",
			"--category", "data", "--kind", "stale-data", "--message", "stale")
		require.Equal(t, exitOK, r.code, r.stderr)
		rec := decodeJSON[diagnostics.StructuredError](t, r)
		assert.True(t, strings.HasPrefix(rec.CorrelationID, "checkout-"), rec.CorrelationID)
		assert.True(t, diagnostics.ValidateStructuredError(rec).IsValid)
	})

	t.Run("correlated explicit id", func(t *testing.T) {
		r := runCLI(t, "", "mint", "--format", "json", "--mode", "correlated",
			"--correlation-id", "web-abc-123", "--category", "data", "--kind", "stale-data", "--message", "stale")
		require.Equal(t, exitOK, r.code, r.stderr)
		assert.Equal(t, "web-abc-123", decodeJSON[diagnostics.StructuredError](t, r).CorrelationID)
	})

	t.Run("severity-aware ignores --severity", func(t *testing.T) {
		r := runCLI(t, "", "mint", "--format", "json", "--mode", "severity-aware", "--severity", "low",
			"--category", "integration", "--kind", "circuit-breaker-trigger", "--message", "open")
		require.Equal(t, exitOK, r.code, r.stderr)
		assert.Equal(t, diagnostics.SeverityCritical, decodeJSON[diagnostics.StructuredError](t, r).Severity)
	})

	t.Run("plain honours --severity", func(t *testing.T) {
		r := runCLI(t, "", "mint", "--format", "json", "--severity", "HIGH",
			"--category", "ui", "--kind", "modal-stuck", "--message", "stuck")
		require.Equal(t, exitOK, r.code, r.stderr)
		assert.Equal(t, diagnostics.SeverityHigh, decodeJSON[diagnostics.StructuredError](t, r).Severity)
	})

	t.Run("fault", func(t *testing.T) {
		r := runCLI(t, "", "mint", "--format", "json", "--mode", "fault",
			"--category", "api", "--kind", "http", "--payload", `{"status":503}`, "--message", "down")
		require.Equal(t, exitOK, r.code, r.stderr)
		rec := decodeJSON[diagnostics.StructuredError](t, r)
		assert.Equal(t, diagnostics.CodeAPIHTTPError, rec.ErrorCode)
		assert.Equal(t, map[string]any{"status": float64(503)}, rec.Metadata["fault"])
	})

	t.Run("unmapped kind", func(t *testing.T) {
		r := runCLI(t, "", "mint", "--format", "json",
			"--category", "ui", "--kind", "not-a-kind", "--message", "m")
		require.Equal(t, exitOK, r.code, r.stderr)
		assert.Equal(t, diagnostics.CodeUnknownFault, decodeJSON[diagnostics.StructuredError](t, r).ErrorCode)
	})

	t.Run("count", func(t *testing.T) {
		r := runCLI(t, "", "mint", "--format", "json", "--count", "3",
			"--category", "api", "--kind", "timeout", "--message", "m")
		require.Equal(t, exitOK, r.code, r.stderr)
		recs := decodeJSON[[]diagnostics.StructuredError](t, r)
		require.Len(t, recs, 3)
		assert.NotEqual(t, recs[0].TraceID, recs[1].TraceID)
	})
}

func TestMint_Errors(t *testing.T) {
	base := []string{"mint", "--category", "api", "--kind", "timeout", "--message", "m"}
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing message", []string{"mint", "--category", "api", "--kind", "timeout"}, "message"},
		{"unknown category", []string{"mint", "--category", "db", "--kind", "timeout", "--message", "m"}, "unknown fault category"},
		{"unknown mode", append(base, "--mode", "loud"), `unknown --mode "loud"`},
		{"unknown code", append(base, "--code", "API_BROKEN"), `unknown error code "API_BROKEN"`},
		{"bad severity", append(base, "--severity", "extreme"), "extreme"},
		{"zero count", append(base, "--count", "0"), "--count"},
		{"fault mode unknown kind", []string{"mint", "--mode", "fault", "--category", "api", "--kind", "nope", "--message", "m"}, "unknown fault kind"},
		{"fault mode bad payload", []string{"mint", "--mode", "fault", "--category", "api", "--kind", "http", "--message", "m", "--payload", "{"}, "--payload"},
		{"fault mode disallowed status", []string{"mint", "--mode", "fault", "--category", "api", "--kind", "http", "--message", "m", "--payload", `{"status":418}`}, "invalid fault payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, "", tt.args...)
			assert.Equal(t, exitFailure, r.code)
			assert.Contains(t, r.stderr, tt.wantErr)
		})
	}
}

func TestMint_Text(t *testing.T) {
	r := runCLI(t, "", "mint", "--category", "env", "--kind", "invalid-config", "--message", "bad config",
		"--session-id", "s-9", "--meta", "file=app.yaml")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "error_code:      ENV_INVALID_CONFIG\n")
	assert.Contains(t, r.stdout, "session_id:      s-9\n")
	assert.Contains(t, r.stdout, "metadata.file:   app.yaml\n")
	assert.NotContains(t, r.stdout, "correlation_id")
}

// =============================================================================
// validate
// =============================================================================

func TestValidate_AllValid(t *testing.T) {
	ndjson := mintJSON(t, "--category", "api", "--kind", "timeout", "--message", "a") + "\n" +
		mintJSON(t, "--mode", "correlated", "--category", "map", "--kind", "tile-error", "--message", "b") + "\n"
	path := writeFile(t, "errors.ndjson", ndjson)

	r := runCLI(t, "", "validate", path, "--schema")
	assert.Equal(t, exitOK, r.code, r.stdout+r.stderr)
	assert.Contains(t, r.stdout, "2 records, 0 invalid")
}

func TestValidate_Findings(t *testing.T) {
	good := mintJSON(t, "--category", "api", "--kind", "timeout", "--message", "a")
	bad := `{"error_code":"NOPE","message":"b","trace_id":"trace-1","timestamp":"yesterday","category":"api","fault_kind":"timeout","metadata":{},"severity":"medium","source":"x"}`
	path := writeFile(t, "errors.json", "["+good+","+bad+"]")

	r := runCLI(t, "", "validate", path, "--format", "json")
	assert.Equal(t, exitFindings, r.code)
	assert.Contains(t, r.stderr, "1 of 2 records invalid")

	results := decodeJSON[[]recordResult](t, r)
	require.Len(t, results, 2)
	assert.True(t, results[0].IsValid)
	assert.Equal(t, 2, results[1].Index)
	assert.False(t, results[1].IsValid)
	assert.Len(t, results[1].Errors, 3)
	assert.Empty(t, results[1].SchemaViolations)
}

func TestValidate_SchemaOnlyFinding(t *testing.T) {
	rec := mintJSON(t, "--category", "api", "--kind", "timeout", "--message", "a")
	withExtra := strings.Replace(rec, `"message"`, `"unexpected":true,"message"`, 1)

	r := runCLI(t, withExtra, "validate", "-", "--schema", "--format", "json")
	assert.Equal(t, exitFindings, r.code, r.stderr)

	results := decodeJSON[[]recordResult](t, r)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsValid, "field checks pass")
	assert.NotEmpty(t, results[0].SchemaViolations)
}

func TestValidate_MistypedRecord(t *testing.T) {
	good := mintJSON(t, "--category", "api", "--kind", "timeout", "--message", "a")
	mistyped := strings.Replace(good, `"error_code":"API_TIMEOUT"`, `"error_code":42`, 1)
	require.NotEqual(t, good, mistyped)
	path := writeFile(t, "errors.ndjson", good+"\n"+mistyped+"\n")

	r := runCLI(t, "", "validate", path, "--schema", "--format", "json")
	assert.Equal(t, exitFindings, r.code, r.stderr)
	assert.Contains(t, r.stderr, "1 of 2 records invalid")

	results := decodeJSON[[]recordResult](t, r)
	require.Len(t, results, 2)
	assert.True(t, results[0].ok())
	assert.Equal(t, 2, results[1].Index)
	assert.False(t, results[1].IsValid)
	assert.NotEmpty(t, results[1].TraceID)
	require.NotEmpty(t, results[1].Errors)
	assert.Contains(t, results[1].Errors[0], "Undecodable record:")
	assert.NotEmpty(t, results[1].SchemaViolations)
}

func TestValidate_TextOutput(t *testing.T) {
	r := runCLI(t, `{"message":"only a message"}`, "validate", "-")
	assert.Equal(t, exitFindings, r.code)
	assert.Contains(t, r.stdout, "FAIL record 1 invalid")
	assert.Contains(t, r.stdout, "1 records, 1 invalid")
}

func TestValidate_Errors(t *testing.T) {
	r := runCLI(t, "", "validate")
	assert.Equal(t, exitFailure, r.code)

	r = runCLI(t, "{broken", "validate", "-")
	assert.Equal(t, exitFailure, r.code)
	assert.Contains(t, r.stderr, "record 1")
}

// =============================================================================
// audit
// =============================================================================

func TestAudit_Healthy(t *testing.T) {
	ndjson := mintJSON(t, "--category", "perf", "--kind", "cpu-throttle", "--message", "a") + "\n"
	r := runCLI(t, ndjson, "audit", "-", "--format", "json")
	require.Equal(t, exitOK, r.code, r.stderr)

	report := decodeJSON[diagnostics.AuditReport](t, r)
	assert.Equal(t, 1, report.TotalErrors)
	assert.Equal(t, 1, report.MissingCorrelationIDs)
	assert.True(t, report.Healthy())
}

func TestAudit_Unhealthy(t *testing.T) {
	good := mintJSON(t, "--mode", "correlated", "--category", "api", "--kind", "timeout", "--message", "a")
	input := "[" + good + `,{"message":"no ids"},{"error_code":"API_TIMEOUT","message":"bad trace","trace_id":"oops"}]`

	r := runCLI(t, input, "audit", "-", "--format", "yaml")
	assert.Equal(t, exitFindings, r.code)

	var report diagnostics.AuditReport
	require.NoError(t, yaml.Unmarshal([]byte(r.stdout), &report), r.stdout)
	assert.Equal(t, 3, report.TotalErrors)
	assert.Equal(t, 1, report.ValidErrors)
	assert.Equal(t, 2, report.InvalidErrors)
	assert.Equal(t, 1, report.MissingErrorCodes)
	assert.Equal(t, 1, report.MissingTraceIDs)
	assert.Len(t, report.ValidationErrors, 2)
}

func TestAudit_MistypedRecord(t *testing.T) {
	good := mintJSON(t, "--mode", "correlated", "--category", "api", "--kind", "timeout", "--message", "a")
	input := "[" + good + `,{"error_code":42,"message":"typed wrong","trace_id":"trace-abc-123"}]`

	r := runCLI(t, input, "audit", "-", "--format", "json")
	assert.Equal(t, exitFindings, r.code, r.stderr)

	report := decodeJSON[diagnostics.AuditReport](t, r)
	assert.Equal(t, 2, report.TotalErrors)
	assert.Equal(t, 1, report.ValidErrors)
	assert.Equal(t, 1, report.InvalidErrors)
	require.Len(t, report.ValidationErrors, 1)
	assert.Equal(t, "trace-abc-123", report.ValidationErrors[0].Error.TraceID)
	assert.Contains(t, report.ValidationErrors[0].Issues[0], "error_code")
}

func TestAudit_Text(t *testing.T) {
	r := runCLI(t, `[]`, "audit", "-")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "total:"+strings.Repeat(" ", 19)+"0\n")
	assert.Contains(t, r.stdout, "OK all records valid")
}

// =============================================================================
// plan and profiles
// =============================================================================

const planYAML = `
name: checkout
faults:
  - category: api
    kind: http
    payload:
      status: 502
  - category: perf
    kind: slow-render
    payload:
      delay_ms: 750
`

func TestPlanCheck_Valid(t *testing.T) {
	path := writeFile(t, "plan.yaml", planYAML)
	r := runCLI(t, "", "plan", "check", path, "--format", "json")
	require.Equal(t, exitOK, r.code, r.stderr)

	s := decodeJSON[planSummary](t, r)
	assert.Equal(t, "checkout", s.Name)
	require.Len(t, s.Faults, 2)
	assert.Equal(t, "http{status=502}", s.Faults[0].String())
}

func TestPlanCheck_Text(t *testing.T) {
	path := writeFile(t, "plan.yaml", planYAML)
	r := runCLI(t, "", "plan", "check", path)
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "slow-render{delay_ms=750}")
	assert.Contains(t, r.stdout, "OK plan valid: 2 faults")
}

func TestPlanCheck_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    int
	}{
		{"unknown kind", "plan.yaml", "faults:\n  - category: api\n    kind: meltdown\n", exitFindings},
		{"unknown key", "plan.yaml", "name: x\nfaultz: []\n", exitFindings},
		{"bad format", "plan.json", "{}", exitFindings},
		{"duplicate category", "plan.toml", "[[faults]]\ncategory = \"ui\"\nkind = \"modal-stuck\"\n[[faults]]\ncategory = \"ui\"\nkind = \"tooltip-overflow\"\n", exitFindings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			r := runCLI(t, "", "plan", "check", path)
			assert.Equal(t, tt.want, r.code, r.stderr)
		})
	}
}

func TestPlanCheck_MissingFile(t *testing.T) {
	r := runCLI(t, "", "plan", "check", "/does/not/exist.yaml")
	assert.Equal(t, exitFailure, r.code)
}

func TestProfiles_List(t *testing.T) {
	r := runCLI(t, "", "profiles", "--format", "json")
	require.Equal(t, exitOK, r.code, r.stderr)

	summaries := decodeJSON[[]planSummary](t, r)
	names := make([]string, len(summaries))
	for i, s := range summaries {
		names[i] = s.Name
	}
	assert.Equal(t, config.Profiles(), names)
}

func TestProfiles_ShowAsLoadablePlan(t *testing.T) {
	r := runCLI(t, "", "profiles", "api-degraded", "--format", "yaml")
	require.Equal(t, exitOK, r.code, r.stderr)

	p, err := config.ParsePlan([]byte(r.stdout), config.FormatYAML)
	require.NoError(t, err, r.stdout)
	want, err := config.Profile("api-degraded")
	require.NoError(t, err)
	assert.Equal(t, want.Name, p.Name)
	assert.Len(t, p.Faults, len(want.Faults))
}

func TestProfiles_Unknown(t *testing.T) {
	r := runCLI(t, "", "profiles", "meltdown")
	assert.Equal(t, exitFailure, r.code)
	assert.Contains(t, r.stderr, "meltdown")
}
