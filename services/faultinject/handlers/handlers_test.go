// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/faultkit/pkg/logging"
	"github.com/AleutianAI/faultkit/services/faultinject/config"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/registry"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeEnv struct {
	mu    sync.Mutex
	unset []string
}

func (e *fakeEnv) Unsetenv(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unset = append(e.unset, key)
	return nil
}

type auditSpy struct {
	mu      sync.Mutex
	reports []diagnostics.AuditReport
}

func (a *auditSpy) RecordAudit(_ context.Context, r diagnostics.AuditReport) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, r)
}

type testServer struct {
	router *gin.Engine
	reg    *registry.Registry
	env    *fakeEnv
	audits *auditSpy
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	env := &fakeEnv{}
	logger := slog.New(logging.NewRecorder())
	reg := registry.New(registry.WithLogger(logger), registry.WithEnvironment(env))
	factory := diagnostics.NewFactory(diagnostics.WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 123e6, time.UTC)
	}))
	audits := &auditSpy{}
	base := []Option{WithLogger(logger), WithAuditRecorder(audits)}
	h := NewHandlers(reg, factory, append(base, opts...)...)
	return &testServer{router: NewRouter(h, "faultkit-test"), reg: reg, env: env, audits: audits}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// =============================================================================
// Health and Request IDs
// =============================================================================

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.reg.Perf().InjectCPUThrottle()

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.ActiveFaults)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	t.Run("generated", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/v1/faults", nil)
		id, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), id.Version())
	})

	t.Run("echoed", func(t *testing.T) {
		want := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, want)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Header().Get(RequestIDHeader))
	})

	t.Run("invalid replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		got := w.Header().Get(RequestIDHeader)
		assert.NotEqual(t, "not-a-uuid", got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})

	t.Run("on errors", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/v1/faults/bogus", map[string]any{"kind": "timeout"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// =============================================================================
// Faults
// =============================================================================

func TestListFaults_Empty(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/v1/faults", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[FaultsResponse](t, w)
	assert.False(t, resp.HasAnyFault)
	assert.Empty(t, resp.Active)
	assert.Len(t, resp.Faults, taxonomy.NumCategories)
	for _, cat := range taxonomy.Categories() {
		d, ok := resp.Faults[cat]
		assert.True(t, ok, cat)
		assert.Nil(t, d, cat)
	}
}

func TestSetFault_HTTP503(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/v1/faults/api", map[string]any{
		"kind":    "http",
		"payload": map[string]any{"status": 503},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[FaultsResponse](t, w)
	assert.True(t, resp.HasAnyFault)
	require.NotNil(t, resp.Faults[taxonomy.CategoryAPI])
	assert.Equal(t, taxonomy.Kind("http"), resp.Faults[taxonomy.CategoryAPI].Kind)
	assert.EqualValues(t, 503, resp.Faults[taxonomy.CategoryAPI].Payload["status"])

	assert.Equal(t,
		taxonomy.APIHTTP{Status: taxonomy.StatusServiceUnavailable},
		s.reg.Snapshot().Get(taxonomy.CategoryAPI),
	)
}

func TestSetFault_ReplacesWithinCategory(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPut, "/v1/faults/ui", map[string]any{"kind": "modal-stuck"})
	w := s.do(t, http.MethodPut, "/v1/faults/ui", map[string]any{"kind": "scroll-lock"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[FaultsResponse](t, w)
	require.Len(t, resp.Active, 1)
	assert.Equal(t, taxonomy.Kind("scroll-lock"), resp.Active[0].Kind)
}

func TestSetFault_EnvSideEffect(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPut, "/v1/faults/env", map[string]any{
		"kind":    "environment-variable-missing",
		"payload": map[string]any{"variable": "API_BASE_URL"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"API_BASE_URL"}, s.env.unset)
}

func TestSetFault_Errors(t *testing.T) {
	tests := []struct {
		name     string
		category string
		body     any
		wantCode string
	}{
		{"unknown category", "network", map[string]any{"kind": "timeout"}, "INVALID_CATEGORY"},
		{"missing kind", "api", map[string]any{}, "INVALID_REQUEST"},
		{"malformed body", "api", `{"kind":`, "INVALID_REQUEST"},
		{"kind of another category", "api", map[string]any{"kind": "tile-error"}, "UNKNOWN_KIND"},
		{"bad status", "api", map[string]any{"kind": "http", "payload": map[string]any{"status": 418}}, "INVALID_PAYLOAD"},
		{"missing variable", "env", map[string]any{"kind": "environment-variable-missing"}, "INVALID_PAYLOAD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(t, http.MethodPut, "/v1/faults/"+tt.category, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, w).Code)
			assert.False(t, s.reg.HasAnyFault())
		})
	}
}

func TestClearFaultAndReset(t *testing.T) {
	s := newTestServer(t)
	s.reg.API().InjectTimeout()
	s.reg.Map().InjectTileError()
	s.reg.Data().InjectParseError()

	w := s.do(t, http.MethodDelete, "/v1/faults/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[FaultsResponse](t, w).Active, 2)

	w = s.do(t, http.MethodDelete, "/v1/faults/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/v1/faults", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[FaultsResponse](t, w).HasAnyFault)
	assert.False(t, s.reg.HasAnyFault())
}

func TestApplyProfile(t *testing.T) {
	s := newTestServer(t)
	s.reg.Env().InjectBrowserUnsupported()

	w := s.do(t, http.MethodPost, "/v1/faults/profiles/cascade", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[ProfileResponse](t, w)
	assert.Equal(t, "cascade", resp.Profile)
	assert.Len(t, resp.State.Active, 4)
	assert.Nil(t, resp.State.Faults[taxonomy.CategoryEnv])

	w = s.do(t, http.MethodPost, "/v1/faults/profiles/meltdown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PROFILE_NOT_FOUND", decode[ErrorResponse](t, w).Code)
}

func TestExportPlan(t *testing.T) {
	s := newTestServer(t)
	s.reg.API().InjectHTTP(taxonomy.StatusServiceUnavailable)
	s.reg.Map().InjectTileError()

	w := s.do(t, http.MethodGet, "/v1/faults/plan?name=snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decode[config.Plan](t, w)
	assert.Equal(t, "snapshot", p.Name)
	require.Len(t, p.Faults, 2)
	assert.Equal(t, "api", p.Faults[0].Category)
	assert.EqualValues(t, 503, p.Faults[0].Payload["status"])

	w = s.do(t, http.MethodGet, "/v1/faults/plan?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	parsed, err := config.ParsePlan(w.Body.Bytes(), config.FormatYAML)
	require.NoError(t, err, w.Body.String())
	assert.Equal(t, "exported", parsed.Name)

	other := newTestServer(t)
	require.NoError(t, parsed.Apply(context.Background(), other.reg))
	assert.Equal(t, s.reg.Snapshot().Descriptors(), other.reg.Snapshot().Descriptors())
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/v1/faults/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[CatalogResponse](t, w)
	require.Len(t, resp.Categories, 7)
	assert.Equal(t, taxonomy.CategoryAPI, resp.Categories[0].Name)
	assert.Len(t, resp.Categories[3].Kinds, 18)
	assert.Len(t, resp.Codes, len(diagnostics.Codes()))
	assert.Len(t, resp.Severities, 4)
	assert.Len(t, resp.HTTPStatuses, 10)
	assert.Contains(t, resp.Profiles, "map-outage")
}

// =============================================================================
// Structured Errors
// =============================================================================

func TestMint_Plain(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/v1/errors", MintRequest{
		Message:   "upstream timed out",
		Category:  "api",
		FaultKind: "timeout",
		Metadata:  map[string]any{"endpoint": "/v1/routes"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	rec := decode[diagnostics.StructuredError](t, w)
	assert.Equal(t, diagnostics.CodeAPITimeout, rec.ErrorCode)
	assert.Equal(t, diagnostics.DefaultSeverity, rec.Severity)
	assert.Equal(t, diagnostics.DefaultSource, rec.Source)
	assert.True(t, strings.HasPrefix(rec.TraceID, "trace-mm7p6yrf-"), rec.TraceID)
	assert.Equal(t, "2026-03-01T12:00:00.123Z", rec.Timestamp)
	assert.Equal(t, "/v1/routes", rec.Metadata["endpoint"])
	assert.True(t, diagnostics.ValidateStructuredError(rec).IsValid)
}

func TestMint_Modes(t *testing.T) {
	s := newTestServer(t)

	t.Run("correlated generates id", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/errors", MintRequest{
			Mode: ModeCorrelated, Message: "m", Category: "map", FaultKind: "tile-error", Service: "tiles",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		rec := decode[diagnostics.StructuredError](t, w)
		assert.True(t, strings.HasPrefix(rec.CorrelationID, "tiles-mm7p6yrf-"), rec.CorrelationID)
	})

	t.Run("correlated keeps id", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/errors", MintRequest{
			Mode: ModeCorrelated, Message: "m", Category: "map", FaultKind: "tile-error",
			CorrelationID: "checkout-abc-123",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "checkout-abc-123", decode[diagnostics.StructuredError](t, w).CorrelationID)
	})

	t.Run("severity aware ignores requested severity", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/errors", MintRequest{
			Mode: ModeSeverityAware, Message: "m", Category: "integration",
			FaultKind: "circuit-breaker-trigger", Severity: "low",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		rec := decode[diagnostics.StructuredError](t, w)
		assert.Equal(t, diagnostics.SeverityCritical, rec.Severity)
		assert.Equal(t, diagnostics.CodeIntegrationCircuitBreaker, rec.ErrorCode)
	})

	t.Run("plain honours severity and explicit code", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/errors", MintRequest{
			Message: "m", Category: "ui", FaultKind: "modal-stuck",
			Severity: "high", ErrorCode: "UI_STATE_CORRUPTION",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		rec := decode[diagnostics.StructuredError](t, w)
		assert.Equal(t, diagnostics.SeverityHigh, rec.Severity)
		assert.Equal(t, diagnostics.CodeUIStateCorruption, rec.ErrorCode)
	})

	t.Run("unmapped kind falls back", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/errors", MintRequest{
			Message: "m", Category: "ui", FaultKind: "modal-stuck",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, diagnostics.CodeUnknownFault, decode[diagnostics.StructuredError](t, w).ErrorCode)
	})
}

func TestMint_Active(t *testing.T) {
	s := newTestServer(t)
	req := MintRequest{Mode: ModeActive, Message: "observed", Category: "api"}

	w := s.do(t, http.MethodPost, "/v1/errors", req)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NO_ACTIVE_FAULT", decode[ErrorResponse](t, w).Code)

	s.reg.API().InjectHTTP(taxonomy.StatusServiceUnavailable)
	w = s.do(t, http.MethodPost, "/v1/errors", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	rec := decode[diagnostics.StructuredError](t, w)
	assert.Equal(t, diagnostics.CodeAPIHTTPError, rec.ErrorCode)
	assert.Equal(t, taxonomy.Kind("http"), rec.FaultKind)
	fault, ok := rec.Metadata["fault"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 503, fault["status"])
}

func TestMint_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{"missing message", MintRequest{Category: "api", FaultKind: "timeout"}, "INVALID_REQUEST"},
		{"unknown category", MintRequest{Message: "m", Category: "network", FaultKind: "timeout"}, "INVALID_REQUEST"},
		{"missing kind", MintRequest{Message: "m", Category: "api"}, "INVALID_REQUEST"},
		{"unknown mode", MintRequest{Mode: "loud", Message: "m", Category: "api", FaultKind: "timeout"}, "INVALID_REQUEST"},
		{"unknown severity", MintRequest{Severity: "fatal", Message: "m", Category: "api", FaultKind: "timeout"}, "INVALID_REQUEST"},
		{"unknown code", MintRequest{ErrorCode: "TEAPOT", Message: "m", Category: "api", FaultKind: "timeout"}, "INVALID_ERROR_CODE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(t, http.MethodPost, "/v1/errors", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, w).Code)
		})
	}
}

func validRecordJSON(t *testing.T) map[string]any {
	t.Helper()
	return map[string]any{
		"error_code": "MAP_TILE_ERROR",
		"message":    "tile 12/654/1583 failed",
		"trace_id":   "trace-mm7p6yrf-a1b2c3",
		"timestamp":  "2026-03-01T12:00:00.123Z",
		"category":   "map",
		"fault_kind": "tile-error",
		"metadata":   map[string]any{},
		"severity":   "low",
		"source":     "fault-injection-system",
	}
}

func TestValidate(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/errors/validate", validRecordJSON(t))
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ValidateResponse](t, w)
		assert.True(t, resp.IsValid)
		assert.False(t, resp.SchemaChecked)
	})

	t.Run("findings are data", func(t *testing.T) {
		rec := validRecordJSON(t)
		delete(rec, "trace_id")
		rec["severity"] = "fatal"
		w := s.do(t, http.MethodPost, "/v1/errors/validate", rec)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ValidateResponse](t, w)
		assert.False(t, resp.IsValid)
		assert.Equal(t, []string{"trace_id"}, resp.MissingFields)
		assert.Contains(t, resp.Errors, "Invalid severity: fatal")
	})

	t.Run("schema check", func(t *testing.T) {
		rec := validRecordJSON(t)
		rec["stack"] = "at main.go:1"
		w := s.do(t, http.MethodPost, "/v1/errors/validate?schema=true", rec)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ValidateResponse](t, w)
		assert.True(t, resp.IsValid, "unknown fields pass the field validator")
		assert.True(t, resp.SchemaChecked)
		assert.NotEmpty(t, resp.SchemaViolations)
	})

	t.Run("schema check passes", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/errors/validate?schema=true", validRecordJSON(t))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[ValidateResponse](t, w).SchemaViolations)
	})

	t.Run("mistyped field is a finding", func(t *testing.T) {
		rec := validRecordJSON(t)
		rec["error_code"] = 42
		w := s.do(t, http.MethodPost, "/v1/errors/validate?schema=true", rec)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[ValidateResponse](t, w)
		assert.False(t, resp.IsValid)
		assert.Contains(t, resp.MissingFields, "error_code")
		require.NotEmpty(t, resp.Errors)
		assert.Contains(t, resp.Errors[0], "Undecodable record:")
		assert.NotEmpty(t, resp.SchemaViolations)
	})

	t.Run("not json", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/errors/validate", "nope")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAudit(t *testing.T) {
	s := newTestServer(t)
	valid := validRecordJSON(t)
	invalid := validRecordJSON(t)
	delete(invalid, "error_code")

	w := s.do(t, http.MethodPost, "/v1/errors/audit", []any{valid, invalid})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[AuditResponse](t, w)
	_, err := uuid.Parse(resp.AuditID)
	assert.NoError(t, err)
	assert.Equal(t, 2, resp.Report.TotalErrors)
	assert.Equal(t, 1, resp.Report.ValidErrors)
	assert.Equal(t, 1, resp.Report.InvalidErrors)
	assert.Equal(t, 1, resp.Report.MissingErrorCodes)
	assert.Equal(t, 2, resp.Report.MissingCorrelationIDs)

	require.Len(t, s.audits.reports, 1)
	assert.Equal(t, resp.Report.TotalErrors, s.audits.reports[0].TotalErrors)
}

func TestAudit_MixedBatch(t *testing.T) {
	s := newTestServer(t)
	mistyped := validRecordJSON(t)
	mistyped["error_code"] = 42

	w := s.do(t, http.MethodPost, "/v1/errors/audit", []any{validRecordJSON(t), mistyped})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	report := decode[AuditResponse](t, w).Report
	assert.Equal(t, 2, report.TotalErrors)
	assert.Equal(t, 1, report.ValidErrors)
	assert.Equal(t, 1, report.InvalidErrors)
	require.Len(t, report.ValidationErrors, 1)
	finding := report.ValidationErrors[0]
	assert.Equal(t, validRecordJSON(t)["trace_id"], finding.Error.TraceID)
	require.NotEmpty(t, finding.Issues)
	assert.Contains(t, finding.Issues[0], "error_code")

	require.Len(t, s.audits.reports, 1)
	assert.Equal(t, 1, s.audits.reports[0].InvalidErrors)
}

func TestAudit_Errors(t *testing.T) {
	s := newTestServer(t, WithMaxAuditBatch(1))

	w := s.do(t, http.MethodPost, "/v1/errors/audit", validRecordJSON(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/v1/errors/audit", []any{validRecordJSON(t), validRecordJSON(t)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, s.audits.reports)
}
