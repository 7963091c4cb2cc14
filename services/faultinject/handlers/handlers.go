// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the faultkit admin HTTP API on gin.
//
// The API lets a test harness or an operator inject and clear faults at
// runtime, apply embedded profiles, and mint, validate and audit structured
// errors without linking against the Go packages:
//
//	GET    /v1/faults                  registry state
//	GET    /v1/faults/catalog          categories, kinds, codes, severities
//	PUT    /v1/faults/:category        inject {kind, payload}
//	DELETE /v1/faults/:category        clear one category
//	DELETE /v1/faults                  reset
//	POST   /v1/faults/profiles/:name   apply an embedded profile
//	GET    /v1/faults/plan             current state as a plan file
//	POST   /v1/errors                  mint a structured error
//	POST   /v1/errors/validate         validate one record
//	POST   /v1/errors/audit            audit a batch
//
// Every response carries an X-Request-ID header.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/faultkit/services/faultinject/config"
	"github.com/AleutianAI/faultkit/services/faultinject/contract"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/registry"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
	"github.com/AleutianAI/faultkit/services/faultinject/telemetry"
)

// DefaultMaxAuditBatch bounds the records accepted by one audit request.
const DefaultMaxAuditBatch = 10000

// DefaultCorrelationService prefixes generated correlation IDs.
const DefaultCorrelationService = "faultkit"

var tracer = otel.Tracer("faultkit.handlers")

// AuditRecorder receives audit outcomes. *telemetry.Metrics implements it.
type AuditRecorder interface {
	RecordAudit(ctx context.Context, report diagnostics.AuditReport)
}

// Handlers serves the admin API over one registry and one error factory.
//
// Thread Safety: Safe for concurrent use.
type Handlers struct {
	reg      *registry.Registry
	factory  *diagnostics.Factory
	logger   *slog.Logger
	audits   AuditRecorder
	maxBatch int
}

// Option configures Handlers.
type Option func(*Handlers)

// WithLogger sets the handler logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithAuditRecorder reports every audit to r.
func WithAuditRecorder(r AuditRecorder) Option {
	return func(h *Handlers) { h.audits = r }
}

// WithMaxAuditBatch overrides DefaultMaxAuditBatch. Values below 1 are ignored.
func WithMaxAuditBatch(n int) Option {
	return func(h *Handlers) {
		if n > 0 {
			h.maxBatch = n
		}
	}
}

// NewHandlers creates the admin API handlers.
//
// Inputs:
//
//	reg - The fault registry. Must not be nil.
//	factory - Error factory used by POST /v1/errors. Must not be nil.
//	opts - Optional settings.
func NewHandlers(reg *registry.Registry, factory *diagnostics.Factory, opts ...Option) *Handlers {
	h := &Handlers{
		reg:      reg,
		factory:  factory,
		logger:   slog.Default(),
		maxBatch: DefaultMaxAuditBatch,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(slog.String("component", "admin_api"))
	return h
}

// requestLogger tags the logger with the request ID and handler name.
func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return h.logger.With("request_id", c.GetString(requestIDKey), "handler", handler)
}

// =============================================================================
// Health
// =============================================================================

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		ActiveFaults: len(h.reg.ActiveFaults()),
	})
}

// =============================================================================
// Faults
// =============================================================================

// state renders one snapshot so the response is never torn across categories.
func state(snap registry.Snapshot) FaultsResponse {
	resp := FaultsResponse{
		HasAnyFault: snap.HasAny(),
		Active:      []taxonomy.Descriptor{},
		Faults:      make(map[taxonomy.Category]*taxonomy.Descriptor, taxonomy.NumCategories),
	}
	for _, cat := range taxonomy.Categories() {
		resp.Faults[cat] = nil
	}
	for _, a := range snap.Active() {
		d := a.Descriptor()
		resp.Active = append(resp.Active, d)
		resp.Faults[a.Category] = &d
	}
	return resp
}

// HandleListFaults handles GET /v1/faults.
//
// Response:
//
//	200 OK: FaultsResponse
func (h *Handlers) HandleListFaults(c *gin.Context) {
	c.JSON(http.StatusOK, state(h.reg.Snapshot()))
}

// Catalog lists the injectable and mintable vocabulary.
func Catalog() CatalogResponse {
	categories := taxonomy.Categories()
	infos := make([]CategoryInfo, len(categories))
	for i, cat := range categories {
		infos[i] = CategoryInfo{Name: cat, Kinds: taxonomy.Kinds(cat)}
	}
	return CatalogResponse{
		Categories:   infos,
		Codes:        diagnostics.Codes(),
		Severities:   diagnostics.Severities(),
		HTTPStatuses: taxonomy.HTTPStatuses(),
		Profiles:     config.Profiles(),
	}
}

// HandleCatalog handles GET /v1/faults/catalog.
//
// Response:
//
//	200 OK: CatalogResponse
func (h *Handlers) HandleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, Catalog())
}

// HandleSetFault handles PUT /v1/faults/:category.
//
// Description:
//
//	Parses {kind, payload} against the category and injects the fault,
//	replacing any fault already active in that category. Env faults unset
//	their environment variable as a side effect.
//
// Response:
//
//	200 OK: FaultsResponse
//	400 Bad Request: Unknown category or kind, or invalid payload
func (h *Handlers) HandleSetFault(c *gin.Context) {
	logger := h.requestLogger(c, "HandleSetFault")

	category, err := taxonomy.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_CATEGORY"})
		return
	}

	var req SetFaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	f, err := taxonomy.ParseFault(category, taxonomy.Kind(req.Kind), req.Payload)
	if err != nil {
		code := "INVALID_FAULT"
		switch {
		case errors.Is(err, taxonomy.ErrUnknownKind):
			code = "UNKNOWN_KIND"
		case errors.Is(err, taxonomy.ErrInvalidPayload):
			code = "INVALID_PAYLOAD"
		}
		logger.Warn("Fault rejected", "category", category, "kind", req.Kind, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	h.reg.Inject(f)
	c.JSON(http.StatusOK, state(h.reg.Snapshot()))
}

// HandleClearFault handles DELETE /v1/faults/:category.
//
// Response:
//
//	200 OK: FaultsResponse
//	400 Bad Request: Unknown category
func (h *Handlers) HandleClearFault(c *gin.Context) {
	category, err := taxonomy.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_CATEGORY"})
		return
	}
	h.reg.ClearFault(category)
	c.JSON(http.StatusOK, state(h.reg.Snapshot()))
}

// HandleReset handles DELETE /v1/faults.
//
// Response:
//
//	200 OK: FaultsResponse
func (h *Handlers) HandleReset(c *gin.Context) {
	h.reg.Reset()
	c.JSON(http.StatusOK, state(h.reg.Snapshot()))
}

// HandleApplyProfile handles POST /v1/faults/profiles/:name.
//
// Response:
//
//	200 OK: ProfileResponse
//	404 Not Found: Unknown profile
func (h *Handlers) HandleApplyProfile(c *gin.Context) {
	logger := h.requestLogger(c, "HandleApplyProfile")
	name := c.Param("name")

	p, err := config.Profile(name)
	if err != nil {
		status, code := http.StatusInternalServerError, "PROFILE_LOAD_FAILED"
		if errors.Is(err, config.ErrProfileNotFound) {
			status, code = http.StatusNotFound, "PROFILE_NOT_FOUND"
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	if err := p.Apply(c.Request.Context(), h.reg); err != nil {
		logger.Error("Profile apply failed", "profile", name, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "PROFILE_APPLY_FAILED"})
		return
	}

	logger.Info("Profile applied", "profile", name, "faults", len(p.Faults))
	c.JSON(http.StatusOK, ProfileResponse{Profile: name, State: state(h.reg.Snapshot())})
}

// HandleExportPlan handles GET /v1/faults/plan.
//
// Description:
//
//	Returns the current registry state as a plan that reproduces it. With
//	?format=yaml the plan is rendered as a loadable YAML file.
//
// Response:
//
//	200 OK: config.Plan
func (h *Handlers) HandleExportPlan(c *gin.Context) {
	name := c.DefaultQuery("name", "exported")
	p := config.FromSnapshot(name, h.reg.Snapshot())
	if c.Query("format") == "yaml" {
		c.YAML(http.StatusOK, p)
		return
	}
	c.JSON(http.StatusOK, p)
}

// =============================================================================
// Structured Errors
// =============================================================================

// HandleMint handles POST /v1/errors.
//
// Description:
//
//	Mints one structured error. Mode selects the factory operation:
//	plain (default), correlated, severity-aware, or active, which mints
//	from the fault currently injected in the category. When error_code is
//	omitted it is derived from fault_kind. A correlated request without a
//	correlation_id gets a generated one.
//
// Response:
//
//	201 Created: diagnostics.StructuredError
//	400 Bad Request: Validation error
//	409 Conflict: Mode active and no fault is injected in the category
func (h *Handlers) HandleMint(c *gin.Context) {
	logger := h.requestLogger(c, "HandleMint")

	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}
	category, _ := taxonomy.ParseCategory(req.Category)
	kind := taxonomy.Kind(req.FaultKind)

	opts := []diagnostics.Option{
		diagnostics.WithSource(req.Source),
		diagnostics.WithUserID(req.UserID),
		diagnostics.WithSessionID(req.SessionID),
		diagnostics.WithCorrelationID(req.CorrelationID),
	}
	if req.Metadata != nil {
		opts = append(opts, diagnostics.WithMetadata(req.Metadata))
	}
	if req.Severity != "" {
		opts = append(opts, diagnostics.WithSeverity(diagnostics.Severity(req.Severity)))
	}

	if req.Mode == ModeActive {
		f := h.reg.Snapshot().Get(category)
		if f == nil {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error: "no fault injected in category " + string(category),
				Code:  "NO_ACTIVE_FAULT",
			})
			return
		}
		c.JSON(http.StatusCreated, h.factory.CreateFromFault(f, req.Message, opts...))
		return
	}

	code := diagnostics.CodeForKind(kind)
	if req.ErrorCode != "" {
		code = diagnostics.Code(req.ErrorCode)
		if !code.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "unknown error_code " + req.ErrorCode,
				Code:  "INVALID_ERROR_CODE",
			})
			return
		}
	}

	var rec diagnostics.StructuredError
	switch req.Mode {
	case ModeCorrelated:
		id := req.CorrelationID
		if id == "" {
			service := req.Service
			if service == "" {
				service = DefaultCorrelationService
			}
			id = h.factory.NewCorrelationID(service)
		}
		rec = h.factory.CreateCorrelatedError(code, req.Message, category, kind, id, opts...)
	case ModeSeverityAware:
		rec = h.factory.CreateSeverityAwareError(code, req.Message, category, kind, opts...)
	default:
		rec = h.factory.CreateStructuredError(code, req.Message, category, kind, opts...)
	}

	logger.Debug("Structured error minted", "error_code", rec.ErrorCode, "trace_id", rec.TraceID)
	c.JSON(http.StatusCreated, rec)
}

// HandleValidate handles POST /v1/errors/validate.
//
// Description:
//
//	Validates one record. Findings are returned with 200, including a
//	field of the wrong JSON type; only a body that is not JSON is a 400.
//	With ?schema=true the raw document is also checked against the CUE
//	wire contract.
//
// Response:
//
//	200 OK: ValidateResponse
//	400 Bad Request: Body is not JSON
func (h *Handlers) HandleValidate(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	if !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	_, res := diagnostics.ValidateDocument(raw)
	resp := ValidateResponse{ValidationResult: res}
	if c.Query("schema") == "true" {
		resp.SchemaChecked = true
		if err := contract.Check(raw); err != nil {
			var se *contract.SchemaError
			if !errors.As(err, &se) {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
				return
			}
			resp.SchemaViolations = se.Violations
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAudit handles POST /v1/errors/audit.
//
// Request Body:
//
//	JSON array of structured errors. Elements are decoded one at a time,
//	so an element that does not decode is reported as an invalid record.
//
// Response:
//
//	200 OK: AuditResponse
//	400 Bad Request: Body is not a JSON array
//	413 Request Entity Too Large: More records than the batch limit
func (h *Handlers) HandleAudit(c *gin.Context) {
	logger := h.requestLogger(c, "HandleAudit")

	ctx, span := tracer.Start(c.Request.Context(), "handlers.Audit")
	defer span.End()

	var records []json.RawMessage
	raw, err := c.GetRawData()
	if err == nil {
		err = json.Unmarshal(raw, &records)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}
	if len(records) > h.maxBatch {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "audit batch too large",
			Code:  "BATCH_TOO_LARGE",
		})
		return
	}

	auditID := uuid.NewString()
	report := diagnostics.AuditDocuments(records)
	span.SetAttributes(
		attribute.String("audit_id", auditID),
		attribute.Int("total_errors", report.TotalErrors),
		attribute.Int("invalid_errors", report.InvalidErrors),
	)
	if h.audits != nil {
		h.audits.RecordAudit(ctx, report)
	}

	logger.Info("Audit complete",
		"audit_id", auditID,
		"total", report.TotalErrors,
		"invalid", report.InvalidErrors)

	c.JSON(http.StatusOK, AuditResponse{AuditID: auditID, Report: report})
}
