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
	"github.com/AleutianAI/faultkit/services/faultinject/contract"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// Mint modes accepted by POST /v1/errors.
const (
	ModePlain         = "plain"
	ModeCorrelated    = "correlated"
	ModeSeverityAware = "severity-aware"
	ModeActive        = "active"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`

	// Details provides additional error context.
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	ActiveFaults int    `json:"active_faults"`
}

// FaultsResponse is the registry state.
//
// Faults has one key per category; empty categories map to null.
type FaultsResponse struct {
	HasAnyFault bool                                       `json:"has_any_fault"`
	Active      []taxonomy.Descriptor                      `json:"active"`
	Faults      map[taxonomy.Category]*taxonomy.Descriptor `json:"faults"`
}

// CategoryInfo lists the kinds of one category.
type CategoryInfo struct {
	Name  taxonomy.Category `json:"name" yaml:"name"`
	Kinds []taxonomy.Kind   `json:"kinds" yaml:"kinds"`
}

// CatalogResponse describes everything that can be injected or minted.
type CatalogResponse struct {
	Categories   []CategoryInfo         `json:"categories" yaml:"categories"`
	Codes        []diagnostics.Code     `json:"codes" yaml:"codes"`
	Severities   []diagnostics.Severity `json:"severities" yaml:"severities"`
	HTTPStatuses []taxonomy.HTTPStatus  `json:"http_statuses" yaml:"http_statuses"`
	Profiles     []string               `json:"profiles" yaml:"profiles"`
}

// SetFaultRequest is the body of PUT /v1/faults/:category.
type SetFaultRequest struct {
	Kind    string         `json:"kind" binding:"required,max=64"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ProfileResponse is returned after applying a profile.
type ProfileResponse struct {
	Profile string         `json:"profile"`
	State   FaultsResponse `json:"state"`
}

// MintRequest is the body of POST /v1/errors.
//
// Mode "active" mints from the fault currently injected in Category and
// ignores ErrorCode, FaultKind and Severity.
type MintRequest struct {
	Mode          string         `json:"mode" binding:"omitempty,oneof=plain correlated severity-aware active"`
	ErrorCode     string         `json:"error_code,omitempty" binding:"omitempty,max=64"`
	Message       string         `json:"message" binding:"required,max=1024"`
	Category      string         `json:"category" binding:"required,fault_category"`
	FaultKind     string         `json:"fault_kind,omitempty" binding:"required_unless=Mode active,max=64"`
	CorrelationID string         `json:"correlation_id,omitempty" binding:"max=128"`
	Service       string         `json:"service,omitempty" binding:"max=64"`
	Severity      string         `json:"severity,omitempty" binding:"omitempty,oneof=low medium high critical"`
	Source        string         `json:"source,omitempty" binding:"max=128"`
	UserID        string         `json:"user_id,omitempty" binding:"max=128"`
	SessionID     string         `json:"session_id,omitempty" binding:"max=128"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ValidateResponse is returned by POST /v1/errors/validate.
//
// SchemaViolations is only set when the request asked for ?schema=true.
type ValidateResponse struct {
	diagnostics.ValidationResult
	SchemaChecked    bool                 `json:"schemaChecked"`
	SchemaViolations []contract.Violation `json:"schemaViolations,omitempty"`
}

// AuditResponse is returned by POST /v1/errors/audit.
type AuditResponse struct {
	AuditID string                  `json:"auditId"`
	Report  diagnostics.AuditReport `json:"report"`
}
