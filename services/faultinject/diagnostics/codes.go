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
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// -----------------------------------------------------------------------------
// Error Codes
// -----------------------------------------------------------------------------

// Code is a canonical error code carried in StructuredError.ErrorCode.
type Code string

const (
	CodeAPIHTTPError         Code = "API_HTTP_ERROR"
	CodeAPITimeout           Code = "API_TIMEOUT"
	CodeAPIInvalidJSON       Code = "API_INVALID_JSON"
	CodeAPISchemaMismatch    Code = "API_SCHEMA_MISMATCH"
	CodeAPINetworkError      Code = "API_NETWORK_ERROR"
	CodeAPICORSError         Code = "API_CORS_ERROR"
	CodeAPIRateLimitExceeded Code = "API_RATE_LIMIT_EXCEEDED"

	CodeMapWebGLUnavailable Code = "MAP_WEBGL_UNAVAILABLE"
	CodeMapStyleLoadFail    Code = "MAP_STYLE_LOAD_FAIL"
	CodeMapTileError        Code = "MAP_TILE_ERROR"
	CodeMapTokenInvalid     Code = "MAP_TOKEN_INVALID"
	CodeMapSourceLoadFail   Code = "MAP_SOURCE_LOAD_FAIL"

	CodeDataGeoJSONInvalid Code = "DATA_GEOJSON_INVALID"
	CodeDataEmptyDataset   Code = "DATA_EMPTY_DATASET"
	CodeDataMalformedCSV   Code = "DATA_MALFORMED_CSV"
	CodeDataMissingField   Code = "DATA_MISSING_FIELD"
	CodeDataTypeMismatch   Code = "DATA_TYPE_MISMATCH"

	CodeUIComponentRenderFail Code = "UI_COMPONENT_RENDER_FAIL"
	CodeUIStateCorruption     Code = "UI_STATE_CORRUPTION"
	CodeUIEventHandlerFail    Code = "UI_EVENT_HANDLER_FAIL"
	CodeUIHydrationMismatch   Code = "UI_HYDRATION_MISMATCH"

	CodeEnvMissingMapboxToken Code = "ENV_MISSING_MAPBOX_TOKEN"
	CodeEnvVariableMissing    Code = "ENV_VARIABLE_MISSING"
	CodeEnvInvalidConfig      Code = "ENV_INVALID_CONFIG"

	CodePerfSlowRender     Code = "PERF_SLOW_RENDER"
	CodePerfMemoryOverflow Code = "PERF_MEMORY_OVERFLOW"
	CodePerfCPUThrottle    Code = "PERF_CPU_THROTTLE"

	CodeIntegrationCircuitBreaker       Code = "INTEGRATION_CIRCUIT_BREAKER"
	CodeIntegrationServiceDiscoveryFail Code = "INTEGRATION_SERVICE_DISCOVERY_FAIL"
	CodeIntegrationFallbackUnavailable  Code = "INTEGRATION_FALLBACK_UNAVAILABLE"

	// CodeUnknownFault is returned for every kind without a mapping.
	CodeUnknownFault Code = "UNKNOWN_FAULT"
)

// codeMapping lists the mapped kinds in taxonomy declaration order.
var codeMapping = []struct {
	kind taxonomy.Kind
	code Code
}{
	{taxonomy.KindHTTP, CodeAPIHTTPError},
	{taxonomy.KindTimeout, CodeAPITimeout},
	{taxonomy.KindInvalidJSON, CodeAPIInvalidJSON},
	{taxonomy.KindSchemaMismatch, CodeAPISchemaMismatch},
	{taxonomy.KindNetworkError, CodeAPINetworkError},
	{taxonomy.KindCORSError, CodeAPICORSError},
	{taxonomy.KindRateLimitExceeded, CodeAPIRateLimitExceeded},

	{taxonomy.KindWebGLUnavailable, CodeMapWebGLUnavailable},
	{taxonomy.KindStyleLoadFail, CodeMapStyleLoadFail},
	{taxonomy.KindTileError, CodeMapTileError},
	{taxonomy.KindTokenInvalid, CodeMapTokenInvalid},
	{taxonomy.KindSourceLoadFail, CodeMapSourceLoadFail},

	{taxonomy.KindGeoJSONInvalid, CodeDataGeoJSONInvalid},
	{taxonomy.KindEmptyDataset, CodeDataEmptyDataset},
	{taxonomy.KindMalformedCSV, CodeDataMalformedCSV},
	{taxonomy.KindMissingField, CodeDataMissingField},
	{taxonomy.KindTypeMismatch, CodeDataTypeMismatch},

	{taxonomy.KindComponentRenderFail, CodeUIComponentRenderFail},
	{taxonomy.KindStateCorruption, CodeUIStateCorruption},
	{taxonomy.KindEventHandlerFail, CodeUIEventHandlerFail},
	{taxonomy.KindHydrationMismatch, CodeUIHydrationMismatch},

	{taxonomy.KindMissingMapboxToken, CodeEnvMissingMapboxToken},
	{taxonomy.KindEnvironmentVariableMissing, CodeEnvVariableMissing},
	{taxonomy.KindInvalidConfig, CodeEnvInvalidConfig},

	{taxonomy.KindSlowRender, CodePerfSlowRender},
	{taxonomy.KindMemoryOverflow, CodePerfMemoryOverflow},
	{taxonomy.KindCPUThrottle, CodePerfCPUThrottle},

	{taxonomy.KindCircuitBreakerTrigger, CodeIntegrationCircuitBreaker},
	{taxonomy.KindServiceDiscoveryFail, CodeIntegrationServiceDiscoveryFail},
	{taxonomy.KindFallbackServiceUnavailable, CodeIntegrationFallbackUnavailable},
}

var (
	codesByKind = make(map[taxonomy.Kind]Code, len(codeMapping))
	knownCodes  = make(map[Code]struct{}, len(codeMapping)+1)
)

func init() {
	for _, m := range codeMapping {
		codesByKind[m.kind] = m.code
		knownCodes[m.code] = struct{}{}
	}
	knownCodes[CodeUnknownFault] = struct{}{}
}

// CodeForKind maps a fault kind discriminator to its canonical code.
//
// Description:
//
//	Kinds outside the mapped subset, including kinds that are not part of
//	the taxonomy at all, return CodeUnknownFault. This never fails.
//
// Inputs:
//   - kind: The fault kind discriminator.
//
// Outputs:
//   - Code: The canonical code, or CodeUnknownFault.
func CodeForKind(kind taxonomy.Kind) Code {
	if code, ok := codesByKind[kind]; ok {
		return code
	}
	return CodeUnknownFault
}

// CodeForFault is CodeForKind(f.Kind()). A nil fault maps to CodeUnknownFault.
func CodeForFault(f taxonomy.Fault) Code {
	if f == nil {
		return CodeUnknownFault
	}
	return CodeForKind(f.Kind())
}

// LookupCode is the strict form of CodeForKind.
//
// The bool is false when kind has no mapping, letting callers that need an
// exhaustive taxonomy reject the kind instead of degrading to UNKNOWN_FAULT.
func LookupCode(kind taxonomy.Kind) (Code, bool) {
	code, ok := codesByKind[kind]
	return code, ok
}

// Codes returns the canonical code enumeration, ending with CodeUnknownFault.
func Codes() []Code {
	out := make([]Code, 0, len(codeMapping)+1)
	for _, m := range codeMapping {
		out = append(out, m.code)
	}
	return append(out, CodeUnknownFault)
}

// MappedKinds returns the kinds that have a canonical code, in taxonomy order.
func MappedKinds() []taxonomy.Kind {
	out := make([]taxonomy.Kind, len(codeMapping))
	for i, m := range codeMapping {
		out[i] = m.kind
	}
	return out
}

// Valid reports whether c belongs to the canonical enumeration.
func (c Code) Valid() bool {
	_, ok := knownCodes[c]
	return ok
}

// String implements fmt.Stringer.
func (c Code) String() string { return string(c) }
