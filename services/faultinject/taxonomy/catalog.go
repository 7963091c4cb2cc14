// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package taxonomy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Catalog
// -----------------------------------------------------------------------------

// constructor builds a variant from a decoded payload.
type constructor func(payload map[string]any) (Fault, error)

type kindSpec struct {
	kind  Kind
	build constructor
}

// catalog is the closed kind list per category, in declaration order.
var catalog = map[Category][]kindSpec{
	CategoryAPI: {
		{KindHTTP, parseHTTP},
		{KindTimeout, unit(APITimeout{})},
		{KindInvalidJSON, unit(APIInvalidJSON{})},
		{KindSchemaMismatch, unit(APISchemaMismatch{})},
		{KindNetworkError, unit(APINetworkError{})},
		{KindCORSError, unit(APICORSError{})},
		{KindRateLimitExceeded, unit(APIRateLimitExceeded{})},
	},
	CategoryMap: {
		{KindWebGLUnavailable, unit(MapWebGLUnavailable{})},
		{KindStyleLoadFail, unit(MapStyleLoadFail{})},
		{KindTileError, unit(MapTileError{})},
		{KindTokenInvalid, unit(MapTokenInvalid{})},
		{KindSourceLoadFail, unit(MapSourceLoadFail{})},
		{KindLayerRenderFail, unit(MapLayerRenderFail{})},
		{KindGeolocationDenied, unit(MapGeolocationDenied{})},
		{KindProjectionError, unit(MapProjectionError{})},
		{KindMarkerOverflow, unit(MapMarkerOverflow{})},
		{KindCameraAnimationFail, unit(MapCameraAnimationFail{})},
	},
	CategoryData: {
		{KindGeoJSONInvalid, unit(DataGeoJSONInvalid{})},
		{KindEmptyDataset, unit(DataEmptyDataset{})},
		{KindMalformedCSV, unit(DataMalformedCSV{})},
		{KindMissingField, unit(DataMissingField{})},
		{KindTypeMismatch, unit(DataTypeMismatch{})},
		{KindDuplicateRecords, unit(DataDuplicateRecords{})},
		{KindEncodingError, unit(DataEncodingError{})},
		{KindCoordinateOutOfRange, unit(DataCoordinateOutOfRange{})},
		{KindStaleData, unit(DataStaleData{})},
		{KindParseError, unit(DataParseError{})},
	},
	CategoryUI: {
		{KindComponentRenderFail, unit(UIComponentRenderFail{})},
		{KindStateCorruption, unit(UIStateCorruption{})},
		{KindEventHandlerFail, unit(UIEventHandlerFail{})},
		{KindHydrationMismatch, unit(UIHydrationMismatch{})},
		{KindInfiniteRenderLoop, unit(UIInfiniteRenderLoop{})},
		{KindModalStuck, unit(UIModalStuck{})},
		{KindFormSubmitFail, unit(UIFormSubmitFail{})},
		{KindNavigationFail, unit(UINavigationFail{})},
		{KindFocusTrapBroken, unit(UIFocusTrapBroken{})},
		{KindAnimationJank, unit(UIAnimationJank{})},
		{KindLayoutShift, unit(UILayoutShift{})},
		{KindThemeLoadFail, unit(UIThemeLoadFail{})},
		{KindFontLoadFail, unit(UIFontLoadFail{})},
		{KindImageLoadFail, unit(UIImageLoadFail{})},
		{KindTooltipOverflow, unit(UITooltipOverflow{})},
		{KindScrollLock, unit(UIScrollLock{})},
		{KindKeyboardTrap, unit(UIKeyboardTrap{})},
		{KindAccessibilityViolation, unit(UIAccessibilityViolation{})},
	},
	CategoryEnv: {
		{KindMissingMapboxToken, unit(EnvMissingMapboxToken{})},
		{KindEnvironmentVariableMissing, parseVariableMissing},
		{KindInvalidConfig, unit(EnvInvalidConfig{})},
		{KindFeatureFlagMismatch, unit(EnvFeatureFlagMismatch{})},
		{KindBrowserUnsupported, unit(EnvBrowserUnsupported{})},
		{KindStorageQuotaExceeded, unit(EnvStorageQuotaExceeded{})},
	},
	CategoryPerf: {
		{KindSlowRender, parseSlowRender},
		{KindMemoryOverflow, unit(PerfMemoryOverflow{})},
		{KindCPUThrottle, unit(PerfCPUThrottle{})},
		{KindLongTask, unit(PerfLongTask{})},
		{KindFrameDrop, unit(PerfFrameDrop{})},
		{KindBundleLoadSlow, unit(PerfBundleLoadSlow{})},
	},
	CategoryIntegration: {
		{KindCircuitBreakerTrigger, unit(IntegrationCircuitBreakerTrigger{})},
		{KindServiceDiscoveryFail, unit(IntegrationServiceDiscoveryFail{})},
		{KindFallbackServiceUnavailable, unit(IntegrationFallbackServiceUnavailable{})},
		{KindVersionMismatch, unit(IntegrationVersionMismatch{})},
		{KindAuthTokenExpired, unit(IntegrationAuthTokenExpired{})},
		{KindMessageQueueFail, unit(IntegrationMessageQueueFail{})},
	},
}

// unit returns a constructor for a variant without payload.
func unit(f Fault) constructor {
	return func(map[string]any) (Fault, error) { return f, nil }
}

// Kinds returns the kinds of a category in declaration order.
//
// Returns nil for a category outside the closed set.
func Kinds(c Category) []Kind {
	specs, ok := catalog[c]
	if !ok {
		return nil
	}
	out := make([]Kind, len(specs))
	for i, s := range specs {
		out[i] = s.kind
	}
	return out
}

// CategoryOf returns the category that owns kind.
//
// Outputs:
//   - Category: The owning category.
//   - bool: False if kind is not part of the taxonomy.
func CategoryOf(kind Kind) (Category, bool) {
	for _, c := range categoryOrder {
		for _, s := range catalog[c] {
			if s.kind == kind {
				return c, true
			}
		}
	}
	return "", false
}

// -----------------------------------------------------------------------------
// Descriptor
// -----------------------------------------------------------------------------

// Descriptor is the string-typed view of a Fault used on every external surface.
type Descriptor struct {
	Category Category       `json:"category" yaml:"category" toml:"category"`
	Kind     Kind           `json:"kind" yaml:"kind" toml:"kind"`
	Payload  map[string]any `json:"payload,omitempty" yaml:"payload,omitempty" toml:"payload,omitempty"`
}

// Describe converts a Fault into its Descriptor.
//
// Description:
//
//	Payload holds only the variant's own fields, keyed the same way
//	ParseFault expects them. Variants without fields get a nil payload.
//
// Inputs:
//   - f: The fault. Must not be nil.
//
// Outputs:
//   - Descriptor: The string-typed view.
func Describe(f Fault) Descriptor {
	d := Descriptor{Category: f.Category(), Kind: f.Kind()}
	switch v := f.(type) {
	case APIHTTP:
		d.Payload = map[string]any{"status": int(v.Status)}
	case EnvVariableMissing:
		d.Payload = map[string]any{"variable": v.Variable}
	case PerfSlowRender:
		d.Payload = map[string]any{"delay_ms": v.Delay.Milliseconds()}
	}
	return d
}

// Fault parses the descriptor back into a typed Fault.
func (d Descriptor) Fault() (Fault, error) {
	return ParseFault(d.Category, d.Kind, d.Payload)
}

// LogValue implements slog.LogValuer so descriptors log as a flat group.
func (d Descriptor) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("kind", string(d.Kind))}
	for _, key := range sortedKeys(d.Payload) {
		attrs = append(attrs, slog.Any(key, d.Payload[key]))
	}
	return slog.GroupValue(attrs...)
}

// String renders the descriptor as kind or kind{key=value,...}.
func (d Descriptor) String() string {
	if len(d.Payload) == 0 {
		return string(d.Kind)
	}
	parts := make([]string, 0, len(d.Payload))
	for _, key := range sortedKeys(d.Payload) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, d.Payload[key]))
	}
	return string(d.Kind) + "{" + strings.Join(parts, ",") + "}"
}

// ParseFault builds a typed Fault from its string form.
//
// Description:
//
//	Looks kind up in the category's closed list and decodes the payload
//	fields the variant needs. Extra payload keys are ignored.
//
// Inputs:
//   - category: Owning category.
//   - kind: Variant discriminator.
//   - payload: Variant fields. May be nil for variants without fields.
//
// Outputs:
//   - Fault: The typed fault.
//   - error: Wraps ErrUnknownCategory, ErrUnknownKind or ErrInvalidPayload.
func ParseFault(category Category, kind Kind, payload map[string]any) (Fault, error) {
	specs, ok := catalog[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	for _, s := range specs {
		if s.kind == kind {
			f, err := s.build(payload)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", category, kind, err)
			}
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a %s fault", ErrUnknownKind, kind, category)
}

// Validate checks the payload invariants of a variant built in Go code.
//
// ParseFault output always passes. Hand-built values can break the rules,
// e.g. APIHTTP{Status: 418} or EnvVariableMissing{}.
//
// Outputs:
//   - error: Wraps ErrInvalidPayload, or nil.
func Validate(f Fault) error {
	switch v := f.(type) {
	case nil:
		return fmt.Errorf("%w: nil fault", ErrInvalidPayload)
	case APIHTTP:
		if !v.Status.Valid() {
			return fmt.Errorf("%w: http status %d is not injectable", ErrInvalidPayload, int(v.Status))
		}
	case EnvVariableMissing:
		if strings.TrimSpace(v.Variable) == "" {
			return fmt.Errorf("%w: variable is required", ErrInvalidPayload)
		}
	case PerfSlowRender:
		if v.Delay < 0 {
			return fmt.Errorf("%w: delay must not be negative", ErrInvalidPayload)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Payload Decoders
// -----------------------------------------------------------------------------

func parseHTTP(payload map[string]any) (Fault, error) {
	raw, ok := payload["status"]
	if !ok {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidPayload)
	}
	code, ok := intFrom(raw)
	if !ok {
		return nil, fmt.Errorf("%w: status must be an integer, got %v", ErrInvalidPayload, raw)
	}
	status, err := ParseHTTPStatus(code)
	if err != nil {
		return nil, err
	}
	return APIHTTP{Status: status}, nil
}

func parseVariableMissing(payload map[string]any) (Fault, error) {
	name, _ := payload["variable"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: variable is required", ErrInvalidPayload)
	}
	return EnvVariableMissing{Variable: name}, nil
}

func parseSlowRender(payload map[string]any) (Fault, error) {
	raw, ok := payload["delay_ms"]
	if !ok {
		return nil, fmt.Errorf("%w: delay_ms is required", ErrInvalidPayload)
	}
	ms, ok := intFrom(raw)
	if !ok || ms < 0 {
		return nil, fmt.Errorf("%w: delay_ms must be a non-negative integer, got %v", ErrInvalidPayload, raw)
	}
	return PerfSlowRender{Delay: time.Duration(ms) * time.Millisecond}, nil
}

// intFrom accepts the integer shapes produced by encoding/json, yaml.v3 and
// toml. Values outside the int32 range are rejected so callers can scale
// the result without overflow.
func intFrom(v any) (int, bool) {
	var i int64
	switch n := v.(type) {
	case int:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		i = int64(n)
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		i = int64(n)
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, false
		}
		i = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		i = parsed
	default:
		return 0, false
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}
	return int(i), true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
