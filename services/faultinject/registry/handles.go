// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import (
	"log/slog"
	"time"

	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// -----------------------------------------------------------------------------
// Category Handles
// -----------------------------------------------------------------------------

// handle is the per-category surface shared by every typed handle.
type handle[F taxonomy.Fault] struct {
	reg      *Registry
	category taxonomy.Category
}

// Category returns the category the handle controls.
func (h handle[F]) Category() taxonomy.Category { return h.category }

// ShouldFail reports whether the category has an active fault.
func (h handle[F]) ShouldFail() bool {
	return h.reg.state.Load().Get(h.category) != nil
}

// GetFault returns the active fault, or nil if the category is healthy.
func (h handle[F]) GetFault() F {
	f, _ := h.reg.state.Load().Get(h.category).(F)
	return f
}

// Set activates f. A nil f clears the category.
func (h handle[F]) Set(f F) {
	if any(f) == nil {
		h.Clear()
		return
	}
	h.reg.Inject(f)
}

// Clear empties the category.
func (h handle[F]) Clear() {
	h.reg.ClearFault(h.category)
}

// Inject activates f and applies its side effects.
//
// Description:
//
//	SetFault plus the environment side effects of env faults:
//	EnvMissingMapboxToken unsets MAPBOX_ACCESS_TOKEN and
//	EnvVariableMissing unsets the named variable. Every typed Inject
//	method and every dynamic surface (plans, admin API) goes through here.
//
// Inputs:
//   - f: The fault to activate.
func (r *Registry) Inject(f taxonomy.Fault) {
	if err := taxonomy.Validate(f); err != nil {
		r.logger.Warn("fault rejected", slog.String("error", err.Error()))
		return
	}
	r.SetFault(f)
	switch v := f.(type) {
	case taxonomy.EnvMissingMapboxToken:
		r.unsetEnv(MapboxTokenVar)
	case taxonomy.EnvVariableMissing:
		r.unsetEnv(v.Variable)
	}
}

// unsetEnv is best-effort: failures are logged at debug and dropped.
func (r *Registry) unsetEnv(key string) {
	if err := r.config.Env.Unsetenv(key); err != nil {
		r.logger.Debug("environment variable not unset",
			slog.String("variable", key),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Registry) deprecated(alias, replacement string) {
	r.logger.Warn("deprecated injection alias called",
		slog.String("alias", alias),
		slog.String("replacement", replacement),
	)
}

// -----------------------------------------------------------------------------
// API
// -----------------------------------------------------------------------------

// APIHandle controls the api category.
type APIHandle struct{ handle[taxonomy.APIFault] }

// API returns the api category handle.
func (r *Registry) API() APIHandle {
	return APIHandle{handle[taxonomy.APIFault]{reg: r, category: taxonomy.CategoryAPI}}
}

// InjectHTTP activates an http fault answering with status.
func (h APIHandle) InjectHTTP(status taxonomy.HTTPStatus) {
	h.reg.Inject(taxonomy.APIHTTP{Status: status})
}

// InjectTimeout activates timeout.
func (h APIHandle) InjectTimeout() { h.reg.Inject(taxonomy.APITimeout{}) }

// InjectInvalidJSON activates invalid-json.
func (h APIHandle) InjectInvalidJSON() { h.reg.Inject(taxonomy.APIInvalidJSON{}) }

// InjectSchemaMismatch activates schema-mismatch.
func (h APIHandle) InjectSchemaMismatch() { h.reg.Inject(taxonomy.APISchemaMismatch{}) }

// InjectNetworkError activates network-error.
func (h APIHandle) InjectNetworkError() { h.reg.Inject(taxonomy.APINetworkError{}) }

// InjectCORSError activates cors-error.
func (h APIHandle) InjectCORSError() { h.reg.Inject(taxonomy.APICORSError{}) }

// InjectRateLimitExceeded activates rate-limit-exceeded.
func (h APIHandle) InjectRateLimitExceeded() { h.reg.Inject(taxonomy.APIRateLimitExceeded{}) }

// InjectRateLimit activates rate-limit-exceeded.
//
// Deprecated: Use InjectRateLimitExceeded.
func (h APIHandle) InjectRateLimit() {
	h.reg.deprecated("API().InjectRateLimit", "API().InjectRateLimitExceeded")
	h.InjectRateLimitExceeded()
}

// InjectCircuitBreaker activates circuit-breaker-trigger in the integration category.
//
// Deprecated: Use Integration().InjectCircuitBreakerTrigger.
func (h APIHandle) InjectCircuitBreaker() {
	h.reg.deprecated("API().InjectCircuitBreaker", "Integration().InjectCircuitBreakerTrigger")
	h.reg.Integration().InjectCircuitBreakerTrigger()
}

// -----------------------------------------------------------------------------
// Map
// -----------------------------------------------------------------------------

// MapHandle controls the map category.
type MapHandle struct{ handle[taxonomy.MapFault] }

// Map returns the map category handle.
func (r *Registry) Map() MapHandle {
	return MapHandle{handle[taxonomy.MapFault]{reg: r, category: taxonomy.CategoryMap}}
}

// InjectWebGLUnavailable activates webgl-unavailable.
func (h MapHandle) InjectWebGLUnavailable() { h.reg.Inject(taxonomy.MapWebGLUnavailable{}) }

// InjectStyleLoadFail activates style-load-fail.
func (h MapHandle) InjectStyleLoadFail() { h.reg.Inject(taxonomy.MapStyleLoadFail{}) }

// InjectTileError activates tile-error.
func (h MapHandle) InjectTileError() { h.reg.Inject(taxonomy.MapTileError{}) }

// InjectTokenInvalid activates token-invalid.
func (h MapHandle) InjectTokenInvalid() { h.reg.Inject(taxonomy.MapTokenInvalid{}) }

// InjectSourceLoadFail activates source-load-fail.
func (h MapHandle) InjectSourceLoadFail() { h.reg.Inject(taxonomy.MapSourceLoadFail{}) }

// InjectLayerRenderFail activates layer-render-fail.
func (h MapHandle) InjectLayerRenderFail() { h.reg.Inject(taxonomy.MapLayerRenderFail{}) }

// InjectGeolocationDenied activates geolocation-denied.
func (h MapHandle) InjectGeolocationDenied() { h.reg.Inject(taxonomy.MapGeolocationDenied{}) }

// InjectProjectionError activates projection-error.
func (h MapHandle) InjectProjectionError() { h.reg.Inject(taxonomy.MapProjectionError{}) }

// InjectMarkerOverflow activates marker-overflow.
func (h MapHandle) InjectMarkerOverflow() { h.reg.Inject(taxonomy.MapMarkerOverflow{}) }

// InjectCameraAnimationFail activates camera-animation-fail.
func (h MapHandle) InjectCameraAnimationFail() { h.reg.Inject(taxonomy.MapCameraAnimationFail{}) }

// -----------------------------------------------------------------------------
// Data
// -----------------------------------------------------------------------------

// DataHandle controls the data category.
type DataHandle struct{ handle[taxonomy.DataFault] }

// Data returns the data category handle.
func (r *Registry) Data() DataHandle {
	return DataHandle{handle[taxonomy.DataFault]{reg: r, category: taxonomy.CategoryData}}
}

// InjectGeoJSONInvalid activates geojson-invalid.
func (h DataHandle) InjectGeoJSONInvalid() { h.reg.Inject(taxonomy.DataGeoJSONInvalid{}) }

// InjectEmptyDataset activates empty-dataset.
func (h DataHandle) InjectEmptyDataset() { h.reg.Inject(taxonomy.DataEmptyDataset{}) }

// InjectMalformedCSV activates malformed-csv.
func (h DataHandle) InjectMalformedCSV() { h.reg.Inject(taxonomy.DataMalformedCSV{}) }

// InjectMissingField activates missing-field.
func (h DataHandle) InjectMissingField() { h.reg.Inject(taxonomy.DataMissingField{}) }

// InjectTypeMismatch activates type-mismatch.
func (h DataHandle) InjectTypeMismatch() { h.reg.Inject(taxonomy.DataTypeMismatch{}) }

// InjectDuplicateRecords activates duplicate-records.
func (h DataHandle) InjectDuplicateRecords() { h.reg.Inject(taxonomy.DataDuplicateRecords{}) }

// InjectEncodingError activates encoding-error.
func (h DataHandle) InjectEncodingError() { h.reg.Inject(taxonomy.DataEncodingError{}) }

// InjectCoordinateOutOfRange activates coordinate-out-of-range.
func (h DataHandle) InjectCoordinateOutOfRange() { h.reg.Inject(taxonomy.DataCoordinateOutOfRange{}) }

// InjectStaleData activates stale-data.
func (h DataHandle) InjectStaleData() { h.reg.Inject(taxonomy.DataStaleData{}) }

// InjectParseError activates parse-error.
func (h DataHandle) InjectParseError() { h.reg.Inject(taxonomy.DataParseError{}) }

// -----------------------------------------------------------------------------
// UI
// -----------------------------------------------------------------------------

// UIHandle controls the ui category.
type UIHandle struct{ handle[taxonomy.UIFault] }

// UI returns the ui category handle.
func (r *Registry) UI() UIHandle {
	return UIHandle{handle[taxonomy.UIFault]{reg: r, category: taxonomy.CategoryUI}}
}

// InjectComponentRenderFail activates component-render-fail.
func (h UIHandle) InjectComponentRenderFail() { h.reg.Inject(taxonomy.UIComponentRenderFail{}) }

// InjectStateCorruption activates state-corruption.
func (h UIHandle) InjectStateCorruption() { h.reg.Inject(taxonomy.UIStateCorruption{}) }

// InjectEventHandlerFail activates event-handler-fail.
func (h UIHandle) InjectEventHandlerFail() { h.reg.Inject(taxonomy.UIEventHandlerFail{}) }

// InjectHydrationMismatch activates hydration-mismatch.
func (h UIHandle) InjectHydrationMismatch() { h.reg.Inject(taxonomy.UIHydrationMismatch{}) }

// InjectInfiniteRenderLoop activates infinite-render-loop.
func (h UIHandle) InjectInfiniteRenderLoop() { h.reg.Inject(taxonomy.UIInfiniteRenderLoop{}) }

// InjectModalStuck activates modal-stuck.
func (h UIHandle) InjectModalStuck() { h.reg.Inject(taxonomy.UIModalStuck{}) }

// InjectFormSubmitFail activates form-submit-fail.
func (h UIHandle) InjectFormSubmitFail() { h.reg.Inject(taxonomy.UIFormSubmitFail{}) }

// InjectNavigationFail activates navigation-fail.
func (h UIHandle) InjectNavigationFail() { h.reg.Inject(taxonomy.UINavigationFail{}) }

// InjectFocusTrapBroken activates focus-trap-broken.
func (h UIHandle) InjectFocusTrapBroken() { h.reg.Inject(taxonomy.UIFocusTrapBroken{}) }

// InjectAnimationJank activates animation-jank.
func (h UIHandle) InjectAnimationJank() { h.reg.Inject(taxonomy.UIAnimationJank{}) }

// InjectLayoutShift activates layout-shift.
func (h UIHandle) InjectLayoutShift() { h.reg.Inject(taxonomy.UILayoutShift{}) }

// InjectThemeLoadFail activates theme-load-fail.
func (h UIHandle) InjectThemeLoadFail() { h.reg.Inject(taxonomy.UIThemeLoadFail{}) }

// InjectFontLoadFail activates font-load-fail.
func (h UIHandle) InjectFontLoadFail() { h.reg.Inject(taxonomy.UIFontLoadFail{}) }

// InjectImageLoadFail activates image-load-fail.
func (h UIHandle) InjectImageLoadFail() { h.reg.Inject(taxonomy.UIImageLoadFail{}) }

// InjectTooltipOverflow activates tooltip-overflow.
func (h UIHandle) InjectTooltipOverflow() { h.reg.Inject(taxonomy.UITooltipOverflow{}) }

// InjectScrollLock activates scroll-lock.
func (h UIHandle) InjectScrollLock() { h.reg.Inject(taxonomy.UIScrollLock{}) }

// InjectKeyboardTrap activates keyboard-trap.
func (h UIHandle) InjectKeyboardTrap() { h.reg.Inject(taxonomy.UIKeyboardTrap{}) }

// InjectAccessibilityViolation activates accessibility-violation.
func (h UIHandle) InjectAccessibilityViolation() { h.reg.Inject(taxonomy.UIAccessibilityViolation{}) }

// -----------------------------------------------------------------------------
// Env
// -----------------------------------------------------------------------------

// EnvHandle controls the env category.
type EnvHandle struct{ handle[taxonomy.EnvFault] }

// Env returns the env category handle.
func (r *Registry) Env() EnvHandle {
	return EnvHandle{handle[taxonomy.EnvFault]{reg: r, category: taxonomy.CategoryEnv}}
}

// InjectMissingMapboxToken activates missing-mapbox-token and unsets MAPBOX_ACCESS_TOKEN.
func (h EnvHandle) InjectMissingMapboxToken() {
	h.reg.Inject(taxonomy.EnvMissingMapboxToken{})
}

// InjectEnvironmentVariableMissing activates environment-variable-missing and unsets name.
func (h EnvHandle) InjectEnvironmentVariableMissing(name string) {
	h.reg.Inject(taxonomy.EnvVariableMissing{Variable: name})
}

// InjectInvalidConfig activates invalid-config.
func (h EnvHandle) InjectInvalidConfig() { h.reg.Inject(taxonomy.EnvInvalidConfig{}) }

// InjectFeatureFlagMismatch activates feature-flag-mismatch.
func (h EnvHandle) InjectFeatureFlagMismatch() { h.reg.Inject(taxonomy.EnvFeatureFlagMismatch{}) }

// InjectBrowserUnsupported activates browser-unsupported.
func (h EnvHandle) InjectBrowserUnsupported() { h.reg.Inject(taxonomy.EnvBrowserUnsupported{}) }

// InjectStorageQuotaExceeded activates storage-quota-exceeded.
func (h EnvHandle) InjectStorageQuotaExceeded() { h.reg.Inject(taxonomy.EnvStorageQuotaExceeded{}) }

// -----------------------------------------------------------------------------
// Perf
// -----------------------------------------------------------------------------

// PerfHandle controls the perf category.
type PerfHandle struct{ handle[taxonomy.PerfFault] }

// Perf returns the perf category handle.
func (r *Registry) Perf() PerfHandle {
	return PerfHandle{handle[taxonomy.PerfFault]{reg: r, category: taxonomy.CategoryPerf}}
}

// InjectSlowRender activates slow-render with the given delay.
func (h PerfHandle) InjectSlowRender(delay time.Duration) {
	h.reg.Inject(taxonomy.PerfSlowRender{Delay: delay})
}

// InjectMemoryOverflow activates memory-overflow.
func (h PerfHandle) InjectMemoryOverflow() { h.reg.Inject(taxonomy.PerfMemoryOverflow{}) }

// InjectCPUThrottle activates cpu-throttle.
func (h PerfHandle) InjectCPUThrottle() { h.reg.Inject(taxonomy.PerfCPUThrottle{}) }

// InjectLongTask activates long-task.
func (h PerfHandle) InjectLongTask() { h.reg.Inject(taxonomy.PerfLongTask{}) }

// InjectFrameDrop activates frame-drop.
func (h PerfHandle) InjectFrameDrop() { h.reg.Inject(taxonomy.PerfFrameDrop{}) }

// InjectBundleLoadSlow activates bundle-load-slow.
func (h PerfHandle) InjectBundleLoadSlow() { h.reg.Inject(taxonomy.PerfBundleLoadSlow{}) }

// -----------------------------------------------------------------------------
// Integration
// -----------------------------------------------------------------------------

// IntegrationHandle controls the integration category.
type IntegrationHandle struct{ handle[taxonomy.IntegrationFault] }

// Integration returns the integration category handle.
func (r *Registry) Integration() IntegrationHandle {
	return IntegrationHandle{handle[taxonomy.IntegrationFault]{reg: r, category: taxonomy.CategoryIntegration}}
}

// InjectCircuitBreakerTrigger activates circuit-breaker-trigger.
func (h IntegrationHandle) InjectCircuitBreakerTrigger() { h.reg.Inject(taxonomy.IntegrationCircuitBreakerTrigger{}) }

// InjectServiceDiscoveryFail activates service-discovery-fail.
func (h IntegrationHandle) InjectServiceDiscoveryFail() { h.reg.Inject(taxonomy.IntegrationServiceDiscoveryFail{}) }

// InjectFallbackServiceUnavailable activates fallback-service-unavailable.
func (h IntegrationHandle) InjectFallbackServiceUnavailable() { h.reg.Inject(taxonomy.IntegrationFallbackServiceUnavailable{}) }

// InjectVersionMismatch activates version-mismatch.
func (h IntegrationHandle) InjectVersionMismatch() { h.reg.Inject(taxonomy.IntegrationVersionMismatch{}) }

// InjectAuthTokenExpired activates auth-token-expired.
func (h IntegrationHandle) InjectAuthTokenExpired() { h.reg.Inject(taxonomy.IntegrationAuthTokenExpired{}) }

// InjectMessageQueueFail activates message-queue-fail.
func (h IntegrationHandle) InjectMessageQueueFail() { h.reg.Inject(taxonomy.IntegrationMessageQueueFail{}) }
