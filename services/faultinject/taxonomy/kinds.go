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

import "time"

// -----------------------------------------------------------------------------
// Kinds
// -----------------------------------------------------------------------------

// Kind discriminators, grouped by category in declaration order.
const (
	// API
	KindHTTP              Kind = "http"
	KindTimeout           Kind = "timeout"
	KindInvalidJSON       Kind = "invalid-json"
	KindSchemaMismatch    Kind = "schema-mismatch"
	KindNetworkError      Kind = "network-error"
	KindCORSError         Kind = "cors-error"
	KindRateLimitExceeded Kind = "rate-limit-exceeded"

	// Map
	KindWebGLUnavailable    Kind = "webgl-unavailable"
	KindStyleLoadFail       Kind = "style-load-fail"
	KindTileError           Kind = "tile-error"
	KindTokenInvalid        Kind = "token-invalid"
	KindSourceLoadFail      Kind = "source-load-fail"
	KindLayerRenderFail     Kind = "layer-render-fail"
	KindGeolocationDenied   Kind = "geolocation-denied"
	KindProjectionError     Kind = "projection-error"
	KindMarkerOverflow      Kind = "marker-overflow"
	KindCameraAnimationFail Kind = "camera-animation-fail"

	// Data
	KindGeoJSONInvalid       Kind = "geojson-invalid"
	KindEmptyDataset         Kind = "empty-dataset"
	KindMalformedCSV         Kind = "malformed-csv"
	KindMissingField         Kind = "missing-field"
	KindTypeMismatch         Kind = "type-mismatch"
	KindDuplicateRecords     Kind = "duplicate-records"
	KindEncodingError        Kind = "encoding-error"
	KindCoordinateOutOfRange Kind = "coordinate-out-of-range"
	KindStaleData            Kind = "stale-data"
	KindParseError           Kind = "parse-error"

	// UI
	KindComponentRenderFail    Kind = "component-render-fail"
	KindStateCorruption        Kind = "state-corruption"
	KindEventHandlerFail       Kind = "event-handler-fail"
	KindHydrationMismatch      Kind = "hydration-mismatch"
	KindInfiniteRenderLoop     Kind = "infinite-render-loop"
	KindModalStuck             Kind = "modal-stuck"
	KindFormSubmitFail         Kind = "form-submit-fail"
	KindNavigationFail         Kind = "navigation-fail"
	KindFocusTrapBroken        Kind = "focus-trap-broken"
	KindAnimationJank          Kind = "animation-jank"
	KindLayoutShift            Kind = "layout-shift"
	KindThemeLoadFail          Kind = "theme-load-fail"
	KindFontLoadFail           Kind = "font-load-fail"
	KindImageLoadFail          Kind = "image-load-fail"
	KindTooltipOverflow        Kind = "tooltip-overflow"
	KindScrollLock             Kind = "scroll-lock"
	KindKeyboardTrap           Kind = "keyboard-trap"
	KindAccessibilityViolation Kind = "accessibility-violation"

	// Env
	KindMissingMapboxToken         Kind = "missing-mapbox-token"
	KindEnvironmentVariableMissing Kind = "environment-variable-missing"
	KindInvalidConfig              Kind = "invalid-config"
	KindFeatureFlagMismatch        Kind = "feature-flag-mismatch"
	KindBrowserUnsupported         Kind = "browser-unsupported"
	KindStorageQuotaExceeded       Kind = "storage-quota-exceeded"

	// Perf
	KindSlowRender     Kind = "slow-render"
	KindMemoryOverflow Kind = "memory-overflow"
	KindCPUThrottle    Kind = "cpu-throttle"
	KindLongTask       Kind = "long-task"
	KindFrameDrop      Kind = "frame-drop"
	KindBundleLoadSlow Kind = "bundle-load-slow"

	// Integration
	KindCircuitBreakerTrigger      Kind = "circuit-breaker-trigger"
	KindServiceDiscoveryFail       Kind = "service-discovery-fail"
	KindFallbackServiceUnavailable Kind = "fallback-service-unavailable"
	KindVersionMismatch            Kind = "version-mismatch"
	KindAuthTokenExpired           Kind = "auth-token-expired"
	KindMessageQueueFail           Kind = "message-queue-fail"
)

// -----------------------------------------------------------------------------
// API Faults
// -----------------------------------------------------------------------------

// APIHTTP makes a remote call answer with a non-success HTTP status.
type APIHTTP struct {
	apiBase
	Status HTTPStatus
}

// Kind implements Fault.
func (APIHTTP) Kind() Kind { return KindHTTP }

// APITimeout makes a remote call exceed its deadline.
type APITimeout struct{ apiBase }

// Kind implements Fault.
func (APITimeout) Kind() Kind { return KindTimeout }

// APIInvalidJSON makes a remote call return a body that is not JSON.
type APIInvalidJSON struct{ apiBase }

// Kind implements Fault.
func (APIInvalidJSON) Kind() Kind { return KindInvalidJSON }

// APISchemaMismatch makes a remote call return JSON of the wrong shape.
type APISchemaMismatch struct{ apiBase }

// Kind implements Fault.
func (APISchemaMismatch) Kind() Kind { return KindSchemaMismatch }

// APINetworkError fails a remote call at the transport layer.
type APINetworkError struct{ apiBase }

// Kind implements Fault.
func (APINetworkError) Kind() Kind { return KindNetworkError }

// APICORSError blocks a remote call with a cross-origin rejection.
type APICORSError struct{ apiBase }

// Kind implements Fault.
func (APICORSError) Kind() Kind { return KindCORSError }

// APIRateLimitExceeded rejects a remote call as over its rate limit.
type APIRateLimitExceeded struct{ apiBase }

// Kind implements Fault.
func (APIRateLimitExceeded) Kind() Kind { return KindRateLimitExceeded }

// -----------------------------------------------------------------------------
// Map Faults
// -----------------------------------------------------------------------------

// MapWebGLUnavailable reports that no WebGL context can be created.
type MapWebGLUnavailable struct{ mapBase }

// Kind implements Fault.
func (MapWebGLUnavailable) Kind() Kind { return KindWebGLUnavailable }

// MapStyleLoadFail fails loading the map style document.
type MapStyleLoadFail struct{ mapBase }

// Kind implements Fault.
func (MapStyleLoadFail) Kind() Kind { return KindStyleLoadFail }

// MapTileError fails individual tile requests.
type MapTileError struct{ mapBase }

// Kind implements Fault.
func (MapTileError) Kind() Kind { return KindTileError }

// MapTokenInvalid rejects the map provider access token.
type MapTokenInvalid struct{ mapBase }

// Kind implements Fault.
func (MapTokenInvalid) Kind() Kind { return KindTokenInvalid }

// MapSourceLoadFail fails loading a map data source.
type MapSourceLoadFail struct{ mapBase }

// Kind implements Fault.
func (MapSourceLoadFail) Kind() Kind { return KindSourceLoadFail }

// MapLayerRenderFail fails drawing a map layer.
type MapLayerRenderFail struct{ mapBase }

// Kind implements Fault.
func (MapLayerRenderFail) Kind() Kind { return KindLayerRenderFail }

// MapGeolocationDenied denies the geolocation permission.
type MapGeolocationDenied struct{ mapBase }

// Kind implements Fault.
func (MapGeolocationDenied) Kind() Kind { return KindGeolocationDenied }

// MapProjectionError breaks coordinate projection.
type MapProjectionError struct{ mapBase }

// Kind implements Fault.
func (MapProjectionError) Kind() Kind { return KindProjectionError }

// MapMarkerOverflow exceeds the number of markers the map can hold.
type MapMarkerOverflow struct{ mapBase }

// Kind implements Fault.
func (MapMarkerOverflow) Kind() Kind { return KindMarkerOverflow }

// MapCameraAnimationFail aborts camera fly-to and ease animations.
type MapCameraAnimationFail struct{ mapBase }

// Kind implements Fault.
func (MapCameraAnimationFail) Kind() Kind { return KindCameraAnimationFail }

// -----------------------------------------------------------------------------
// Data Faults
// -----------------------------------------------------------------------------

// DataGeoJSONInvalid feeds GeoJSON that fails structural checks.
type DataGeoJSONInvalid struct{ dataBase }

// Kind implements Fault.
func (DataGeoJSONInvalid) Kind() Kind { return KindGeoJSONInvalid }

// DataEmptyDataset feeds a dataset with no records.
type DataEmptyDataset struct{ dataBase }

// Kind implements Fault.
func (DataEmptyDataset) Kind() Kind { return KindEmptyDataset }

// DataMalformedCSV feeds CSV with broken quoting or column counts.
type DataMalformedCSV struct{ dataBase }

// Kind implements Fault.
func (DataMalformedCSV) Kind() Kind { return KindMalformedCSV }

// DataMissingField drops a required field from records.
type DataMissingField struct{ dataBase }

// Kind implements Fault.
func (DataMissingField) Kind() Kind { return KindMissingField }

// DataTypeMismatch feeds values of the wrong type.
type DataTypeMismatch struct{ dataBase }

// Kind implements Fault.
func (DataTypeMismatch) Kind() Kind { return KindTypeMismatch }

// DataDuplicateRecords feeds records with duplicate identities.
type DataDuplicateRecords struct{ dataBase }

// Kind implements Fault.
func (DataDuplicateRecords) Kind() Kind { return KindDuplicateRecords }

// DataEncodingError feeds bytes in an unexpected text encoding.
type DataEncodingError struct{ dataBase }

// Kind implements Fault.
func (DataEncodingError) Kind() Kind { return KindEncodingError }

// DataCoordinateOutOfRange feeds latitudes or longitudes outside their range.
type DataCoordinateOutOfRange struct{ dataBase }

// Kind implements Fault.
func (DataCoordinateOutOfRange) Kind() Kind { return KindCoordinateOutOfRange }

// DataStaleData feeds data past its freshness window.
type DataStaleData struct{ dataBase }

// Kind implements Fault.
func (DataStaleData) Kind() Kind { return KindStaleData }

// DataParseError fails parsing of otherwise well-formed input.
type DataParseError struct{ dataBase }

// Kind implements Fault.
func (DataParseError) Kind() Kind { return KindParseError }

// -----------------------------------------------------------------------------
// UI Faults
// -----------------------------------------------------------------------------

// UIComponentRenderFail throws while a component renders.
type UIComponentRenderFail struct{ uiBase }

// Kind implements Fault.
func (UIComponentRenderFail) Kind() Kind { return KindComponentRenderFail }

// UIStateCorruption corrupts client-side state.
type UIStateCorruption struct{ uiBase }

// Kind implements Fault.
func (UIStateCorruption) Kind() Kind { return KindStateCorruption }

// UIEventHandlerFail throws from an event handler.
type UIEventHandlerFail struct{ uiBase }

// Kind implements Fault.
func (UIEventHandlerFail) Kind() Kind { return KindEventHandlerFail }

// UIHydrationMismatch diverges server and client markup.
type UIHydrationMismatch struct{ uiBase }

// Kind implements Fault.
func (UIHydrationMismatch) Kind() Kind { return KindHydrationMismatch }

// UIInfiniteRenderLoop triggers re-renders that never settle.
type UIInfiniteRenderLoop struct{ uiBase }

// Kind implements Fault.
func (UIInfiniteRenderLoop) Kind() Kind { return KindInfiniteRenderLoop }

// UIModalStuck leaves a modal open with no way to dismiss it.
type UIModalStuck struct{ uiBase }

// Kind implements Fault.
func (UIModalStuck) Kind() Kind { return KindModalStuck }

// UIFormSubmitFail fails form submission.
type UIFormSubmitFail struct{ uiBase }

// Kind implements Fault.
func (UIFormSubmitFail) Kind() Kind { return KindFormSubmitFail }

// UINavigationFail fails client-side route changes.
type UINavigationFail struct{ uiBase }

// Kind implements Fault.
func (UINavigationFail) Kind() Kind { return KindNavigationFail }

// UIFocusTrapBroken lets focus escape a trapped region.
type UIFocusTrapBroken struct{ uiBase }

// Kind implements Fault.
func (UIFocusTrapBroken) Kind() Kind { return KindFocusTrapBroken }

// UIAnimationJank stutters UI animations.
type UIAnimationJank struct{ uiBase }

// Kind implements Fault.
func (UIAnimationJank) Kind() Kind { return KindAnimationJank }

// UILayoutShift shifts layout after first paint.
type UILayoutShift struct{ uiBase }

// Kind implements Fault.
func (UILayoutShift) Kind() Kind { return KindLayoutShift }

// UIThemeLoadFail fails loading the theme.
type UIThemeLoadFail struct{ uiBase }

// Kind implements Fault.
func (UIThemeLoadFail) Kind() Kind { return KindThemeLoadFail }

// UIFontLoadFail fails loading web fonts.
type UIFontLoadFail struct{ uiBase }

// Kind implements Fault.
func (UIFontLoadFail) Kind() Kind { return KindFontLoadFail }

// UIImageLoadFail fails loading images.
type UIImageLoadFail struct{ uiBase }

// Kind implements Fault.
func (UIImageLoadFail) Kind() Kind { return KindImageLoadFail }

// UITooltipOverflow renders tooltips outside the viewport.
type UITooltipOverflow struct{ uiBase }

// Kind implements Fault.
func (UITooltipOverflow) Kind() Kind { return KindTooltipOverflow }

// UIScrollLock locks page scrolling.
type UIScrollLock struct{ uiBase }

// Kind implements Fault.
func (UIScrollLock) Kind() Kind { return KindScrollLock }

// UIKeyboardTrap traps keyboard navigation.
type UIKeyboardTrap struct{ uiBase }

// Kind implements Fault.
func (UIKeyboardTrap) Kind() Kind { return KindKeyboardTrap }

// UIAccessibilityViolation strips accessible names and roles.
type UIAccessibilityViolation struct{ uiBase }

// Kind implements Fault.
func (UIAccessibilityViolation) Kind() Kind { return KindAccessibilityViolation }

// -----------------------------------------------------------------------------
// Env Faults
// -----------------------------------------------------------------------------

// EnvMissingMapboxToken removes the map provider token from the environment.
type EnvMissingMapboxToken struct{ envBase }

// Kind implements Fault.
func (EnvMissingMapboxToken) Kind() Kind { return KindMissingMapboxToken }

// EnvVariableMissing removes one named variable from the environment.
type EnvVariableMissing struct {
	envBase

	// Variable is the name of the environment variable to remove.
	Variable string
}

// Kind implements Fault.
func (EnvVariableMissing) Kind() Kind { return KindEnvironmentVariableMissing }

// EnvInvalidConfig serves configuration that fails validation.
type EnvInvalidConfig struct{ envBase }

// Kind implements Fault.
func (EnvInvalidConfig) Kind() Kind { return KindInvalidConfig }

// EnvFeatureFlagMismatch disagrees feature flags between services.
type EnvFeatureFlagMismatch struct{ envBase }

// Kind implements Fault.
func (EnvFeatureFlagMismatch) Kind() Kind { return KindFeatureFlagMismatch }

// EnvBrowserUnsupported reports the runtime as unsupported.
type EnvBrowserUnsupported struct{ envBase }

// Kind implements Fault.
func (EnvBrowserUnsupported) Kind() Kind { return KindBrowserUnsupported }

// EnvStorageQuotaExceeded exhausts local storage quota.
type EnvStorageQuotaExceeded struct{ envBase }

// Kind implements Fault.
func (EnvStorageQuotaExceeded) Kind() Kind { return KindStorageQuotaExceeded }

// -----------------------------------------------------------------------------
// Perf Faults
// -----------------------------------------------------------------------------

// PerfSlowRender delays rendering by Delay.
type PerfSlowRender struct {
	perfBase
	Delay time.Duration
}

// Kind implements Fault.
func (PerfSlowRender) Kind() Kind { return KindSlowRender }

// PerfMemoryOverflow drives memory use past its budget.
type PerfMemoryOverflow struct{ perfBase }

// Kind implements Fault.
func (PerfMemoryOverflow) Kind() Kind { return KindMemoryOverflow }

// PerfCPUThrottle throttles available CPU.
type PerfCPUThrottle struct{ perfBase }

// Kind implements Fault.
func (PerfCPUThrottle) Kind() Kind { return KindCPUThrottle }

// PerfLongTask blocks the main loop with long tasks.
type PerfLongTask struct{ perfBase }

// Kind implements Fault.
func (PerfLongTask) Kind() Kind { return KindLongTask }

// PerfFrameDrop drops animation frames.
type PerfFrameDrop struct{ perfBase }

// Kind implements Fault.
func (PerfFrameDrop) Kind() Kind { return KindFrameDrop }

// PerfBundleLoadSlow slows delivery of code bundles.
type PerfBundleLoadSlow struct{ perfBase }

// Kind implements Fault.
func (PerfBundleLoadSlow) Kind() Kind { return KindBundleLoadSlow }

// -----------------------------------------------------------------------------
// Integration Faults
// -----------------------------------------------------------------------------

// IntegrationCircuitBreakerTrigger opens the circuit breaker in front of a dependency.
type IntegrationCircuitBreakerTrigger struct{ integrationBase }

// Kind implements Fault.
func (IntegrationCircuitBreakerTrigger) Kind() Kind { return KindCircuitBreakerTrigger }

// IntegrationServiceDiscoveryFail fails resolving a dependency's address.
type IntegrationServiceDiscoveryFail struct{ integrationBase }

// Kind implements Fault.
func (IntegrationServiceDiscoveryFail) Kind() Kind { return KindServiceDiscoveryFail }

// IntegrationFallbackServiceUnavailable takes the fallback service down as well.
type IntegrationFallbackServiceUnavailable struct{ integrationBase }

// Kind implements Fault.
func (IntegrationFallbackServiceUnavailable) Kind() Kind { return KindFallbackServiceUnavailable }

// IntegrationVersionMismatch reports incompatible versions between services.
type IntegrationVersionMismatch struct{ integrationBase }

// Kind implements Fault.
func (IntegrationVersionMismatch) Kind() Kind { return KindVersionMismatch }

// IntegrationAuthTokenExpired expires the service-to-service credential.
type IntegrationAuthTokenExpired struct{ integrationBase }

// Kind implements Fault.
func (IntegrationAuthTokenExpired) Kind() Kind { return KindAuthTokenExpired }

// IntegrationMessageQueueFail fails publishing to the message queue.
type IntegrationMessageQueueFail struct{ integrationBase }

// Kind implements Fault.
func (IntegrationMessageQueueFail) Kind() Kind { return KindMessageQueueFail }
