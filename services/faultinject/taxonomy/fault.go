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
	"fmt"
	"strconv"
)

// -----------------------------------------------------------------------------
// Fault Interfaces
// -----------------------------------------------------------------------------

// Kind is the discriminator string of a fault variant, e.g. "rate-limit-exceeded".
//
// Kind is also the free-form fault_kind tag on a structured error, so values
// outside the taxonomy are representable here on purpose.
type Kind string

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Fault is an injectable failure mode.
//
// Description:
//
//	Fault is sealed: only the variant types declared in this package
//	implement it. Each variant belongs to exactly one category and also
//	implements that category's sub-interface.
//
// Thread Safety: Variants are immutable values.
type Fault interface {
	// Category returns the boundary this fault belongs to.
	Category() Category

	// Kind returns the variant discriminator.
	Kind() Kind

	isFault()
}

// APIFault is a fault in the remote call boundary.
type APIFault interface {
	Fault
	isAPIFault()
}

// MapFault is a fault in the map rendering surface.
type MapFault interface {
	Fault
	isMapFault()
}

// DataFault is a fault in data ingestion.
type DataFault interface {
	Fault
	isDataFault()
}

// UIFault is a fault in interactive UI components.
type UIFault interface {
	Fault
	isUIFault()
}

// EnvFault is a fault in environment or configuration.
type EnvFault interface {
	Fault
	isEnvFault()
}

// PerfFault is a performance degradation fault.
type PerfFault interface {
	Fault
	isPerfFault()
}

// IntegrationFault is a cross-service integration fault.
type IntegrationFault interface {
	Fault
	isIntegrationFault()
}

// -----------------------------------------------------------------------------
// Category Bases
// -----------------------------------------------------------------------------

// The bases are embedded in every variant so each variant only declares Kind.

type apiBase struct{}

func (apiBase) Category() Category { return CategoryAPI }
func (apiBase) isFault()           {}
func (apiBase) isAPIFault()        {}

type mapBase struct{}

func (mapBase) Category() Category { return CategoryMap }
func (mapBase) isFault()           {}
func (mapBase) isMapFault()        {}

type dataBase struct{}

func (dataBase) Category() Category { return CategoryData }
func (dataBase) isFault()           {}
func (dataBase) isDataFault()       {}

type uiBase struct{}

func (uiBase) Category() Category { return CategoryUI }
func (uiBase) isFault()           {}
func (uiBase) isUIFault()         {}

type envBase struct{}

func (envBase) Category() Category { return CategoryEnv }
func (envBase) isFault()           {}
func (envBase) isEnvFault()        {}

type perfBase struct{}

func (perfBase) Category() Category { return CategoryPerf }
func (perfBase) isFault()           {}
func (perfBase) isPerfFault()       {}

type integrationBase struct{}

func (integrationBase) Category() Category  { return CategoryIntegration }
func (integrationBase) isFault()            {}
func (integrationBase) isIntegrationFault() {}

// -----------------------------------------------------------------------------
// HTTP Status
// -----------------------------------------------------------------------------

// HTTPStatus is the status code carried by an APIHTTP fault.
//
// Only the ten statuses declared below are part of the taxonomy.
type HTTPStatus int

const (
	StatusBadRequest          HTTPStatus = 400
	StatusUnauthorized        HTTPStatus = 401
	StatusForbidden           HTTPStatus = 403
	StatusNotFound            HTTPStatus = 404
	StatusRequestTimeout      HTTPStatus = 408
	StatusTooManyRequests     HTTPStatus = 429
	StatusInternalServerError HTTPStatus = 500
	StatusBadGateway          HTTPStatus = 502
	StatusServiceUnavailable  HTTPStatus = 503
	StatusGatewayTimeout      HTTPStatus = 504
)

var httpStatuses = [...]HTTPStatus{
	StatusBadRequest,
	StatusUnauthorized,
	StatusForbidden,
	StatusNotFound,
	StatusRequestTimeout,
	StatusTooManyRequests,
	StatusInternalServerError,
	StatusBadGateway,
	StatusServiceUnavailable,
	StatusGatewayTimeout,
}

// HTTPStatuses returns the allowed statuses in ascending order.
func HTTPStatuses() []HTTPStatus {
	out := make([]HTTPStatus, len(httpStatuses))
	copy(out, httpStatuses[:])
	return out
}

// Valid reports whether s is one of the allowed statuses.
func (s HTTPStatus) Valid() bool {
	for _, allowed := range httpStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (s HTTPStatus) String() string { return strconv.Itoa(int(s)) }

// ParseHTTPStatus converts an integer into an allowed HTTPStatus.
//
// Outputs:
//   - HTTPStatus: The status.
//   - error: Wraps ErrInvalidPayload if code is outside the allowed set.
func ParseHTTPStatus(code int) (HTTPStatus, error) {
	s := HTTPStatus(code)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: http status %d is not injectable", ErrInvalidPayload, code)
	}
	return s, nil
}
