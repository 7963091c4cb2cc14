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
	"fmt"
	"strings"

	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

// Severity is the four-level ordinal classification of a structured error.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// DefaultSeverity applies when neither the caller nor the priority table decide.
const DefaultSeverity = SeverityMedium

var severityOrder = [...]Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// severityTable is the one priority table shared by every severity-aware path.
// Kinds not listed here resolve to DefaultSeverity.
var severityTable = map[taxonomy.Kind]Severity{
	taxonomy.KindCircuitBreakerTrigger:      SeverityCritical,
	taxonomy.KindServiceDiscoveryFail:       SeverityCritical,
	taxonomy.KindFallbackServiceUnavailable: SeverityCritical,

	taxonomy.KindRateLimitExceeded:   SeverityHigh,
	taxonomy.KindMemoryOverflow:      SeverityHigh,
	taxonomy.KindComponentRenderFail: SeverityHigh,

	taxonomy.KindTimeout:          SeverityMedium,
	taxonomy.KindNetworkError:     SeverityMedium,
	taxonomy.KindWebGLUnavailable: SeverityMedium,
	taxonomy.KindGeoJSONInvalid:   SeverityMedium,

	taxonomy.KindInvalidJSON:    SeverityLow,
	taxonomy.KindSchemaMismatch: SeverityLow,
	taxonomy.KindTileError:      SeverityLow,
}

// SeverityForKind derives the severity of a fault kind from the priority table.
func SeverityForKind(kind taxonomy.Kind) Severity {
	if s, ok := severityTable[kind]; ok {
		return s
	}
	return DefaultSeverity
}

// Severities returns the four levels from lowest to highest.
func Severities() []Severity {
	out := make([]Severity, len(severityOrder))
	copy(out, severityOrder[:])
	return out
}

// Rank returns 0 for low through 3 for critical, or -1 for an unknown level.
func (s Severity) Rank() int {
	for i, level := range severityOrder {
		if s == level {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the four levels.
func (s Severity) Valid() bool { return s.Rank() >= 0 }

// String implements fmt.Stringer.
func (s Severity) String() string { return string(s) }

// ParseSeverity converts a case-insensitive level name into a Severity.
func ParseSeverity(name string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q: want one of low, medium, high, critical", name)
	}
	return s, nil
}
