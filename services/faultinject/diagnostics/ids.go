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
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	// TraceIDPrefix starts every trace_id.
	TraceIDPrefix = "trace"

	// TimestampLayout is the UTC ISO-8601 layout of StructuredError.Timestamp.
	TimestampLayout = "2006-01-02T15:04:05.000Z"

	suffixLen = 6
	alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// globalSource draws from the runtime-seeded math/rand/v2 generator, which is
// safe for concurrent use.
type globalSource struct{}

func (globalSource) Uint64() uint64 { return rand.Uint64() }

// base36Millis renders t as Unix milliseconds in base 36.
func base36Millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 36)
}

// randomSuffix draws suffixLen base-36 characters from src.
func randomSuffix(src rand.Source) string {
	var b strings.Builder
	b.Grow(suffixLen)
	for range suffixLen {
		b.WriteByte(alphabet[src.Uint64()%uint64(len(alphabet))])
	}
	return b.String()
}

// formatTimestamp renders t in TimestampLayout.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
