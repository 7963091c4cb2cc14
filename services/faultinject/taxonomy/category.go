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
	"errors"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrUnknownCategory indicates a category name outside the closed set.
	ErrUnknownCategory = errors.New("unknown fault category")

	// ErrUnknownKind indicates a kind that does not belong to the category.
	ErrUnknownKind = errors.New("unknown fault kind")

	// ErrInvalidPayload indicates a variant payload that is missing or malformed.
	ErrInvalidPayload = errors.New("invalid fault payload")
)

// -----------------------------------------------------------------------------
// Category
// -----------------------------------------------------------------------------

// Category names one of the system boundaries that can be forced to fail.
type Category string

const (
	// CategoryAPI covers remote calls.
	CategoryAPI Category = "api"

	// CategoryMap covers the map rendering surface.
	CategoryMap Category = "map"

	// CategoryData covers data ingestion and parsing.
	CategoryData Category = "data"

	// CategoryUI covers interactive UI components.
	CategoryUI Category = "ui"

	// CategoryEnv covers environment and configuration.
	CategoryEnv Category = "env"

	// CategoryPerf covers performance degradation.
	CategoryPerf Category = "perf"

	// CategoryIntegration covers cross-service integration.
	CategoryIntegration Category = "integration"
)

// NumCategories is the size of the closed category set.
const NumCategories = 7

// categoryOrder is the declaration order used for every ordered listing.
var categoryOrder = [NumCategories]Category{
	CategoryAPI,
	CategoryMap,
	CategoryData,
	CategoryUI,
	CategoryEnv,
	CategoryPerf,
	CategoryIntegration,
}

// Categories returns all categories in declaration order.
//
// The returned slice is a fresh copy.
func Categories() []Category {
	out := make([]Category, NumCategories)
	copy(out, categoryOrder[:])
	return out
}

// Index returns the category's position in declaration order, or -1 if the
// category is not part of the closed set.
func (c Category) Index() int {
	for i, cat := range categoryOrder {
		if cat == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the seven categories.
func (c Category) Valid() bool {
	return c.Index() >= 0
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

// ParseCategory converts a name into a Category.
//
// Description:
//
//	Matching is case-insensitive and ignores surrounding whitespace.
//
// Inputs:
//   - name: Category name, e.g. "api".
//
// Outputs:
//   - Category: The parsed category.
//   - error: Wraps ErrUnknownCategory if name is not a category.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}
