// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package taxonomy defines the closed vocabulary of injectable failures.
//
// # Architecture
//
// Every failure belongs to exactly one of seven boundary categories. Each
// category owns a closed set of fault kinds, and each kind is its own Go type:
//
//	Fault                 Category() Category, Kind() Kind (sealed)
//	├── APIFault           7 kinds
//	├── MapFault          10 kinds
//	├── DataFault         10 kinds
//	├── UIFault           18 kinds
//	├── EnvFault           6 kinds
//	├── PerfFault          6 kinds
//	└── IntegrationFault   6 kinds
//
// The per-category interfaces are sealed with unexported marker methods, so a
// map fault cannot be stored where an API fault is expected and no package
// outside taxonomy can add kinds. Variants carry only the payload that
// disambiguates them (APIHTTP carries an HTTPStatus, EnvVariableMissing the
// variable name, PerfSlowRender a delay).
//
// # Dynamic Input
//
// Plan files, the admin API and the CLI receive faults as strings. ParseFault
// turns a (category, kind, payload) triple into a typed Fault and Describe
// does the reverse:
//
//	f, err := taxonomy.ParseFault(taxonomy.CategoryAPI, "http", map[string]any{"status": 503})
//	d := taxonomy.Describe(f) // {category: api, kind: http, payload: {status: 503}}
//
// # Thread Safety
//
// All types are immutable values and safe for concurrent use.
package taxonomy
