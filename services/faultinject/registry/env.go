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
	"os"
)

// MapboxTokenVar is unset by Env().InjectMissingMapboxToken.
const MapboxTokenVar = "MAPBOX_ACCESS_TOKEN"

// Environment is the process-style environment touched by env injections.
type Environment interface {
	Unsetenv(key string) error
}

// ProcessEnvironment is the real process environment.
type ProcessEnvironment struct{}

// Unsetenv implements Environment.
func (ProcessEnvironment) Unsetenv(key string) error { return os.Unsetenv(key) }

// NoEnvironment is for hosts without a process environment. Every call is a no-op.
type NoEnvironment struct{}

// Unsetenv implements Environment.
func (NoEnvironment) Unsetenv(string) error { return nil }
