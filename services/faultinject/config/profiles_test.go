// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

func TestProfiles_Names(t *testing.T) {
	assert.Equal(t,
		[]string{"baseline", "api-degraded", "map-outage", "cascade", "misconfigured-env"},
		Profiles(),
	)
}

func TestProfiles_AllResolve(t *testing.T) {
	for _, name := range Profiles() {
		p, err := Profile(name)
		require.NoError(t, err, name)
		_, err = p.Resolve()
		assert.NoError(t, err, name)
		assert.NotEmpty(t, p.Description, name)
	}
}

func TestProfile_NotFound(t *testing.T) {
	_, err := Profile("meltdown")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfile_ReturnsCopy(t *testing.T) {
	p, err := Profile("cascade")
	require.NoError(t, err)
	p.Faults[0].Kind = "version-mismatch"
	p.Faults = p.Faults[:1]

	again, err := Profile("cascade")
	require.NoError(t, err)
	assert.Len(t, again.Faults, 4)
	assert.Equal(t, "circuit-breaker-trigger", again.Faults[0].Kind)
}

func TestProfile_Apply(t *testing.T) {
	reg, _ := newTestRegistry(t)

	p, err := Profile("api-degraded")
	require.NoError(t, err)
	require.NoError(t, p.Apply(context.Background(), reg))

	snap := reg.Snapshot()
	assert.Equal(t, taxonomy.APIHTTP{Status: taxonomy.StatusServiceUnavailable}, snap.Get(taxonomy.CategoryAPI))
	assert.NotNil(t, snap.Get(taxonomy.CategoryPerf))

	baseline, err := Profile("baseline")
	require.NoError(t, err)
	require.NoError(t, baseline.Apply(context.Background(), reg))
	assert.False(t, reg.HasAnyFault())
}

func TestParseProfiles_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unnamed", "profiles:\n  - faults: []\n", ErrInvalidPlan},
		{"duplicate", "profiles:\n  - name: a\n  - name: a\n", ErrInvalidPlan},
		{"bad fault", "profiles:\n  - name: a\n    faults:\n      - {category: ui, kind: timeout}\n", taxonomy.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProfiles([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
