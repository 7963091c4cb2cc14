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
	"bytes"
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

// profileFile is the top-level shape of profiles.yaml.
type profileFile struct {
	Profiles []Plan `yaml:"profiles"`
}

var (
	profilesOnce  sync.Once
	profilesCache []Plan
	profilesErr   error
)

// loadProfiles parses the embedded profiles once.
func loadProfiles() ([]Plan, error) {
	profilesOnce.Do(func() {
		profilesCache, profilesErr = parseProfiles(profilesYAML)
		if profilesErr != nil {
			planLoads.WithLabelValues("embedded", "error").Inc()
			return
		}
		planLoads.WithLabelValues("embedded", "ok").Inc()
	})
	return profilesCache, profilesErr
}

func parseProfiles(data []byte) ([]Plan, error) {
	var pf profileFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("decoding embedded profiles: %w", err)
	}

	seen := make(map[string]bool, len(pf.Profiles))
	for i := range pf.Profiles {
		p := &pf.Profiles[i]
		if p.Name == "" {
			return nil, fmt.Errorf("%w: profiles[%d] has no name", ErrInvalidPlan, i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: profile %q declared twice", ErrInvalidPlan, p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	return pf.Profiles, nil
}

// Profiles returns the names of the embedded profiles in file order.
func Profiles() []string {
	plans, err := loadProfiles()
	if err != nil {
		return nil
	}
	names := make([]string, len(plans))
	for i, p := range plans {
		names[i] = p.Name
	}
	return names
}

// Profile returns a copy of the named embedded profile.
//
// Outputs:
//   - *Plan: The profile. Callers may modify it freely.
//   - error: Wraps ErrProfileNotFound for unknown names, or the embedded
//     file's parse error.
func Profile(name string) (*Plan, error) {
	plans, err := loadProfiles()
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(plans, func(p Plan) bool { return p.Name == name })
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	p := plans[i]
	p.Faults = slices.Clone(p.Faults)
	return &p, nil
}
