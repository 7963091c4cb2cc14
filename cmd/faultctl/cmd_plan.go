// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/faultkit/pkg/ux"
	"github.com/AleutianAI/faultkit/services/faultinject/config"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
	"github.com/spf13/cobra"
)

// planSummary is the normalized view of a plan or profile.
type planSummary struct {
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Faults      []taxonomy.Descriptor    `json:"faults" yaml:"faults"`
	Logging     config.LoggingSettings   `json:"logging" yaml:"logging"`
	Telemetry   config.TelemetrySettings `json:"telemetry" yaml:"telemetry"`
}

// summarize resolves p and describes its faults in canonical form.
func summarize(p *config.Plan) (planSummary, error) {
	faults, err := p.Resolve()
	if err != nil {
		return planSummary{}, err
	}
	s := planSummary{
		Name:        p.Name,
		Description: p.Description,
		Faults:      make([]taxonomy.Descriptor, len(faults)),
		Logging:     p.Logging,
		Telemetry:   p.Telemetry,
	}
	for i, f := range faults {
		s.Faults[i] = taxonomy.Describe(f)
	}
	return s, nil
}

func printPlan(p *ux.Printer, s planSummary) {
	name := s.Name
	if name == "" {
		name = "(unnamed plan)"
	}
	p.Title(name)
	if s.Description != "" {
		p.Muted(s.Description)
	}
	if len(s.Faults) == 0 {
		p.Bullet("no faults")
		return
	}
	for _, d := range s.Faults {
		p.Bullet(fmt.Sprintf("%-12s %s", d.Category, d))
	}
}

// =============================================================================
// plan
// =============================================================================

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Work with fault plan files",
	}
	cmd.AddCommand(newPlanCheckCmd(a))
	return cmd
}

func newPlanCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and validate a YAML or TOML fault plan",
		Long: `Parse a plan file strictly, validate its settings and resolve every
fault entry against the taxonomy without applying it.

Exit Codes:
  0 = Plan is valid
  1 = Plan is invalid
  2 = Error (unreadable file)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.LoadPlan(cmd.Context(), args[0])
			if err != nil {
				if isPlanRejection(err) {
					return &ExitError{Code: exitFindings, Err: err}
				}
				return err
			}
			s, err := summarize(p)
			if err != nil {
				return &ExitError{Code: exitFindings, Err: err}
			}
			return a.emit(s, func(pr *ux.Printer) {
				printPlan(pr, s)
				pr.Success(fmt.Sprintf("plan valid: %d faults", len(s.Faults)))
			})
		},
	}
}

// isPlanRejection reports whether err is about the plan's content rather
// than about reading it.
func isPlanRejection(err error) bool {
	return errors.Is(err, config.ErrInvalidPlan) ||
		errors.Is(err, config.ErrPlanTooLarge) ||
		errors.Is(err, config.ErrUnsupportedFormat)
}

// =============================================================================
// profiles
// =============================================================================

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles [name]",
		Short: "List the built-in fault profiles or show one",
		Long: `List the built-in fault profiles. With a name, print that profile; in
yaml format the output is itself a loadable plan file.

Examples:
  faultctl profiles
  faultctl profiles cascade --format yaml > cascade.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p, err := config.Profile(args[0])
				if err != nil {
					return err
				}
				if a.format == formatYAML {
					return a.emit(p, nil)
				}
				s, err := summarize(p)
				if err != nil {
					return err
				}
				return a.emit(s, func(pr *ux.Printer) { printPlan(pr, s) })
			}

			var summaries []planSummary
			for _, name := range config.Profiles() {
				p, err := config.Profile(name)
				if err != nil {
					return err
				}
				s, err := summarize(p)
				if err != nil {
					return err
				}
				summaries = append(summaries, s)
			}
			return a.emit(summaries, func(pr *ux.Printer) {
				for _, s := range summaries {
					pr.KeyValue(s.Name, fmt.Sprintf("%d faults  %s", len(s.Faults), s.Description), 20)
				}
			})
		},
	}
}
