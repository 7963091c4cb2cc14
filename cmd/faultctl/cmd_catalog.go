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
	"fmt"

	"github.com/AleutianAI/faultkit/pkg/ux"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
	"github.com/spf13/cobra"
)

// kindRow describes one fault kind as the CLI lists it.
type kindRow struct {
	Category taxonomy.Category    `json:"category" yaml:"category"`
	Kind     taxonomy.Kind        `json:"kind" yaml:"kind"`
	Code     diagnostics.Code     `json:"error_code" yaml:"error_code"`
	Severity diagnostics.Severity `json:"severity" yaml:"severity"`
}

// codeRow describes one canonical error code.
type codeRow struct {
	Code     diagnostics.Code     `json:"error_code" yaml:"error_code"`
	Category taxonomy.Category    `json:"category,omitempty" yaml:"category,omitempty"`
	Kind     taxonomy.Kind        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Severity diagnostics.Severity `json:"severity" yaml:"severity"`
}

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [category]",
		Short: "List fault kinds with their error codes and severities",
		Long: `List every injectable fault kind, grouped by category, with the error
code and severity a structured error minted from it would carry.

Examples:
  faultctl catalog
  faultctl catalog integration --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := taxonomy.Categories()
			if len(args) == 1 {
				cat, err := taxonomy.ParseCategory(args[0])
				if err != nil {
					return err
				}
				categories = []taxonomy.Category{cat}
			}
			rows := catalogRows(categories)
			return a.emit(rows, func(p *ux.Printer) { printCatalog(p, categories, rows) })
		},
	}
}

func catalogRows(categories []taxonomy.Category) []kindRow {
	var rows []kindRow
	for _, cat := range categories {
		for _, kind := range taxonomy.Kinds(cat) {
			rows = append(rows, kindRow{
				Category: cat,
				Kind:     kind,
				Code:     diagnostics.CodeForKind(kind),
				Severity: diagnostics.SeverityForKind(kind),
			})
		}
	}
	return rows
}

func printCatalog(p *ux.Printer, categories []taxonomy.Category, rows []kindRow) {
	for i, cat := range categories {
		if i > 0 {
			fmt.Fprintln(p.Writer())
		}
		p.Title(string(cat))
		for _, row := range rows {
			if row.Category != cat {
				continue
			}
			p.Bullet(fmt.Sprintf("%-32s %-40s %s", row.Kind, row.Code, row.Severity))
		}
	}
}

func newCodesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List the canonical error codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := codeRows()
			return a.emit(rows, func(p *ux.Printer) {
				p.Title(fmt.Sprintf("%d error codes", len(rows)))
				for _, row := range rows {
					kind := string(row.Kind)
					if kind == "" {
						kind = "(unmapped kinds)"
					}
					p.Bullet(fmt.Sprintf("%-40s %-32s %s", row.Code, kind, row.Severity))
				}
			})
		},
	}
}

func codeRows() []codeRow {
	kinds := diagnostics.MappedKinds()
	rows := make([]codeRow, 0, len(kinds)+1)
	for _, kind := range kinds {
		cat, _ := taxonomy.CategoryOf(kind)
		rows = append(rows, codeRow{
			Code:     diagnostics.CodeForKind(kind),
			Category: cat,
			Kind:     kind,
			Severity: diagnostics.SeverityForKind(kind),
		})
	}
	return append(rows, codeRow{
		Code:     diagnostics.CodeUnknownFault,
		Severity: diagnostics.DefaultSeverity,
	})
}
