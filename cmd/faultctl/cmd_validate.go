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
	"github.com/AleutianAI/faultkit/services/faultinject/contract"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/spf13/cobra"
)

// recordResult is the validation outcome of one input record.
type recordResult struct {
	Index   int    `json:"index" yaml:"index"`
	TraceID string `json:"trace_id,omitempty" yaml:"trace_id,omitempty"`

	diagnostics.ValidationResult `yaml:",inline"`

	SchemaViolations []contract.Violation `json:"schemaViolations,omitempty" yaml:"schemaViolations,omitempty"`
}

// ok reports whether the record passed every check that ran.
func (r recordResult) ok() bool {
	return r.IsValid && len(r.SchemaViolations) == 0
}

func newValidateCmd(a *app) *cobra.Command {
	var schema bool
	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Validate structured error records",
		Long: `Validate every record in a file against the structured error contract.

The file holds a JSON array of records or newline-delimited JSON. Use "-"
to read standard input. With --schema each raw document is also checked
against the embedded CUE schema, which additionally rejects unknown fields
and non-string values.

Examples:
  faultctl validate errors.json
  faultctl mint --category api --kind timeout --message t --format json | faultctl validate - --schema

Exit Codes:
  0 = Every record is valid
  1 = At least one record is invalid
  2 = Error (unreadable input)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.readDocuments(args[0])
			if err != nil {
				return err
			}
			results, err := validateDocuments(docs, schema)
			if err != nil {
				return err
			}

			invalid := 0
			for _, r := range results {
				if !r.ok() {
					invalid++
				}
			}
			a.logger.Debug("validated records", "total", len(results), "invalid", invalid, "schema", schema)

			if err := a.emit(results, func(p *ux.Printer) { printResults(p, results, invalid) }); err != nil {
				return err
			}
			if invalid > 0 {
				return findingsf("%d of %d records invalid", invalid, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&schema, "schema", false, "Also check each document against the CUE schema")
	return cmd
}

func validateDocuments(docs []document, schema bool) ([]recordResult, error) {
	results := make([]recordResult, len(docs))
	for i, doc := range docs {
		rec, res := diagnostics.ValidateDocument(doc.Raw)
		results[i] = recordResult{
			Index:            doc.Index,
			TraceID:          rec.TraceID,
			ValidationResult: res,
		}
		if !schema {
			continue
		}
		var schemaErr *contract.SchemaError
		switch err := contract.Check(doc.Raw); {
		case err == nil:
		case errors.As(err, &schemaErr):
			results[i].SchemaViolations = schemaErr.Violations
		default:
			return nil, fmt.Errorf("record %d: %w", doc.Index, err)
		}
	}
	return results, nil
}

func printResults(p *ux.Printer, results []recordResult, invalid int) {
	for _, r := range results {
		label := fmt.Sprintf("record %d", r.Index)
		if r.TraceID != "" {
			label += " (" + r.TraceID + ")"
		}
		if r.ok() {
			p.Success(label + " valid")
			continue
		}
		p.Error(label + " invalid")
		for _, msg := range r.Errors {
			p.Bullet(msg)
		}
		for _, v := range r.SchemaViolations {
			if v.Path == "" {
				p.Bullet("schema: " + v.Message)
				continue
			}
			p.Bullet("schema: " + v.Path + ": " + v.Message)
		}
	}
	p.Muted(fmt.Sprintf("%d records, %d invalid", len(results), invalid))
}
