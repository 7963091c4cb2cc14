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
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/faultkit/pkg/ux"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/spf13/cobra"
)

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <file|->",
		Short: "Audit a batch of structured error records",
		Long: `Validate a batch of records and report aggregate counts: valid and
invalid records plus missing error codes, trace IDs and correlation IDs.
A record with a field of the wrong JSON type counts as invalid.

Examples:
  faultctl audit errors.ndjson
  cat errors.json | faultctl audit - --format yaml

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
			raws := make([]json.RawMessage, len(docs))
			for i, doc := range docs {
				raws[i] = doc.Raw
			}

			report := diagnostics.AuditDocuments(raws)
			a.logger.Info("audit complete",
				"total", report.TotalErrors,
				"invalid", report.InvalidErrors,
			)

			if err := a.emit(report, func(p *ux.Printer) { printReport(p, report) }); err != nil {
				return err
			}
			if !report.Healthy() {
				return findingsf("%d of %d records invalid", report.InvalidErrors, report.TotalErrors)
			}
			return nil
		},
	}
}

func printReport(p *ux.Printer, report diagnostics.AuditReport) {
	const width = 24
	p.Title("Structured error audit")
	p.KeyValue("total", report.TotalErrors, width)
	p.KeyValue("valid", report.ValidErrors, width)
	p.KeyValue("invalid", report.InvalidErrors, width)
	p.KeyValue("missing error codes", report.MissingErrorCodes, width)
	p.KeyValue("missing trace IDs", report.MissingTraceIDs, width)
	p.KeyValue("missing correlation IDs", report.MissingCorrelationIDs, width)

	if report.Healthy() {
		p.Success("all records valid")
		return
	}
	for _, finding := range report.ValidationErrors {
		label := finding.Error.TraceID
		if label == "" {
			label = fmt.Sprintf("%s %q", finding.Error.ErrorCode, finding.Error.Message)
		}
		p.Error(label)
		for _, issue := range finding.Issues {
			p.Bullet(issue)
		}
	}
}
