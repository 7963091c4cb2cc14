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
	"sort"

	"github.com/AleutianAI/faultkit/pkg/ux"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
	"github.com/spf13/cobra"
)

// Mint modes.
const (
	mintPlain         = "plain"
	mintCorrelated    = "correlated"
	mintSeverityAware = "severity-aware"
	mintFault         = "fault"
)

// mintFlags holds the flags of the mint command.
type mintFlags struct {
	mode          string
	category      string
	kind          string
	message       string
	code          string
	correlationID string
	service       string
	severity      string
	source        string
	userID        string
	sessionID     string
	payload       string
	metadata      map[string]string
	count         int
}

func newMintCmd(a *app) *cobra.Command {
	f := &mintFlags{}
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Create structured error records",
		Long: `Create structured error records the way an instrumented client would.

Modes:
  plain           error_code derived from --kind unless --code is given
  correlated      adds a correlation ID (generated from --service if omitted)
  severity-aware  severity from the priority table unless --severity is given
  fault           parses --category/--kind/--payload into a fault first,
                  rejecting kinds outside the taxonomy

Examples:
  faultctl mint --category api --kind timeout --message "upstream timed out"
  faultctl mint --mode correlated --service checkout --category data --kind stale-data --message stale
  faultctl mint --mode fault --category api --kind http --payload '{"status":503}' --message down`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := mint(diagnostics.NewFactory(), f)
			if err != nil {
				return err
			}
			a.logger.Debug("minted structured errors", "count", len(records), "mode", f.mode)

			var v any = records
			if len(records) == 1 {
				v = records[0]
			}
			return a.emit(v, func(p *ux.Printer) {
				for i, rec := range records {
					if i > 0 {
						fmt.Fprintln(p.Writer())
					}
					printRecord(p, rec)
				}
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.mode, "mode", mintPlain, "Mint mode: plain, correlated, severity-aware, fault")
	flags.StringVar(&f.category, "category", "", "Fault category (required)")
	flags.StringVar(&f.kind, "kind", "", "Fault kind (required)")
	flags.StringVar(&f.message, "message", "", "Human-readable message (required)")
	flags.StringVar(&f.code, "code", "", "Explicit error code (default derived from --kind)")
	flags.StringVar(&f.correlationID, "correlation-id", "", "Correlation ID")
	flags.StringVar(&f.service, "service", "faultctl", "Service name for generated correlation IDs")
	flags.StringVar(&f.severity, "severity", "", "Severity: low, medium, high, critical")
	flags.StringVar(&f.source, "source", "", "Record source (default "+diagnostics.DefaultSource+")")
	flags.StringVar(&f.userID, "user-id", "", "User ID")
	flags.StringVar(&f.sessionID, "session-id", "", "Session ID")
	flags.StringVar(&f.payload, "payload", "", "Fault payload as a JSON object (fault mode)")
	flags.StringToStringVar(&f.metadata, "meta", nil, "Metadata entries as key=value")
	flags.IntVar(&f.count, "count", 1, "Number of records to mint")
	for _, name := range []string{"category", "kind", "message"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// mint builds the records described by f.
func mint(factory *diagnostics.Factory, f *mintFlags) ([]diagnostics.StructuredError, error) {
	if f.count < 1 {
		return nil, fmt.Errorf("--count must be at least 1, got %d", f.count)
	}
	category, err := taxonomy.ParseCategory(f.category)
	if err != nil {
		return nil, err
	}
	kind := taxonomy.Kind(f.kind)

	opts := []diagnostics.Option{
		diagnostics.WithSource(f.source),
		diagnostics.WithUserID(f.userID),
		diagnostics.WithSessionID(f.sessionID),
		diagnostics.WithCorrelationID(f.correlationID),
	}
	if len(f.metadata) > 0 {
		md := make(map[string]any, len(f.metadata))
		for k, v := range f.metadata {
			md[k] = v
		}
		opts = append(opts, diagnostics.WithMetadata(md))
	}
	if f.severity != "" {
		sev, err := diagnostics.ParseSeverity(f.severity)
		if err != nil {
			return nil, err
		}
		opts = append(opts, diagnostics.WithSeverity(sev))
	}

	code := diagnostics.CodeForKind(kind)
	if f.code != "" {
		code = diagnostics.Code(f.code)
		if !code.Valid() {
			return nil, fmt.Errorf("unknown error code %q", f.code)
		}
	}

	var build func() diagnostics.StructuredError
	switch f.mode {
	case mintPlain:
		build = func() diagnostics.StructuredError {
			return factory.CreateStructuredError(code, f.message, category, kind, opts...)
		}
	case mintCorrelated:
		build = func() diagnostics.StructuredError {
			id := f.correlationID
			if id == "" {
				id = factory.NewCorrelationID(f.service)
			}
			return factory.CreateCorrelatedError(code, f.message, category, kind, id, opts...)
		}
	case mintSeverityAware:
		build = func() diagnostics.StructuredError {
			return factory.CreateSeverityAwareError(code, f.message, category, kind, opts...)
		}
	case mintFault:
		var payload map[string]any
		if f.payload != "" {
			if err := json.Unmarshal([]byte(f.payload), &payload); err != nil {
				return nil, fmt.Errorf("--payload: %w", err)
			}
		}
		fault, err := taxonomy.ParseFault(category, kind, payload)
		if err != nil {
			return nil, err
		}
		build = func() diagnostics.StructuredError {
			return factory.CreateFromFault(fault, f.message, opts...)
		}
	default:
		return nil, fmt.Errorf("unknown --mode %q", f.mode)
	}

	records := make([]diagnostics.StructuredError, f.count)
	for i := range records {
		records[i] = build()
	}
	return records, nil
}

// printRecord renders one record as aligned key/value lines.
func printRecord(p *ux.Printer, rec diagnostics.StructuredError) {
	const width = 16
	p.KeyValue("error_code", rec.ErrorCode, width)
	p.KeyValue("message", rec.Message, width)
	p.KeyValue("trace_id", rec.TraceID, width)
	if rec.CorrelationID != "" {
		p.KeyValue("correlation_id", rec.CorrelationID, width)
	}
	p.KeyValue("timestamp", rec.Timestamp, width)
	p.KeyValue("category", rec.Category, width)
	p.KeyValue("fault_kind", rec.FaultKind, width)
	p.KeyValue("severity", rec.Severity, width)
	p.KeyValue("source", rec.Source, width)
	if rec.UserID != "" {
		p.KeyValue("user_id", rec.UserID, width)
	}
	if rec.SessionID != "" {
		p.KeyValue("session_id", rec.SessionID, width)
	}
	keys := make([]string, 0, len(rec.Metadata))
	for k := range rec.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.KeyValue("metadata."+k, rec.Metadata[k], width)
	}
}
