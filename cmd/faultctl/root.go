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
	"io"
	"os"

	"github.com/AleutianAI/faultkit/pkg/logging"
	"github.com/AleutianAI/faultkit/services/faultinject/config"
	"github.com/spf13/cobra"
)

// =============================================================================
// CONSTANTS AND TYPES
// =============================================================================

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// cliLogLevel is the level used when neither --log-level nor FAULTKIT_LOG_LEVEL is set.
const cliLogLevel = "warn"

// app holds the global flags and the streams shared by every command.
type app struct {
	format   string
	logLevel string
	logJSON  bool
	logDir   string
	verbose  bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logger *logging.Logger
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "faultctl",
		Short: "Fault injection and structured error tooling",
		Long: `faultctl serves the fault-injection admin API and works with structured
error records from the command line.

Examples:
  faultctl serve --plan faults.yaml
  faultctl catalog api
  faultctl mint --category map --kind tile-error --message "tiles failed"
  faultctl validate errors.ndjson --schema
  faultctl audit errors.json --format json

Exit Codes:
  0 = Success
  1 = Invalid records, unhealthy audit or rejected plan
  2 = Error (bad flags, unreadable input)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.format {
			case formatText, formatJSON, formatYAML:
			default:
				return fmt.Errorf("unknown --format %q (want text, json or yaml)", a.format)
			}
			return a.setupLogging(cliLogLevel, a.logJSON)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.format, "format", formatText, "Output format: text, json, yaml")
	flags.StringVar(&a.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (default from "+config.EnvLogLevel+")")
	flags.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")
	flags.StringVar(&a.logDir, "log-dir", "", "Also write JSON logs to this directory")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Shorthand for --log-level debug")

	root.AddCommand(
		newServeCmd(a),
		newCatalogCmd(a),
		newCodesCmd(a),
		newMintCmd(a),
		newValidateCmd(a),
		newAuditCmd(a),
		newPlanCmd(a),
		newProfilesCmd(a),
	)
	return root
}

// =============================================================================
// EXECUTION
// =============================================================================

// execute runs faultctl with args and returns the process exit code.
func execute(args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{in: in, out: out, errOut: errOut}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	if a.logger != nil {
		_ = a.logger.Close()
	}
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
	}
	return exitCode(err)
}

// setupLogging (re)builds the logger.
//
// Level precedence: --verbose, --log-level, FAULTKIT_LOG_LEVEL, fallback.
func (a *app) setupLogging(fallback string, jsonOutput bool) error {
	name := fallback
	if env := os.Getenv(config.EnvLogLevel); env != "" {
		name = env
	}
	if a.logLevel != "" {
		name = a.logLevel
	}
	if a.verbose {
		name = "debug"
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}

	if a.logger != nil {
		_ = a.logger.Close()
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		Service: "faultctl",
		JSON:    jsonOutput,
		Writer:  a.errOut,
		LogDir:  a.logDir,
	})
	return nil
}

// levelPinned reports whether the log level was chosen on the command line or
// in the environment.
func (a *app) levelPinned() bool {
	return a.verbose || a.logLevel != "" || os.Getenv(config.EnvLogLevel) != ""
}
