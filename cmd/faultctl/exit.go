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
)

// Process exit codes.
const (
	exitOK       = 0
	exitFindings = 1
	exitFailure  = 2
)

// ExitError carries the process exit code for a failed command.
//
// # Description
//
// Commands return ExitError with Code exitFindings when the input was read
// but did not pass (invalid records, an unhealthy audit, a rejected plan).
// Every other error maps to exitFailure.
//
// # Example
//
//	err := &ExitError{Code: exitFindings, Err: errors.New("2 of 5 records invalid")}
//	exitCode(err) // 1
type ExitError struct {
	// Code is the process exit code.
	Code int

	// Err is the underlying error.
	Err error
}

// Error returns the underlying message.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// findingsf builds an ExitError with exitFindings.
func findingsf(format string, args ...any) error {
	return &ExitError{Code: exitFindings, Err: fmt.Errorf(format, args...)}
}

// exitCode maps a command error to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitFailure
}
