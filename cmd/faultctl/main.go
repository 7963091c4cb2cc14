// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command faultctl inspects, mints and audits structured errors and serves the
// fault-injection admin API.
//
// Usage:
//
//	faultctl serve --addr :8088 --plan faults.yaml
//	faultctl mint --category api --kind timeout --message "upstream timed out"
//	faultctl validate errors.ndjson --schema
//	faultctl audit errors.json --format json
//
// Exit codes: 0 ok, 1 validation or audit findings, 2 command error.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
