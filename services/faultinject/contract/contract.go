// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package contract checks JSON documents against the structured error wire
// contract expressed as an embedded CUE schema.
//
// Check is stricter than diagnostics.ValidateStructuredError: the schema is
// closed, so unknown fields are violations, and every required field must be
// present with a concrete value of the right shape.
package contract

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/taxonomy"
)

//go:embed structured_error.cue
var schemaSource string

// ErrSchemaViolation is wrapped by every *SchemaError.
var ErrSchemaViolation = errors.New("schema violation")

// Violation is one failed constraint.
type Violation struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// SchemaError lists the constraints a document failed.
type SchemaError struct {
	Violations []Violation
}

// Error implements error.
func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Path == "" {
			parts[i] = v.Message
			continue
		}
		parts[i] = v.Path + ": " + v.Message
	}
	return ErrSchemaViolation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrSchemaViolation) hold.
func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

// cue.Value is not safe for concurrent use, so all evaluation happens under mu.
var (
	mu         sync.Mutex
	loadOnce   sync.Once
	cueCtx     *cue.Context
	definition cue.Value
	loadErr    error
)

func load() error {
	loadOnce.Do(func() {
		cueCtx = cuecontext.New()
		src := schemaSource + generatedDefinitions()
		v := cueCtx.CompileString(src, cue.Filename("structured_error.cue"))
		if err := v.Err(); err != nil {
			loadErr = fmt.Errorf("compiling contract schema: %w", err)
			return
		}
		definition = v.LookupPath(cue.ParsePath("#StructuredError"))
		if err := definition.Err(); err != nil {
			loadErr = fmt.Errorf("looking up #StructuredError: %w", err)
		}
	})
	return loadErr
}

// generatedDefinitions renders the closed enumerations as CUE disjunctions.
func generatedDefinitions() string {
	codes := diagnostics.Codes()
	codeNames := make([]string, len(codes))
	for i, c := range codes {
		codeNames[i] = string(c)
	}

	categories := taxonomy.Categories()
	categoryNames := make([]string, len(categories))
	for i, c := range categories {
		categoryNames[i] = string(c)
	}

	severities := diagnostics.Severities()
	severityNames := make([]string, len(severities))
	for i, s := range severities {
		severityNames[i] = string(s)
	}

	var b strings.Builder
	b.WriteString("\n#ErrorCode: ")
	b.WriteString(disjunction(codeNames))
	b.WriteString("\n#Category: ")
	b.WriteString(disjunction(categoryNames))
	b.WriteString("\n#Severity: ")
	b.WriteString(disjunction(severityNames))
	b.WriteString("\n")
	return b.String()
}

func disjunction(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, " | ")
}

// Schema returns the CUE source of the contract, generated definitions included.
func Schema() string {
	return schemaSource + generatedDefinitions()
}

// Check validates one JSON document against #StructuredError.
//
// Description:
//
//	The document is compiled as CUE (JSON is a subset), unified with the
//	closed definition and validated for concreteness. All violations are
//	reported, not only the first.
//
// Inputs:
//   - data: A single JSON object.
//
// Outputs:
//   - error: nil if the document conforms; a *SchemaError wrapping
//     ErrSchemaViolation if it does not; another error if data is not
//     parseable or the schema fails to load.
func Check(data []byte) error {
	if err := load(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	doc := cueCtx.CompileBytes(data, cue.Filename("document.json"))
	if err := doc.Err(); err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}

	unified := definition.Unify(doc)
	if err := unified.Validate(cue.Concrete(true), cue.All()); err != nil {
		return &SchemaError{Violations: violations(err)}
	}
	return nil
}

// CheckRecord encodes rec as JSON and runs Check on it.
func CheckRecord(rec diagnostics.StructuredError) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return Check(data)
}

func violations(err error) []Violation {
	errs := cueerrors.Errors(err)
	out := make([]Violation, 0, len(errs))
	seen := make(map[Violation]bool, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		out = append(out, Violation{Message: err.Error()})
	}
	return out
}
