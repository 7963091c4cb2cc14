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
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"
)

// stdinPath selects standard input in place of a file.
const stdinPath = "-"

// maxInputSize bounds record files read by validate and audit.
const maxInputSize = 64 * 1024 * 1024

// errInputTooLarge is returned for input longer than maxInputSize.
var errInputTooLarge = errors.New("record input too large")

// document is one raw JSON record plus its position in the input.
type document struct {
	Index int
	Raw   json.RawMessage
}

// readDocuments reads structured error documents from path.
//
// # Description
//
// Accepts either a single JSON array of records or newline-delimited JSON
// (one object per line, blank lines ignored). Indexes are 1-based.
//
// # Inputs
//
//   - path: File path, or "-" for a.in.
//
// # Outputs
//
//   - []document: The records in input order. Empty for empty input.
//   - error: Non-nil if the input cannot be opened, exceeds maxInputSize
//     or is not JSON.
func (a *app) readDocuments(path string) ([]document, error) {
	var r io.Reader
	if path == stdinPath {
		r = a.in
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open records: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := readLimited(r, maxInputSize)
	if err != nil {
		return nil, err
	}
	return parseDocuments(bytes.NewReader(data))
}

// readLimited reads all of r, failing instead of truncating past limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", errInputTooLarge, limit)
	}
	return data, nil
}

func parseDocuments(r io.Reader) ([]document, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return []document{}, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var raws []json.RawMessage
		if err := dec.Decode(&raws); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
		docs := make([]document, len(raws))
		for i, raw := range raws {
			docs[i] = document{Index: i + 1, Raw: raw}
		}
		return docs, nil
	}

	docs := []document{}
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(docs)+1, err)
		}
		docs = append(docs, document{Index: len(docs) + 1, Raw: raw})
	}
}

// peekNonSpace returns the first non-whitespace byte without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
