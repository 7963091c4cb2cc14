// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"
)

// Record is one captured log record with its attributes flattened.
//
// Group members are keyed "group.key", so a registry line logged with
// slog.Any("fault", descriptor) exposes "fault.kind".
type Record struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type recordStore struct {
	mu      sync.Mutex
	records []Record
}

// Recorder is a slog.Handler that keeps records in memory.
//
// Use it directly with slog.New or through Config.Recorder:
//
//	rec := logging.NewRecorder()
//	reg := registry.New(registry.WithLogger(slog.New(rec)))
//	reg.Reset()
//	_, ok := rec.Find("fault registry reset")
//
// Handlers derived through WithAttrs and WithGroup share the parent's store.
type Recorder struct {
	store  *recordStore
	level  slog.Level
	prefix string
	attrs  map[string]any
}

// NewRecorder returns an empty Recorder that accepts every level.
func NewRecorder() *Recorder {
	return &Recorder{store: &recordStore{}, level: slog.LevelDebug}
}

func (r *Recorder) withLevel(level slog.Level) *Recorder {
	c := r.clone()
	c.level = level
	return c
}

func (r *Recorder) clone() *Recorder {
	return &Recorder{store: r.store, level: r.level, prefix: r.prefix, attrs: maps.Clone(r.attrs)}
}

// Enabled implements slog.Handler.
func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.level
}

// Handle implements slog.Handler.
func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, len(r.attrs)+rec.NumAttrs())
	maps.Copy(attrs, r.attrs)
	rec.Attrs(func(a slog.Attr) bool {
		flatten(attrs, r.prefix, a)
		return true
	})

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.records = append(r.store.records, Record{
		Time:    rec.Time,
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := r.clone()
	if c.attrs == nil {
		c.attrs = make(map[string]any, len(attrs))
	}
	for _, a := range attrs {
		flatten(c.attrs, c.prefix, a)
	}
	return c
}

// WithGroup implements slog.Handler.
func (r *Recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	c := r.clone()
	c.prefix = joinKey(c.prefix, name)
	return c
}

// Records returns a copy of everything captured so far, oldest first.
func (r *Recorder) Records() []Record {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]Record, len(r.store.records))
	copy(out, r.store.records)
	return out
}

// Messages returns the captured messages, oldest first.
func (r *Recorder) Messages() []string {
	records := r.Records()
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Message
	}
	return out
}

// Find returns the most recent record with the given message.
func (r *Recorder) Find(msg string) (Record, bool) {
	records := r.Records()
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Message == msg {
			return records[i], true
		}
	}
	return Record{}, false
}

// Count returns how many records carry the given message.
func (r *Recorder) Count(msg string) int {
	n := 0
	for _, rec := range r.Records() {
		if rec.Message == msg {
			n++
		}
	}
	return n
}

// Reset drops every captured record.
func (r *Recorder) Reset() {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.records = nil
}

func flatten(dst map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = joinKey(prefix, a.Key)
		}
		for _, member := range a.Value.Group() {
			flatten(dst, p, member)
		}
		return
	}
	dst[joinKey(prefix, a.Key)] = a.Value.Any()
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

var _ slog.Handler = (*Recorder)(nil)
