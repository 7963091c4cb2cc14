// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders human-facing CLI output.
//
// A Printer styles its output with lipgloss when it writes to a terminal and
// falls back to plain, line-oriented text otherwise, so piped output stays
// grep-friendly. NO_COLOR forces plain output.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles are the pre-configured lipgloss styles.
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Key     lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Key:     lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon is a status marker.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconBullet  Icon = "•"
)

// plainIcons replaces icons in non-terminal output.
var plainIcons = map[Icon]string{
	IconSuccess: "OK",
	IconWarning: "WARN",
	IconError:   "FAIL",
	IconBullet:  "-",
}

// Printer writes styled or plain output to one writer.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter returns a Printer for w. Output is styled only when w is a
// terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w) && os.Getenv("NO_COLOR") == ""}
}

// NewPlainPrinter returns a Printer that never styles.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// IsTerminal reports whether w is a terminal (including Cygwin ptys).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Styled reports whether the printer emits ANSI styling.
func (p *Printer) Styled() bool { return p.styled }

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *Printer) icon(i Icon) string {
	if !p.styled {
		return plainIcons[i]
	}
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return Styles.Muted.Render(string(i))
	}
}

// Title prints a heading.
func (p *Printer) Title(text string) {
	fmt.Fprintln(p.w, p.render(Styles.Title, text))
}

// Success prints a line marked as passing.
func (p *Printer) Success(text string) {
	fmt.Fprintf(p.w, "%s %s\n", p.icon(IconSuccess), p.render(Styles.Success, text))
}

// Warning prints a line marked as a warning.
func (p *Printer) Warning(text string) {
	fmt.Fprintf(p.w, "%s %s\n", p.icon(IconWarning), p.render(Styles.Warning, text))
}

// Error prints a line marked as failing.
func (p *Printer) Error(text string) {
	fmt.Fprintf(p.w, "%s %s\n", p.icon(IconError), p.render(Styles.Error, text))
}

// Bullet prints an indented list item.
func (p *Printer) Bullet(text string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.icon(IconBullet), text)
}

// Muted prints secondary text.
func (p *Printer) Muted(text string) {
	fmt.Fprintln(p.w, p.render(Styles.Muted, text))
}

// KeyValue prints "key: value" with the key padded to width.
func (p *Printer) KeyValue(key string, value any, width int) {
	label := key + ":"
	if pad := width - len(label); pad > 0 {
		label += strings.Repeat(" ", pad)
	}
	fmt.Fprintf(p.w, "%s %v\n", p.render(Styles.Key, label), value)
}

// Box prints content in a rounded box, or as "title: content" lines when plain.
func (p *Printer) Box(title, content string) {
	if !p.styled {
		fmt.Fprintf(p.w, "%s\n%s\n", title, content)
		return
	}
	fmt.Fprintln(p.w, Styles.Box.Render(Styles.Title.Render(title)+"\n"+content))
}
