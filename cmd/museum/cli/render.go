// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	positive     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	negative     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Field is one labelled value in a [Details] block.
type Field struct {
	Label string
	Value string
}

// Heading writes a bold title line.
func Heading(w io.Writer, title string) {
	fmt.Fprintln(w, headingStyle.Render(title))
}

// Details writes fields as an aligned label/value block.
func Details(w io.Writer, fields []Field) {
	width := 0
	for _, field := range fields {
		width = max(width, lipgloss.Width(field.Label))
	}
	label := labelStyle.Width(width + 2)
	for _, field := range fields {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(field.Label+":"), field.Value))
	}
}

// Table writes rows under a header with columns padded to the widest
// cell. An empty table prints placeholder in faint text instead.
func Table(w io.Writer, header []string, rows [][]string, placeholder string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, faintStyle.Render(placeholder))
		return
	}
	widths := make([]int, len(header))
	for column, cell := range header {
		widths[column] = lipgloss.Width(cell)
	}
	for _, row := range rows {
		for column, cell := range row {
			widths[column] = max(widths[column], lipgloss.Width(cell))
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for column, cell := range cells {
			parts[column] = style.Width(widths[column] + 2).Render(cell)
		}
		return strings.TrimRight(strings.Join(parts, ""), " ")
	}
	fmt.Fprintln(w, render(header, labelStyle))
	for _, row := range rows {
		fmt.Fprintln(w, render(row, lipgloss.NewStyle()))
	}
}

// Signed renders a score with its sign, green when positive and red
// when negative.
func Signed(value int64) string {
	switch {
	case value > 0:
		return positive.Render(fmt.Sprintf("+%d", value))
	case value < 0:
		return negative.Render(fmt.Sprintf("%d", value))
	default:
		return "0"
	}
}

// Timestamp renders Unix nanoseconds in UTC.
func Timestamp(nanos int64) string {
	if nanos == 0 {
		return "-"
	}
	return time.Unix(0, nanos).UTC().Format(time.RFC3339)
}
