// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tui renders a datatable.View in the terminal and drives a
// TableModel from key presses.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/magpierre/tableview/datatable"
)

const ellipsis = "…"

// Styles used by Render.
type Styles struct {
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Highlight lipgloss.Style
	Border    lipgloss.Style
	Summary   lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
		Cell:      lipgloss.NewStyle().Padding(0, 1),
		Highlight: lipgloss.NewStyle().Background(lipgloss.Color("220")).Foreground(lipgloss.Color("0")),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Summary:   lipgloss.NewStyle().Faint(true),
	}
}

// RenderOptions controls table rendering.
type RenderOptions struct {
	// MaxCellWidth truncates cells wider than this many columns. Zero
	// disables truncation.
	MaxCellWidth int
	// NumberHeaders prefixes headers with the key that sorts them.
	NumberHeaders bool
	Styles        Styles
}

// Render draws the visible rows of view as a bordered table followed by the
// summary line.
func Render(view datatable.View, opts RenderOptions) string {
	headers := make([]string, len(view.Columns))
	for i, col := range view.Columns {
		headers[i] = HeaderLabel(col, view.Sort, i, opts.NumberHeaders)
	}

	rows := make([][]string, len(view.Rows))
	for r, vr := range view.Rows {
		cells := make([]string, len(view.Columns))
		for c, col := range view.Columns {
			text, spans := Truncate(vr.Row.Get(col.Key).Formatted, vr.Highlights[col.Key], opts.MaxCellWidth)
			cells[c] = Highlight(text, spans, opts.Styles.Highlight.Render)
		}
		rows[r] = cells
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(opts.Styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return opts.Styles.Header
			}
			return opts.Styles.Cell
		})

	return t.Render() + "\n" + opts.Styles.Summary.Render(Footer(view))
}

// HeaderLabel returns the header text for col, marked with the direction
// when it is the active sort column.
func HeaderLabel(col datatable.Column, sort datatable.SortState, index int, numbered bool) string {
	label := col.Label
	if numbered && index < 9 && col.Sortable {
		label = fmt.Sprintf("%d:%s", index+1, label)
	}
	if sort.Key == col.Key && sort.Direction != datatable.SortNone {
		label += " " + sort.Direction.Arrow()
	}
	return label
}

// Footer returns the summary and page position.
func Footer(view datatable.View) string {
	return fmt.Sprintf("%s | Page %d of %d", view.Summary, view.CurrentPage, view.TotalPages)
}

// Truncate shortens text to width display columns, ending with an ellipsis,
// and clips spans to the kept prefix.
func Truncate(text string, spans []datatable.Span, width int) (string, []datatable.Span) {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text, spans
	}
	out := runewidth.Truncate(text, width, ellipsis)
	kept := len(strings.TrimSuffix(out, ellipsis))

	clipped := make([]datatable.Span, 0, len(spans))
	for _, s := range spans {
		if s.Start >= kept {
			continue
		}
		clipped = append(clipped, datatable.Span{Start: s.Start, End: min(s.End, kept)})
	}
	return out, clipped
}

// Highlight wraps each span of text with mark. Spans must be sorted and
// non-overlapping byte ranges.
func Highlight(text string, spans []datatable.Span, mark func(...string) string) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(text) || s.Start >= s.End {
			continue
		}
		b.WriteString(text[pos:s.Start])
		b.WriteString(mark(text[s.Start:s.End]))
		pos = s.End
	}
	b.WriteString(text[pos:])
	return b.String()
}
