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

// Package widget provides a Fyne widget that renders and drives a
// datatable.TableModel.
package widget

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/tableview/datatable"
)

// Config controls which parts of the DataTable are shown.
type Config struct {
	ShowFilterBar  bool
	ShowStatusBar  bool
	ShowPager      bool
	MinColumnWidth float32
	// Name is used in the status text.
	Name string
}

// DefaultConfig returns a Config with every bar shown.
func DefaultConfig() Config {
	return Config{
		ShowFilterBar:  true,
		ShowStatusBar:  true,
		ShowPager:      true,
		MinColumnWidth: 80,
	}
}

// DataTable shows the visible window of a TableModel with a filter bar,
// clickable headers and page controls.
type DataTable struct {
	widget.BaseWidget

	model  *datatable.TableModel
	config Config
	view   datatable.View

	table       *widget.Table
	filterEntry *widget.Entry
	clearButton *widget.Button
	firstButton *widget.Button
	prevButton  *widget.Button
	nextButton  *widget.Button
	lastButton  *widget.Button
	pageLabel   *widget.Label
	pageSize    *widget.Select
	summary     *widget.Label
	status      *widget.Label

	onStatus func(string)
}

// NewDataTable creates a DataTable with the default configuration.
func NewDataTable(model *datatable.TableModel) *DataTable {
	return NewDataTableWithConfig(model, DefaultConfig())
}

// NewDataTableWithConfig creates a DataTable over model.
func NewDataTableWithConfig(model *datatable.TableModel, config Config) *DataTable {
	dt := &DataTable{model: model, config: config, view: model.View()}
	dt.ExtendBaseWidget(dt)
	dt.build()
	model.OnChange(func(v datatable.View) {
		dt.view = v
		dt.refresh()
	})
	dt.refresh()
	return dt
}

// Model returns the underlying table model.
func (dt *DataTable) Model() *datatable.TableModel { return dt.model }

// OnStatusChanged registers fn to receive the status text after each change.
func (dt *DataTable) OnStatusChanged(fn func(string)) {
	dt.onStatus = fn
	fn(dt.StatusText())
}

// StatusText describes the table, its filter and its sort.
func (dt *DataTable) StatusText() string {
	return StatusText(dt.config.Name, dt.view)
}

// SetFilter sets the filter entry text, which filters the model.
func (dt *DataTable) SetFilter(query string) {
	dt.filterEntry.SetText(query)
}

// ClearFilter empties the filter and returns to the first page.
func (dt *DataTable) ClearFilter() {
	dt.model.OnClearFilter()
	dt.filterEntry.SetText("")
}

func (dt *DataTable) build() {
	dt.table = widget.NewTableWithHeaders(
		func() (int, int) { return len(dt.view.Rows), len(dt.view.Columns) },
		func() fyne.CanvasObject {
			rt := widget.NewRichText()
			rt.Truncation = fyne.TextTruncateEllipsis
			return rt
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			rt := o.(*widget.RichText)
			if id.Row >= len(dt.view.Rows) || id.Col >= len(dt.view.Columns) {
				rt.Segments = nil
				rt.Refresh()
				return
			}
			vr := dt.view.Rows[id.Row]
			key := dt.view.Columns[id.Col].Key
			rt.Segments = CellSegments(vr.Row.Get(key).Formatted, vr.Highlights[key])
			rt.Refresh()
		},
	)
	dt.table.ShowHeaderColumn = false
	dt.table.CreateHeader = func() fyne.CanvasObject {
		b := widget.NewButton("", nil)
		b.Importance = widget.LowImportance
		return b
	}
	dt.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		b := o.(*widget.Button)
		if id.Col < 0 || id.Col >= len(dt.view.Columns) {
			b.SetText("")
			return
		}
		col := dt.view.Columns[id.Col]
		b.SetText(HeaderText(col, dt.view.Sort))
		b.OnTapped = func() { dt.model.OnHeaderClick(col.Key) }
		if col.Sortable && dt.model.SortingEnabled() {
			b.Enable()
		} else {
			b.Disable()
		}
	}

	dt.filterEntry = widget.NewEntry()
	dt.filterEntry.SetPlaceHolder("Filter rows...")
	dt.filterEntry.SetText(dt.view.Query)
	dt.filterEntry.OnChanged = func(s string) { dt.model.OnFilterChange(s) }
	dt.clearButton = widget.NewButtonWithIcon("", theme.ContentClearIcon(), dt.ClearFilter)

	dt.firstButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), func() { dt.model.OnPageChange(1) })
	dt.prevButton = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), dt.model.PrevPage)
	dt.nextButton = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), dt.model.NextPage)
	dt.lastButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), func() { dt.model.OnPageChange(dt.model.TotalPages()) })
	dt.pageLabel = widget.NewLabel("")

	sizes := dt.model.PageSizeOptions()
	labels := make([]string, len(sizes))
	for i, n := range sizes {
		labels[i] = strconv.Itoa(n)
	}
	dt.pageSize = widget.NewSelect(labels, func(s string) {
		if n, err := strconv.Atoi(s); err == nil && n != dt.model.PaginationState().PageSize {
			dt.model.OnPageSizeChange(n)
		}
	})

	dt.summary = widget.NewLabel("")
	dt.status = widget.NewLabel("")
	dt.status.Truncation = fyne.TextTruncateEllipsis

	dt.resizeColumns()
}

func (dt *DataTable) resizeColumns() {
	size := theme.TextSize()
	pad := theme.Padding() * 4
	for i, col := range dt.view.Columns {
		w := fyne.MeasureText(col.Label+" ↑", size, fyne.TextStyle{}).Width + pad
		dt.table.SetColumnWidth(i, max(w, dt.config.MinColumnWidth))
	}
}

func (dt *DataTable) refresh() {
	v := dt.view
	dt.summary.SetText(v.Summary)
	dt.pageLabel.SetText(fmt.Sprintf("Page %d of %d", v.CurrentPage, v.TotalPages))
	if size := strconv.Itoa(v.PageSize); dt.pageSize.Selected != size {
		dt.pageSize.SetSelected(size)
	}

	enable(dt.firstButton, dt.model.CanPrevPage())
	enable(dt.prevButton, dt.model.CanPrevPage())
	enable(dt.nextButton, dt.model.CanNextPage())
	enable(dt.lastButton, dt.model.CanNextPage())

	if dt.filterEntry.Text != v.Query {
		dt.filterEntry.SetText(v.Query)
	}

	status := dt.StatusText()
	dt.status.SetText(status)
	if dt.onStatus != nil {
		dt.onStatus(status)
	}

	dt.table.Refresh()
}

func enable(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

// CreateRenderer implements fyne.Widget.
func (dt *DataTable) CreateRenderer() fyne.WidgetRenderer {
	var top, bottom []fyne.CanvasObject
	if dt.config.ShowFilterBar && dt.model.FilteringEnabled() {
		top = append(top, container.NewBorder(nil, nil, nil, dt.clearButton, dt.filterEntry))
	}
	if dt.config.ShowPager && dt.model.PaginationEnabled() {
		bottom = append(bottom, container.NewHBox(
			dt.firstButton, dt.prevButton, dt.pageLabel, dt.nextButton, dt.lastButton,
			widget.NewLabel("Rows per page:"), dt.pageSize,
		))
	}
	bottom = append(bottom, dt.summary)
	if dt.config.ShowStatusBar {
		bottom = append(bottom, dt.status)
	}

	content := container.NewBorder(
		container.NewVBox(top...),
		container.NewVBox(bottom...),
		nil, nil,
		dt.table,
	)
	return widget.NewSimpleRenderer(content)
}

// HeaderText returns the header label with the sort arrow of the active
// column.
func HeaderText(col datatable.Column, sort datatable.SortState) string {
	if sort.Key == col.Key && sort.Direction != datatable.SortNone {
		return col.Label + " " + sort.Direction.Arrow()
	}
	return col.Label
}

// CellSegments splits text into plain and highlighted rich text segments.
func CellSegments(text string, spans []datatable.Span) []widget.RichTextSegment {
	plain := widget.RichTextStyleInline
	match := widget.RichTextStyleStrong
	match.Inline = true
	match.ColorName = theme.ColorNamePrimary

	var segs []widget.RichTextSegment
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(text) || s.Start >= s.End {
			continue
		}
		if s.Start > pos {
			segs = append(segs, &widget.TextSegment{Text: text[pos:s.Start], Style: plain})
		}
		segs = append(segs, &widget.TextSegment{Text: text[s.Start:s.End], Style: match})
		pos = s.End
	}
	if pos < len(text) || len(segs) == 0 {
		segs = append(segs, &widget.TextSegment{Text: text[pos:], Style: plain})
	}
	return segs
}

// StatusText describes a view as "Table name (C columns x R rows)", noting
// the filtered row count and the active sort.
func StatusText(name string, v datatable.View) string {
	if name == "" {
		name = "data"
	}
	var s string
	if v.MatchingRows != v.TotalRows {
		s = fmt.Sprintf("Table %s (showing %d/%d rows, %d columns)", name, v.MatchingRows, v.TotalRows, len(v.Columns))
	} else {
		s = fmt.Sprintf("Table %s (%d columns x %d rows)", name, len(v.Columns), v.TotalRows)
	}
	if v.Sort.IsSorted() {
		label := v.Sort.Key
		for _, col := range v.Columns {
			if col.Key == v.Sort.Key {
				label = col.Label
				break
			}
		}
		s += fmt.Sprintf(" | Sorted: %s %s", label, v.Sort.Direction.Arrow())
	}
	return s
}
