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

package gui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/tableview/datatable"
	"github.com/magpierre/tableview/internal/filter"
)

// Predicate languages offered by the dialog.
const (
	ModeQuery  = "Query"
	ModeScript = "Go expression"
)

// BuildPredicate compiles text in the given mode. Empty text yields a nil
// filter, which removes the predicate.
func BuildPredicate(mode, text string, columns []datatable.Column) (datatable.Filter, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	switch mode {
	case ModeQuery:
		q, err := filter.ParseQuery(text, columns)
		if err != nil {
			return nil, err
		}
		return q, nil
	case ModeScript:
		s, err := filter.NewScriptFilter(text)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", datatable.ErrInvalidFilter, mode)
	}
}

// ApplyPredicate compiles text and sets it on the current document.
func (t *MainWindow) ApplyPredicate(mode, text string) error {
	doc := t.Current()
	if doc == nil {
		return nil
	}
	f, err := BuildPredicate(mode, text, doc.Model.Columns())
	if err != nil {
		return err
	}
	doc.Model.SetPredicate(f)
	doc.predMode, doc.predText = mode, text
	return nil
}

func (t *MainWindow) showQueryDialog() {
	doc := t.Current()
	if doc == nil {
		dialog.ShowInformation("Filter", "Open a table first", t.w)
		return
	}

	entry := widget.NewMultiLineEntry()
	entry.SetMinRowsVisible(4)
	entry.SetText(doc.predText)

	help := widget.NewLabel("")
	help.Wrapping = fyne.TextWrapWord
	preview := widget.NewRichText()
	preview.Wrapping = fyne.TextWrapWord
	names := columnSet(doc.Model.Columns())

	var mode *widget.RadioGroup
	showPreview := func() {
		preview.Segments = PredicateSegments(Tokenize(mode.Selected, entry.Text, names))
		preview.Refresh()
	}
	entry.OnChanged = func(string) { showPreview() }

	mode = widget.NewRadioGroup([]string{ModeQuery, ModeScript}, func(s string) {
		showPreview()
		switch s {
		case ModeScript:
			entry.SetPlaceHolder(`row["age"].(int64) > 30`)
			help.SetText("A Go boolean expression over row, a map from column key to value.")
		default:
			entry.SetPlaceHolder("age > 25 AND status = active")
			help.SetText("Comparisons joined by AND or OR. Words without an operator search every column.")
		}
	})
	mode.Horizontal = true
	if doc.predMode != "" {
		mode.SetSelected(doc.predMode)
	} else {
		mode.SetSelected(ModeQuery)
	}

	content := container.NewVBox(
		widget.NewLabel("Row predicate:"),
		mode,
		entry,
		preview,
		help,
	)

	d := dialog.NewCustomConfirm("Filter Rows", "Apply", "Cancel", content, func(ok bool) {
		if !ok {
			return
		}
		if err := t.ApplyPredicate(mode.Selected, entry.Text); err != nil {
			dialog.ShowError(err, t.w)
		}
	}, t.w)
	d.Resize(fyne.NewSize(500, 300))
	d.Show()
}

// columnSet holds each column key as is, and keys and labels lower-cased.
func columnSet(columns []datatable.Column) map[string]bool {
	set := make(map[string]bool, len(columns)*3)
	for _, col := range columns {
		set[col.Key] = true
		set[strings.ToLower(col.Key)] = true
		set[strings.ToLower(col.Label)] = true
	}
	return set
}
