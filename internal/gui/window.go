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

// Package gui is the desktop front end: a window with one tab per loaded
// file, each holding a DataTable.
package gui

import (
	"context"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/magpierre/tableview/datatable"
	"github.com/magpierre/tableview/export"
	"github.com/magpierre/tableview/internal/config"
	"github.com/magpierre/tableview/internal/loader"
	dtwidget "github.com/magpierre/tableview/widget"
)

// Document is one loaded file shown in a tab.
type Document struct {
	Path  string
	Name  string
	Model *datatable.TableModel
	Table *dtwidget.DataTable
	tab   *container.TabItem
	stop  context.CancelFunc

	predMode, predText string
}

// MainWindow is the application window.
type MainWindow struct {
	a      fyne.App
	w      fyne.Window
	cfg    *config.Config
	logger *zap.Logger
	opts   loader.Options

	docTabs   *container.DocTabs
	docs      map[*container.TabItem]*Document
	statusBar *widget.Label
	watch     bool
}

// NewMainWindow builds the window on app. Call ShowAndRun to start it.
func NewMainWindow(a fyne.App, cfg *config.Config, logger *zap.Logger) *MainWindow {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &MainWindow{
		a:      a,
		cfg:    cfg,
		logger: logger,
		docs:   make(map[*container.TabItem]*Document),
	}
	t.a.Settings().SetTheme(dtwidget.NewTheme(false))
	t.w = t.a.NewWindow("Table View")
	t.w.Resize(fyne.NewSize(900, 640))

	t.statusBar = widget.NewLabel("Ready")
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}

	t.docTabs = container.NewDocTabs()
	t.docTabs.CloseIntercept = t.closeTab
	t.docTabs.OnSelected = func(ti *container.TabItem) { t.updateStatusForTab(ti) }

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.showOpenDialog),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.showExportDialog),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.SearchIcon(), t.showQueryDialog),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() {
			if doc := t.Current(); doc != nil {
				t.reload(doc)
			}
		}),
	)

	t.w.SetContent(container.NewBorder(toolbar, container.NewHBox(t.statusBar), nil, nil, t.docTabs))
	t.w.SetOnClosed(func() {
		for _, doc := range t.docs {
			doc.stop()
		}
	})
	return t
}

// SetLoadOptions sets the projection applied to files opened afterwards.
func (t *MainWindow) SetLoadOptions(opts loader.Options) { t.opts = opts }

// SetWatch enables reloading files when they change on disk.
func (t *MainWindow) SetWatch(on bool) { t.watch = on }

// Window returns the fyne window.
func (t *MainWindow) Window() fyne.Window { return t.w }

// ShowAndRun shows the window and runs the event loop.
func (t *MainWindow) ShowAndRun() { t.w.ShowAndRun() }

// SetStatus updates the status bar message.
func (t *MainWindow) SetStatus(message string) {
	t.statusBar.SetText(message)
}

// Status returns the status bar message.
func (t *MainWindow) Status() string { return t.statusBar.Text }

// Documents returns the open documents in tab order.
func (t *MainWindow) Documents() []*Document {
	out := make([]*Document, 0, len(t.docTabs.Items))
	for _, ti := range t.docTabs.Items {
		if doc, ok := t.docs[ti]; ok {
			out = append(out, doc)
		}
	}
	return out
}

// Current returns the document in the selected tab, or nil.
func (t *MainWindow) Current() *Document {
	return t.docs[t.docTabs.Selected()]
}

// OpenFile loads path and shows it in a new tab, replacing a tab for the same
// file. It must be called on the UI goroutine.
func (t *MainWindow) OpenFile(path string) error {
	t.SetStatus("Loading " + filepath.Base(path))
	src, err := loader.Load(context.Background(), path, t.opts, t.logger)
	if err != nil {
		t.SetStatus("Error loading file: " + err.Error())
		return err
	}
	model, err := datatable.NewTableModelFromSource(src, t.cfg.ModelOptions(t.logger)...)
	if err != nil {
		t.SetStatus("Error loading file: " + err.Error())
		return fmt.Errorf("failed to create table model: %w", err)
	}
	t.display(path, model)
	return nil
}

// OpenFileAsync loads path off the UI goroutine and reports errors in a
// dialog.
func (t *MainWindow) OpenFileAsync(path string) {
	go func() {
		src, err := loader.Load(context.Background(), path, t.opts, t.logger)
		var model *datatable.TableModel
		if err == nil {
			model, err = datatable.NewTableModelFromSource(src, t.cfg.ModelOptions(t.logger)...)
		}
		fyne.Do(func() {
			if err != nil {
				t.logger.Error("load failed", zap.String("path", path), zap.Error(err))
				t.SetStatus("Error loading file: " + err.Error())
				dialog.ShowError(err, t.w)
				return
			}
			t.display(path, model)
		})
	}()
}

func (t *MainWindow) display(path string, model *datatable.TableModel) {
	name := filepath.Base(path)
	cfg := dtwidget.DefaultConfig()
	cfg.Name = name
	cfg.ShowStatusBar = false
	dt := dtwidget.NewDataTableWithConfig(model, cfg)

	for ti, doc := range t.docs {
		if doc.Path == path {
			t.closeTab(ti)
			break
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	doc := &Document{Path: path, Name: name, Model: model, Table: dt, stop: cancel}
	doc.tab = container.NewTabItem(name, dt)
	t.docs[doc.tab] = doc
	t.docTabs.Append(doc.tab)
	t.docTabs.Select(doc.tab)

	dt.OnStatusChanged(func(s string) {
		if t.docTabs.Selected() == doc.tab {
			t.SetStatus(s)
		}
	})

	if t.watch {
		go func() {
			err := loader.Watch(ctx, path, loader.DefaultDebounce, t.logger, func() {
				fyne.Do(func() { t.reload(doc) })
			})
			if err != nil {
				t.logger.Warn("watch stopped", zap.String("path", path), zap.Error(err))
			}
		}()
	}
}

// reload reads the document's file again and keeps the interaction state.
func (t *MainWindow) reload(doc *Document) {
	src, err := loader.Load(context.Background(), doc.Path, t.opts, t.logger)
	if err != nil {
		t.SetStatus("Error reloading file: " + err.Error())
		return
	}
	columns, rows, err := datatable.Collect(src)
	if err != nil {
		t.SetStatus("Error reloading file: " + err.Error())
		return
	}
	if err := doc.Model.SetColumns(columns); err != nil {
		t.SetStatus("Error reloading file: " + err.Error())
		return
	}
	doc.Model.SetRows(rows)
}

func (t *MainWindow) closeTab(ti *container.TabItem) {
	if doc, ok := t.docs[ti]; ok {
		doc.stop()
		delete(t.docs, ti)
	}
	t.docTabs.Remove(ti)
	if sel := t.docTabs.Selected(); sel != nil {
		t.updateStatusForTab(sel)
	} else {
		t.SetStatus("Ready")
	}
}

func (t *MainWindow) updateStatusForTab(ti *container.TabItem) {
	if doc, ok := t.docs[ti]; ok {
		t.SetStatus(doc.Table.StatusText())
	}
}

// ExportCurrent writes every matching row of the selected document, in
// display order, to path.
func (t *MainWindow) ExportCurrent(path string) error {
	doc := t.Current()
	if doc == nil {
		return fmt.Errorf("%w: no table is open", datatable.ErrExportFailed)
	}
	format, err := export.FormatForPath(path)
	if err != nil {
		return err
	}
	if err := export.ToFile(path, format, doc.Model.Columns(), doc.Model.DerivedRows()); err != nil {
		return err
	}
	t.SetStatus(fmt.Sprintf("Exported %d rows to %s", doc.Model.MatchingRowCount(), filepath.Base(path)))
	return nil
}

func (t *MainWindow) showOpenDialog() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()
		t.OpenFileAsync(path)
	}, t.w)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".tsv", ".json", ".parquet"}))
	d.Show()
}

func (t *MainWindow) showExportDialog() {
	if t.Current() == nil {
		dialog.ShowInformation("Export", "Open a table first", t.w)
		return
	}
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		if err := t.ExportCurrent(path); err != nil {
			dialog.ShowError(err, t.w)
		}
	}, t.w)
	d.SetFileName(t.Current().Name + export.FormatCSV.Extension())
	d.Show()
}
