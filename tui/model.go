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

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/magpierre/tableview/datatable"
)

// KeyMap defines the key bindings of the table view.
type KeyMap struct {
	Filter      key.Binding
	ClearFilter key.Binding
	Apply       key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	FirstPage   key.Binding
	LastPage    key.Binding
	Sort        key.Binding
	Bigger      key.Binding
	Smaller     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		ClearFilter: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		Apply:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
		PrevPage:    key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),
		NextPage:    key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
		FirstPage:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
		LastPage:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
		Sort:        key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "sort column")),
		Bigger:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more rows")),
		Smaller:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer rows")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.PrevPage, k.NextPage, k.Sort, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Filter, k.ClearFilter, k.Apply},
		{k.PrevPage, k.NextPage, k.FirstPage, k.LastPage},
		{k.Sort, k.Bigger, k.Smaller},
		{k.Help, k.Quit},
	}
}

// ReloadMsg replaces the rows of the table, for example after the source
// file changed on disk.
type ReloadMsg struct {
	Rows []datatable.Row
}

// ErrMsg reports a failure to show in the status line.
type ErrMsg struct{ Err error }

// Model is a bubbletea model over a TableModel.
type Model struct {
	table     *datatable.TableModel
	keys      KeyMap
	help      help.Model
	input     textinput.Model
	filtering bool
	opts      RenderOptions
	title     string
	status    string
	width     int
}

// New creates a terminal view over table.
func New(table *datatable.TableModel, title string, opts RenderOptions) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.SetValue(table.FilterState().Query)

	opts.NumberHeaders = table.SortingEnabled()
	return Model{
		table: table,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		input: ti,
		opts:  opts,
		title: title,
	}
}

// Table returns the underlying table model.
func (m Model) Table() *datatable.TableModel { return m.table }

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool { return m.filtering }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case ReloadMsg:
		m.table.SetRows(msg.Rows)
		m.status = fmt.Sprintf("reloaded %d rows", len(msg.Rows))
		return m, nil

	case ErrMsg:
		m.status = "error: " + msg.Err.Error()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ClearFilter):
		m.input.SetValue("")
		m.input.Blur()
		m.filtering = false
		m.table.OnClearFilter()
		return m, nil
	case key.Matches(msg, m.keys.Apply):
		m.input.Blur()
		m.filtering = false
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.table.OnFilterChange(m.input.Value())
	return m, cmd
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Filter):
		if !m.table.FilteringEnabled() {
			m.status = "filtering is disabled"
			return m, nil
		}
		m.filtering = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.ClearFilter):
		m.input.SetValue("")
		m.table.OnClearFilter()
	case key.Matches(msg, m.keys.PrevPage):
		m.table.PrevPage()
	case key.Matches(msg, m.keys.NextPage):
		m.table.NextPage()
	case key.Matches(msg, m.keys.FirstPage):
		m.table.OnPageChange(1)
	case key.Matches(msg, m.keys.LastPage):
		m.table.OnPageChange(m.table.TotalPages())
	case key.Matches(msg, m.keys.Sort):
		idx := int(msg.Runes[0]-'1')
		cols := m.table.Columns()
		if idx < len(cols) && !m.table.OnHeaderClick(cols[idx].Key) {
			m.status = fmt.Sprintf("column %q is not sortable", cols[idx].Label)
		}
	case key.Matches(msg, m.keys.Bigger):
		m.table.OnPageSizeChange(StepPageSize(m.table.PageSizeOptions(), m.table.PaginationState().PageSize, 1))
	case key.Matches(msg, m.keys.Smaller):
		m.table.OnPageSizeChange(StepPageSize(m.table.PageSizeOptions(), m.table.PaginationState().PageSize, -1))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(m.opts.Styles.Header.Render(m.title))
		b.WriteString("\n")
	}
	if m.filtering || m.input.Value() != "" {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(Render(m.table.View(), m.opts))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// StepPageSize returns the next page size option above (dir > 0) or below
// (dir < 0) current, or current when there is none.
func StepPageSize(options []int, current, dir int) int {
	best := current
	for _, n := range options {
		switch {
		case dir > 0 && n > current && (best == current || n < best):
			best = n
		case dir < 0 && n < current && (best == current || n > best):
			best = n
		}
	}
	return best
}
