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

package datatable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func visibleIDs(m *TableModel) []int64 { return ids(m.VisibleRows()) }

func visibleNames(m *TableModel) []string {
	var names []string
	for _, r := range m.VisibleRows() {
		names = append(names, r.Get("name").Formatted)
	}
	return names
}

func sixPeople() []Row {
	names := []string{"Zoe", "Yan", "Xia", "Wes", "Uma", "Vic"}
	rows := make([]Row, len(names))
	for i, n := range names {
		rows[i] = NewRow(map[string]interface{}{"id": i + 1, "name": n})
	}
	// Input order deliberately differs from id order.
	rows[0], rows[5] = rows[5], rows[0]
	return rows
}

func TestNewTableModel_DefaultSort(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), people(), WithDefaultSort("name"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, visibleNames(m))
	assert.Equal(t, []int64{1, 2, 3}, visibleIDs(m))
	assert.Equal(t, SortState{Key: "name", Direction: SortAscending}, m.SortState())
}

func TestNewTableModel_RejectsDuplicateKeys(t *testing.T) {
	_, err := NewTableModel([]Column{{Key: "a"}, {Key: "a"}}, nil)
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestTableModel_HeaderClickToggles(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), people(), WithDefaultSort("name"))
	require.NoError(t, err)

	require.True(t, m.OnHeaderClick("id"))
	assert.Equal(t, []int64{1, 2, 3}, visibleIDs(m))
	assert.Equal(t, SortAscending, m.SortState().Direction)

	require.True(t, m.OnHeaderClick("id"))
	assert.Equal(t, []int64{3, 2, 1}, visibleIDs(m))
	assert.Equal(t, SortDescending, m.SortState().Direction)

	require.True(t, m.OnHeaderClick("id"))
	assert.Equal(t, []int64{1, 2, 3}, visibleIDs(m))
}

func TestTableModel_ToggleIsExactReverse(t *testing.T) {
	rows := []Row{
		NewRow(map[string]interface{}{"id": 1, "grp": "b"}),
		NewRow(map[string]interface{}{"id": 2, "grp": "a"}),
		NewRow(map[string]interface{}{"id": 3, "grp": "b"}),
		NewRow(map[string]interface{}{"id": 4, "grp": "a"}),
	}
	cols := []Column{{Key: "id", Sortable: true}, {Key: "grp", Sortable: true}}
	m, err := NewTableModel(cols, rows)
	require.NoError(t, err)

	m.OnHeaderClick("grp")
	asc := visibleIDs(m)
	m.OnHeaderClick("grp")
	desc := visibleIDs(m)

	assert.Equal(t, []int64{2, 4, 1, 3}, asc)
	assert.Equal(t, []int64{3, 1, 4, 2}, desc)
}

func TestTableModel_NonSortableHeaderIsNoop(t *testing.T) {
	cols := []Column{
		{Key: "id", Label: "ID", Sortable: true},
		{Key: "name", Label: "Name", Sortable: false},
	}
	m, err := NewTableModel(cols, people())
	require.NoError(t, err)

	var notified int
	m.OnChange(func(View) { notified++ })
	before := visibleIDs(m)

	assert.False(t, m.OnHeaderClick("name"))
	assert.False(t, m.OnHeaderClick("unknown"))
	assert.Equal(t, before, visibleIDs(m))
	assert.Equal(t, SortState{}, m.SortState())
	assert.Zero(t, notified)
}

func TestTableModel_FilterAndClear(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), people(), WithDefaultSort("name"))
	require.NoError(t, err)

	m.OnFilterChange("Ali")
	view := m.View()
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Alice", view.Rows[0].Row.Get("name").Formatted)
	assert.Equal(t, map[string][]Span{"name": {{Start: 0, End: 3}}}, view.Rows[0].Highlights)
	assert.Equal(t, "Ali", m.FilterState().Query)

	m.OnClearFilter()
	assert.Equal(t, "", m.FilterState().Query)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, visibleNames(m))
	assert.Equal(t, 3, m.MatchingRowCount())
	for _, vr := range m.View().Rows {
		assert.Empty(t, vr.Highlights)
	}
}

func TestTableModel_ClearFilterReturnsToFirstPage(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), numbered(9), WithPageSize(2))
	require.NoError(t, err)

	m.OnPageChange(3)
	require.Equal(t, 3, m.CurrentPage())

	m.OnClearFilter()
	assert.Equal(t, 1, m.CurrentPage())
}

func TestTableModel_FilterClampsPage(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), numbered(10), WithPageSize(3))
	require.NoError(t, err)

	m.OnPageChange(4)
	require.Equal(t, 4, m.CurrentPage())

	// Only "1" and "10" match.
	m.OnFilterChange("1")
	assert.Equal(t, 1, m.TotalPages())
	assert.Equal(t, 1, m.CurrentPage())
	assert.Equal(t, []int64{1, 10}, visibleIDs(m))
}

func TestTableModel_PageSizeSummary(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), numbered(5), WithPageSize(2))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, visibleIDs(m))
	assert.Equal(t, "Showing 1-2 of 5 matching rows (total dataset: 5)", m.Summary())
	assert.Equal(t, 3, m.TotalPages())

	m.OnPageSizeChange(5)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, visibleIDs(m))
	assert.Equal(t, "Showing 1-5 of 5 matching rows (total dataset: 5)", m.Summary())
}

func TestTableModel_PageSizeChangeResetsPage(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), numbered(20), WithPageSize(3))
	require.NoError(t, err)

	m.OnPageChange(5)
	require.Equal(t, 5, m.CurrentPage())

	m.OnPageSizeChange(4)
	assert.Equal(t, 1, m.CurrentPage())
	assert.Equal(t, 4, m.PaginationState().PageSize)

	m.OnPageChange(2)
	m.OnPageSizeChange(0)
	assert.Equal(t, 2, m.CurrentPage(), "invalid size is ignored")
}

func TestTableModel_PageChangeClamps(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), numbered(5), WithPageSize(2))
	require.NoError(t, err)

	m.OnPageChange(42)
	assert.Equal(t, 3, m.CurrentPage())
	assert.False(t, m.CanNextPage())
	assert.True(t, m.CanPrevPage())

	m.OnPageChange(-1)
	assert.Equal(t, 1, m.CurrentPage())

	m.NextPage()
	assert.Equal(t, 2, m.CurrentPage())
	m.PrevPage()
	m.PrevPage()
	assert.Equal(t, 1, m.CurrentPage())
}

func TestTableModel_SortAppliesToCurrentPageOnly(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), sixPeople(), WithDefaultSort("id"), WithPageSize(3))
	require.NoError(t, err)

	m.OnPageChange(2)
	assert.Equal(t, []int64{4, 5, 6}, visibleIDs(m))

	m.OnHeaderClick("name")
	assert.Equal(t, []string{"Uma", "Vic", "Wes"}, visibleNames(m))
	assert.ElementsMatch(t, []int64{4, 5, 6}, visibleIDs(m))

	m.OnPageChange(1)
	assert.ElementsMatch(t, []int64{1, 2, 3}, visibleIDs(m))
	assert.Equal(t, []string{"Xia", "Yan", "Zoe"}, visibleNames(m))
}

func TestTableModel_GlobalSortScope(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), sixPeople(),
		WithDefaultSort("id"), WithPageSize(3), WithSortScope(SortScopeGlobal))
	require.NoError(t, err)

	m.OnHeaderClick("name")
	assert.Equal(t, []string{"Uma", "Vic", "Wes"}, visibleNames(m))
	m.OnPageChange(2)
	assert.Equal(t, []string{"Xia", "Yan", "Zoe"}, visibleNames(m))
}

func TestTableModel_DerivedRowsCoverEveryPage(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), sixPeople(), WithDefaultSort("id"), WithPageSize(4))
	require.NoError(t, err)
	// id is already the active sort, so one click flips it to descending.
	m.OnHeaderClick("id")

	var paged []Row
	for p := 1; p <= m.TotalPages(); p++ {
		m.OnPageChange(p)
		paged = append(paged, m.VisibleRows()...)
	}
	assert.Equal(t, ids(paged), ids(m.DerivedRows()))
	assert.Equal(t, []int64{4, 3, 2, 1, 6, 5}, ids(m.DerivedRows()))
}

func TestTableModel_FeatureFlags(t *testing.T) {
	t.Run("sorting disabled", func(t *testing.T) {
		m, err := NewTableModel(peopleColumns(), people(), WithSorting(false), WithDefaultSort("name"))
		require.NoError(t, err)
		assert.False(t, m.OnHeaderClick("id"))
		assert.Equal(t, []int64{3, 1, 2}, visibleIDs(m))
	})

	t.Run("filtering disabled", func(t *testing.T) {
		m, err := NewTableModel(peopleColumns(), people(), WithFiltering(false))
		require.NoError(t, err)
		m.OnFilterChange("Ali")
		assert.Len(t, m.VisibleRows(), 3)
		m.OnHeaderClick("id")
		assert.Equal(t, []int64{1, 2, 3}, visibleIDs(m))
	})

	t.Run("pagination disabled", func(t *testing.T) {
		m, err := NewTableModel(peopleColumns(), numbered(30), WithPagination(false), WithPageSize(5))
		require.NoError(t, err)
		assert.Len(t, m.VisibleRows(), 30)
		assert.Equal(t, 1, m.TotalPages())
		m.OnFilterChange("2")
		assert.Equal(t, []int64{2, 12, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29}, visibleIDs(m))
	})
}

func TestTableModel_EmptyDataset(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), nil)
	require.NoError(t, err)

	assert.Empty(t, m.VisibleRows())
	assert.Equal(t, 1, m.TotalPages())
	assert.Equal(t, 1, m.CurrentPage())
	assert.Equal(t, "Showing 0-0 of 0 matching rows (total dataset: 0)", m.Summary())

	m.OnHeaderClick("id")
	m.OnFilterChange("x")
	m.OnPageChange(3)
	assert.Equal(t, 1, m.CurrentPage())
}

func TestTableModel_FilterThenClearRoundTrip(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), numbered(17), WithPageSize(4))
	require.NoError(t, err)
	before := ids(m.DerivedRows())

	for _, q := range []string{"1", "7", "none", ""} {
		m.OnFilterChange(q)
		m.OnClearFilter()
		assert.Equal(t, before, ids(m.DerivedRows()), "query %q", q)
		assert.Equal(t, 17, m.MatchingRowCount())
	}
}

func TestTableModel_SetRowsClampsPage(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), numbered(10), WithPageSize(2))
	require.NoError(t, err)
	m.OnPageChange(5)

	m.SetRows(numbered(3))
	assert.Equal(t, 2, m.CurrentPage())
	assert.Equal(t, []int64{3}, visibleIDs(m))
}

func TestTableModel_SetColumnsDropsMissingSort(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), people())
	require.NoError(t, err)
	m.OnHeaderClick("name")

	require.NoError(t, m.SetColumns([]Column{{Key: "id", Sortable: true}}))
	assert.Equal(t, SortState{}, m.SortState())
	assert.ErrorIs(t, m.SetColumns([]Column{{Key: ""}}), ErrEmptyColumnKey)
}

type oddIDs struct{}

func (oddIDs) Evaluate(row Row) (bool, error) {
	id, ok := row.Get("id").Raw.(int64)
	if !ok {
		return false, errors.New("no id")
	}
	return id%2 == 1, nil
}

func (oddIDs) Description() string { return "odd ids" }

func TestTableModel_Predicate(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rows := append(numbered(6), NewRow(map[string]interface{}{"name": "orphan"}))
	m, err := NewTableModel(peopleColumns(), rows, WithPredicate(oddIDs{}), WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3, 5}, visibleIDs(m))
	assert.Equal(t, 1, logs.FilterMessage("predicate failed").Len())

	m.OnFilterChange("5")
	assert.Equal(t, []int64{5}, visibleIDs(m))

	m.SetPredicate(nil)
	m.OnClearFilter()
	assert.Len(t, m.VisibleRows(), 7)
}

func TestTableModel_LogsIgnoredInteractions(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cols := []Column{{Key: "id", Sortable: false}}
	m, err := NewTableModel(cols, numbered(3), WithLogger(zap.New(core)))
	require.NoError(t, err)

	m.OnHeaderClick("id")
	m.OnPageChange(9)
	m.OnPageSizeChange(-1)

	assert.Equal(t, 1, logs.FilterMessage("header click ignored: column not sortable").Len())
	assert.Equal(t, 1, logs.FilterMessage("page request clamped").Len())
	assert.Equal(t, 1, logs.FilterMessage("page size rejected").Len())
}

func TestTableModel_OnChange(t *testing.T) {
	m, err := NewTableModel(peopleColumns(), numbered(4), WithPageSize(2))
	require.NoError(t, err)

	var views []View
	m.OnChange(func(v View) { views = append(views, v) })

	m.OnPageChange(2)
	m.OnFilterChange("3")
	require.Len(t, views, 2)
	assert.Equal(t, 2, views[0].CurrentPage)
	assert.Equal(t, 1, views[1].MatchingRows)
}

func TestTableModel_FromSource(t *testing.T) {
	src := &stubSource{
		names: []string{"id", "name"},
		types: []DataType{TypeInt, TypeString},
		rows: [][]Value{
			{ValueOf(2), ValueOf("b")},
			{ValueOf(1), ValueOf("a")},
		},
	}
	m, err := NewTableModelFromSource(src, WithDefaultSort("id"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, visibleIDs(m))
	assert.True(t, m.Columns()[1].Sortable)
	assert.Equal(t, TypeString, m.Columns()[1].Type)

	_, err = NewTableModelFromSource(nil)
	assert.ErrorIs(t, err, ErrNoDataSource)
}

type stubSource struct {
	names []string
	types []DataType
	rows  [][]Value
}

func (s *stubSource) RowCount() int    { return len(s.rows) }
func (s *stubSource) ColumnCount() int { return len(s.names) }

func (s *stubSource) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", ErrInvalidColumn
	}
	return s.names[col], nil
}

func (s *stubSource) ColumnType(col int) (DataType, error) {
	if col < 0 || col >= len(s.types) {
		return TypeString, ErrInvalidColumn
	}
	return s.types[col], nil
}

func (s *stubSource) Cell(row, col int) (Value, error) {
	if row < 0 || row >= len(s.rows) {
		return Value{}, ErrInvalidRow
	}
	if col < 0 || col >= len(s.names) {
		return Value{}, ErrInvalidColumn
	}
	return s.rows[row][col], nil
}

func (s *stubSource) Row(row int) ([]Value, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, ErrInvalidRow
	}
	return s.rows[row], nil
}

func (s *stubSource) Metadata() Metadata { return Metadata{} }
