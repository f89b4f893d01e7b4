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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peopleColumns() []Column {
	return []Column{
		{Key: "id", Label: "ID", Sortable: true, Type: TypeInt},
		{Key: "name", Label: "Name", Sortable: true, Type: TypeString},
	}
}

func people() []Row {
	return []Row{
		NewRow(map[string]interface{}{"id": 3, "name": "Charlie"}),
		NewRow(map[string]interface{}{"id": 1, "name": "Alice"}),
		NewRow(map[string]interface{}{"id": 2, "name": "Bob"}),
	}
}

func ids(rows []Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.Get("id").Raw.(int64)
	}
	return out
}

func TestFilterRows_EmptyQuery(t *testing.T) {
	rows := people()
	res := FilterRows(rows, peopleColumns(), "")

	assert.Equal(t, rows, res.Matched)
	assert.Equal(t, []int{0, 1, 2}, res.Indices)
	assert.Empty(t, res.Highlights)
}

func TestFilterRows_CaseInsensitiveWithSpans(t *testing.T) {
	res := FilterRows(people(), peopleColumns(), "ali")

	require.Len(t, res.Matched, 1)
	assert.Equal(t, "Alice", res.Matched[0].Get("name").Formatted)
	assert.Equal(t, []int{1}, res.Indices)
	assert.Equal(t, map[int]map[string][]Span{
		1: {"name": {{Start: 0, End: 3}}},
	}, res.Highlights)
}

func TestFilterRows_MatchesAnyColumn(t *testing.T) {
	res := FilterRows(people(), peopleColumns(), "2")

	require.Len(t, res.Matched, 1)
	assert.Equal(t, []int64{2}, ids(res.Matched))
	assert.Equal(t, []Span{{Start: 0, End: 1}}, res.Highlights[2]["id"])
}

func TestFilterRows_MultipleOccurrences(t *testing.T) {
	rows := []Row{NewRow(map[string]interface{}{"name": "Banana"})}
	res := FilterRows(rows, []Column{{Key: "name"}}, "AN")

	assert.Equal(t, []Span{{Start: 1, End: 3}, {Start: 3, End: 5}}, res.Highlights[0]["name"])
}

func TestFilterRows_MultiByteOffsets(t *testing.T) {
	rows := []Row{NewRow(map[string]interface{}{"city": "Málaga"})}
	res := FilterRows(rows, []Column{{Key: "city"}}, "LAG")

	require.Len(t, res.Matched, 1)
	span := res.Highlights[0]["city"][0]
	assert.Equal(t, "lag", "Málaga"[span.Start:span.End])
}

func TestFilterRows_OnlyListedColumns(t *testing.T) {
	rows := []Row{NewRow(map[string]interface{}{"id": 1, "secret": "needle"})}
	res := FilterRows(rows, []Column{{Key: "id"}}, "needle")

	assert.Empty(t, res.Matched)
}

func TestFilterRows_NullAndMissingValues(t *testing.T) {
	rows := []Row{
		{"name": NewNullValue(TypeString)},
		{},
		NewRow(map[string]interface{}{"name": "null"}),
	}
	res := FilterRows(rows, []Column{{Key: "name"}}, "null")

	assert.Equal(t, []int{2}, res.Indices)
}

func TestFilterRows_Idempotent(t *testing.T) {
	cols := peopleColumns()
	for _, q := range []string{"", "a", "li", "zzz", "1"} {
		once := FilterRows(people(), cols, q)
		twice := FilterRows(once.Matched, cols, q)
		assert.Equal(t, once.Matched, twice.Matched, "query %q", q)
	}
}

func TestFilterRows_EmptyInput(t *testing.T) {
	res := FilterRows(nil, peopleColumns(), "x")
	assert.Empty(t, res.Matched)
}

func TestSortRows_Unsorted(t *testing.T) {
	rows := people()
	out := SortRows(rows, SortState{}, peopleColumns())
	assert.Equal(t, []int64{3, 1, 2}, ids(out))
}

func TestSortRows_Numeric(t *testing.T) {
	rows := []Row{
		NewRow(map[string]interface{}{"n": 10}),
		NewRow(map[string]interface{}{"n": 9}),
		NewRow(map[string]interface{}{"n": 2.5}),
	}
	out := SortRows(rows, SortState{Key: "n", Direction: SortAscending}, []Column{{Key: "n"}})

	got := make([]string, len(out))
	for i, r := range out {
		got[i] = r.Get("n").Formatted
	}
	assert.Equal(t, []string{"2.5", "9", "10"}, got)
}

func TestSortRows_StringsAreCaseSensitive(t *testing.T) {
	rows := []Row{
		NewRow(map[string]interface{}{"s": "b"}),
		NewRow(map[string]interface{}{"s": "B"}),
		NewRow(map[string]interface{}{"s": "a"}),
	}
	out := SortRows(rows, SortState{Key: "s", Direction: SortAscending}, []Column{{Key: "s"}})

	got := []string{out[0].Get("s").Formatted, out[1].Get("s").Formatted, out[2].Get("s").Formatted}
	assert.Equal(t, []string{"B", "a", "b"}, got)
}

func TestSortRows_Stable(t *testing.T) {
	rows := []Row{
		NewRow(map[string]interface{}{"id": 1, "grp": "x"}),
		NewRow(map[string]interface{}{"id": 2, "grp": "y"}),
		NewRow(map[string]interface{}{"id": 3, "grp": "x"}),
		NewRow(map[string]interface{}{"id": 4, "grp": "y"}),
		NewRow(map[string]interface{}{"id": 5, "grp": "x"}),
	}
	cols := []Column{{Key: "id"}, {Key: "grp"}}
	out := SortRows(rows, SortState{Key: "grp", Direction: SortAscending}, cols)

	assert.Equal(t, []int64{1, 3, 5, 2, 4}, ids(out))
}

func TestSortRows_DescendingReversesAscending(t *testing.T) {
	cols := peopleColumns()
	asc := SortRows(people(), SortState{Key: "name", Direction: SortAscending}, cols)
	desc := SortRows(people(), SortState{Key: "name", Direction: SortDescending}, cols)

	assert.Equal(t, []int64{1, 2, 3}, ids(asc))
	assert.Equal(t, []int64{3, 2, 1}, ids(desc))
}

func TestSortRows_UnknownKeyPassthrough(t *testing.T) {
	out := SortRows(people(), SortState{Key: "missing", Direction: SortAscending}, peopleColumns())
	assert.Equal(t, []int64{3, 1, 2}, ids(out))
}

func TestSortRows_DoesNotMutateInput(t *testing.T) {
	rows := people()
	_ = SortRows(rows, SortState{Key: "id", Direction: SortAscending}, peopleColumns())
	assert.Equal(t, []int64{3, 1, 2}, ids(rows))
}

func numbered(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = NewRow(map[string]interface{}{"id": i + 1})
	}
	return rows
}

func TestPaginate(t *testing.T) {
	rows := numbered(5)

	p := Paginate(rows, 2, 1, 5)
	assert.Equal(t, []int64{1, 2}, ids(p.Visible))
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, "Showing 1-2 of 5 matching rows (total dataset: 5)", p.Summary)

	p = Paginate(rows, 2, 3, 5)
	assert.Equal(t, []int64{5}, ids(p.Visible))
	assert.Equal(t, "Showing 5-5 of 5 matching rows (total dataset: 5)", p.Summary)

	p = Paginate(rows, 5, 1, 5)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, "Showing 1-5 of 5 matching rows (total dataset: 5)", p.Summary)
}

func TestPaginate_ClampsPage(t *testing.T) {
	rows := numbered(5)

	assert.Equal(t, 3, Paginate(rows, 2, 99, 5).CurrentPage)
	assert.Equal(t, 1, Paginate(rows, 2, -4, 5).CurrentPage)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 10, 1, 7)

	assert.Empty(t, p.Visible)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, "Showing 0-0 of 0 matching rows (total dataset: 7)", p.Summary)
}

func TestPaginate_Coverage(t *testing.T) {
	for n := 0; n <= 12; n++ {
		rows := numbered(n)
		for size := 1; size <= 5; size++ {
			total := TotalPages(n, size)
			var all []Row
			for page := 1; page <= total; page++ {
				all = append(all, Paginate(rows, size, page, n).Visible...)
			}
			assert.Equal(t, ids(rows), ids(all), "n=%d size=%d", n, size)
		}
	}
}

func TestPageNumbers(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, PageNumbers(1, 3, 7))
	assert.Equal(t, []int{3, 4, 5, 6, 7}, PageNumbers(5, 10, 5))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, PageNumbers(1, 10, 5))
	assert.Equal(t, []int{6, 7, 8, 9, 10}, PageNumbers(10, 10, 5))
	assert.Equal(t, []int{1}, PageNumbers(1, 0, 5))
}

func TestCompareValues(t *testing.T) {
	assert.Negative(t, CompareValues(ValueOf(2), ValueOf(10)))
	assert.Positive(t, CompareValues(ValueOf("2"), ValueOf("10")))
	assert.Zero(t, CompareValues(ValueOf(1.0), ValueOf(1)))
	assert.Negative(t, CompareValues(NewNullValue(TypeString), ValueOf("a")))
}

func TestValueOf(t *testing.T) {
	assert.Equal(t, TypeInt, ValueOf(int32(4)).Type)
	assert.Equal(t, int64(4), ValueOf(int32(4)).Raw)
	assert.Equal(t, TypeFloat, ValueOf(float32(1.5)).Type)
	assert.Equal(t, "true", ValueOf(true).Formatted)
	assert.True(t, ValueOf(nil).IsNull)
	assert.Equal(t, "", ValueOf(nil).Formatted)
}

func TestValidateColumns(t *testing.T) {
	require.NoError(t, ValidateColumns(peopleColumns()))
	assert.ErrorIs(t, ValidateColumns([]Column{{Key: "a"}, {Key: "a"}}), ErrDuplicateColumn)
	assert.ErrorIs(t, ValidateColumns([]Column{{Key: ""}}), ErrEmptyColumnKey)
}
