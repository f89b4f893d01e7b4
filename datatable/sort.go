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
	"cmp"
	"slices"
	"strings"
)

// SortRows returns a new slice ordered by the value at state.Key. Numeric
// values compare numerically and everything else compares as case-sensitive
// strings. The ascending sort is stable; descending is the reverse of the
// ascending result. An unsorted state, or a key that names none of columns,
// returns the rows in input order.
func SortRows(rows []Row, state SortState, columns []Column) []Row {
	out := slices.Clone(rows)
	if !state.IsSorted() || !hasColumn(columns, state.Key) {
		return out
	}
	sortSlice(out, func(r Row) Value { return r.Get(state.Key) }, state.Direction)
	return out
}

// sortIndices orders positions into rows in place.
func sortIndices(rows []Row, indices []int, state SortState) {
	sortSlice(indices, func(i int) Value { return rows[i].Get(state.Key) }, state.Direction)
}

func sortSlice[T any](items []T, key func(T) Value, dir SortDirection) {
	slices.SortStableFunc(items, func(a, b T) int {
		return CompareValues(key(a), key(b))
	})
	if dir == SortDescending {
		slices.Reverse(items)
	}
}

// CompareValues orders two cell values: numerically when both hold numbers,
// otherwise by their stringified form.
func CompareValues(a, b Value) int {
	if a.Type.IsNumeric() && b.Type.IsNumeric() {
		if ai, ok := a.Raw.(int64); ok {
			if bi, ok := b.Raw.(int64); ok {
				return cmp.Compare(ai, bi)
			}
		}
		af, aok := a.Float64()
		bf, bok := b.Float64()
		if aok && bok {
			return cmp.Compare(af, bf)
		}
	}
	return strings.Compare(a.Formatted, b.Formatted)
}

func hasColumn(columns []Column, key string) bool {
	return slices.ContainsFunc(columns, func(c Column) bool { return c.Key == key })
}

func findColumn(columns []Column, key string) (Column, bool) {
	i := slices.IndexFunc(columns, func(c Column) bool { return c.Key == key })
	if i < 0 {
		return Column{}, false
	}
	return columns[i], true
}
