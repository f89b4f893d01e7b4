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

// Package slice provides an in-memory datatable.DataSource.
package slice

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/magpierre/tableview/datatable"
)

// Source is an immutable in-memory data source.
type Source struct {
	names    []string
	types    []datatable.DataType
	rows     [][]datatable.Value
	metadata datatable.Metadata
}

var _ datatable.DataSource = (*Source)(nil)

// New creates a source from column names, types and row values. Every row
// must have one value per column.
func New(names []string, types []datatable.DataType, rows [][]datatable.Value) (*Source, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("%w: %d names but %d types", datatable.ErrInvalidColumn, len(names), len(types))
	}
	for i, r := range rows {
		if len(r) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", datatable.ErrInvalidRow, i, len(r), len(names))
		}
	}
	return &Source{names: names, types: types, rows: rows, metadata: datatable.Metadata{}}, nil
}

// NewFromMaps creates a source from records keyed by column name. Columns
// follow columnOrder when given, otherwise the sorted union of record keys.
// Column types come from the first non-null value in each column.
func NewFromMaps(data []map[string]interface{}, columnOrder ...string) (*Source, error) {
	names := columnOrder
	if len(names) == 0 {
		seen := make(map[string]struct{})
		for _, rec := range data {
			for k := range rec {
				if _, ok := seen[k]; !ok {
					seen[k] = struct{}{}
					names = append(names, k)
				}
			}
		}
		sort.Strings(names)
	}

	types := make([]datatable.DataType, len(names))
	typed := make([]bool, len(names))
	rows := make([][]datatable.Value, len(data))
	for r, rec := range data {
		values := make([]datatable.Value, len(names))
		for c, name := range names {
			v := datatable.ValueOf(normalize(rec[name]))
			if !v.IsNull && !typed[c] {
				types[c], typed[c] = v.Type, true
			}
			values[c] = v
		}
		rows[r] = values
	}

	// Null cells take the column type once it is known.
	for _, values := range rows {
		for c := range values {
			if values[c].IsNull {
				values[c] = datatable.NewNullValue(types[c])
			}
		}
	}

	return New(names, types, rows)
}

// LoadJSON decodes an array of objects, or a single object, into a source.
func LoadJSON(r io.Reader) (*Source, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	var data []map[string]interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		var single map[string]interface{}
		if err := json.Unmarshal(content, &single); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		data = []map[string]interface{}{single}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: JSON has no records", datatable.ErrInvalidRow)
	}
	return NewFromMaps(data)
}

// normalize maps decoded JSON numbers to int64 when they are integral.
func normalize(v interface{}) interface{} {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	if f >= -(1<<53) && f <= 1<<53 && f == math.Trunc(f) {
		return int64(f)
	}
	return f
}

// Project returns a source restricted to the named columns, in that order,
// and at most limit rows. Empty columns keeps every column and a limit below
// 1 keeps every row.
func (s *Source) Project(columns []string, limit int) (*Source, error) {
	idx := make([]int, 0, len(columns))
	for _, name := range columns {
		i := slices.Index(s.names, name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
		}
		idx = append(idx, i)
	}
	if len(columns) == 0 {
		for i := range s.names {
			idx = append(idx, i)
		}
	}

	n := len(s.rows)
	if limit > 0 && limit < n {
		n = limit
	}

	out := &Source{
		names:    make([]string, len(idx)),
		types:    make([]datatable.DataType, len(idx)),
		rows:     make([][]datatable.Value, n),
		metadata: s.metadata,
	}
	for j, i := range idx {
		out.names[j] = s.names[i]
		out.types[j] = s.types[i]
	}
	for r := range out.rows {
		values := make([]datatable.Value, len(idx))
		for j, i := range idx {
			values[j] = s.rows[r][i]
		}
		out.rows[r] = values
	}
	return out, nil
}

// SetMetadata attaches metadata returned by Metadata.
func (s *Source) SetMetadata(md datatable.Metadata) { s.metadata = md }

// RowCount implements datatable.DataSource.
func (s *Source) RowCount() int { return len(s.rows) }

// ColumnCount implements datatable.DataSource.
func (s *Source) ColumnCount() int { return len(s.names) }

// ColumnName implements datatable.DataSource.
func (s *Source) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", datatable.ErrInvalidColumn
	}
	return s.names[col], nil
}

// ColumnType implements datatable.DataSource.
func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return datatable.TypeString, datatable.ErrInvalidColumn
	}
	return s.types[col], nil
}

// Cell implements datatable.DataSource.
func (s *Source) Cell(row, col int) (datatable.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return datatable.Value{}, datatable.ErrInvalidRow
	}
	if col < 0 || col >= len(s.names) {
		return datatable.Value{}, datatable.ErrInvalidColumn
	}
	return s.rows[row][col], nil
}

// Row implements datatable.DataSource.
func (s *Source) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, datatable.ErrInvalidRow
	}
	return slices.Clone(s.rows[row]), nil
}

// Metadata implements datatable.DataSource.
func (s *Source) Metadata() datatable.Metadata { return s.metadata }
