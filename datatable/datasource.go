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

import "fmt"

// DataSource provides read-only access to tabular data.
// Implementations must be thread-safe for concurrent reads.
// All methods should return errors rather than panic.
type DataSource interface {
	// RowCount returns the total number of rows in the data source.
	RowCount() int

	// ColumnCount returns the total number of columns in the data source.
	ColumnCount() int

	// ColumnName returns the name of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnName(col int) (string, error)

	// ColumnType returns the data type of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnType(col int) (DataType, error)

	// Cell returns the value at the specified row and column.
	// Returns ErrInvalidRow if row is out of range.
	// Returns ErrInvalidColumn if col is out of range.
	Cell(row, col int) (Value, error)

	// Row returns all values for the specified row.
	// Returns ErrInvalidRow if row is out of range.
	Row(row int) ([]Value, error)

	// Metadata returns optional metadata about the data source.
	// Returns an empty Metadata map if no metadata is available.
	Metadata() Metadata
}

// Collect reads every row of ds into keyed rows. Column names become keys
// and labels, and every column is sortable.
func Collect(ds DataSource) ([]Column, []Row, error) {
	if ds == nil {
		return nil, nil, ErrNoDataSource
	}

	columns := make([]Column, ds.ColumnCount())
	for i := range columns {
		name, err := ds.ColumnName(i)
		if err != nil {
			return nil, nil, fmt.Errorf("column %d: %w", i, err)
		}
		dt, err := ds.ColumnType(i)
		if err != nil {
			return nil, nil, fmt.Errorf("column %d: %w", i, err)
		}
		columns[i] = Column{Key: name, Label: name, Sortable: true, Type: dt}
	}

	rows := make([]Row, ds.RowCount())
	for r := range rows {
		values, err := ds.Row(r)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", r, err)
		}
		row := make(Row, len(columns))
		for c, col := range columns {
			if c < len(values) {
				row[col.Key] = values[c]
			}
		}
		rows[r] = row
	}

	return columns, rows, nil
}

// ValidateColumns checks that every column has a non-empty, unique key.
func ValidateColumns(columns []Column) error {
	seen := make(map[string]struct{}, len(columns))
	for i, col := range columns {
		if col.Key == "" {
			return fmt.Errorf("%w at index %d", ErrEmptyColumnKey, i)
		}
		if _, dup := seen[col.Key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Key)
		}
		seen[col.Key] = struct{}{}
	}
	return nil
}
