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

// Package sql turns the result of a database query into a
// datatable.DataSource.
package sql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/magpierre/tableview/adapters/slice"
	"github.com/magpierre/tableview/datatable"
)

// DefaultTimeout bounds a query when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// OpenSQLite opens a SQLite database with the pure Go driver.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Query runs query against db and materialises every result row.
// Column types come from the first non-null value in each column.
func Query(ctx context.Context, db *sql.DB, query string, args ...interface{}) (*slice.Source, error) {
	if db == nil {
		return nil, datatable.ErrNoDataSource
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	types := make([]datatable.DataType, len(names))
	typed := make([]bool, len(names))
	var data [][]datatable.Value

	for rows.Next() {
		raw := make([]interface{}, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		values := make([]datatable.Value, len(names))
		for c, v := range raw {
			val := datatable.ValueOf(v)
			if !val.IsNull && !typed[c] {
				types[c], typed[c] = val.Type, true
			}
			values[c] = val
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	for _, values := range data {
		for c := range values {
			if values[c].IsNull {
				values[c] = datatable.NewNullValue(types[c])
			}
		}
	}

	src, err := slice.New(names, types, data)
	if err != nil {
		return nil, err
	}
	src.SetMetadata(datatable.Metadata{"query": query})
	return src, nil
}
