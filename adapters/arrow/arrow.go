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

// Package arrow adapts Apache Arrow tables and Parquet files to
// datatable.DataSource.
package arrow

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/tableview/adapters/slice"
	"github.com/magpierre/tableview/datatable"
)

// NewFromArrowTable copies every cell of table into an in-memory source.
// The table can be released once this returns.
func NewFromArrowTable(table arrow.Table) (*slice.Source, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}

	schema := table.Schema()
	names := make([]string, schema.NumFields())
	types := make([]datatable.DataType, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
		types[i] = MapType(field.Type)
	}

	rows := make([][]datatable.Value, 0, table.NumRows())
	tr := array.NewTableReader(table, 1024)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		for r := 0; r < int(rec.NumRows()); r++ {
			values := make([]datatable.Value, len(names))
			for c, col := range rec.Columns() {
				values[c] = CellValue(col, r)
			}
			rows = append(rows, values)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}

	src, err := slice.New(names, types, rows)
	if err != nil {
		return nil, err
	}
	md := datatable.Metadata{}
	if m := schema.Metadata(); m.Len() > 0 {
		for i, k := range m.Keys() {
			md[k] = m.Values()[i]
		}
	}
	src.SetMetadata(md)
	return src, nil
}

// LoadParquetFile reads a Parquet file into a source.
func LoadParquetFile(ctx context.Context, path string) (*slice.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()
	return LoadParquet(ctx, f)
}

// LoadParquet reads Parquet data from r into a source.
func LoadParquet(ctx context.Context, r parquet.ReaderAtSeeker) (*slice.Source, error) {
	pf, err := file.NewParquetReader(r, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	return NewFromArrowTable(table)
}

// MapType maps an Arrow type to the closest datatable type.
func MapType(dt arrow.DataType) datatable.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return datatable.TypeDecimal
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.DATE32, arrow.DATE64:
		return datatable.TypeDate
	case arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return datatable.TypeBinary
	case arrow.STRUCT:
		return datatable.TypeStruct
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return datatable.TypeList
	default:
		return datatable.TypeString
	}
}

// CellValue extracts the value at pos in col.
func CellValue(col arrow.Array, pos int) datatable.Value {
	dt := MapType(col.DataType())
	if col.IsNull(pos) {
		return datatable.NewNullValue(dt)
	}

	switch a := col.(type) {
	case *array.String:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.LargeString:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Binary:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Boolean:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Int8:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Int16:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Int32:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Int64:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Uint8:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Uint16:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Uint32:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Uint64:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Float16:
		return datatable.NewValue(float64(a.Value(pos).Float32()), dt)
	case *array.Float32:
		return datatable.NewValue(float64(a.Value(pos)), dt)
	case *array.Float64:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		v := datatable.NewValue(a.Value(pos).ToFloat64(scale), dt)
		v.Formatted = a.Value(pos).ToString(scale)
		return v
	case *array.Date32:
		return datatable.NewValue(a.Value(pos).ToTime(), dt)
	case *array.Date64:
		return datatable.NewValue(a.Value(pos).ToTime(), dt)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return datatable.NewValue(a.Value(pos).ToTime(unit), dt)
	default:
		return datatable.NewValue(col.ValueStr(pos), dt)
	}
}
