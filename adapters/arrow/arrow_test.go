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

package arrow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/tableview/datatable"
)

func buildTable(t *testing.T) arrow.Table {
	t.Helper()
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{2, 1, 3}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"Bob", "", "Cid"}, []bool{true, false, true})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{1.5, 2.25, 3}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false, true}, nil)

	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

func TestNewFromArrowTable(t *testing.T) {
	table := buildTable(t)
	defer table.Release()

	src, err := NewFromArrowTable(table)
	require.NoError(t, err)

	cols, rows, err := datatable.Collect(src)
	require.NoError(t, err)
	require.Len(t, cols, 4)
	require.Len(t, rows, 3)

	assert.Equal(t, datatable.TypeInt, cols[0].Type)
	assert.Equal(t, datatable.TypeFloat, cols[2].Type)
	assert.Equal(t, datatable.TypeBool, cols[3].Type)

	assert.Equal(t, int64(2), rows[0].Get("id").Raw)
	assert.True(t, rows[1].Get("name").IsNull)
	assert.Equal(t, "", rows[1].Get("name").Formatted)
	assert.Equal(t, 2.25, rows[1].Get("score").Raw)
	assert.Equal(t, "true", rows[2].Get("active").Formatted)
}

func TestNewFromArrowTable_Nil(t *testing.T) {
	_, err := NewFromArrowTable(nil)
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)
}

func TestLoadParquetFile(t *testing.T) {
	table := buildTable(t)
	defer table.Release()

	path := filepath.Join(t.TempDir(), "data.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := pqarrow.NewFileWriter(table.Schema(), f, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table, table.NumRows()))
	require.NoError(t, w.Close())

	src, err := LoadParquetFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, src.RowCount())
	assert.Equal(t, 4, src.ColumnCount())

	cell, err := src.Cell(2, 1)
	require.NoError(t, err)
	assert.Equal(t, "Cid", cell.Formatted)

	_, err = LoadParquetFile(context.Background(), filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}

func TestMapType(t *testing.T) {
	assert.Equal(t, datatable.TypeTimestamp, MapType(&arrow.TimestampType{Unit: arrow.Millisecond}))
	assert.Equal(t, datatable.TypeDate, MapType(arrow.FixedWidthTypes.Date32))
	assert.Equal(t, datatable.TypeList, MapType(arrow.ListOf(arrow.PrimitiveTypes.Int64)))
	assert.Equal(t, datatable.TypeString, MapType(arrow.BinaryTypes.String))
}
