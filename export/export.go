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

// Package export writes table rows to CSV, JSON and Parquet.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	json "github.com/goccy/go-json"

	"github.com/magpierre/tableview/datatable"
)

// Format represents the supported export formats.
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string { return "." + f.String() }

// ParseFormat parses a format name such as "csv", "json" or "parquet".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return 0, fmt.Errorf("%w: unknown format %q", datatable.ErrExportFailed, s)
	}
}

// FormatForPath picks a format from the extension of path.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ToFile writes rows to path in the given format.
func ToFile(path string, format Format, columns []datatable.Column, rows []datatable.Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", format, err)
	}
	defer func() {
		// The Parquet writer closes the file itself.
		if cerr := f.Close(); err == nil && cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			err = cerr
		}
	}()
	return Write(f, format, columns, rows)
}

// Write writes rows to w in the given format.
func Write(w io.Writer, format Format, columns []datatable.Column, rows []datatable.Row) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, columns, rows)
	case FormatJSON:
		return WriteJSON(w, columns, rows)
	case FormatParquet:
		return WriteParquet(w, columns, rows)
	default:
		return fmt.Errorf("%w: unsupported format %s", datatable.ErrExportFailed, format)
	}
}

// WriteCSV writes a header of column labels followed by formatted cells.
func WriteCSV(w io.Writer, columns []datatable.Column, rows []datatable.Row) error {
	writer := csv.NewWriter(w)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Label
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row.Get(col.Key).Formatted
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes an indented array of objects keyed by column key.
// Scalars keep their types and nulls become null.
func WriteJSON(w io.Writer, columns []datatable.Column, rows []datatable.Row) error {
	records := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			record[col.Key] = jsonValue(row.Get(col.Key))
		}
		records = append(records, record)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func jsonValue(v datatable.Value) interface{} {
	if v.IsNull {
		return nil
	}
	switch v.Type {
	case datatable.TypeInt, datatable.TypeFloat, datatable.TypeBool, datatable.TypeTimestamp:
		return v.Raw
	default:
		return v.Formatted
	}
}

// WriteParquet writes rows as a single Snappy-compressed Parquet row group.
func WriteParquet(w io.Writer, columns []datatable.Column, rows []datatable.Row) error {
	mem := memory.NewGoAllocator()
	schema := Schema(columns)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for _, row := range rows {
		for i, col := range columns {
			if err := appendValue(b.Field(i), row.Get(col.Key)); err != nil {
				return fmt.Errorf("%w: column %s: %v", datatable.ErrExportFailed, col.Key, err)
			}
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer table.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	return writer.Close()
}

// Schema maps columns to a nullable Arrow schema.
func Schema(columns []datatable.Column) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		fields[i] = arrow.Field{Name: col.Key, Type: arrowType(col.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(dt datatable.DataType) arrow.DataType {
	switch dt {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat, datatable.TypeDecimal:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case datatable.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case datatable.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case datatable.TypeBinary:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

func appendValue(b array.Builder, v datatable.Value) error {
	if v.IsNull {
		b.AppendNull()
		return nil
	}
	switch bb := b.(type) {
	case *array.Int64Builder:
		switch raw := v.Raw.(type) {
		case int64:
			bb.Append(raw)
		case uint64:
			bb.Append(int64(raw))
		default:
			f, ok := v.Float64()
			if !ok {
				return fmt.Errorf("%w: %T is not an integer", datatable.ErrTypeMismatch, v.Raw)
			}
			bb.Append(int64(f))
		}
	case *array.Float64Builder:
		f, ok := v.Float64()
		if !ok {
			return fmt.Errorf("%w: %T is not a number", datatable.ErrTypeMismatch, v.Raw)
		}
		bb.Append(f)
	case *array.BooleanBuilder:
		raw, ok := v.Raw.(bool)
		if !ok {
			return fmt.Errorf("%w: %T is not a bool", datatable.ErrTypeMismatch, v.Raw)
		}
		bb.Append(raw)
	case *array.Date32Builder:
		t, ok := v.Raw.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %T is not a date", datatable.ErrTypeMismatch, v.Raw)
		}
		bb.Append(arrow.Date32FromTime(t))
	case *array.TimestampBuilder:
		t, ok := v.Raw.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %T is not a timestamp", datatable.ErrTypeMismatch, v.Raw)
		}
		ts, err := arrow.TimestampFromTime(t, arrow.Microsecond)
		if err != nil {
			return err
		}
		bb.Append(ts)
	case *array.BinaryBuilder:
		if raw, ok := v.Raw.([]byte); ok {
			bb.Append(raw)
		} else {
			bb.Append([]byte(v.Formatted))
		}
	case *array.StringBuilder:
		bb.Append(v.Formatted)
	default:
		return fmt.Errorf("%w: unsupported builder %T", datatable.ErrExportFailed, b)
	}
	return nil
}
