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

// Package datatable provides a rendering-agnostic view controller for tabular
// data: filtering, sorting and pagination over rows supplied by a host.
package datatable

import (
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// DataType represents the type of data in a column.
type DataType int

const (
	// TypeString represents string data.
	TypeString DataType = iota
	// TypeInt represents integer data (any size).
	TypeInt
	// TypeFloat represents floating-point data (any precision).
	TypeFloat
	// TypeBool represents boolean data.
	TypeBool
	// TypeDate represents date data (without time).
	TypeDate
	// TypeTimestamp represents timestamp data (date + time).
	TypeTimestamp
	// TypeBinary represents binary/blob data.
	TypeBinary
	// TypeDecimal represents decimal/numeric data (fixed precision).
	TypeDecimal
	// TypeStruct represents structured data (nested fields).
	TypeStruct
	// TypeList represents list/array data.
	TypeList
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeDate:
		return "Date"
	case TypeTimestamp:
		return "Timestamp"
	case TypeBinary:
		return "Binary"
	case TypeDecimal:
		return "Decimal"
	case TypeStruct:
		return "Struct"
	case TypeList:
		return "List"
	default:
		return fmt.Sprintf("Unknown(%d)", dt)
	}
}

// IsNumeric reports whether values of this type compare numerically.
func (dt DataType) IsNumeric() bool {
	return dt == TypeInt || dt == TypeFloat || dt == TypeDecimal
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value.
	// The type depends on the DataType field.
	Raw interface{}

	// Type indicates the data type of this value.
	Type DataType

	// IsNull indicates whether this value is null/nil.
	IsNull bool

	// Formatted is the stringified value. Filtering matches against it,
	// non-numeric sorting compares it and highlight spans index into it.
	Formatted string
}

// NewValue creates a new Value from a raw value and type.
func NewValue(raw interface{}, dataType DataType) Value {
	if raw == nil {
		return NewNullValue(dataType)
	}

	return Value{
		Raw:       raw,
		Type:      dataType,
		IsNull:    false,
		Formatted: formatValue(raw, dataType),
	}
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(dataType DataType) Value {
	return Value{
		Raw:       nil,
		Type:      dataType,
		IsNull:    true,
		Formatted: "",
	}
}

// ValueOf creates a Value from a Go value, inferring its DataType.
// Integers are widened to int64 and floats to float64.
func ValueOf(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return NewNullValue(TypeString)
	case Value:
		return v
	case string:
		return NewValue(v, TypeString)
	case bool:
		return NewValue(v, TypeBool)
	case int:
		return NewValue(int64(v), TypeInt)
	case int8:
		return NewValue(int64(v), TypeInt)
	case int16:
		return NewValue(int64(v), TypeInt)
	case int32:
		return NewValue(int64(v), TypeInt)
	case int64:
		return NewValue(v, TypeInt)
	case uint:
		return NewValue(uint64(v), TypeInt)
	case uint8:
		return NewValue(int64(v), TypeInt)
	case uint16:
		return NewValue(int64(v), TypeInt)
	case uint32:
		return NewValue(int64(v), TypeInt)
	case uint64:
		return NewValue(v, TypeInt)
	case float32:
		return NewValue(float64(v), TypeFloat)
	case float64:
		return NewValue(v, TypeFloat)
	case time.Time:
		return NewValue(v, TypeTimestamp)
	case []byte:
		return NewValue(v, TypeBinary)
	case []interface{}:
		return NewValue(v, TypeList)
	case map[string]interface{}:
		return NewValue(v, TypeStruct)
	default:
		return NewValue(v, TypeString)
	}
}

// Float64 returns the numeric value of v. The second result is false when v
// is null or does not hold a number.
func (v Value) Float64() (float64, bool) {
	if v.IsNull {
		return 0, false
	}
	switch n := v.Raw.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	default:
		return 0, false
	}
}

// formatValue converts a raw value to a formatted string.
func formatValue(raw interface{}, dataType DataType) string {
	if raw == nil {
		return ""
	}

	switch v := raw.(type) {
	case string:
		return v
	case time.Time:
		if dataType == TypeDate {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339Nano)
	case []byte:
		if dataType == TypeBinary {
			return hex.EncodeToString(v)
		}
		return string(v)
	}

	return fmt.Sprintf("%v", raw)
}

// Metadata holds optional metadata about a data source.
type Metadata map[string]interface{}

// Row is one record of the dataset, keyed by column key.
// A key missing from the map is an absent cell and behaves like a null value.
type Row map[string]Value

// Get returns the value stored under key, or a null string value when absent.
func (r Row) Get(key string) Value {
	if v, ok := r[key]; ok {
		return v
	}
	return NewNullValue(TypeString)
}

// NewRow builds a Row from plain Go values using ValueOf.
func NewRow(values map[string]interface{}) Row {
	row := make(Row, len(values))
	for k, v := range values {
		row[k] = ValueOf(v)
	}
	return row
}

// Column describes a displayable field. Label is display-only.
type Column struct {
	// Key identifies the field in each Row. Keys are unique within a table.
	Key string
	// Label is the header text.
	Label string
	// Sortable allows header clicks to sort by this column.
	Sortable bool
	// Type is the declared column type, informational for renderers and exporters.
	Type DataType
}

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "None"
	case SortAscending:
		return "Ascending"
	case SortDescending:
		return "Descending"
	default:
		return fmt.Sprintf("Unknown(%d)", sd)
	}
}

// Toggle returns the opposite direction. SortNone toggles to SortAscending.
func (sd SortDirection) Toggle() SortDirection {
	if sd == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// Arrow returns the header indicator for the direction, or "" for SortNone.
func (sd SortDirection) Arrow() string {
	switch sd {
	case SortAscending:
		return "↑"
	case SortDescending:
		return "↓"
	default:
		return ""
	}
}

// SortState represents the current sorting configuration.
type SortState struct {
	// Key is the column key being sorted ("" if unsorted).
	Key string
	// Direction is the sort direction.
	Direction SortDirection
}

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	return s.Key != "" && s.Direction != SortNone
}

// SortScope selects which rows a header-click sort reorders.
type SortScope int

const (
	// SortScopePage sorts only the rows on the active page. The row set of
	// each page is fixed by the anchor order established at construction.
	SortScopePage SortScope = iota
	// SortScopeGlobal sorts all matching rows before paginating.
	SortScopeGlobal
)

// String returns the string representation of a SortScope.
func (s SortScope) String() string {
	switch s {
	case SortScopePage:
		return "page"
	case SortScopeGlobal:
		return "global"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// ParseSortScope parses "page" or "global".
func ParseSortScope(s string) (SortScope, error) {
	switch s {
	case "", "page":
		return SortScopePage, nil
	case "global":
		return SortScopeGlobal, nil
	default:
		return SortScopePage, fmt.Errorf("%w: %q", ErrInvalidSortScope, s)
	}
}

// FilterState is the active substring query. Empty means no filtering.
type FilterState struct {
	Query string
}

// PaginationState holds the page window. CurrentPage is 1-indexed.
type PaginationState struct {
	PageSize    int
	CurrentPage int
}

// Span is a half-open byte range [Start, End) into Value.Formatted.
type Span struct {
	Start int
	End   int
}

// Filter is a row predicate evaluated during the filter stage.
type Filter interface {
	// Evaluate reports whether row passes the filter.
	Evaluate(row Row) (bool, error)

	// Description returns a human readable form of the filter.
	Description() string
}
