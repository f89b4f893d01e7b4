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

// Package csv loads delimited text into a datatable.DataSource.
package csv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/magpierre/tableview/adapters/slice"
	"github.com/magpierre/tableview/datatable"
)

// Config controls CSV parsing.
type Config struct {
	// Delimiter separates fields. Zero means auto-detect from the first line.
	Delimiter rune
	// HasHeaders treats the first record as column names.
	HasHeaders bool
	// TrimSpace trims leading and trailing white space from every field.
	TrimSpace bool
	// InferTypes converts columns whose values all parse as int, float or
	// bool. Empty fields are null.
	InferTypes bool
}

// DefaultConfig returns a Config with headers, trimming and type inference.
func DefaultConfig() Config {
	return Config{
		HasHeaders: true,
		TrimSpace:  true,
		InferTypes: true,
	}
}

// NewFromFile opens path and parses it with config.
func NewFromFile(path string, config Config) (*slice.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return NewFromReader(f, config)
}

// NewFromReader parses delimited records from r.
func NewFromReader(r io.Reader, config Config) (*slice.Source, error) {
	br := bufio.NewReader(r)
	if config.Delimiter == 0 {
		first, err := br.Peek(4096)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _, _ := strings.Cut(string(first), "\n")
		config.Delimiter = DetectSeparator(line)
	}

	reader := csv.NewReader(br)
	reader.Comma = config.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	// A white space delimiter would be swallowed as leading space.
	reader.TrimLeadingSpace = config.TrimSpace && !unicode.IsSpace(config.Delimiter)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	var names []string
	if config.HasHeaders && len(records) > 0 {
		names = records[0]
		records = records[1:]
	}
	width := len(names)
	for _, rec := range records {
		width = max(width, len(rec))
	}
	names = columnNames(names, width, config.TrimSpace)

	cells := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, width)
		for c := range row {
			if c < len(rec) {
				row[c] = rec[c]
				if config.TrimSpace {
					row[c] = strings.TrimSpace(row[c])
				}
			}
		}
		cells[i] = row
	}

	types := make([]datatable.DataType, width)
	for c := range types {
		types[c] = datatable.TypeString
		if config.InferTypes {
			types[c] = inferType(cells, c)
		}
	}

	rows := make([][]datatable.Value, len(cells))
	for i, rec := range cells {
		values := make([]datatable.Value, width)
		for c, field := range rec {
			values[c] = convert(field, types[c], config.InferTypes)
		}
		rows[i] = values
	}

	src, err := slice.New(names, types, rows)
	if err != nil {
		return nil, err
	}
	src.SetMetadata(datatable.Metadata{"delimiter": string(config.Delimiter)})
	return src, nil
}

// DetectSeparator picks the most frequent of comma, semicolon, tab and pipe
// in line, defaulting to comma.
func DetectSeparator(line string) rune {
	best, bestCount := ',', 0
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(sep)); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

// SeparatorName returns a human-readable name for the separator.
func SeparatorName(sep rune) string {
	switch sep {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(sep)
	}
}

// columnNames fills in missing or duplicate header names.
func columnNames(header []string, width int, trim bool) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := range names {
		name := ""
		if i < len(header) {
			name = header[i]
			if trim {
				name = strings.TrimSpace(name)
			}
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name]++
		names[i] = name
	}
	return names
}

func inferType(cells [][]string, col int) datatable.DataType {
	isInt, isFloat, isBool, any := true, true, true, false
	for _, row := range cells {
		field := row[col]
		if field == "" {
			continue
		}
		any = true
		if _, err := strconv.ParseInt(field, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(field, 64); err != nil {
			isFloat = false
		}
		if _, err := strconv.ParseBool(field); err != nil {
			isBool = false
		}
	}
	switch {
	case !any:
		return datatable.TypeString
	case isInt:
		return datatable.TypeInt
	case isFloat:
		return datatable.TypeFloat
	case isBool:
		return datatable.TypeBool
	default:
		return datatable.TypeString
	}
}

func convert(field string, dt datatable.DataType, nullEmpty bool) datatable.Value {
	if field == "" && nullEmpty {
		return datatable.NewNullValue(dt)
	}
	switch dt {
	case datatable.TypeInt:
		n, _ := strconv.ParseInt(field, 10, 64)
		return datatable.NewValue(n, dt)
	case datatable.TypeFloat:
		f, _ := strconv.ParseFloat(field, 64)
		return datatable.NewValue(f, dt)
	case datatable.TypeBool:
		b, _ := strconv.ParseBool(field)
		return datatable.NewValue(b, dt)
	default:
		return datatable.NewValue(field, datatable.TypeString)
	}
}
