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

// Package loader opens data files with the matching adapter.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	arrowadapter "github.com/magpierre/tableview/adapters/arrow"
	csvadapter "github.com/magpierre/tableview/adapters/csv"
	"github.com/magpierre/tableview/adapters/slice"
	sqladapter "github.com/magpierre/tableview/adapters/sql"
)

// FileType represents the type of data file.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
	FileTypeSQLite
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeParquet:
		return "Parquet"
	case FileTypeJSON:
		return "JSON"
	case FileTypeSQLite:
		return "SQLite"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFile is returned for files no adapter can read.
var ErrUnsupportedFile = errors.New("unsupported file type")

// DetectFileType determines the type of file from its extension.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FileTypeCSV
	case ".parquet":
		return FileTypeParquet
	case ".json":
		return FileTypeJSON
	case ".db", ".sqlite", ".sqlite3":
		return FileTypeSQLite
	default:
		return FileTypeUnknown
	}
}

// Options narrows what is loaded.
type Options struct {
	// Columns keeps only these columns, in this order. Empty keeps all.
	Columns []string
	// Limit keeps at most this many rows. Zero or less keeps all.
	Limit int
	// Query is the SQL statement run against SQLite files.
	Query string
	// Delimiter overrides CSV separator detection.
	Delimiter rune
}

// Load reads path with the adapter for its file type.
func Load(ctx context.Context, path string, opts Options, logger *zap.Logger) (*slice.Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	ft := DetectFileType(path)
	logger.Debug("loading file", zap.String("path", path), zap.Stringer("type", ft))

	var (
		src *slice.Source
		err error
	)
	switch ft {
	case FileTypeCSV:
		cfg := csvadapter.DefaultConfig()
		cfg.Delimiter = opts.Delimiter
		if cfg.Delimiter == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
			cfg.Delimiter = '\t'
		}
		src, err = csvadapter.NewFromFile(path, cfg)
	case FileTypeParquet:
		src, err = arrowadapter.LoadParquetFile(ctx, path)
	case FileTypeJSON:
		var f *os.File
		if f, err = os.Open(path); err == nil {
			src, err = slice.LoadJSON(f)
			f.Close()
		}
	case FileTypeSQLite:
		src, err = loadSQLite(ctx, path, opts.Query)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s file %s: %w", ft, filepath.Base(path), err)
	}

	if len(opts.Columns) > 0 || opts.Limit > 0 {
		if src, err = src.Project(opts.Columns, opts.Limit); err != nil {
			return nil, err
		}
	}

	logger.Info("loaded file",
		zap.String("path", path),
		zap.Stringer("type", ft),
		zap.Int("rows", src.RowCount()),
		zap.Int("columns", src.ColumnCount()))
	return src, nil
}

func loadSQLite(ctx context.Context, path, query string) (*slice.Source, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("a query is required for SQLite files")
	}
	db, err := sqladapter.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return sqladapter.Query(ctx, db, query)
}
