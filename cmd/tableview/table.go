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

package main

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magpierre/tableview/datatable"
	"github.com/magpierre/tableview/internal/config"
	"github.com/magpierre/tableview/internal/filter"
	"github.com/magpierre/tableview/internal/loader"
)

// tableFlags are the loading and view flags shared by the table commands.
type tableFlags struct {
	columns   []string
	limit     int
	query     string
	delimiter string

	filter   string
	sort     string
	page     int
	pageSize int
	scope    string
	where    string
	script   string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.columns, "columns", nil, "columns to load, in order")
	fs.IntVar(&f.limit, "limit", 0, "maximum rows to load")
	fs.StringVar(&f.query, "query", "", "SQL query for SQLite files")
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter (detected when empty)")

	fs.StringVarP(&f.filter, "filter", "f", "", "case-insensitive search across all columns")
	fs.StringVarP(&f.sort, "sort", "s", "", "sort column, optionally suffixed with :desc")
	fs.IntVarP(&f.page, "page", "p", 1, "page to show")
	fs.IntVar(&f.pageSize, "page-size", 0, "rows per page (config default when 0)")
	fs.StringVar(&f.scope, "sort-scope", "", "page or global (config default when empty)")
	fs.StringVar(&f.where, "where", "", `row predicate, e.g. "age > 30 AND city = Oslo"`)
	fs.StringVar(&f.script, "script", "", `Go boolean expression over row, ANDed with --where, e.g. 'row["age"].(int64) > 30'`)
}

func (f *tableFlags) loadOptions() (loader.Options, error) {
	opts := loader.Options{Columns: f.columns, Limit: f.limit, Query: f.query}
	switch {
	case f.delimiter == "":
	case f.delimiter == `\t` || strings.EqualFold(f.delimiter, "tab"):
		opts.Delimiter = '\t'
	case utf8.RuneCountInString(f.delimiter) == 1:
		opts.Delimiter, _ = utf8.DecodeRuneInString(f.delimiter)
	default:
		return opts, fmt.Errorf("delimiter must be a single character, got %q", f.delimiter)
	}
	return opts, nil
}

// apply copies flag overrides into the table section of c.
func (f *tableFlags) apply(c *config.Config) error {
	if f.pageSize > 0 {
		c.Table.PageSize = f.pageSize
	}
	if f.scope != "" {
		c.Table.SortScope = f.scope
	}
	return c.Validate()
}

// parseSort splits "key[:asc|:desc]".
func parseSort(s string) (string, datatable.SortDirection, error) {
	key, dir, found := strings.Cut(s, ":")
	if !found {
		return key, datatable.SortAscending, nil
	}
	switch strings.ToLower(dir) {
	case "asc", "":
		return key, datatable.SortAscending, nil
	case "desc":
		return key, datatable.SortDescending, nil
	default:
		return "", datatable.SortNone, fmt.Errorf("invalid sort direction %q", dir)
	}
}

// openModel loads path and returns a model with the flag state applied.
func (f *tableFlags) openModel(ctx context.Context, path string, c *config.Config, logger *zap.Logger) (*datatable.TableModel, error) {
	if err := f.apply(c); err != nil {
		return nil, err
	}
	opts, err := f.loadOptions()
	if err != nil {
		return nil, err
	}
	src, err := loader.Load(ctx, path, opts, logger)
	if err != nil {
		return nil, err
	}
	model, err := datatable.NewTableModelFromSource(src, c.ModelOptions(logger)...)
	if err != nil {
		return nil, err
	}
	return model, f.configure(model)
}

// configure replays the flag state through the model's handlers.
func (f *tableFlags) configure(model *datatable.TableModel) error {
	var preds []datatable.Filter
	if f.where != "" {
		q, err := filter.ParseQuery(f.where, model.Columns())
		if err != nil {
			return err
		}
		if q != nil {
			preds = append(preds, q)
		}
	}
	if f.script != "" {
		s, err := filter.NewScriptFilter(f.script)
		if err != nil {
			return err
		}
		preds = append(preds, s)
	}
	switch len(preds) {
	case 0:
	case 1:
		model.SetPredicate(preds[0])
	default:
		model.SetPredicate(filter.And(preds...))
	}

	if f.sort != "" {
		key, dir, err := parseSort(f.sort)
		if err != nil {
			return err
		}
		if !model.OnHeaderClick(key) {
			return fmt.Errorf("%w: %q is not a sortable column", datatable.ErrColumnNotFound, key)
		}
		if model.SortState().Direction != dir {
			model.OnHeaderClick(key)
		}
	}
	if f.filter != "" {
		model.OnFilterChange(f.filter)
	}
	if f.page > 1 {
		model.OnPageChange(f.page)
	}
	return nil
}
