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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magpierre/tableview/export"
)

func newExportCmd() *cobra.Command {
	var (
		flags    tableFlags
		out      string
		format   string
		pageOnly bool
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the filtered and sorted rows as CSV, JSON or Parquet",
		Long: `Export writes every matching row in display order: pages in order, each
sorted the way it is shown. With --page-only only the selected page is written.
Without --out the result is written to standard output.`,
		Example: `  tableview export people.csv --filter oslo --out oslo.parquet
  tableview export people.csv --sort name --page 2 --page-only --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := flags.openModel(cmd.Context(), args[0], cfg, logger)
			if err != nil {
				return err
			}

			f := export.FormatCSV
			switch {
			case format != "":
				if f, err = export.ParseFormat(format); err != nil {
					return err
				}
			case out != "":
				if f, err = export.FormatForPath(out); err != nil {
					return err
				}
			}

			rows := model.DerivedRows()
			if pageOnly {
				rows = model.VisibleRows()
			}

			if out == "" {
				return export.Write(cmd.OutOrStdout(), f, model.Columns(), rows)
			}
			if err := export.ToFile(out, f, model.Columns(), rows); err != nil {
				return err
			}
			logger.Info("exported rows",
				zap.String("path", out),
				zap.Stringer("format", f),
				zap.Int("rows", len(rows)))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.Flags().StringVar(&format, "format", "", "csv, json or parquet (from --out extension when empty)")
	cmd.Flags().BoolVar(&pageOnly, "page-only", false, "export only the selected page")
	return cmd
}
