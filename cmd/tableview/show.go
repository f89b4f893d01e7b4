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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magpierre/tableview/tui"
)

func newShowCmd() *cobra.Command {
	var (
		flags    tableFlags
		allPages bool
	)
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print one page of a table",
		Example: `  tableview show people.csv --sort age:desc --filter ann
  tableview show data.parquet --page 3 --page-size 25
  tableview show app.db --query "select * from users" --where "age > 30"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := flags.openModel(cmd.Context(), args[0], cfg, logger)
			if err != nil {
				return err
			}
			opts := tui.RenderOptions{MaxCellWidth: cfg.Table.MaxCellWidth, Styles: tui.DefaultStyles()}

			out := cmd.OutOrStdout()
			if !allPages {
				fmt.Fprintln(out, tui.Render(model.View(), opts))
				return nil
			}
			for page := 1; page <= model.TotalPages(); page++ {
				model.OnPageChange(page)
				fmt.Fprintln(out, tui.Render(model.View(), opts))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&allPages, "all-pages", false, "print every page in turn")
	return cmd
}
