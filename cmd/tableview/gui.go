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
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/magpierre/tableview/internal/gui"
)

const appID = "io.github.magpierre.tableview"

func newGUICmd() *cobra.Command {
	var (
		flags tableFlags
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "gui [file...]",
		Short: "Open files in the desktop viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cfg); err != nil {
				return err
			}
			opts, err := flags.loadOptions()
			if err != nil {
				return err
			}

			mw := gui.NewMainWindow(app.NewWithID(appID), cfg, logger)
			mw.SetLoadOptions(opts)
			mw.SetWatch(watch)
			for _, path := range args {
				mw.OpenFileAsync(path)
			}
			mw.ShowAndRun()
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringSliceVar(&flags.columns, "columns", nil, "columns to load, in order")
	fs.IntVar(&flags.limit, "limit", 0, "maximum rows to load")
	fs.StringVar(&flags.query, "query", "", "SQL query for SQLite files")
	fs.StringVar(&flags.delimiter, "delimiter", "", "CSV delimiter (detected when empty)")
	fs.IntVar(&flags.pageSize, "page-size", 0, "rows per page (config default when 0)")
	fs.StringVar(&flags.scope, "sort-scope", "", "page or global (config default when empty)")
	fs.BoolVarP(&watch, "watch", "w", false, "reload files when they change")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(cfgFile)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Save(cfgFile); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", cfgFile)
			return nil
		},
	})
	return cmd
}
