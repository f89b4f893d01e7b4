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

// Command tableview browses tabular files with sorting, filtering and
// pagination in the terminal or on the desktop.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magpierre/tableview/internal/config"
	"github.com/magpierre/tableview/internal/logging"
)

var (
	cfgFile string
	verbose bool

	cfg       *config.Config
	logger    *zap.Logger
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tableview",
		Short: "Sort, filter and page through tabular data",
		Long: `tableview loads CSV, TSV, JSON, Parquet and SQLite data and shows it as a
table that can be sorted by column, filtered by a search string and paged.

Sorting applies to the rows of the current page. Pages are cut from the
filtered rows in their default order.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(cfgFile); err != nil {
				return err
			}
			logger, logCloser, err = logging.New(cfg.Logging, verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newShowCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newTUICmd())
	root.AddCommand(newGUICmd())
	root.AddCommand(newConfigCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
