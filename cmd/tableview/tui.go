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
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magpierre/tableview/datatable"
	"github.com/magpierre/tableview/internal/loader"
	"github.com/magpierre/tableview/tui"
)

func newTUICmd() *cobra.Command {
	var (
		flags tableFlags
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "tui <file>",
		Short: "Browse a table interactively in the terminal",
		Long: `Keys: / filter, esc clear filter, 1-9 sort by column, arrows or h/l change
page, home/end first/last page, +/- page size, ? help, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			// Console output would draw over the table.
			log := logger
			if cfg.Logging.File == "" {
				log = zap.NewNop()
			}

			model, err := flags.openModel(cmd.Context(), path, cfg, log)
			if err != nil {
				return err
			}
			opts := tui.RenderOptions{
				MaxCellWidth:  cfg.Table.MaxCellWidth,
				NumberHeaders: true,
				Styles:        tui.DefaultStyles(),
			}
			p := tea.NewProgram(tui.New(model, filepath.Base(path), opts), tea.WithAltScreen())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if watch {
				lopts, _ := flags.loadOptions()
				go func() {
					err := loader.Watch(ctx, path, loader.DefaultDebounce, log, func() {
						p.Send(reload(ctx, path, lopts, log))
					})
					if err != nil {
						p.Send(tui.ErrMsg{Err: err})
					}
				}()
			}

			_, err = p.Run()
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the file when it changes")
	return cmd
}

func reload(ctx context.Context, path string, opts loader.Options, log *zap.Logger) tea.Msg {
	src, err := loader.Load(ctx, path, opts, log)
	if err != nil {
		return tui.ErrMsg{Err: err}
	}
	_, rows, err := datatable.Collect(src)
	if err != nil {
		return tui.ErrMsg{Err: err}
	}
	return tui.ReloadMsg{Rows: rows}
}
