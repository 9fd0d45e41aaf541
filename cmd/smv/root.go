// Copyright 2025 walteh LLC
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
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// globalOpts are the options smv handles itself, before the command grammar
// sees the arguments. They use long forms (plus -c) so they cannot collide
// with the grammar's single-letter flags.
type globalOpts struct {
	configFile string
	debug      bool
	version    bool
	help       bool
}

// NewRootCmd builds the root command. Flag parsing is disabled: everything
// after the binary name belongs to the command grammar, which is strictly
// positional and owns its own single-letter flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smv <command> [path] [filter]... [route]... [flag]...",
		Short: "batch file renaming and organizing",
		Long: `smv renames, reorganizes, and cleans up files in bulk, driven by a
single declarative command line:

  smv snake ./notes EXT:md -r          rename notes to snake_case, recursively
  smv clean ./downloads FOR:media -p   preview cleaning media file names
  smv move ./inbox archive SIZE>10MB   move big files into archive/
  smv remove ./tmp MODIFIED<2024-01-01 remove stale files (undoable)
  smv undo                             reverse the last batch

Global options: --config/-c <file>, --debug, --version.`,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, opts, err := extractGlobalOpts(args)
			if err != nil {
				return err
			}

			if opts.version {
				fmt.Fprintln(cmd.OutOrStdout(), GetVersionInfo().String())
				return nil
			}
			if opts.help || len(args) == 0 {
				return cmd.Help()
			}

			ctx := setupLogging(opts.debug)
			return run(ctx, args, opts.configFile)
		},
	}
	return cmd
}

// extractGlobalOpts strips smv's own options out of the argument list,
// leaving only grammar tokens.
func extractGlobalOpts(args []string) ([]string, globalOpts, error) {
	var opts globalOpts
	rest := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config" || arg == "-c":
			if i+1 >= len(args) {
				return nil, opts, errors.Errorf("%s requires a file path", arg)
			}
			i++
			opts.configFile = args[i]
		case strings.HasPrefix(arg, "--config="):
			opts.configFile = strings.TrimPrefix(arg, "--config=")
		case arg == "--debug":
			opts.debug = true
		case arg == "--version":
			opts.version = true
		case arg == "--help" || arg == "-h":
			opts.help = true
		default:
			rest = append(rest, arg)
		}
	}

	return rest, opts, nil
}

// setupLogging configures zerolog and returns the root context.
func setupLogging(debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(context.Background())
}
