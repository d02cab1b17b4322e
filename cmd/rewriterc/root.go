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
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"gitlab.com/tozd/go/errors"
)

const logFileName = "rewriterc/rewriterc.log"

// newRootCmd builds the command tree around shared options
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewriterc",
		Short: "Apply ordered rewrite rules across a source tree",
		Long: `rewriterc applies an ordered set of scoped find/replace rules to every
source file under the configured roots, writing changed files atomically
and reporting per-file outcomes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupColor(o)

			logger, closer, err := setupLogging(o)
			if err != nil {
				return err
			}
			if closer != nil {
				o.OnClose(closer)
			}
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	cmd.SetOut(o.Stdout)
	cmd.SetErr(o.Stderr)

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewApplyCmd(o),
		commands.NewStatusCmd(o),
		commands.NewCheckCmd(o),
		newVersionCmd(o),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigPath, "config", "c", "", "config file path (default: discover .rewriterc.* in the working directory)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&o.NoColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&o.LogFile, "log-file", "", "log file path (default: $XDG_STATE_HOME/"+logFileName+")")
}

// setupLogging configures zerolog based on flags. Records go to stderr and
// to the log file.
func setupLogging(o *opts.RootOpts) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}

	path := o.LogFile
	if path == "" {
		var err error
		path, err = xdg.StateFile(logFileName)
		if err != nil {
			return zerolog.Logger{}, nil, errors.Errorf("resolving log file: %w", err)
		}
	}

	// the console only shows warnings unless debugging
	consoleLevel := zerolog.WarnLevel
	if o.Debug {
		consoleLevel = zerolog.DebugLevel
	}
	console := levelFilter{
		Writer: zerolog.ConsoleWriter{
			Out:        o.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    color.NoColor,
		},
		min: consoleLevel,
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger := zerolog.New(console).Level(level).With().Timestamp().Logger()
		logger.Warn().Err(err).Str("path", path).Msg("opening log file, logging to console only")
		zerolog.DefaultContextLogger = &logger
		return logger, nil, nil
	}

	writer := zerolog.MultiLevelWriter(console, file)

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	logger.Debug().Str("log_file", path).Msg("logger initialized")
	return logger, file, nil
}

// levelFilter drops records below min
type levelFilter struct {
	io.Writer
	min zerolog.Level
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.Write(p)
}

// setupColor disables color when asked to or when stdout is not a terminal
func setupColor(o *opts.RootOpts) {
	if o.NoColor || !isTerminal(o.Stdout) {
		color.NoColor = true
		pterm.DisableColor()
		return
	}
	color.NoColor = false
	pterm.EnableColor()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
