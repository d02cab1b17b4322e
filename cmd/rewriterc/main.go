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
	"os/signal"
	"syscall"

	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], opts.New()))
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, o *opts.RootOpts) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer o.Close()

	cmd := newRootCmd(o)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var exit *commands.ExitError
		if errors.As(err, &exit) {
			if exit.Message != "" {
				fmt.Fprintln(o.Stderr, exit.Message)
			}
			return exit.Code
		}
		fmt.Fprintln(o.Stderr, status.NewDefaultFileFormatter().FormatError(err))
		return 2
	}
	return 0
}
