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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 45 // Base width for filename
	countWidth   = 10 // Width for replacement count
	statusWidth  = 16 // Width for status text
	maxTableRows = 50 // Rows shown in the summary table before eliding
)

// 🎯 FileOperation represents a file outcome for logging
type FileOperation struct {
	Path          string   // File path
	Status        string   // Terminal state name
	Replacements  int      // Number of replacements made
	Passes        []string // Passes that applied
	IsWritten     bool     // Whether the file was rewritten
	IsPending     bool     // Whether the file would be rewritten (dry run)
	IsFailed      bool     // Whether processing failed
	NotIdempotent bool     // Whether a second run would change it again
	Detail        string   // Error detail for failures
}

// 📦 RunOperation describes a batch for the console header
type RunOperation struct {
	Roots  []string
	Passes int
	Rules  int
	DryRun bool
}

// 🎯 Logger handles operator-facing console output. It is safe for use by
// concurrent workers.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	verbose bool
	mu      sync.Mutex
	current *RunOperation
	counts  map[string]int
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		counts:  map[string]int{},
	}
}

// SetVerbose makes LogRecord print unchanged files too.
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context. Without one, output is
// discarded.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, zerolog.Nop())
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FileOperationFromRecord converts a change record for display
func FileOperationFromRecord(rec status.ChangeRecord) FileOperation {
	op := FileOperation{
		Path:          rec.Path,
		Status:        rec.State.String(),
		Replacements:  rec.Replacements,
		Passes:        rec.Passes,
		IsWritten:     rec.State == status.StateWritten,
		IsPending:     rec.State == status.StateWouldWrite,
		IsFailed:      rec.State.Failed(),
		NotIdempotent: rec.NotIdempotent,
	}
	if rec.Err != nil {
		op.Detail = rec.Err.Error()
	} else {
		op.Detail = rec.Error
	}
	return op
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	// Determine symbol and color
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsWritten:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsPending:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	count := ""
	if op.Replacements > 0 {
		count = fmt.Sprintf("%d repl", op.Replacements)
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", countWidth, count)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))

	if op.NotIdempotent {
		line += color.New(color.FgYellow).Sprint(" not idempotent")
	}
	if op.Detail != "" {
		line += color.New(color.FgRed).Sprint(" " + op.Detail)
	}
	return line
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[op.Status]++

	// Format and print
	if l.verbose || op.IsWritten || op.IsPending || op.IsFailed || op.NotIdempotent {
		fmt.Fprintln(l.console, l.formatFileOperation(op))
	}

	// Log to zerolog
	l.zlog.Debug().
		Str("file", op.Path).
		Str("status", op.Status).
		Int("replacements", op.Replacements).
		Strs("passes", op.Passes).
		Bool("not_idempotent", op.NotIdempotent).
		Msg("file operation")
}

// 📝 LogRecord logs the outcome of one file, followed by its diff if any
func (l *Logger) LogRecord(ctx context.Context, rec status.ChangeRecord) {
	l.LogFileOperation(ctx, FileOperationFromRecord(rec))
	if rec.Diff != "" {
		l.LogDiff(rec.Diff)
	}
}

// 📝 LogDiff prints a unified diff with added and removed lines colored
func (l *Logger) LogDiff(diff string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = color.New(color.Bold).Sprint(line)
		case strings.HasPrefix(line, "+"):
			line = color.New(color.FgGreen).Sprint(line)
		case strings.HasPrefix(line, "-"):
			line = color.New(color.FgRed).Sprint(line)
		case strings.HasPrefix(line, "@@"):
			line = color.New(color.FgCyan).Sprint(line)
		}
		fmt.Fprintf(l.console, "%*s%s\n", fileIndent+2, "", line)
	}
}

// 📝 StartRun starts a new batch
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op
	l.counts = map[string]int{}

	// Print run header
	fmt.Fprintf(l.console, "[rewriting %s]\n",
		color.New(color.FgCyan).Sprint(strings.Join(op.Roots, ", ")))

	mode := "apply"
	if op.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d passes, %d rules", op.Passes, op.Rules),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(mode))

	// Log to zerolog
	l.zlog.Info().
		Strs("roots", op.Roots).
		Int("passes", op.Passes).
		Int("rules", op.Rules).
		Bool("dry_run", op.DryRun).
		Msg("starting batch")
}

// 📝 EndRun ends the current batch
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	// Log summary
	event := l.zlog.Info().Strs("roots", l.current.Roots)
	for state, n := range l.counts {
		event = event.Int(state, n)
	}
	event.Msg("batch complete")

	l.current = nil
}

// 📊 Summary prints a table of changed and failed files, then the totals
func (l *Logger) Summary(report *status.Report) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := pterm.TableData{{"File", "State", "Replacements", "Passes"}}
	shown := 0
	for _, rec := range report.Records {
		if !rec.Changed && !rec.State.Failed() {
			continue
		}
		shown++
		if shown > maxTableRows {
			continue
		}
		rows = append(rows, []string{
			rec.Path,
			rec.State.String(),
			fmt.Sprintf("%d", rec.Replacements),
			strings.Join(rec.Passes, ","),
		})
	}

	fmt.Fprintln(l.console)
	if len(rows) > 1 {
		table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(l.console, table)
		if shown > maxTableRows {
			fmt.Fprintf(l.console, "%s\n", color.New(color.Faint).Sprintf("... and %d more", shown-maxTableRows))
		}
	}

	summary := status.NewDefaultFileFormatter().FormatSummary(report)
	switch {
	case report.Errored > 0 || report.Interrupted:
		fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(strings.TrimPrefix(summary, "✅ ")))
	default:
		fmt.Fprintln(l.console, color.New(color.FgGreen).Sprint(summary))
	}

	l.zlog.Info().
		Int("scanned", report.Scanned).
		Int("changed", report.Changed).
		Int("errored", report.Errored).
		Strs("missing_roots", report.MissingRoots).
		Msg("summary")
	return nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("rewriterc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
