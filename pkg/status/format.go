package status

import (
	"fmt"
	"strings"
)

// FileFormatter defines how records and reports should be formatted
type FileFormatter interface {
	// FormatRecord formats the outcome of a single file
	FormatRecord(rec ChangeRecord) string

	// FormatSummary formats the totals of a report
	FormatSummary(report *Report) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatRecord formats a file outcome with emojis
func (f *DefaultFileFormatter) FormatRecord(rec ChangeRecord) string {
	var msg string
	switch rec.State {
	case StateWritten:
		msg = fmt.Sprintf("📝 Updated %s (%s)", rec.Path, plural(rec.Replacements, "replacement"))
	case StateWouldWrite:
		msg = fmt.Sprintf("🔍 Would update %s (%s)", rec.Path, plural(rec.Replacements, "replacement"))
	case StateReadFailed:
		msg = fmt.Sprintf("❌ Failed to read %s: %v", rec.Path, rec.Err)
	case StateTransformFailed:
		msg = fmt.Sprintf("❌ Failed to transform %s: %v", rec.Path, rec.Err)
	case StateWriteFailed:
		msg = fmt.Sprintf("❌ Failed to write %s: %v", rec.Path, rec.Err)
	default:
		msg = fmt.Sprintf("👍 Unchanged %s", rec.Path)
	}
	if rec.NotIdempotent {
		msg += " ⚠️  not idempotent"
	}
	return msg
}

// FormatSummary formats the totals of a report
func (f *DefaultFileFormatter) FormatSummary(report *Report) string {
	verb := "updated"
	if report.DryRun {
		verb = "would change"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Scanned %s: %d %s, %d errored",
		plural(report.Scanned, "file"), report.Changed, verb, report.Errored)
	if len(report.MissingRoots) > 0 {
		fmt.Fprintf(&b, ", missing roots: %s", strings.Join(report.MissingRoots, ", "))
	}
	if report.Interrupted {
		b.WriteString(" (interrupted)")
	}
	return b.String()
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// 📝 WriteText renders the plain text report: one line per changed or failed
// file (every file when verbose), then the summary.
func WriteText(report *Report, verbose bool) string {
	f := NewDefaultFileFormatter()

	var b strings.Builder
	for _, rec := range report.Records {
		if !verbose && !rec.Changed && !rec.State.Failed() && !rec.NotIdempotent {
			continue
		}
		b.WriteString(f.FormatRecord(rec))
		b.WriteByte('\n')
		if rec.Diff != "" {
			b.WriteString(rec.Diff)
			if !strings.HasSuffix(rec.Diff, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	b.WriteString(f.FormatSummary(report))
	b.WriteByte('\n')
	return b.String()
}
