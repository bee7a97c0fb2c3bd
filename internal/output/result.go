// Package output formats command results for the terminal.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"dirdirector/internal/applier"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	mutedColor = color.New(color.FgHiBlack)
)

// DisableColor turns off ANSI colors for all output
func DisableColor() {
	color.NoColor = true
}

// Success prints a green line
func Success(w io.Writer, format string, args ...interface{}) {
	okColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

// Failure prints a red line
func Failure(w io.Writer, format string, args ...interface{}) {
	failColor.Fprint(w, "✗ ")
	fmt.Fprintf(w, format+"\n", args...)
}

// Warn prints a yellow line
func Warn(w io.Writer, format string, args ...interface{}) {
	warnColor.Fprintf(w, "⚠ "+format+"\n", args...)
}

// Note prints a dimmed line
func Note(w io.Writer, format string, args ...interface{}) {
	mutedColor.Fprintf(w, format+"\n", args...)
}

// PrintResult reports every processed and failed folder. remaining lists
// folders still queued after a queue-mode run.
func PrintResult(w io.Writer, verb string, result applier.Result, remaining []string) {
	for _, f := range result.Processed {
		Success(w, "%s %s", verb, f)
	}
	for _, f := range result.Failures {
		Failure(w, "%s: %v", f.Folder, f.Err)
	}
	if len(result.Processed) == 0 && len(result.Failures) == 0 {
		Note(w, "No folders selected")
	}
	if result.Consumed != "" && len(remaining) > 0 {
		Note(w, "%d folder(s) left in queue, next: %s", len(remaining), remaining[0])
	}
}
