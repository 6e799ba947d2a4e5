package logger

import (
	"io"
	"os"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Define colorized printing functions for different log levels using fatih/color.
// Each level owns a *color.Color so that output can be redirected (tests, --quiet)
// without losing the coloring rules.
var (
	infoColor    = color.New(color.FgGreen)
	successColor = color.New(color.FgHiGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.FgCyan)
	titleColor   = color.New(color.FgHiCyan, color.Bold)
	hintColor    = color.New(color.FgHiBlack)
)

// out is where every level writes. Defaults to stdout like the rest of the CLI.
var out io.Writer = os.Stdout

// Info prints informational messages in green.
var Info = func(format string, a ...any) { infoColor.Fprintf(out, format, a...) }

// Success prints a completed step in bold bright green.
var Success = func(format string, a ...any) { successColor.Fprintf(out, format, a...) }

// Warn prints warnings in yellow. Warnings never stop the current operation.
var Warn = func(format string, a ...any) { warnColor.Fprintf(out, format, a...) }

// Error prints errors in red.
var Error = func(format string, a ...any) { errorColor.Fprintf(out, format, a...) }

// Title prints section headers.
var Title = func(format string, a ...any) { titleColor.Fprintf(out, format, a...) }

// Hint prints dimmed secondary text (paths, follow-up commands).
var Hint = func(format string, a ...any) { hintColor.Fprintf(out, format, a...) }

// Debug logs debug messages in cyan color if enabled, otherwise is a no-op.
// It is assigned during Init based on the --debug flag.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
// When disabled, Debug is a no-op so call sites never need to guard it.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = func(format string, a ...any) { debugColor.Fprintf(out, format, a...) }
	} else {
		Debug = func(format string, a ...any) {}
	}
}

// SetOutput redirects every level to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Writer returns the current output writer, for callers that print plain text
// (tables, banners) alongside leveled messages.
func Writer() io.Writer {
	return out
}
