// Package cli implements the mealdash command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// success prints a confirmation line, colorized when stdout is a terminal.
func success(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isTerminal() {
		fmt.Fprintf(w, "%s✓%s %s\n", colorGreen, colorReset, msg)
	} else {
		fmt.Fprintf(w, "✓ %s\n", msg)
	}
}

func warn(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isTerminal() {
		fmt.Fprintf(w, "%s⚠%s %s\n", colorYellow, colorReset, msg)
	} else {
		fmt.Fprintf(w, "⚠ %s\n", msg)
	}
}

func fail(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isTerminal() {
		fmt.Fprintf(w, "%s✗%s %s\n", colorRed, colorReset, msg)
	} else {
		fmt.Fprintf(w, "✗ %s\n", msg)
	}
}

// table writes aligned columns. Rows are written immediately, call flush
// via the returned writer when done.
func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func isTerminal() bool {
	info, _ := os.Stdout.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
