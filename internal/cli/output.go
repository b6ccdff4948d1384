// Package cli provides terminal output helpers: record tables, colors, and
// confirmation prompts.
package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/kaiwen/cms/internal/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// colorEnabled tracks whether color output is enabled.
// It is set based on terminal detection but can be overridden.
var colorEnabled = true

func init() {
	// Disable colors if stdout is not a terminal
	colorEnabled = IsTerminal(os.Stdout)
}

// SetColorEnabled allows overriding the color output setting.
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// IsTerminal returns true if w is a terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Green returns s wrapped in green ANSI codes if colors are enabled.
func Green(s string) string {
	if !colorEnabled {
		return s
	}
	return colorGreen + s + colorReset
}

// Red returns s wrapped in red ANSI codes if colors are enabled.
func Red(s string) string {
	if !colorEnabled {
		return s
	}
	return colorRed + s + colorReset
}

// Yellow returns s wrapped in yellow ANSI codes if colors are enabled.
func Yellow(s string) string {
	if !colorEnabled {
		return s
	}
	return colorYellow + s + colorReset
}

// wrapWidth is the number of characters a name or programme cell may occupy
// on one line before wrapping onto a continuation line.
const wrapWidth = 35

// Minimum column widths so headers stay aligned on short data.
const (
	minNameColumn = 6
	minProgColumn = 11
)

// RenderRecords writes records as an aligned table. Column widths follow the
// longest name and programme present, capped at wrapWidth; values longer than
// the cap wrap onto continuation lines. The first line of each row carries
// the ID and the mark.
func RenderRecords(w io.Writer, records []model.Record) {
	nameWidth := len("Name")
	progWidth := len("Programme")
	for _, r := range records {
		if n := len([]rune(r.Name)); n > nameWidth {
			nameWidth = n
		}
		if n := len([]rune(r.Programme)); n > progWidth {
			progWidth = n
		}
	}

	nameWidth += 2
	progWidth += 2
	if nameWidth > wrapWidth+2 {
		nameWidth = wrapWidth + 2
	}
	if progWidth > wrapWidth+2 {
		progWidth = wrapWidth + 2
	}
	if nameWidth < minNameColumn {
		nameWidth = minNameColumn
	}
	if progWidth < minProgColumn {
		progWidth = minProgColumn
	}

	fmt.Fprintf(w, "%-8s %-*s %-*s %-5s\n", "ID", nameWidth, "Name", progWidth, "Programme", "Mark")

	for _, r := range records {
		nameLines := wrapCell(r.Name)
		progLines := wrapCell(r.Programme)
		n := len(nameLines)
		if len(progLines) > n {
			n = len(progLines)
		}

		for i := 0; i < n; i++ {
			if i == 0 {
				fmt.Fprintf(w, "%-8d ", r.ID)
			} else {
				fmt.Fprintf(w, "%-8s ", "")
			}
			fmt.Fprintf(w, "%-*s %-*s", nameWidth, lineAt(nameLines, i), progWidth, lineAt(progLines, i))
			if i == 0 {
				fmt.Fprintf(w, " %s", r.FormatMark())
			}
			fmt.Fprintln(w)
		}
	}
}

// wrapCell splits s into wrapWidth-sized chunks. An empty value still
// occupies one (blank) line.
func wrapCell(s string) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return []string{""}
	}
	var lines []string
	for len(runes) > wrapWidth {
		lines = append(lines, string(runes[:wrapWidth]))
		runes = runes[wrapWidth:]
	}
	return append(lines, string(runes))
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
