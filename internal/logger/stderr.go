package logger

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintMsgs renders a drained message list to w the way clang does,
// colorizing severities through fatih/color, whose on/off switch is global
// rather than a property of w. No core pass calls it, and cmd/chtl prints
// chtl.Diagnostic values with its own printDiagnostics instead.
func PrintMsgs(w io.Writer, msgs []Msg) (errors int, warnings int) {
	errColor := color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	infoColor := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, m := range msgs {
		var sev string
		switch m.Severity {
		case Error:
			sev = errColor("error")
			errors++
		case Warning:
			sev = warnColor("warning")
			warnings++
		default:
			sev = infoColor("info")
		}
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", m.Loc.File, m.Loc.Line, m.Loc.Column, sev, m.Text)
		if m.LineText != "" {
			fmt.Fprintf(w, "    %s\n", dim(m.LineText))
		}
	}
	return
}
