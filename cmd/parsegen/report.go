package main

import (
	"io"

	"github.com/fatih/color"

	"parsegen/internal/diagnostic"
)

var severityColors = map[diagnostic.Severity]*color.Color{
	diagnostic.SeverityError:   color.New(color.FgRed, color.Bold),
	diagnostic.SeverityWarning: color.New(color.FgYellow),
	diagnostic.SeverityInfo:    color.New(color.FgCyan),
}

// printDiagnostics writes one line per diagnostic, errors first. Infos are
// only shown when verbose is set.
func printDiagnostics(w io.Writer, d diagnostic.Diagnostics, verbose bool) {
	for _, diag := range d.All() {
		if diag.Severity == diagnostic.SeverityInfo && !verbose {
			continue
		}

		severityColors[diag.Severity].Fprintf(w, "%s", diag.Severity)
		io.WriteString(w, ": "+diag.String()+"\n")
	}
}
