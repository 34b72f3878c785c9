package main

import (
	"fmt"
	"strings"
	"time"

	"bookvoice/internal/workflow"
)

// renderSummary formats a finished run for the terminal: a counts table
// followed by per-book failures and warnings.
func renderSummary(summary *workflow.RunSummary) string {
	if summary == nil {
		return ""
	}

	rows := [][]string{
		{"Planned", fmt.Sprintf("%d", summary.Planned)},
		{"Skipped (already converted)", fmt.Sprintf("%d", summary.Skipped)},
		{"Completed", fmt.Sprintf("%d", summary.Completed)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
		{"Aborted", fmt.Sprintf("%d", summary.Aborted)},
		{"Duration", summary.Duration.Round(time.Second).String()},
	}

	var b strings.Builder
	b.WriteString(renderTable([]string{"Outcome", "Count"}, rows, 1))

	if len(summary.Failures) > 0 {
		b.WriteString("\n\nFailures:\n")
		failureRows := make([][]string, 0, len(summary.Failures))
		for _, failure := range summary.Failures {
			failureRows = append(failureRows, []string{failure.Key, failure.Reason})
		}
		b.WriteString(renderTable([]string{"Book", "Reason"}, failureRows))
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n\nWarnings:\n")
		for _, warning := range summary.Warnings {
			fmt.Fprintf(&b, "  %s: %s\n", warning.Key, warning.Note)
		}
	}

	return b.String()
}
