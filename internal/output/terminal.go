// Package output renders token reports for the terminal.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"solana-token-info/internal/token"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// WriteResult prints one report, or the error that prevented it, followed by
// the time taken.
func WriteResult(w io.Writer, r token.Result) {
	if r.Err != nil {
		if r.Address.IsZero() {
			fmt.Fprintf(w, "%s %v\n\n", red("Error:"), r.Err)
		} else {
			fmt.Fprintf(w, "%s %s: %v\n\n", red("Error:"), r.Address, r.Err)
		}
		return
	}

	fmt.Fprintf(w, "%s %s\n", bold("Information collected for:"), r.Address)
	fmt.Fprintln(w)
	fmt.Fprint(w, r.Report.String())
	fmt.Fprintf(w, "\nTime taken: %s\n\n", formatDuration(r.Elapsed))
}

// WriteSummary prints one table row per address and the total elapsed time.
func WriteSummary(w io.Writer, results []token.Result, total time.Duration) {
	fmt.Fprintln(w, bold("Summary"))

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Address", "Outcome", "Elapsed")
	tbl.WithHeaderFormatter(headerFmt)
	tbl.WithWriter(w)

	for _, r := range results {
		outcome := token.OutcomeFailed
		if r.Err == nil {
			outcome = r.Report.Outcome()
		}
		addr := "-"
		if !r.Address.IsZero() {
			addr = r.Address.String()
		}
		tbl.AddRow(addr, formatOutcome(outcome), formatDuration(r.Elapsed))
	}
	tbl.Print()

	fmt.Fprintf(w, "\nTotal elapsed time: %s\n", formatDuration(total))
}

// Failed reports whether any result carries an error.
func Failed(results []token.Result) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

func formatOutcome(outcome string) string {
	switch outcome {
	case token.OutcomeFull:
		return green("✓ full")
	case token.OutcomePartial:
		return yellow("⚠ partial")
	case token.OutcomeFailed:
		return red("✗ failed")
	default:
		return outcome
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
