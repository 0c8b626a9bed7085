package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/fentz26/prochunt/internal/models"
)

// History writes journal entries, newest first.
func History(w io.Writer, entries []models.DecisionEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("The journal is empty."))
		return
	}

	fmt.Fprintf(w, "%-16s %-14s %-20s %7s  %s\n", "WHEN", "ACTION", "OUTCOME", "PID", "DETAILS")
	for _, e := range entries {
		pid := "-"
		if e.PID != 0 {
			pid = fmt.Sprintf("%d", e.PID)
		}
		outcome := fmt.Sprintf("%-20s", e.Outcome)
		if strings.HasPrefix(e.Outcome, "failed") {
			outcome = failStyle.Render(outcome)
		} else {
			outcome = okStyle.Render(outcome)
		}
		fmt.Fprintf(w, "%-16s %-14s %s %7s  %s\n",
			humanize.Time(e.Timestamp), e.Action, outcome, pid, clip(e.Details, 60))
	}
}
