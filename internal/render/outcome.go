package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fentz26/prochunt/internal/models"
)

// Progress returns a callback that prints controller progress lines.
func Progress(w io.Writer) func(string) {
	return func(line string) {
		fmt.Fprintln(w, mutedStyle.Render("  ... "+line))
	}
}

// Outcome writes the result of one termination.
func Outcome(w io.Writer, out models.TerminationOutcome) {
	if out.Success {
		fmt.Fprintln(w, okStyle.Render("✓ "+out.Message))
		return
	}

	fmt.Fprintln(w, failStyle.Render("✗ "+out.Message))
	switch out.Failure {
	case models.FailureNotFound:
		fmt.Fprintln(w, mutedStyle.Render("  Nothing to do."))
	case models.FailurePermission:
		fmt.Fprintln(w, mutedStyle.Render("  Re-run with sufficient privileges (e.g. sudo) to terminate this process."))
	case models.FailurePersisted:
		fmt.Fprintln(w, mutedStyle.Render("  The process ignored SIGKILL; it may be stuck in an uninterruptible kernel call."))
	}
}

// Summary writes the totals after a batch of terminations and the command
// that reports their impact.
func Summary(w io.Writer, outcomes []models.TerminationOutcome, memFreedMB float64) {
	killed := 0
	var failed []string
	for _, o := range outcomes {
		if o.Success {
			killed++
		} else {
			failed = append(failed, fmt.Sprintf("%d", o.PID))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Terminated %d of %d processes, ~%s freed", killed, len(outcomes), Memory(memFreedMB))))
	if len(failed) > 0 {
		fmt.Fprintln(w, failStyle.Render("Failed: PID "+strings.Join(failed, ", ")))
	}
	if killed > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("See the impact with: prochunt baseline report %d %.0f", killed, memFreedMB)))
	}
}
