package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fentz26/prochunt/internal/baseline"
	"github.com/fentz26/prochunt/internal/models"
)

const barWidth = 30

var tierLabels = map[baseline.Tier]string{
	baseline.TierMajor:      "major improvement",
	baseline.TierNotable:    "notable improvement",
	baseline.TierMarginal:   "marginal improvement",
	baseline.TierNoChange:   "no change",
	baseline.TierRegression: "regression",
}

// TierLabel names a tier for people.
func TierLabel(t baseline.Tier) string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return "unknown"
}

// BaselineSaved confirms a saved snapshot.
func BaselineSaved(w io.Writer, snap models.BaselineSnapshot, path string) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Baseline saved") + "\n")
	fmt.Fprintf(&b, "Battery:   %d%% (%s)\n", snap.PowerState.Percentage, snap.PowerState.Status)
	if m := snap.PowerState.TimeRemainingMinutes; m != nil {
		fmt.Fprintf(&b, "Remaining: %s\n", Minutes(*m))
	}
	for i, p := range snap.TopProcesses {
		fmt.Fprintf(&b, "%d. %5.1f%% %s\n", i+1, p.CPUPercent, clip(p.Name, 24))
	}
	b.WriteString(mutedStyle.Render(path))

	fmt.Fprintln(w, panelStyle.Render(b.String()))
	fmt.Fprintln(w, mutedStyle.Render("Now clean up, then run: prochunt baseline after"))
}

// NoBaseline explains how to create the missing baseline.
func NoBaseline(w io.Writer) {
	fmt.Fprintln(w, askStyle.Render("No baseline saved yet."))
	fmt.Fprintln(w, mutedStyle.Render("Run 'prochunt baseline before' first, clean up, then 'prochunt baseline after'."))
}

// Report writes an impact report.
func Report(w io.Writer, r baseline.ImpactReport) {
	fmt.Fprintln(w, titleStyle.Render("Hunt report"))
	fmt.Fprintln(w)

	if r.ProcessesKilled > 0 {
		fmt.Fprintf(w, "Processes terminated: %d\n", r.ProcessesKilled)
		fmt.Fprintf(w, "Memory freed:         ~%s\n\n", Memory(r.MemFreedMB))
	}

	if r.HasBaseline {
		if r.DeltaMinutes != nil {
			before := *r.Before.PowerState.TimeRemainingMinutes
			after := *r.After.TimeRemainingMinutes
			fmt.Fprintf(w, "Battery time: %s → %s (%+dm, %s)\n\n",
				Minutes(before), Minutes(after), *r.DeltaMinutes, TierLabel(r.Tier))
		}
		writeTopComparison(w, r.BeforeTop, r.AfterTop)
		if r.ShowReduction() {
			fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("Top CPU: %.0f%% → %.0f%% (%.0f%% less)", r.BeforeCPU, r.AfterCPU, r.CPUReduction)))
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, mutedStyle.Render("No baseline saved; run 'prochunt baseline before' next time for a comparison."))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, Battery(r.After, r.Improved))

	if r.Improved {
		fmt.Fprintln(w, okStyle.Render("Cleanup done. The machine can breathe again."))
	}
}

func writeTopComparison(w io.Writer, before, after []models.TopProcess) {
	rows := len(before)
	if len(after) > rows {
		rows = len(after)
	}
	if rows == 0 {
		return
	}

	fmt.Fprintf(w, "  %-20s │ %-20s\n", "BEFORE", "AFTER")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(w, "  %-20s │ %-20s\n", topCell(before, i), topCell(after, i))
	}
	fmt.Fprintln(w)
}

func topCell(procs []models.TopProcess, i int) string {
	if i >= len(procs) {
		return fmt.Sprintf("%5.1f%% %-12s", 0.0, "-")
	}
	return fmt.Sprintf("%5.1f%% %-12s", procs[i].CPUPercent, clip(procs[i].Name, 12))
}

// Battery renders the battery panel. An improved cleanup gets the
// celebratory border.
func Battery(state models.PowerState, improved bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %3d%%\n", BatteryBar(state.Percentage, barWidth), state.Percentage)
	fmt.Fprintf(&b, "Status: %s", state.Status)
	if m := state.TimeRemainingMinutes; m != nil {
		fmt.Fprintf(&b, "\nRemaining: %s", accentStyle.Render(Minutes(*m)))
	}

	if improved {
		return celebrateStyle.Render(b.String())
	}
	return panelStyle.Render(b.String())
}

// Status writes the current battery state.
func Status(w io.Writer, state models.PowerState) {
	fmt.Fprintln(w, titleStyle.Render("Battery status"))
	fmt.Fprintln(w, Battery(state, false))
}
