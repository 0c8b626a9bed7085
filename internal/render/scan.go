package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/fentz26/prochunt/internal/classifier"
	"github.com/fentz26/prochunt/internal/models"
)

// scanJSON is the wire form of one scan record.
type scanJSON struct {
	PID        int             `json:"pid"`
	Name       string          `json:"name"`
	CPUPercent float64         `json:"cpu_percent"`
	MemMB      float64         `json:"mem_mb"`
	Command    string          `json:"command"`
	Category   models.Category `json:"category"`
	Reason     string          `json:"reason"`
}

// ScanJSON writes visible records as a JSON array in scan order.
func ScanJSON(w io.Writer, records []models.ProcessRecord) error {
	visible := classifier.Visible(records)
	out := make([]scanJSON, 0, len(visible))
	for _, r := range visible {
		out = append(out, scanJSON{
			PID:        r.PID,
			Name:       r.Name,
			CPUPercent: r.CPUPercent,
			MemMB:      math.Round(r.MemMB*10) / 10,
			Command:    r.Command,
			Category:   r.Category,
			Reason:     r.Reason,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ScanText writes the AUTO_KILL and ASK sections.
func ScanText(w io.Writer, records []models.ProcessRecord) {
	autoKill, ask := classifier.Partition(records)

	if len(autoKill) == 0 && len(ask) == 0 {
		fmt.Fprintln(w, okStyle.Render("No processes above the thresholds. Nothing to hunt."))
		return
	}

	if len(autoKill) > 0 {
		fmt.Fprintln(w, autoKillStyle.Render(fmt.Sprintf("AUTO_KILL (%d) safe to terminate", len(autoKill))))
		writeRows(w, autoKill)
		fmt.Fprintln(w)
	}
	if len(ask) > 0 {
		fmt.Fprintln(w, askStyle.Render(fmt.Sprintf("ASK (%d) confirm before terminating", len(ask))))
		writeRows(w, ask)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, mutedStyle.Render("Terminate with: prochunt terminate <pid>   or pick interactively: prochunt hunt"))
}

func writeRows(w io.Writer, records []models.ProcessRecord) {
	fmt.Fprintf(w, "  %7s %6s %10s  %-20s %s\n", "PID", "CPU%", "MEM", "NAME", "REASON")
	for _, r := range records {
		fmt.Fprintf(w, "  %7d %6.1f %10s  %-20s %s\n",
			r.PID, r.CPUPercent, Memory(r.MemMB), clip(r.Name, 20), r.Reason)
		fmt.Fprintf(w, "  %s\n", mutedStyle.Render("        "+r.Command))
	}
}

// ScanWarning reports a failed listing without failing the command.
func ScanWarning(w io.Writer, err error) {
	fmt.Fprintln(w, failStyle.Render(fmt.Sprintf("warning: could not list processes: %v", err)))
}
