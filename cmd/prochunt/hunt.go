package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fentz26/prochunt/internal/models"
	"github.com/fentz26/prochunt/internal/render"
	"github.com/fentz26/prochunt/internal/tui"
)

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Pick processes to terminate interactively",
	Long: `Scans like 'prochunt scan', then opens a table where space marks a row,
'a' marks every AUTO_KILL row and enter terminates the marked processes after
a y/n confirmation.`,
	Args: cobra.NoArgs,
	RunE: runHunt,
}

var huntForce bool

func init() {
	huntCmd.Flags().BoolVarP(&huntForce, "force", "f", false, "Send SIGKILL immediately to marked processes")
}

func runHunt(cmd *cobra.Command, args []string) error {
	// Logs are held back while the picker owns the terminal.
	var logs bytes.Buffer
	defer func() { os.Stderr.Write(logs.Bytes()) }()

	a, err := newApp(appOptions{journal: true, logSink: &logs})
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.service.Scan(context.Background(), a.cfg.ScanOptions())
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	// Progress lines would corrupt the alternate screen.
	a.controller.SetProgress(nil)

	picker := tui.New(records, func(pid int) models.TerminationOutcome {
		return a.service.Terminate(pid, huntForce)
	})
	res, err := picker.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if picker.Cancelled() || len(res.Outcomes) == 0 {
		fmt.Println("Nothing terminated.")
		return nil
	}

	for _, o := range res.Outcomes {
		render.Outcome(os.Stdout, o)
	}
	render.Summary(os.Stdout, res.Outcomes, res.MemFreedMB)
	return nil
}
