package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fentz26/prochunt/internal/hunt"
	"github.com/fentz26/prochunt/internal/render"
	"github.com/fentz26/prochunt/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded terminations and baseline saves",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historyLimit  int
	historyAction string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", store.DefaultListLimit, "Maximum entries to show")
	historyCmd.Flags().StringVar(&historyAction, "action", "", "Only show one action (terminate, baseline.save)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{journal: true})
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.service.History(historyAction, historyLimit)
	if errors.Is(err, hunt.ErrJournalDisabled) {
		fmt.Println("The decision journal is disabled or could not be opened (see journal.enabled and journal.path).")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	render.History(os.Stdout, entries)
	return nil
}
