package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fentz26/prochunt/internal/baseline"
	"github.com/fentz26/prochunt/internal/render"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Measure battery impact before and after a cleanup",
	Args:  cobra.NoArgs,
	RunE:  runBaselineStatus,
}

var baselineBeforeCmd = &cobra.Command{
	Use:   "before [killed] [mem_freed_mb]",
	Short: "Save the current battery state and top CPU consumers",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runBaselineBefore,
}

var baselineAfterCmd = &cobra.Command{
	Use:   "after",
	Short: "Compare the current state with the saved baseline",
	Args:  cobra.NoArgs,
	RunE:  runBaselineAfter,
}

var baselineReportCmd = &cobra.Command{
	Use:   "report [killed] [mem_freed_mb]",
	Short: "Report cleanup impact with explicit counters",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runBaselineReport,
}

var baselineStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current battery state",
	Args:  cobra.NoArgs,
	RunE:  runBaselineStatus,
}

func init() {
	baselineCmd.AddCommand(baselineBeforeCmd, baselineAfterCmd, baselineReportCmd, baselineStatusCmd)
}

// parseCounters reads the optional killed count and freed memory arguments.
func parseCounters(args []string) (int, float64, error) {
	killed, mem := 0, 0.0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid killed count %q", args[0])
		}
		killed = n
	}
	if len(args) > 1 {
		f, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid freed memory %q", args[1])
		}
		mem = f
	}
	return killed, mem, nil
}

func runBaselineBefore(cmd *cobra.Command, args []string) error {
	killed, mem, err := parseCounters(args)
	if err != nil {
		return err
	}

	a, err := newApp(appOptions{journal: true})
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.service.SaveBaseline(context.Background(), killed, mem)
	if err != nil {
		return fmt.Errorf("failed to save baseline: %w", err)
	}
	render.BaselineSaved(os.Stdout, snap, a.repo.Path())
	return nil
}

func runBaselineAfter(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.service.Compare(context.Background())
	if errors.Is(err, baseline.ErrNoBaseline) {
		render.NoBaseline(os.Stdout)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to compare with baseline: %w", err)
	}
	render.Report(os.Stdout, report)
	return nil
}

func runBaselineReport(cmd *cobra.Command, args []string) error {
	killed, mem, err := parseCounters(args)
	if err != nil {
		return err
	}

	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.service.Report(context.Background(), killed, mem)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	render.Report(os.Stdout, report)
	return nil
}

func runBaselineStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	render.Status(os.Stdout, a.service.Status(context.Background()))
	return nil
}
