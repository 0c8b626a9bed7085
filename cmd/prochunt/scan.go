package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/prochunt/internal/render"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List processes above the CPU or memory threshold",
	Long: `Lists every process whose CPU or resident memory breaches a threshold,
grouped into AUTO_KILL (known safe to stop) and ASK (needs a decision).
Protected system processes are never shown.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanCPUThreshold float64
	scanMemThreshold float64
	scanJSON         bool
)

func init() {
	scanCmd.Flags().Float64Var(&scanCPUThreshold, "cpu-threshold", 10, "Minimum CPU percent to report")
	scanCmd.Flags().Float64Var(&scanMemThreshold, "mem-threshold", 500, "Minimum resident memory in MB to report")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print a JSON array instead of the table")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	opts := a.cfg.ScanOptions()
	if cmd.Flags().Changed("cpu-threshold") {
		opts.CPUThreshold = scanCPUThreshold
	}
	if cmd.Flags().Changed("mem-threshold") {
		opts.MemThresholdMB = scanMemThreshold
	}

	records, err := a.service.Scan(context.Background(), opts)
	if err != nil {
		// A failed listing is reported but never fails the scan.
		a.logger.Debug("scan failed", zap.Error(err))
		render.ScanWarning(os.Stderr, err)
		records = nil
	}

	if scanJSON {
		return render.ScanJSON(os.Stdout, records)
	}
	render.ScanText(os.Stdout, records)
	return nil
}
