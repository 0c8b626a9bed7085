package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errFailed marks a command whose failure was already reported on stdout.
var errFailed = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "prochunt",
	Short: "prochunt - find and stop runaway processes",
	Long: `prochunt lists processes burning CPU or memory, classifies them as safe to kill,
worth asking about or protected, terminates them gracefully, and measures the
effect on battery life against a saved baseline.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.prochunt/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(terminateCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(huntCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
