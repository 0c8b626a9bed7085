package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fentz26/prochunt/internal/reaper"
	"github.com/fentz26/prochunt/internal/render"
)

var terminateCmd = &cobra.Command{
	Use:   "terminate <pid>",
	Short: "Terminate a process, escalating to SIGKILL if it ignores SIGTERM",
	Args:  cobra.ExactArgs(1),
	RunE:  runTerminate,
}

var terminateForce bool

func init() {
	terminateCmd.Flags().BoolVarP(&terminateForce, "force", "f", false, "Send SIGKILL immediately")
}

func runTerminate(cmd *cobra.Command, args []string) error {
	pid, err := strconv.Atoi(args[0])
	if err != nil || pid <= 0 {
		return fmt.Errorf("invalid pid %q", args[0])
	}

	a, err := newApp(appOptions{journal: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out := a.service.Terminate(pid, terminateForce)
	render.Outcome(os.Stdout, out)

	if reaper.ExitCode(out) != 0 {
		return errFailed
	}
	return nil
}
