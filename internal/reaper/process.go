package reaper

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/prochunt/internal/connectors"
)

const lookupTimeout = 5 * time.Second

// OSProcess is the Process backed by the running system. Names are resolved
// through ps; signals go straight to the kernel.
type OSProcess struct {
	runner connectors.Runner
}

// NewOSProcess creates an OSProcess that resolves names with runner.
func NewOSProcess(runner connectors.Runner) *OSProcess {
	return &OSProcess{runner: runner}
}

// Lookup returns the executable name of pid. ErrNoProcess means ps ran and
// found nothing; any other error means ps itself could not run.
func (p *OSProcess) Lookup(pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("%w: pid %d", ErrNoProcess, pid)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	res, err := p.runner.Execute(ctx, "ps", []string{"-p", strconv.Itoa(pid), "-o", "comm="})
	if err != nil {
		return "", fmt.Errorf("looking up pid %d: %w", pid, err)
	}
	name := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 || name == "" {
		return "", fmt.Errorf("%w: pid %d", ErrNoProcess, pid)
	}
	return filepath.Base(name), nil
}
