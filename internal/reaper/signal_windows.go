//go:build windows

package reaper

import (
	"fmt"
	"os"
)

// Signal delivers sig to pid. Windows has no polite termination signal, so
// only SIGKILL is honoured.
func (p *OSProcess) Signal(pid int, sig Signal) error {
	if sig != SignalKill {
		return fmt.Errorf("%w: %s", ErrUnsupported, sig)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoProcess, err)
	}
	return proc.Kill()
}

// Alive reports whether pid can still be opened.
func (p *OSProcess) Alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}
