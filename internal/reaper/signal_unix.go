//go:build !windows

package reaper

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Signal delivers sig to pid.
func (p *OSProcess) Signal(pid int, sig Signal) error {
	var s unix.Signal
	switch sig {
	case SignalTerm:
		s = unix.SIGTERM
	case SignalKill:
		s = unix.SIGKILL
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, sig)
	}
	return mapErrno(unix.Kill(pid, s))
}

// Alive probes pid with signal 0. A process we may not signal still exists.
func (p *OSProcess) Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func mapErrno(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %w", ErrPermission, err)
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("%w: %w", ErrNoProcess, err)
	default:
		return err
	}
}
