// Package reaper terminates processes with a graceful-then-forceful protocol.
//
// A termination is a small state machine (see state.go): SIGTERM, a bounded
// number of liveness polls, then a single SIGKILL escalation. At most two
// signals are delivered per call, and all OS failures are folded into the
// returned outcome.
package reaper

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/prochunt/internal/models"
)

// Signal names the two signals the controller delivers.
type Signal string

const (
	SignalTerm Signal = "SIGTERM"
	SignalKill Signal = "SIGKILL"
)

// Process is the controller's view of the OS.
type Process interface {
	// Lookup resolves the display name of pid, or returns ErrNoProcess.
	Lookup(pid int) (string, error)
	// Signal delivers sig to pid. Errors wrap ErrPermission or ErrNoProcess
	// when the cause is known.
	Signal(pid int, sig Signal) error
	// Alive reports whether pid still exists.
	Alive(pid int) bool
}

// Config holds the polling schedule.
type Config struct {
	PollInterval   time.Duration
	PollAttempts   int
	SettleInterval time.Duration
}

// DefaultConfig polls every 500ms for 3s, then waits 500ms after SIGKILL.
func DefaultConfig() Config {
	return Config{
		PollInterval:   500 * time.Millisecond,
		PollAttempts:   6,
		SettleInterval: 500 * time.Millisecond,
	}
}

// Controller runs terminations one at a time.
type Controller struct {
	proc     Process
	cfg      Config
	logger   *zap.Logger
	sleep    func(time.Duration)
	progress func(string)
}

// New creates a controller.
func New(proc Process, cfg Config, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		proc:     proc,
		cfg:      cfg,
		logger:   logger,
		sleep:    time.Sleep,
		progress: func(string) {},
	}
}

// SetProgress installs a callback for human-readable progress lines.
func (c *Controller) SetProgress(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	c.progress = fn
}

// run tracks one termination.
type run struct {
	pid     int
	state   State
	outcome models.TerminationOutcome
}

func (c *Controller) fire(r *run, e Event) {
	to, ok := Next(r.state, e)
	if !ok {
		c.logger.Error("illegal transition",
			zap.Int("pid", r.pid), zap.String("from", string(r.state)), zap.String("event", string(e)))
		to = StateFailed
	}
	c.logger.Debug("transition",
		zap.Int("pid", r.pid), zap.String("from", string(r.state)),
		zap.String("event", string(e)), zap.String("to", string(to)))
	r.state = to
}

// Terminate stops pid. Graceful mode sends SIGTERM and escalates to SIGKILL
// only if the process outlives every poll; force sends SIGKILL alone.
func (c *Controller) Terminate(pid int, force bool) models.TerminationOutcome {
	r := &run{
		pid:   pid,
		state: StateRunning,
		outcome: models.TerminationOutcome{
			PID:     pid,
			Forced:  force,
			Signals: []string{},
		},
	}

	name, err := c.proc.Lookup(pid)
	switch {
	case errors.Is(err, ErrNoProcess):
		c.fire(r, EventNotFound)
		return c.fail(r, models.FailureNotFound, fmt.Sprintf("process %d not found; it is already gone", pid))
	case err != nil:
		c.fire(r, EventSignalFailed)
		return c.fail(r, models.FailureOS, fmt.Sprintf("could not look up process %d: %v", pid, err))
	}
	r.outcome.ResolvedName = name

	if force {
		return c.forced(r)
	}
	return c.graceful(r)
}

func (c *Controller) forced(r *run) models.TerminationOutcome {
	if err := c.send(r, SignalKill); err != nil {
		c.fire(r, EventSignalFailed)
		return c.fail(r, failureKind(err), c.signalFailureMessage(r, SignalKill, err))
	}
	c.fire(r, EventKillDelivered)
	return c.succeed(r, fmt.Sprintf("sent SIGKILL to %s", label(r)))
}

func (c *Controller) graceful(r *run) models.TerminationOutcome {
	if err := c.send(r, SignalTerm); err != nil {
		c.fire(r, EventSignalFailed)
		return c.fail(r, failureKind(err), c.signalFailureMessage(r, SignalTerm, err))
	}
	c.fire(r, EventTermDelivered)

	wait := c.cfg.PollInterval * time.Duration(c.cfg.PollAttempts)
	c.progress(fmt.Sprintf("sent SIGTERM to %s, waiting up to %s", label(r), wait))

	for i := 0; i < c.cfg.PollAttempts; i++ {
		c.sleep(c.cfg.PollInterval)
		if !c.proc.Alive(r.pid) {
			c.fire(r, EventObservedDead)
			return c.succeed(r, fmt.Sprintf("%s exited after SIGTERM", label(r)))
		}
	}
	c.fire(r, EventAttemptsExhausted)
	c.progress(fmt.Sprintf("%s ignored SIGTERM, sending SIGKILL", label(r)))

	err := c.send(r, SignalKill)
	switch {
	case err == nil:
		c.fire(r, EventKillDelivered)
	case errors.Is(err, ErrNoProcess):
		// Exited between the last poll and SIGKILL.
		c.fire(r, EventObservedDead)
		return c.succeed(r, fmt.Sprintf("%s exited after SIGTERM", label(r)))
	default:
		c.fire(r, EventSignalFailed)
		return c.fail(r, failureKind(err), c.signalFailureMessage(r, SignalKill, err))
	}

	c.sleep(c.cfg.SettleInterval)
	if c.proc.Alive(r.pid) {
		c.fire(r, EventStillAlive)
		return c.fail(r, models.FailurePersisted,
			fmt.Sprintf("%s is still alive after SIGKILL; it could not be terminated", label(r)))
	}
	c.fire(r, EventObservedDead)
	return c.succeed(r, fmt.Sprintf("%s terminated with SIGKILL after ignoring SIGTERM", label(r)))
}

func (c *Controller) send(r *run, sig Signal) error {
	if err := c.proc.Signal(r.pid, sig); err != nil {
		return err
	}
	r.outcome.Signals = append(r.outcome.Signals, string(sig))
	c.logger.Debug("signal delivered", zap.Int("pid", r.pid), zap.String("signal", string(sig)))
	return nil
}

func (c *Controller) succeed(r *run, msg string) models.TerminationOutcome {
	r.outcome.Success = true
	r.outcome.Message = msg
	r.outcome.State = string(r.state)
	c.logger.Info("process terminated", zap.Int("pid", r.pid), zap.Strings("signals", r.outcome.Signals))
	return r.outcome
}

func (c *Controller) fail(r *run, kind models.FailureKind, msg string) models.TerminationOutcome {
	r.outcome.Success = false
	r.outcome.Failure = kind
	r.outcome.Message = msg
	r.outcome.State = string(r.state)
	c.logger.Warn("termination failed",
		zap.Int("pid", r.pid), zap.String("failure", string(kind)), zap.String("message", msg))
	return r.outcome
}

func (c *Controller) signalFailureMessage(r *run, sig Signal, err error) string {
	switch failureKind(err) {
	case models.FailurePermission:
		return fmt.Sprintf("permission denied sending %s to %s: insufficient privilege", sig, label(r))
	case models.FailureNotFound:
		return fmt.Sprintf("%s vanished before %s could be delivered", label(r), sig)
	default:
		return fmt.Sprintf("could not send %s to %s: %v", sig, label(r), err)
	}
}

func failureKind(err error) models.FailureKind {
	switch {
	case errors.Is(err, ErrPermission):
		return models.FailurePermission
	case errors.Is(err, ErrNoProcess):
		return models.FailureNotFound
	default:
		return models.FailureOS
	}
}

func label(r *run) string {
	return fmt.Sprintf("%s (PID %d)", r.outcome.ResolvedName, r.pid)
}

// ExitCode maps an outcome to the terminate command's exit status.
func ExitCode(o models.TerminationOutcome) int {
	if o.Success {
		return 0
	}
	return 1
}
