//go:build !windows

package reaper

import (
	"bufio"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/fentz26/prochunt/internal/connectors/localexec"
	"github.com/fentz26/prochunt/internal/models"
)

func TestMapErrno(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"eperm", unix.EPERM, ErrPermission},
		{"esrch", unix.ESRCH, ErrNoProcess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapErrno(tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, errors.Is(err, tt.in), "errno is kept in the chain")
		})
	}

	assert.NoError(t, mapErrno(nil))
	assert.Equal(t, unix.EINVAL, mapErrno(unix.EINVAL))
}

func newOSController(t *testing.T) *Controller {
	t.Helper()
	if _, err := exec.LookPath("ps"); err != nil {
		t.Skip("ps not available")
	}
	return New(NewOSProcess(localexec.New()), Config{
		PollInterval:   100 * time.Millisecond,
		PollAttempts:   5,
		SettleInterval: 200 * time.Millisecond,
	}, nil)
}

// startChild runs name and reaps it in the background so an exited child
// does not linger as a zombie that still answers signal 0.
func startChild(t *testing.T, name string, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(name, args...)
	require.NoError(t, cmd.Start())
	go cmd.Wait()
	t.Cleanup(func() { _ = cmd.Process.Kill() })
	return cmd
}

func TestOSProcess_GracefulExit(t *testing.T) {
	c := newOSController(t)
	child := startChild(t, "sleep", "30")

	out := c.Terminate(child.Process.Pid, false)

	require.True(t, out.Success, out.Message)
	assert.Equal(t, "sleep", out.ResolvedName)
	assert.Equal(t, []string{"SIGTERM"}, out.Signals)
	assert.Equal(t, string(StateConfirmedDead), out.State)
}

func TestOSProcess_EscalatesWhenTermIgnored(t *testing.T) {
	c := newOSController(t)

	cmd := exec.Command("sh", "-c", "trap '' TERM; echo ready; while :; do sleep 0.1; done")
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	// Wait until the trap is installed before signalling.
	line, err := bufio.NewReader(stdout).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "ready\n", line)
	go cmd.Wait()

	out := c.Terminate(cmd.Process.Pid, false)

	require.True(t, out.Success, out.Message)
	assert.Equal(t, []string{"SIGTERM", "SIGKILL"}, out.Signals)
	assert.Equal(t, string(StateConfirmedDead), out.State)
}

func TestOSProcess_Forced(t *testing.T) {
	c := newOSController(t)
	child := startChild(t, "sleep", "30")

	out := c.Terminate(child.Process.Pid, true)

	require.True(t, out.Success, out.Message)
	assert.Equal(t, []string{"SIGKILL"}, out.Signals)
}

func TestOSProcess_NotFound(t *testing.T) {
	c := newOSController(t)

	out := c.Terminate(4000000, false)

	assert.False(t, out.Success)
	assert.Equal(t, models.FailureNotFound, out.Failure)
	assert.Contains(t, out.Message, "already gone")
	assert.Empty(t, out.Signals)
}

func TestOSProcess_AliveCountsUnsignallableAsAlive(t *testing.T) {
	p := NewOSProcess(localexec.New())

	// PID 1 always exists; without privilege signal 0 fails with EPERM.
	assert.True(t, p.Alive(1))
	assert.False(t, p.Alive(4000000))
}
