// Package localexec runs the read-only OS listing tools prochunt depends on.
package localexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/prochunt/internal/connectors"
)

// DefaultTimeout bounds a single invocation when the caller's context has no deadline.
const DefaultTimeout = 10 * time.Second

// argvRule reports whether a full argument list is acceptable.
type argvRule func(args []string) bool

// allowedCommands is the strict allowlist. Every argument is checked, not
// just the first, so a permitted tool cannot be steered into mutating state.
var allowedCommands = map[string][]argvRule{
	"ps": {
		// ps -eo <columns>
		func(a []string) bool { return len(a) == 2 && a[0] == "-eo" && psColumns(a[1]) },
		// ps -p <pid> -o <columns>
		func(a []string) bool {
			return len(a) == 4 && a[0] == "-p" && isPID(a[1]) && a[2] == "-o" && psColumns(a[3])
		},
	},
	"pmset": {
		func(a []string) bool { return len(a) == 2 && a[0] == "-g" && a[1] == "batt" },
	},
}

var psKeywords = map[string]bool{
	"pid": true, "pcpu": true, "rss": true, "comm": true, "args": true,
}

// psColumns accepts a comma-separated list of known ps keywords, each
// optionally suffixed with "=" to suppress its header.
func psColumns(s string) bool {
	if s == "" {
		return false
	}
	for _, col := range strings.Split(s, ",") {
		if !psKeywords[strings.TrimSuffix(col, "=")] {
			return false
		}
	}
	return true
}

func isPID(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

// LocalExec implements the Runner interface for local command execution.
type LocalExec struct {
	timeout time.Duration
}

// New creates a runner with DefaultTimeout.
func New() *LocalExec {
	return &LocalExec{timeout: DefaultTimeout}
}

// Name returns the runner identifier.
func (l *LocalExec) Name() string {
	return "localexec"
}

// IsAllowed checks the command and its whole argument list against the allowlist.
func (l *LocalExec) IsAllowed(cmd string, args []string) bool {
	for _, rule := range allowedCommands[cmd] {
		if rule(args) {
			return true
		}
	}
	return false
}

// Execute runs an allowed command. A non-zero exit status is reported
// through ExitCode, not as an error.
func (l *LocalExec) Execute(ctx context.Context, cmd string, args []string) (*connectors.ExecResult, error) {
	if !l.IsAllowed(cmd, args) {
		return nil, fmt.Errorf("command not allowed: %s %s", cmd, strings.Join(args, " "))
	}

	if _, ok := ctx.Deadline(); !ok && l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	res := &connectors.ExecResult{Command: cmd, Args: args}
	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", cmd, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res, nil
}
