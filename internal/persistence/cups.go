package persistence

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// ExecuteCommandWithTimeout runs name/args, killing it with SIGKILL and
// reaping the process if it has not exited within timeout. It never leaves
// a zombie behind: Wait is always called, even on the timeout path (spec
// §4.2: CUPS health monitor).
func ExecuteCommandWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		// CommandContext killed the process when ctx expired, and
		// CombinedOutput has already waited on it, so it is reaped.
		return string(out), fmt.Errorf("%w: %s timed out after %s", ErrCupsUnhealthy, name, timeout)
	}
	if err != nil {
		return string(out), fmt.Errorf("%w: %s: %v", ErrCupsUnhealthy, name, err)
	}
	return string(out), nil
}

// CupsMonitor periodically runs a health-check command (typically `lpstat
// -p`) and reports whether the print spooler is responsive.
type CupsMonitor struct {
	command  string
	args     []string
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger

	onResult func(healthy bool, output string, err error)
}

// NewCupsMonitor builds a CupsMonitor. onResult is invoked after every
// check, healthy reporting whether the command succeeded.
func NewCupsMonitor(command string, args []string, interval, timeout time.Duration, log zerolog.Logger, onResult func(healthy bool, output string, err error)) *CupsMonitor {
	return &CupsMonitor{
		command: command, args: args, interval: interval, timeout: timeout,
		log: log.With().Str("component", "cups_monitor").Logger(), onResult: onResult,
	}
}

// Run blocks, checking on interval until ctx is cancelled.
func (m *CupsMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *CupsMonitor) check(ctx context.Context) {
	out, err := ExecuteCommandWithTimeout(ctx, m.timeout, m.command, m.args...)
	healthy := err == nil
	if !healthy {
		m.log.Warn().Err(err).Msg("cups health check failed")
	}
	if m.onResult != nil {
		m.onResult(healthy, out, err)
	}
}
